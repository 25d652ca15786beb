package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/imageprep"
	"github.com/vbonduro/fridgechef/internal/session"
)

// extractor is the subset of gateway.Gateway that Server requires.
type extractor interface {
	DetectIngredients(ctx context.Context, img *domain.CapturedImage) ([]domain.DetectedIngredient, error)
	GenerateRecipes(ctx context.Context, ingredientNames []string) ([]domain.RecipeSummary, error)
	FetchRecipeDetail(ctx context.Context, recipeTitle string, availableIngredientNames []string) (*domain.RecipeDetail, error)
}

type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	extractor extractor
	images    *imageprep.Preparer
	sessions  *session.Store
	limiter   *rateLimiter
	router    chi.Router
	handler   http.Handler
	logger    *slog.Logger
}

func NewServer(ex extractor, images *imageprep.Preparer, sessions *session.Store, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		extractor: ex,
		images:    images,
		sessions:  sessions,
		limiter:   newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		router:    chi.NewRouter(),
		logger:    logger,
	}
	s.registerRoutes()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(s.router)
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Routes that call the model are rate limited per client.
	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Limit)
		r.Post("/api/detect-ingredients", s.handleDetectIngredients)
		r.Post("/api/generate-recipes", s.handleGenerateRecipes)
		r.Post("/api/recipe-details", s.handleRecipeDetails)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/ingredients", s.handleAddIngredient)
			r.Delete("/ingredients/{index}", s.handleRemoveIngredient)
			r.Post("/back", s.handleBack)
			r.Post("/reset", s.handleReset)
			r.Group(func(r chi.Router) {
				r.Use(s.limiter.Limit)
				r.Post("/capture", s.handleCapture)
				r.Post("/confirm", s.handleConfirm)
				r.Post("/recipes/{recipeID}", s.handleSelectRecipe)
			})
		})
	})
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// HTTPServer returns an *http.Server for addr. The write timeout leaves room
// for a model call at the default timeout.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
