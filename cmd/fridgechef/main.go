package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/fridgechef/internal/config"
	"github.com/vbonduro/fridgechef/internal/flow"
	"github.com/vbonduro/fridgechef/internal/gateway"
	"github.com/vbonduro/fridgechef/internal/imageprep"
	"github.com/vbonduro/fridgechef/internal/llm"
	"github.com/vbonduro/fridgechef/internal/llm/claude"
	"github.com/vbonduro/fridgechef/internal/llm/gemini"
	"github.com/vbonduro/fridgechef/internal/llm/ollama"
	"github.com/vbonduro/fridgechef/internal/llm/openai"
	"github.com/vbonduro/fridgechef/internal/logging"
	"github.com/vbonduro/fridgechef/internal/session"
	"github.com/vbonduro/fridgechef/internal/web"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

// App holds the process dependencies so commands can be exercised in tests.
type App struct {
	Out        io.Writer
	Err        io.Writer
	LoadConfig func() (*config.Config, error)
	NewLogger  func(cfg *config.Config) (*slog.Logger, func(), error)
	NewModel   func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Model, error)
	ReadFile   func(name string) ([]byte, error)
}

func DefaultApp() *App {
	return &App{
		Out: os.Stdout,
		Err: os.Stderr,
		LoadConfig: func() (*config.Config, error) {
			if err := config.LoadEnvFile(".env"); err != nil {
				return nil, err
			}
			return config.Load()
		},
		NewLogger: func(cfg *config.Config) (*slog.Logger, func(), error) {
			return logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
		},
		NewModel: newModel,
		ReadFile: os.ReadFile,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(DefaultApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fridgechef",
		Short: "Turn a photo of your fridge into recipe ideas",
		Long: `fridgechef detects ingredients in a food photo, suggests recipes that use
them and fetches full recipe details from a hosted language model.

The model backend is chosen with MODEL_BACKEND (openai, claude, gemini, ollama).

Examples:
  fridgechef serve
  fridgechef detect fridge.jpg
  fridgechef recipes tomato egg basil
  fridgechef detail "Shakshuka" --have tomato,egg`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	cmd.AddCommand(
		newServeCmd(app),
		newDetectCmd(app),
		newRecipesCmd(app),
		newDetailCmd(app),
	)
	return cmd
}

// env is what every command needs once configuration has been loaded.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	gateway *gateway.Gateway
	cleanup func()
}

func (app *App) setup(ctx context.Context) (*env, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, cleanup, err := app.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	model, err := app.NewModel(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, err
	}
	return &env{
		cfg:     cfg,
		logger:  logger,
		gateway: gateway.New(model, cfg.ModelTimeout, logger),
		cleanup: cleanup,
	}, nil
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.cleanup()
			return serve(cmd.Context(), rt)
		},
	}
}

func serve(ctx context.Context, rt *env) error {
	cfg, logger := rt.cfg, rt.logger

	sessions := session.NewStore(cfg.SessionMax, cfg.SessionTTL, func() *flow.Controller {
		return flow.NewController(rt.gateway, logger)
	}, logger)
	server := web.NewServer(rt.gateway, imageprep.New(cfg.MaxImageDimension), sessions, web.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)
	httpServer := server.HTTPServer(cfg.ListenAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.ListenAddr, "backend", cfg.ModelBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newDetectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <image-file>",
		Short: "Detect the ingredients in a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.cleanup()

			data, err := app.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			img, err := imageprep.New(rt.cfg.MaxImageDimension).FromBytes(data)
			if err != nil {
				return err
			}
			items, err := rt.gateway.DetectIngredients(cmd.Context(), img)
			if err != nil {
				return err
			}
			return printJSON(app.Out, map[string]any{"ingredients": nonNil(items)})
		},
	}
}

func newRecipesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes <ingredient>...",
		Short: "Suggest recipes for a list of ingredients",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.cleanup()

			recipes, err := rt.gateway.GenerateRecipes(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printJSON(app.Out, map[string]any{"recipes": nonNil(recipes)})
		},
	}
}

func newDetailCmd(app *App) *cobra.Command {
	var have []string
	cmd := &cobra.Command{
		Use:   "detail <title>",
		Short: "Fetch the full recipe for a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.cleanup()

			detail, err := rt.gateway.FetchRecipeDetail(cmd.Context(), args[0], have)
			if err != nil {
				return err
			}
			return printJSON(app.Out, map[string]any{"details": detail.DetailContent})
		},
	}
	cmd.Flags().StringSliceVar(&have, "have", nil, "ingredients already available (comma separated)")
	return cmd
}

func newModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Model, error) {
	switch cfg.ModelBackend {
	case config.BackendClaude:
		if cfg.ClaudeAPIKey == "" {
			logger.Warn("CLAUDE_API_KEY is not set; model calls will fail")
		}
		logger.Info("using Claude backend", "model", cfg.ClaudeModel)
		return claude.NewClaudeModel(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	case config.BackendGemini:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY is not set; model calls will fail")
		}
		logger.Info("using Gemini backend", "model", cfg.GeminiModel)
		m, err := gemini.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return m, nil
	case config.BackendOllama:
		logger.Info("using Ollama backend", "host", cfg.OllamaHost, "model", cfg.OllamaModel)
		return ollama.NewOllamaModel(cfg.OllamaHost, cfg.OllamaModel), nil
	case config.BackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY is not set; model calls will fail")
		}
		logger.Info("using OpenAI backend", "model", cfg.OpenAIModel)
		return openai.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.ModelBackend)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
