package web

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/flow"
	"github.com/vbonduro/fridgechef/internal/imageprep"
)

type stateView struct {
	Stage                flow.Stage                  `json:"stage"`
	ImageID              string                      `json:"imageId,omitempty"`
	Ingredients          []domain.DetectedIngredient `json:"ingredients"`
	ConfirmedIngredients []string                    `json:"confirmedIngredients"`
	Recipes              []domain.RecipeSummary      `json:"recipes"`
	SelectedRecipe       *domain.RecipeDetail        `json:"selectedRecipe,omitempty"`
	Message              string                      `json:"message,omitempty"`
	Loading              bool                        `json:"loading"`
}

type sessionResponse struct {
	ID    string    `json:"id"`
	State stateView `json:"state"`
}

func newStateView(st flow.State) stateView {
	v := stateView{
		Stage:                st.Stage,
		Ingredients:          orEmpty(st.Ingredients),
		ConfirmedIngredients: orEmpty(st.Confirmed),
		Recipes:              orEmpty(st.Recipes),
		SelectedRecipe:       st.Detail,
		Message:              st.Error,
		Loading:              st.Loading,
	}
	if st.Image != nil {
		v.ImageID = st.Image.ID
	}
	return v
}

type addIngredientRequest struct {
	Name string `json:"name"`
}

// sessionFor resolves the {id} URL parameter, writing a 404 when the session
// does not exist.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (string, *flow.Controller, bool) {
	id := chi.URLParam(r, "id")
	c, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return "", nil, false
	}
	return id, c, true
}

func writeSession(w http.ResponseWriter, status int, id string, c *flow.Controller) {
	writeJSON(w, status, sessionResponse{ID: id, State: newStateView(c.State())})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, c := s.sessions.Create()
	writeSession(w, http.StatusCreated, id, c)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	writeSession(w, http.StatusOK, id, c)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCapture accepts either a JSON body {"imageData": "..."} or a
// multipart form with an "image" file.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFor(w, r)
	if !ok {
		return
	}

	img, err := s.readCapture(w, r)
	if err != nil {
		s.writeOpError(w, r, "capture", err)
		return
	}

	// Use a detached context so that the detection result is recorded in the
	// session even if the client disconnects.
	if err := c.Capture(context.WithoutCancel(r.Context()), img); err != nil {
		s.writeOpError(w, r, "capture", err)
		return
	}
	writeSession(w, http.StatusOK, id, c)
}

func (s *Server) readCapture(w http.ResponseWriter, r *http.Request) (*domain.CapturedImage, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req detectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return nil, badRequest("body", "must be JSON with imageData")
		}
		return s.images.FromDataURL(req.ImageData)
	}

	r.Body = http.MaxBytesReader(w, r.Body, imageprep.MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(imageprep.MaxImageBytes); err != nil {
		return nil, badRequest("image", "failed to parse form")
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, badRequest("image", "file required")
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, badRequest("image", "could not be read")
	}
	return s.images.FromBytes(data)
}

func (s *Server) handleAddIngredient(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req addIngredientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "body must be JSON with name")
		return
	}
	if err := c.AddIngredient(req.Name); err != nil {
		s.writeOpError(w, r, "add_ingredient", err)
		return
	}
	writeSession(w, http.StatusOK, id, c)
}

func (s *Server) handleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	if err := c.RemoveIngredient(index); err != nil {
		s.writeOpError(w, r, "remove_ingredient", err)
		return
	}
	writeSession(w, http.StatusOK, id, c)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := c.Confirm(context.WithoutCancel(r.Context())); err != nil {
		s.writeOpError(w, r, "confirm", err)
		return
	}
	writeSession(w, http.StatusOK, id, c)
}

func (s *Server) handleSelectRecipe(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := c.SelectRecipe(context.WithoutCancel(r.Context()), chi.URLParam(r, "recipeID")); err != nil {
		s.writeOpError(w, r, "select_recipe", err)
		return
	}
	writeSession(w, http.StatusOK, id, c)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := c.Back(); err != nil {
		s.writeOpError(w, r, "back", err)
		return
	}
	writeSession(w, http.StatusOK, id, c)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	c.Reset()
	writeSession(w, http.StatusOK, id, c)
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
