package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/fridgechef/internal/domain"
)

type detectRequest struct {
	ImageData string `json:"imageData"`
}

type detectResponse struct {
	Ingredients []domain.DetectedIngredient `json:"ingredients"`
}

type generateRequest struct {
	Ingredients []string `json:"ingredients"`
}

type generateResponse struct {
	Recipes []domain.RecipeSummary `json:"recipes"`
}

type detailRequest struct {
	RecipeTitle          string   `json:"recipeTitle"`
	AvailableIngredients []string `json:"availableIngredients"`
}

type detailResponse struct {
	Details domain.DetailContent `json:"details"`
}

func (s *Server) handleDetectIngredients(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.ImageData) == "" {
		writeError(w, http.StatusBadRequest, "Image data is required")
		return
	}

	img, err := s.images.FromDataURL(req.ImageData)
	if err != nil {
		s.writeOpError(w, r, "detect_ingredients", err)
		return
	}

	items, err := s.extractor.DetectIngredients(r.Context(), img)
	if err != nil {
		s.writeOpError(w, r, "detect_ingredients", err)
		return
	}
	writeJSON(w, http.StatusOK, detectResponse{Ingredients: orEmpty(items)})
}

func (s *Server) handleGenerateRecipes(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil || len(req.Ingredients) == 0 {
		writeError(w, http.StatusBadRequest, "Ingredients array is required")
		return
	}

	recipes, err := s.extractor.GenerateRecipes(r.Context(), req.Ingredients)
	if err != nil {
		s.writeOpError(w, r, "generate_recipes", err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Recipes: orEmpty(recipes)})
}

func (s *Server) handleRecipeDetails(w http.ResponseWriter, r *http.Request) {
	var req detailRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.RecipeTitle) == "" {
		writeError(w, http.StatusBadRequest, "Recipe title is required")
		return
	}

	detail, err := s.extractor.FetchRecipeDetail(r.Context(), req.RecipeTitle, req.AvailableIngredients)
	if err != nil {
		s.writeOpError(w, r, "recipe_detail", err)
		return
	}
	content := detail.DetailContent
	content.Ingredients = orEmpty(content.Ingredients)
	content.Instructions = orEmpty(content.Instructions)
	writeJSON(w, http.StatusOK, detailResponse{Details: content})
}

// orEmpty makes nil slices encode as [] rather than null.
func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
