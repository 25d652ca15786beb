package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, op := range []string{OpDetectIngredients, OpGenerateRecipes, OpRecipeDetail} {
		tmpl, ok := Lookup(op)
		require.True(t, ok, op)
		assert.Equal(t, op, tmpl.Operation)
		assert.Positive(t, tmpl.Version)
		assert.Positive(t, tmpl.MaxTokens)
	}

	_, ok := Lookup("summarize")
	assert.False(t, ok)
}

func TestTemplateShapes(t *testing.T) {
	assert.Equal(t, ShapeArray, DetectIngredientsTemplate.Schema.Shape)
	assert.Equal(t, ShapeArray, GenerateRecipesTemplate.Schema.Shape)
	assert.Equal(t, ShapeObject, RecipeDetailTemplate.Schema.Shape)

	require.NotNil(t, DetectIngredientsTemplate.Temperature)
	assert.Equal(t, 0.2, *DetectIngredientsTemplate.Temperature)
	assert.Nil(t, GenerateRecipesTemplate.Temperature)
}

func TestRenderGenerateRecipes(t *testing.T) {
	prompt := GenerateRecipesTemplate.Render("tomato, egg")

	assert.Contains(t, prompt, "Based on these ingredients: tomato, egg,")
	assert.Contains(t, prompt, `Use IDs from "1" to "5"`)
	assert.NotContains(t, prompt, "%!")
}

func TestRenderRecipeDetail(t *testing.T) {
	prompt := RecipeDetailTemplate.Render("Shakshuka", AvailableLine([]string{"tomato", "egg"}))
	assert.Contains(t, prompt, `information for: "Shakshuka"`)
	assert.Contains(t, prompt, "Available ingredients: tomato, egg")

	prompt = RecipeDetailTemplate.Render("100% Rye Bread", AvailableLine(nil))
	assert.Contains(t, prompt, `"100% Rye Bread"`)
	assert.NotContains(t, prompt, "Available ingredients")
}

func TestRenderDetectIngredientsIsStatic(t *testing.T) {
	assert.Contains(t, DetectIngredientsTemplate.Render(), "ONLY the JSON array")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "config", err: &ConfigurationError{Reason: "OPENAI_API_KEY is not set"}, want: "The recipe service is not configured. Please try again later."},
		{name: "upstream message", err: &UpstreamError{StatusCode: 429, Message: "Rate limit reached"}, want: "Rate limit reached. Please try again."},
		{name: "upstream status only", err: &UpstreamError{StatusCode: 502}, want: "model returned status 502. Please try again."},
		{name: "wrapped parse failure", err: fmt.Errorf("failed to decode: %w", &ParseFailure{Text: "secret raw", Err: errors.New("bad json")}), want: "Could not understand the model response"},
		{name: "input", err: &InvalidInputError{Field: "image", Reason: "is required"}, want: "invalid image: is required"},
		{name: "other", err: errors.New("boom"), want: "Unknown error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
