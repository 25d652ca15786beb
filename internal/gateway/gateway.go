package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/llm"
)

const DefaultTimeout = 45 * time.Second

// Gateway runs the three extraction operations against a model. Every call
// makes exactly one model request and keeps no state between calls.
type Gateway struct {
	model   llm.Model
	timeout time.Duration
	logger  *slog.Logger
}

// New returns a Gateway. A nil model is allowed; every operation then fails
// with a configuration error.
func New(model llm.Model, timeout time.Duration, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{model: model, timeout: timeout, logger: logger}
}

func (g *Gateway) DetectIngredients(ctx context.Context, img *domain.CapturedImage) ([]domain.DetectedIngredient, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, &llm.InvalidInputError{Field: "image", Reason: "is required"}
	}

	tmpl := llm.DetectIngredientsTemplate
	start := time.Now()
	text, err := g.complete(ctx, tmpl, tmpl.Render(), &llm.Image{Data: img.Data, MimeType: img.MimeType})
	if err != nil {
		return nil, fmt.Errorf("failed to detect ingredients: %w", err)
	}

	items, dropped, err := llm.DecodeArray[domain.DetectedIngredient](text, tmpl.Schema)
	if err != nil {
		g.logParseFailure(tmpl, err)
		return nil, fmt.Errorf("failed to detect ingredients: %w", err)
	}
	items = domain.SanitizeIngredients(items)
	g.logCall(tmpl, start, len(items), dropped, "image_id", img.ID)
	return items, nil
}

func (g *Gateway) GenerateRecipes(ctx context.Context, ingredientNames []string) ([]domain.RecipeSummary, error) {
	if len(ingredientNames) == 0 {
		return nil, &llm.InvalidInputError{Field: "ingredients", Reason: "must not be empty"}
	}
	names := make([]string, 0, len(ingredientNames))
	for _, n := range ingredientNames {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, &llm.InvalidInputError{Field: "ingredients", Reason: "must not contain blank names"}
		}
		names = append(names, n)
	}

	tmpl := llm.GenerateRecipesTemplate
	start := time.Now()
	text, err := g.complete(ctx, tmpl, tmpl.Render(strings.Join(names, ", ")), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipes: %w", err)
	}

	recipes, dropped, err := llm.DecodeArray[domain.RecipeSummary](text, tmpl.Schema)
	if err != nil {
		g.logParseFailure(tmpl, err)
		return nil, fmt.Errorf("failed to generate recipes: %w", err)
	}
	recipes = domain.SanitizeRecipes(recipes)
	g.logCall(tmpl, start, len(recipes), dropped)
	return recipes, nil
}

// FetchRecipeDetail returns the model's detail for recipeTitle. Only Title is
// set on the embedded summary; callers merge the content onto the summary
// they already hold.
func (g *Gateway) FetchRecipeDetail(ctx context.Context, recipeTitle string, availableIngredientNames []string) (*domain.RecipeDetail, error) {
	title := strings.TrimSpace(recipeTitle)
	if title == "" {
		return nil, &llm.InvalidInputError{Field: "recipeTitle", Reason: "is required"}
	}
	names := make([]string, 0, len(availableIngredientNames))
	for _, n := range availableIngredientNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	tmpl := llm.RecipeDetailTemplate
	start := time.Now()
	text, err := g.complete(ctx, tmpl, tmpl.Render(title, llm.AvailableLine(names)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe detail: %w", err)
	}

	content, err := llm.DecodeObject[domain.DetailContent](text, tmpl.Schema)
	if err != nil {
		g.logParseFailure(tmpl, err)
		return nil, fmt.Errorf("failed to fetch recipe detail: %w", err)
	}
	content = domain.SanitizeDetail(content)
	g.logCall(tmpl, start, len(content.Ingredients), 0, "title", title)
	return domain.NewRecipeDetail(domain.RecipeSummary{Title: title}, content), nil
}

// complete performs the single model call for tmpl under the gateway timeout.
func (g *Gateway) complete(ctx context.Context, tmpl *llm.Template, prompt string, img *llm.Image) (string, error) {
	if g.model == nil {
		return "", &llm.ConfigurationError{Reason: "no model backend configured"}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.model.Complete(callCtx, &llm.Request{
		Operation:   tmpl.Operation,
		Prompt:      prompt,
		Image:       img,
		MaxTokens:   tmpl.MaxTokens,
		Temperature: tmpl.Temperature,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = &llm.UpstreamError{Message: "model call timed out", Err: err}
		}
		g.logger.Error("model call failed",
			"operation", tmpl.Operation,
			"version", tmpl.Version,
			"error", err)
		return "", err
	}
	return text, nil
}

func (g *Gateway) logCall(tmpl *llm.Template, start time.Time, items, dropped int, extra ...any) {
	args := []any{
		"operation", tmpl.Operation,
		"version", tmpl.Version,
		"duration", time.Since(start),
		"items", items,
	}
	if dropped > 0 {
		args = append(args, "dropped", dropped)
	}
	g.logger.Info("model call completed", append(args, extra...)...)
}

func (g *Gateway) logParseFailure(tmpl *llm.Template, err error) {
	var pf *llm.ParseFailure
	if errors.As(err, &pf) {
		g.logger.Warn("model output could not be parsed",
			"operation", tmpl.Operation,
			"version", tmpl.Version,
			"raw", pf.Text,
			"error", pf.Err)
	}
}
