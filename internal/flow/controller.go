// Package flow drives one scan-to-recipe session: capture, ingredient review,
// recipe browsing and recipe detail.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/llm"
)

type Stage string

const (
	StageCapturing            Stage = "capturing"
	StageReviewingIngredients Stage = "reviewing_ingredients"
	StageBrowsingRecipes      Stage = "browsing_recipes"
	StageViewingDetail        Stage = "viewing_detail"
)

const (
	msgNoIngredients = "No ingredients detected in the image. Please try again with a clearer photo showing food items."
	msgNoRecipes     = "No recipes found. Using demo recipes."
	manualConfidence = 1.0
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrStaleResponse     = errors.New("response arrived after the session moved on")
	ErrUnknownRecipe     = errors.New("unknown recipe")
)

// extractor is the subset of gateway.Gateway that Controller requires.
type extractor interface {
	DetectIngredients(ctx context.Context, img *domain.CapturedImage) ([]domain.DetectedIngredient, error)
	GenerateRecipes(ctx context.Context, ingredientNames []string) ([]domain.RecipeSummary, error)
	FetchRecipeDetail(ctx context.Context, recipeTitle string, availableIngredientNames []string) (*domain.RecipeDetail, error)
}

// State is a snapshot of a session. Error holds the single current
// user-facing message, which may be a warning.
type State struct {
	Stage       Stage
	Image       *domain.CapturedImage
	Ingredients []domain.DetectedIngredient
	Confirmed   []string
	Recipes     []domain.RecipeSummary
	Detail      *domain.RecipeDetail
	Error       string
	Loading     bool
}

func (s State) clone() State {
	out := s
	if s.Image != nil {
		img := *s.Image
		img.Data = append([]byte(nil), s.Image.Data...)
		out.Image = &img
	}
	out.Ingredients = cloneSlice(s.Ingredients)
	out.Confirmed = cloneSlice(s.Confirmed)
	out.Recipes = cloneSlice(s.Recipes)
	if s.Detail != nil {
		out.Detail = domain.NewRecipeDetail(s.Detail.RecipeSummary, s.Detail.DetailContent)
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

// Controller owns the state of one session. The mutex is released for the
// duration of every model call; each call is tagged with the epoch current at
// dispatch, and its result is discarded if a capture, back or reset happened
// in the meantime.
type Controller struct {
	mu     sync.Mutex
	state  State
	epoch  uint64
	gw     extractor
	logger *slog.Logger
}

func NewController(gw extractor, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		state:  State{Stage: StageCapturing},
		gw:     gw,
		logger: logger,
	}
}

// State returns a deep copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Capture starts a new scan from img, replacing everything gathered so far,
// and runs ingredient detection. A detection failure is recorded in the state
// rather than returned.
func (c *Controller) Capture(ctx context.Context, img *domain.CapturedImage) error {
	if img == nil || len(img.Data) == 0 {
		return &llm.InvalidInputError{Field: "image", Reason: "is required"}
	}

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.state = State{
		Stage:   StageReviewingIngredients,
		Image:   img,
		Loading: true,
	}
	c.mu.Unlock()

	items, err := c.gw.DetectIngredients(ctx, img)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkEpoch(epoch, llm.OpDetectIngredients); err != nil {
		return err
	}
	c.state.Loading = false
	switch {
	case err != nil:
		c.state.Ingredients = []domain.DetectedIngredient{}
		c.state.Error = "Failed to detect ingredients: " + llm.UserMessage(err)
		c.logger.Warn("ingredient detection failed", "image_id", img.ID, "error", err)
	case len(items) == 0:
		c.state.Ingredients = []domain.DetectedIngredient{}
		c.state.Error = msgNoIngredients
	default:
		c.state.Ingredients = items
	}
	return nil
}

func (c *Controller) AddIngredient(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireStage("add ingredient", StageReviewingIngredients); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &llm.InvalidInputError{Field: "name", Reason: "is required"}
	}
	c.state.Error = ""
	c.state.Ingredients = append(c.state.Ingredients, domain.DetectedIngredient{Name: name, Confidence: manualConfidence})
	return nil
}

func (c *Controller) RemoveIngredient(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireStage("remove ingredient", StageReviewingIngredients); err != nil {
		return err
	}
	if index < 0 || index >= len(c.state.Ingredients) {
		return &llm.InvalidInputError{Field: "index", Reason: fmt.Sprintf("%d is out of range", index)}
	}
	c.state.Error = ""
	c.state.Ingredients = append(c.state.Ingredients[:index:index], c.state.Ingredients[index+1:]...)
	return nil
}

// Confirm freezes the reviewed ingredient list and generates recipes for it.
// When generation fails or returns nothing the demonstration catalog is shown
// instead, so browsing never starts empty.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireStage("confirm", StageReviewingIngredients); err != nil {
		c.mu.Unlock()
		return err
	}
	if len(c.state.Ingredients) == 0 {
		c.mu.Unlock()
		return &llm.InvalidInputError{Field: "ingredients", Reason: "must not be empty"}
	}
	names := make([]string, len(c.state.Ingredients))
	for i, ing := range c.state.Ingredients {
		names[i] = ing.Name
	}
	epoch := c.epoch
	c.state.Confirmed = names
	c.state.Stage = StageBrowsingRecipes
	c.state.Recipes = nil
	c.state.Detail = nil
	c.state.Error = ""
	c.state.Loading = true
	c.mu.Unlock()

	recipes, err := c.gw.GenerateRecipes(ctx, cloneSlice(names))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkEpoch(epoch, llm.OpGenerateRecipes); err != nil {
		return err
	}
	c.state.Loading = false
	switch {
	case err != nil:
		c.state.Recipes = DemoRecipes()
		c.state.Error = "Failed to generate recipes: " + strings.TrimSuffix(llm.UserMessage(err), ".") + ". Using demo recipes."
		c.logger.Warn("recipe generation failed, using demo recipes", "error", err)
	case len(recipes) == 0:
		c.state.Recipes = DemoRecipes()
		c.state.Error = msgNoRecipes
		c.logger.Info("no recipes generated, using demo recipes")
	default:
		c.state.Recipes = recipes
	}
	return nil
}

// SelectRecipe loads the detail for the recipe with the given id. On failure
// the demonstration detail for that id is used when one exists; otherwise the
// session stays on the recipe list with the error set.
func (c *Controller) SelectRecipe(ctx context.Context, id string) error {
	c.mu.Lock()
	if err := c.requireStage("select recipe", StageBrowsingRecipes); err != nil {
		c.mu.Unlock()
		return err
	}
	var (
		summary domain.RecipeSummary
		found   bool
	)
	for _, r := range c.state.Recipes {
		if r.ID == id {
			summary, found = r, true
			break
		}
	}
	if !found {
		c.mu.Unlock()
		return fmt.Errorf("recipe %q: %w", id, ErrUnknownRecipe)
	}
	epoch := c.epoch
	confirmed := cloneSlice(c.state.Confirmed)
	c.state.Detail = nil
	c.state.Error = ""
	c.state.Loading = true
	c.mu.Unlock()

	detail, err := c.gw.FetchRecipeDetail(ctx, summary.Title, confirmed)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkEpoch(epoch, llm.OpRecipeDetail); err != nil {
		return err
	}
	c.state.Loading = false
	if err == nil {
		c.state.Detail = domain.NewRecipeDetail(summary, detail.DetailContent)
		c.state.Stage = StageViewingDetail
		return nil
	}

	c.state.Error = "Failed to load recipe details: " + llm.UserMessage(err)
	fallback, ok := DemoDetail(id, confirmed)
	if !ok {
		c.logger.Warn("recipe detail failed, no demo entry", "recipe_id", id, "error", err)
		return nil
	}
	c.logger.Warn("recipe detail failed, using demo detail", "recipe_id", id, "error", err)
	c.state.Detail = fallback
	c.state.Stage = StageViewingDetail
	return nil
}

// Back moves one stage towards the start without discarding any data. A
// generation or detail call still in flight is abandoned.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Stage {
	case StageBrowsingRecipes:
		c.state.Stage = StageReviewingIngredients
	case StageViewingDetail:
		c.state.Stage = StageBrowsingRecipes
	default:
		return fmt.Errorf("cannot go back from %s: %w", c.state.Stage, ErrInvalidTransition)
	}
	c.epoch++
	c.state.Error = ""
	c.state.Loading = false
	return nil
}

// Reset clears the session for a new scan. Results of calls still in flight
// are discarded when they arrive.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.state = State{Stage: StageCapturing}
}

func (c *Controller) requireStage(action string, want Stage) error {
	if c.state.Stage != want {
		return fmt.Errorf("cannot %s in %s: %w", action, c.state.Stage, ErrInvalidTransition)
	}
	return nil
}

// checkEpoch must be called with mu held.
func (c *Controller) checkEpoch(epoch uint64, operation string) error {
	if c.epoch != epoch {
		c.logger.Warn("discarding stale model response", "operation", operation, "dispatched_epoch", epoch, "current_epoch", c.epoch)
		return ErrStaleResponse
	}
	return nil
}
