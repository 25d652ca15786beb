package domain

import (
	"strconv"
	"strings"
)

// SanitizeIngredients trims names, drops blank ones and clamps confidence to
// [0,1]. Out-of-range values are downgraded rather than rejected.
func SanitizeIngredients(in []DetectedIngredient) []DetectedIngredient {
	out := make([]DetectedIngredient, 0, len(in))
	for _, ing := range in {
		ing.Name = strings.TrimSpace(ing.Name)
		if ing.Name == "" {
			continue
		}
		ing.Confidence = clamp(ing.Confidence, 0, 1)
		out = append(out, ing)
	}
	return out
}

// ParseDifficulty maps s case-insensitively onto the fixed scale. Unknown
// values fall back to DifficultyMedium.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// SanitizeRecipes normalizes a generated batch: difficulty restricted to the
// fixed scale, match percentage clamped to [0,100], negative counts zeroed,
// and blank or duplicate ids reassigned by position so ids stay unique.
func SanitizeRecipes(in []RecipeSummary) []RecipeSummary {
	out := make([]RecipeSummary, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, r := range in {
		r.Title = strings.TrimSpace(r.Title)
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" || seen[r.ID] {
			r.ID = uniqueID(i+1, seen)
		}
		seen[r.ID] = true
		r.Difficulty = ParseDifficulty(string(r.Difficulty))
		r.MatchPercentage = clamp(r.MatchPercentage, 0, 100)
		r.CookingTime = max(r.CookingTime, 0)
		r.Servings = max(r.Servings, 0)
		out = append(out, r)
	}
	return out
}

// SanitizeDetail drops blank ingredient names and empty instruction steps.
func SanitizeDetail(d DetailContent) DetailContent {
	d.Description = strings.TrimSpace(d.Description)
	ings := make([]RecipeIngredient, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		if ing.Name == "" {
			continue
		}
		ings = append(ings, ing)
	}
	d.Ingredients = ings
	steps := make([]string, 0, len(d.Instructions))
	for _, s := range d.Instructions {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	d.Instructions = steps
	if d.Nutrition != nil && d.Nutrition.Calories < 0 {
		d.Nutrition.Calories = 0
	}
	return d
}

func uniqueID(start int, seen map[string]bool) string {
	for n := start; ; n++ {
		id := strconv.Itoa(n)
		if !seen[id] {
			return id
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
