package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

type CapturedImage struct {
	ID         string
	Data       []byte
	MimeType   string
	CapturedAt time.Time
}

type DetectedIngredient struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type RecipeSummary struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Image           string     `json:"image"`
	CookingTime     Count      `json:"cookingTime"`
	Difficulty      Difficulty `json:"difficulty"`
	MatchPercentage float64    `json:"matchPercentage"`
	Servings        Count      `json:"servings"`
	Cuisine         string     `json:"cuisine,omitempty"`
}

type RecipeIngredient struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Available bool   `json:"available"`
}

type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  string  `json:"protein"`
	Carbs    string  `json:"carbs"`
	Fat      string  `json:"fat"`
}

// DetailContent is the part of a recipe detail produced by the model; it is
// merged onto a RecipeSummary to form a RecipeDetail.
type DetailContent struct {
	Description  string             `json:"description"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	Nutrition    *Nutrition         `json:"nutrition,omitempty"`
}

type RecipeDetail struct {
	RecipeSummary
	DetailContent
}

// NewRecipeDetail merges content onto summary. The content slices are copied.
func NewRecipeDetail(summary RecipeSummary, content DetailContent) *RecipeDetail {
	c := content
	c.Ingredients = append([]RecipeIngredient(nil), content.Ingredients...)
	c.Instructions = append([]string(nil), content.Instructions...)
	if content.Nutrition != nil {
		n := *content.Nutrition
		c.Nutrition = &n
	}
	return &RecipeDetail{RecipeSummary: summary, DetailContent: c}
}

// UnmarshalJSON accepts each nutrition value as either a JSON number or a
// string, since models alternate between "30g" and 30.
func (n *Nutrition) UnmarshalJSON(data []byte) error {
	var aux struct {
		Calories json.RawMessage `json:"calories"`
		Protein  json.RawMessage `json:"protein"`
		Carbs    json.RawMessage `json:"carbs"`
		Fat      json.RawMessage `json:"fat"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.Calories = leadingNumber(flexString(aux.Calories))
	n.Protein = flexString(aux.Protein)
	n.Carbs = flexString(aux.Carbs)
	n.Fat = flexString(aux.Fat)
	return nil
}

func flexString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// leadingNumber parses the numeric prefix of s ("450 kcal" -> 450).
func leadingNumber(s string) float64 {
	end := 0
	for end < len(s) && (s[end] == '.' || s[end] == '-' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// Count is a whole-number quantity such as minutes or servings. Models
// sometimes write these as 4.0 or 30.5, so any JSON number is accepted and
// rounded to the nearest integer.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(flexString(data), 64)
	if err != nil {
		v = leadingNumber(flexString(data))
	}
	switch {
	case math.IsNaN(v):
		*c = 0
	case v > math.MaxInt32:
		*c = math.MaxInt32
	case v < math.MinInt32:
		*c = math.MinInt32
	default:
		*c = Count(math.Round(v))
	}
	return nil
}
