package llm

import (
	"fmt"
	"strings"
)

const (
	OpDetectIngredients = "detect_ingredients"
	OpGenerateRecipes   = "generate_recipes"
	OpRecipeDetail      = "recipe_detail"
)

// Template is a versioned prompt for one operation together with the schema
// its output must follow and the generation budget for the call.
type Template struct {
	Operation   string
	Version     int
	Schema      Schema
	MaxTokens   int
	Temperature *float64
	text        string
}

// Render substitutes args into the template text.
func (t *Template) Render(args ...any) string {
	if len(args) == 0 {
		return t.text
	}
	return fmt.Sprintf(t.text, args...)
}

// Lookup returns the template for operation, or false if none exists.
func Lookup(operation string) (*Template, bool) {
	t, ok := templates[operation]
	return t, ok
}

// DetectIngredientsTemplate takes no arguments; the image is attached
// separately.
var DetectIngredientsTemplate = &Template{
	Operation: OpDetectIngredients,
	Version:   2,
	Schema: Schema{
		Shape: ShapeArray,
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "confidence", Kind: KindNumber},
		},
	},
	MaxTokens:   1000,
	Temperature: Float(0.2),
	text:        detectIngredients,
}

// GenerateRecipesTemplate takes the comma-joined ingredient names.
var GenerateRecipesTemplate = &Template{
	Operation: OpGenerateRecipes,
	Version:   1,
	Schema: Schema{
		Shape: ShapeArray,
		Fields: []Field{
			{Name: "id", Kind: KindString},
			{Name: "title", Kind: KindString, Required: true},
			{Name: "image", Kind: KindString},
			{Name: "cookingTime", Kind: KindNumber},
			{Name: "difficulty", Kind: KindString},
			{Name: "matchPercentage", Kind: KindNumber},
			{Name: "servings", Kind: KindNumber},
			{Name: "cuisine", Kind: KindString},
		},
	},
	MaxTokens: 2000,
	text:      generateRecipes,
}

// RecipeDetailTemplate takes the recipe title and the available-ingredients
// line (possibly empty).
var RecipeDetailTemplate = &Template{
	Operation: OpRecipeDetail,
	Version:   1,
	Schema: Schema{
		Shape: ShapeObject,
		Fields: []Field{
			{Name: "description", Kind: KindString},
			{Name: "ingredients", Kind: KindArray, Required: true},
			{Name: "instructions", Kind: KindArray, Required: true},
			{Name: "nutrition", Kind: KindObject},
		},
	},
	MaxTokens: 2000,
	text:      recipeDetail,
}

var templates = map[string]*Template{
	OpDetectIngredients: DetectIngredientsTemplate,
	OpGenerateRecipes:   GenerateRecipesTemplate,
	OpRecipeDetail:      RecipeDetailTemplate,
}

// AvailableLine renders the optional "Available ingredients" line of the
// detail prompt.
func AvailableLine(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "Available ingredients: " + strings.Join(names, ", ")
}

const detectIngredients = `You are an expert food ingredient identifier. Analyze this image VERY CAREFULLY and identify ALL food ingredients visible.

Look for:
- Fresh produce (vegetables, fruits, herbs)
- Proteins (meats, eggs, fish, tofu)
- Dairy products (milk, cheese, yogurt, butter)
- Grains and starches (rice, pasta, bread, flour)
- Packaged foods and condiments
- Spices and seasonings
- Any other edible items

IMPORTANT: Even if you see just 1 or 2 ingredients, list them. If you cannot identify any food items with confidence, return an empty array [].

Return ONLY a valid JSON array in this EXACT format with NO additional text:
[{"name":"tomato","confidence":0.95},{"name":"onion","confidence":0.88}]

Rules:
- Use singular form (e.g., "egg" not "eggs")
- Use common names (e.g., "tomato" not "cherry tomato")
- Confidence must be between 0.5 and 1.0
- Include ALL visible ingredients
- Return empty array [] if no food is visible
- NO markdown, NO code blocks, ONLY the JSON array`

const generateRecipes = `You are a professional chef and recipe expert. Based on these ingredients: %s, suggest 5 creative and delicious recipes that can be made using these ingredients (you can assume basic pantry staples like salt, pepper, oil, butter are available).

Return ONLY a valid JSON array with this exact format:
[{
  "id": "1",
  "title": "Recipe Name",
  "image": "https://images.unsplash.com/photo-XXXXXXX?w=800&q=80",
  "cookingTime": 30,
  "difficulty": "Easy",
  "matchPercentage": 95,
  "servings": 4,
  "cuisine": "Cuisine Type"
}]

Rules:
- Generate 5 different recipes
- Use IDs from "1" to "5"
- Use real Unsplash food image URLs that match the recipe
- cookingTime should be realistic in minutes
- difficulty: "Easy", "Medium", or "Hard"
- matchPercentage: how well the recipe matches the available ingredients (higher if more ingredients from the list are used)
- servings: number of servings the recipe makes
- cuisine: type of cuisine (e.g., "Italian", "Asian", "American", etc.)
- Do not include any text outside the JSON array`

const recipeDetail = `You are a professional chef. Provide detailed recipe information for: "%s"

%s

Return ONLY a valid JSON object with this exact format:
{
  "description": "A brief, appetizing description of the dish (2-3 sentences)",
  "ingredients": [
    {"name": "Ingredient name", "amount": "quantity with unit", "available": true}
  ],
  "instructions": [
    "Step 1 instruction",
    "Step 2 instruction"
  ],
  "nutrition": {
    "calories": 450,
    "protein": "30g",
    "carbs": "40g",
    "fat": "15g"
  }
}

Rules:
- List ALL ingredients needed (including pantry staples)
- Mark "available": true for ingredients from the available list, false otherwise
- Provide clear, step-by-step cooking instructions
- Include realistic nutrition information
- Do not include any text outside the JSON object`
