package flow

import "github.com/vbonduro/fridgechef/internal/domain"

// demoRecipes is shown whenever recipe generation fails or comes back empty.
var demoRecipes = []domain.RecipeSummary{
	{
		ID:              "1",
		Title:           "Classic Chicken Tomato Pasta",
		Image:           "https://images.unsplash.com/photo-1621996346565-e3dbc646d9a9?w=800&q=80",
		CookingTime:     30,
		Difficulty:      domain.DifficultyEasy,
		MatchPercentage: 95,
		Servings:        4,
		Cuisine:         "Italian",
	},
	{
		ID:              "2",
		Title:           "Garlic Herb Roasted Chicken",
		Image:           "https://images.unsplash.com/photo-1598103442097-8b74394b95c6?w=800&q=80",
		CookingTime:     45,
		Difficulty:      domain.DifficultyMedium,
		MatchPercentage: 88,
		Servings:        4,
		Cuisine:         "American",
	},
	{
		ID:              "3",
		Title:           "Mediterranean Chicken Bowl",
		Image:           "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=800&q=80",
		CookingTime:     25,
		Difficulty:      domain.DifficultyEasy,
		MatchPercentage: 82,
		Servings:        2,
		Cuisine:         "Mediterranean",
	},
	{
		ID:              "4",
		Title:           "Tomato Basil Bruschetta",
		Image:           "https://images.unsplash.com/photo-1572695157366-5e585ab2b69f?w=800&q=80",
		CookingTime:     15,
		Difficulty:      domain.DifficultyEasy,
		MatchPercentage: 75,
		Servings:        6,
		Cuisine:         "Italian",
	},
	{
		ID:              "5",
		Title:           "Chicken Stir Fry with Vegetables",
		Image:           "https://images.unsplash.com/photo-1603133872878-684f208fb84b?w=800&q=80",
		CookingTime:     20,
		Difficulty:      domain.DifficultyEasy,
		MatchPercentage: 70,
		Servings:        3,
		Cuisine:         "Asian",
	},
}

// demoDetails is keyed by demo recipe id.
var demoDetails = map[string]domain.DetailContent{
	"1": {
		Description: "A delicious and comforting pasta dish featuring tender chicken pieces in a rich tomato sauce. Perfect for a weeknight dinner that the whole family will love.",
		Ingredients: []domain.RecipeIngredient{
			{Name: "Chicken breast", Amount: "500g"},
			{Name: "Tomatoes", Amount: "4 large"},
			{Name: "Garlic", Amount: "4 cloves"},
			{Name: "Onions", Amount: "1 large"},
			{Name: "Olive oil", Amount: "3 tbsp"},
			{Name: "Pasta", Amount: "400g"},
			{Name: "Basil", Amount: "1 bunch"},
			{Name: "Parmesan cheese", Amount: "50g"},
		},
		Instructions: []string{
			"Bring a large pot of salted water to boil and cook pasta according to package directions.",
			"While pasta cooks, heat olive oil in a large skillet over medium-high heat.",
			"Season chicken with salt and pepper, then cook until golden brown and cooked through, about 6-7 minutes per side. Remove and set aside.",
			"In the same skillet, sauté diced onions until softened, about 3 minutes.",
			"Add minced garlic and cook for 1 minute until fragrant.",
			"Add diced tomatoes and cook until they break down into a sauce, about 10 minutes.",
			"Slice the cooked chicken and return it to the skillet with the tomato sauce.",
			"Drain pasta and add to the skillet, tossing everything together.",
			"Garnish with fresh basil and grated Parmesan cheese before serving.",
		},
		Nutrition: &domain.Nutrition{Calories: 485, Protein: "32g", Carbs: "58g", Fat: "12g"},
	},
	"2": {
		Description: "Juicy roasted chicken infused with aromatic garlic and fresh herbs. A simple yet impressive dish that delivers restaurant-quality results at home.",
		Ingredients: []domain.RecipeIngredient{
			{Name: "Chicken breast", Amount: "4 pieces"},
			{Name: "Garlic", Amount: "6 cloves"},
			{Name: "Olive oil", Amount: "4 tbsp"},
			{Name: "Onions", Amount: "2 medium"},
			{Name: "Fresh rosemary", Amount: "3 sprigs"},
			{Name: "Fresh thyme", Amount: "4 sprigs"},
			{Name: "Lemon", Amount: "1"},
			{Name: "Butter", Amount: "2 tbsp"},
		},
		Instructions: []string{
			"Preheat oven to 200°C (400°F).",
			"Pat chicken dry with paper towels and season generously with salt and pepper.",
			"Mince garlic and mix with olive oil, chopped rosemary, and thyme.",
			"Rub the herb mixture all over the chicken pieces.",
			"Slice onions and arrange in a roasting pan as a bed for the chicken.",
			"Place chicken on top of onions and add lemon slices around.",
			"Dot with butter and roast for 35-40 minutes until golden and cooked through.",
			"Let rest for 5 minutes before serving with the roasted onions and pan juices.",
		},
		Nutrition: &domain.Nutrition{Calories: 380, Protein: "42g", Carbs: "8g", Fat: "20g"},
	},
	"3": {
		Description: "A fresh and healthy Mediterranean-inspired bowl packed with flavor. Light yet satisfying, perfect for lunch or a quick dinner.",
		Ingredients: []domain.RecipeIngredient{
			{Name: "Chicken breast", Amount: "300g"},
			{Name: "Tomatoes", Amount: "2 medium"},
			{Name: "Garlic", Amount: "2 cloves"},
			{Name: "Olive oil", Amount: "2 tbsp"},
			{Name: "Cucumber", Amount: "1"},
			{Name: "Feta cheese", Amount: "100g"},
			{Name: "Quinoa", Amount: "1 cup"},
			{Name: "Lemon juice", Amount: "2 tbsp"},
		},
		Instructions: []string{
			"Cook quinoa according to package instructions and let cool.",
			"Season chicken with salt, pepper, and minced garlic.",
			"Heat olive oil in a pan and cook chicken until done, about 6 minutes per side.",
			"Slice chicken and set aside to rest.",
			"Dice tomatoes and cucumber into bite-sized pieces.",
			"Assemble bowls with quinoa as the base.",
			"Top with sliced chicken, tomatoes, cucumber, and crumbled feta.",
			"Drizzle with olive oil and lemon juice, season with salt and pepper to taste.",
		},
		Nutrition: &domain.Nutrition{Calories: 420, Protein: "35g", Carbs: "38g", Fat: "15g"},
	},
	"4": {
		Description: "Fresh and vibrant Italian appetizer featuring ripe tomatoes on crispy bread. Perfect for entertaining or as a light snack.",
		Ingredients: []domain.RecipeIngredient{
			{Name: "Tomatoes", Amount: "4 large"},
			{Name: "Garlic", Amount: "3 cloves"},
			{Name: "Olive oil", Amount: "4 tbsp"},
			{Name: "Baguette", Amount: "1"},
			{Name: "Fresh basil", Amount: "1 bunch"},
			{Name: "Balsamic vinegar", Amount: "1 tbsp"},
		},
		Instructions: []string{
			"Dice tomatoes and place in a bowl.",
			"Mince garlic and add to tomatoes with chopped basil.",
			"Add olive oil, balsamic vinegar, salt, and pepper. Mix well and let marinate for 15 minutes.",
			"Slice baguette into 1/2 inch thick slices.",
			"Brush bread slices with olive oil and toast until golden.",
			"Rub toasted bread with a cut garlic clove for extra flavor.",
			"Top each slice with the tomato mixture just before serving.",
		},
		Nutrition: &domain.Nutrition{Calories: 180, Protein: "5g", Carbs: "28g", Fat: "6g"},
	},
	"5": {
		Description: "Quick and flavorful stir fry with tender chicken and crisp vegetables. A healthy weeknight meal ready in minutes.",
		Ingredients: []domain.RecipeIngredient{
			{Name: "Chicken breast", Amount: "400g"},
			{Name: "Garlic", Amount: "3 cloves"},
			{Name: "Onions", Amount: "1 large"},
			{Name: "Olive oil", Amount: "2 tbsp"},
			{Name: "Bell peppers", Amount: "2"},
			{Name: "Soy sauce", Amount: "3 tbsp"},
			{Name: "Ginger", Amount: "1 inch"},
			{Name: "Broccoli", Amount: "200g"},
		},
		Instructions: []string{
			"Slice chicken into thin strips and season with salt and pepper.",
			"Heat oil in a wok or large skillet over high heat.",
			"Add chicken and stir fry until cooked through, about 5 minutes. Remove and set aside.",
			"Add more oil if needed, then stir fry sliced onions and bell peppers for 3 minutes.",
			"Add minced garlic and ginger, cook for 30 seconds.",
			"Add broccoli florets and stir fry for 2 minutes.",
			"Return chicken to the wok and add soy sauce.",
			"Toss everything together for 1-2 minutes until well combined and heated through.",
		},
		Nutrition: &domain.Nutrition{Calories: 320, Protein: "38g", Carbs: "18g", Fat: "10g"},
	},
}

// DemoRecipes returns a fresh copy of the demonstration catalog.
func DemoRecipes() []domain.RecipeSummary {
	return append([]domain.RecipeSummary(nil), demoRecipes...)
}

// DemoDetail returns the demonstration detail for id with availability
// computed against confirmed.
func DemoDetail(id string, confirmed []string) (*domain.RecipeDetail, bool) {
	content, ok := demoDetails[id]
	if !ok {
		return nil, false
	}
	var summary domain.RecipeSummary
	for _, r := range demoRecipes {
		if r.ID == id {
			summary = r
			break
		}
	}

	detail := domain.NewRecipeDetail(summary, content)
	for i := range detail.Ingredients {
		detail.Ingredients[i].Available = IsAvailable(detail.Ingredients[i].Name, confirmed)
	}
	return detail, true
}
