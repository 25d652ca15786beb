package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAvailable(t *testing.T) {
	confirmed := []string{"tomato", "egg"}

	tests := []struct {
		ingredient string
		want       bool
	}{
		{"Tomatoes", true},
		{"tomato paste", true},
		{"Eggs", true},
		{"Quinoa", false},
		{"Olive oil", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.ingredient, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAvailable(tt.ingredient, confirmed))
		})
	}
}

func TestIsAvailableMatchesEitherDirection(t *testing.T) {
	assert.True(t, IsAvailable("Olive oil", []string{"olives"}))
	assert.True(t, IsAvailable("Chicken breast", []string{"chicken thighs"}))
	assert.False(t, IsAvailable("Chicken breast", []string{"", "  "}))
	assert.False(t, IsAvailable("Garlic", nil))
}

func TestDemoDetail(t *testing.T) {
	detail, ok := DemoDetail("4", []string{"tomato", "garlic cloves"})
	require.True(t, ok)

	assert.Equal(t, "4", detail.ID)
	assert.Equal(t, "Tomato Basil Bruschetta", detail.Title)
	require.NotNil(t, detail.Nutrition)
	assert.Equal(t, 180.0, detail.Nutrition.Calories)

	got := map[string]bool{}
	for _, ing := range detail.Ingredients {
		got[ing.Name] = ing.Available
	}
	assert.Equal(t, map[string]bool{
		"Tomatoes":         true,
		"Garlic":           true,
		"Olive oil":        false,
		"Baguette":         false,
		"Fresh basil":      false,
		"Balsamic vinegar": false,
	}, got)

	_, ok = DemoDetail("6", nil)
	assert.False(t, ok)
}

func TestDemoDetailDoesNotShareCatalog(t *testing.T) {
	first, _ := DemoDetail("1", []string{"chicken"})
	first.Ingredients[0].Name = "changed"
	first.Instructions[0] = "changed"

	second, _ := DemoDetail("1", nil)
	assert.Equal(t, "Chicken breast", second.Ingredients[0].Name)
	assert.False(t, second.Ingredients[0].Available)
	assert.NotEqual(t, "changed", second.Instructions[0])
}

func TestDemoRecipesMatchDetails(t *testing.T) {
	recipes := DemoRecipes()
	require.Len(t, recipes, 5)
	for i, r := range recipes {
		assert.Equal(t, string(rune('1'+i)), r.ID)
		_, ok := DemoDetail(r.ID, nil)
		assert.True(t, ok, r.ID)
	}
}
