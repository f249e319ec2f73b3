package shopping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cuisinehub/pkg/models"
)

func TestClassifyIngredient(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Tomates cerises", CategoryVegetables},
		{"Filet de poulet", CategoryMeat},
		{"Saumon frais", CategoryFish},
		{"Crème fraîche", CategoryDairy},
		{"Citron jaune", CategoryFruits},
		{"Poivre noir", CategorySpices},
		{"Vin blanc sec", CategoryDrinks},
		{"Farine de blé", CategoryGrocery},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, classifyIngredient(tc.name), "ingredient %q", tc.name)
	}
}

func TestAggregateScalesAndMerges(t *testing.T) {
	recipes := []RecipeIngredients{
		{
			Servings: 2,
			Ingredients: []models.Ingredient{
				{Name: "Tomates", Quantity: "2", Unit: "pièces"},
				{Name: "Poulet", Quantity: "300", Unit: "g"},
			},
		},
		{
			Servings: 4,
			Ingredients: []models.Ingredient{
				{Name: "tomates", Quantity: "1", Unit: "pièces"},
				{Name: "Sel", Quantity: "une pincée"},
			},
		},
	}

	data := Aggregate(recipes, 4)
	require.Equal(t, 2, data.TotalRecipes)
	require.Equal(t, 4, data.Servings)

	byCategory := make(map[string][]models.ShoppingListItem)
	for _, g := range data.Ingredients {
		byCategory[g.Category] = g.Items
	}

	// recipe 1 is scaled x2 (2 -> 4 servings), recipe 2 x1; the two
	// tomato entries merge case-insensitively on (category, name, unit)
	veg := byCategory[CategoryVegetables]
	require.Len(t, veg, 1)
	require.Equal(t, "5", veg[0].Quantity)

	meat := byCategory[CategoryMeat]
	require.Len(t, meat, 1)
	require.Equal(t, "600", meat[0].Quantity)
	require.Equal(t, "g", meat[0].Unit)

	// non-numeric quantities pass through unscaled
	spices := byCategory[CategorySpices]
	require.Len(t, spices, 1)
	require.Equal(t, "une pincée", spices[0].Quantity)
}

func TestAggregateNonNumericQuantitiesJoin(t *testing.T) {
	recipes := []RecipeIngredients{
		{Servings: 4, Ingredients: []models.Ingredient{{Name: "Sel", Quantity: "une pincée"}}},
		{Servings: 4, Ingredients: []models.Ingredient{{Name: "sel", Quantity: "2"}}},
	}

	data := Aggregate(recipes, 4)
	require.Equal(t, 1, data.TotalItems())
	require.Equal(t, "une pincée + 2", data.Ingredients[0].Items[0].Quantity)
}

func TestAggregateCategoryOrderIsAlphabetical(t *testing.T) {
	recipes := []RecipeIngredients{
		{
			Servings: 4,
			Ingredients: []models.Ingredient{
				{Name: "Poulet", Quantity: "1"},
				{Name: "Tomates", Quantity: "2"},
				{Name: "Farine", Quantity: "200", Unit: "g"},
			},
		},
	}

	data := Aggregate(recipes, 4)
	var order []string
	for _, g := range data.Ingredients {
		order = append(order, g.Category)
	}
	// byte-wise lexicographic: the accented É sorts after ASCII letters
	require.Equal(t, []string{CategoryVegetables, CategoryMeat, CategoryGrocery}, order)
}

func TestAggregateFeedsStateInitialization(t *testing.T) {
	recipes := []RecipeIngredients{
		{
			Servings: 2,
			Ingredients: []models.Ingredient{
				{Name: "Tomates", Quantity: "2"},
				{Name: "Oignons", Quantity: "1"},
			},
		},
		{
			Servings: 4,
			Ingredients: []models.Ingredient{
				{Name: "Poulet", Quantity: "500", Unit: "g"},
			},
		},
	}

	data := Aggregate(recipes, 4)

	sum := 0
	for _, g := range data.Ingredients {
		sum += len(g.Items)
	}
	require.Equal(t, sum, data.TotalItems())

	state := NewState(data, nil)
	require.Equal(t, sum, state.TotalItems())
	require.InDelta(t, 0.0, state.Progress(), 1e-9)
}
