package shopping

import (
	"sort"
	"strconv"
	"strings"

	"cuisinehub/pkg/models"
)

// Category labels used by the aggregation output. Uncategorized
// ingredients land in Épicerie.
const (
	CategoryVegetables = "Légumes"
	CategoryFruits     = "Fruits"
	CategoryMeat       = "Viandes"
	CategoryFish       = "Poissons"
	CategoryDairy      = "Produits laitiers"
	CategoryGrocery    = "Épicerie"
	CategorySpices     = "Condiments"
	CategoryDrinks     = "Boissons"
)

var categoryKeywords = map[string][]string{
	CategoryVegetables: {"tomate", "oignon", "carotte", "courgette", "aubergine", "poivron", "ail", "salade", "épinard", "poireau", "champignon", "pomme de terre"},
	CategoryFruits:     {"pomme", "banane", "citron", "orange", "fraise", "framboise", "mangue", "poire", "abricot"},
	CategoryMeat:       {"poulet", "boeuf", "bœuf", "porc", "agneau", "veau", "canard", "lardon", "jambon", "saucisse"},
	CategoryFish:       {"poisson", "saumon", "thon", "cabillaud", "crevette", "moule", "lotte", "dorade"},
	CategoryDairy:      {"lait", "beurre", "crème", "creme", "fromage", "yaourt", "parmesan", "gruyère", "mozzarella", "oeuf", "œuf"},
	CategorySpices:     {"sel", "poivre", "épice", "epice", "cumin", "paprika", "curry", "herbe", "thym", "laurier", "basilic", "persil", "moutarde", "vinaigre"},
	CategoryDrinks:     {"vin", "bière", "biere", "jus", "eau gazeuse"},
}

// classifyIngredient maps an ingredient name to a shopping category by
// keyword match; everything unmatched is grocery.
func classifyIngredient(name string) string {
	lower := strings.ToLower(name)
	for _, category := range []string{
		CategoryVegetables, CategoryFruits, CategoryMeat, CategoryFish,
		CategoryDairy, CategorySpices, CategoryDrinks,
	} {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				return category
			}
		}
	}
	return CategoryGrocery
}

// RecipeIngredients is the per-recipe input to aggregation: the
// recipe's base serving count and its flat ingredient list.
type RecipeIngredients struct {
	Servings    int
	Ingredients []models.Ingredient
}

// Aggregate consolidates the ingredients of several recipes into one
// categorized shopping structure scaled to the requested serving count.
// Identical (name, unit) pairs within a category merge; numeric
// quantities are summed, non-numeric ones joined.
func Aggregate(recipes []RecipeIngredients, servings int) models.ShoppingListData {
	type mergeKey struct {
		category string
		name     string
		unit     string
	}

	merged := make(map[mergeKey]*models.ShoppingListItem)
	var order []mergeKey

	for _, rec := range recipes {
		factor := 1.0
		if servings > 0 && rec.Servings > 0 {
			factor = float64(servings) / float64(rec.Servings)
		}

		for _, ing := range rec.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" {
				continue
			}
			qty := scaleQuantity(ing.Quantity, factor)
			key := mergeKey{
				category: classifyIngredient(name),
				name:     strings.ToLower(name),
				unit:     strings.ToLower(strings.TrimSpace(ing.Unit)),
			}

			if existing, ok := merged[key]; ok {
				existing.Quantity = addQuantities(existing.Quantity, qty)
				continue
			}
			merged[key] = &models.ShoppingListItem{
				Name:     name,
				Quantity: qty,
				Unit:     strings.TrimSpace(ing.Unit),
				Category: key.category,
			}
			order = append(order, key)
		}
	}

	groups := make(map[string]*models.CategoryGroup)
	var groupOrder []string
	for _, key := range order {
		g, ok := groups[key.category]
		if !ok {
			g = &models.CategoryGroup{Category: key.category}
			groups[key.category] = g
			groupOrder = append(groupOrder, key.category)
		}
		g.Items = append(g.Items, *merged[key])
	}

	// deterministic output: category groups in alphabetical order, item
	// order within a group follows first appearance
	sort.Strings(groupOrder)

	out := models.ShoppingListData{
		TotalRecipes: len(recipes),
		Servings:     servings,
	}
	for _, name := range groupOrder {
		out.Ingredients = append(out.Ingredients, *groups[name])
	}
	return out
}

// scaleQuantity multiplies a numeric quantity string by factor.
// Non-numeric quantities ("une pincée") pass through unchanged.
func scaleQuantity(quantity string, factor float64) string {
	quantity = strings.TrimSpace(quantity)
	if quantity == "" || factor == 1.0 {
		return quantity
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(quantity, ",", "."), 64)
	if err != nil {
		return quantity
	}
	return formatQuantity(v * factor)
}

func addQuantities(a, b string) string {
	av, aerr := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(a), ",", "."), 64)
	bv, berr := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(b), ",", "."), 64)
	if aerr == nil && berr == nil {
		return formatQuantity(av + bv)
	}
	if strings.TrimSpace(a) == "" {
		return b
	}
	if strings.TrimSpace(b) == "" {
		return a
	}
	return a + " + " + b
}

func formatQuantity(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
