package models

import "time"

type ShoppingList struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	TotalRecipes int       `json:"total_recipes"`
	Servings     int       `json:"servings"`
	RecipeIDs    []int64   `json:"recipe_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

type ShoppingListItem struct {
	ID             int64  `json:"id,omitempty"`
	ShoppingListID int64  `json:"shopping_list_id,omitempty"`
	Name           string `json:"name"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit,omitempty"`
	Category       string `json:"category,omitempty"`
	IsChecked      bool   `json:"is_checked"`
}

// CategoryGroup is a derived partition of a flat item list by category
// label. It is recomputed from storage on every read, never stored.
type CategoryGroup struct {
	Category string             `json:"category"`
	Items    []ShoppingListItem `json:"items"`
}

// ShoppingListData is the categorized structure returned by the
// aggregation endpoint and consumed by the shopping state machine.
type ShoppingListData struct {
	Ingredients  []CategoryGroup `json:"ingredients"`
	TotalRecipes int             `json:"total_recipes"`
	Servings     int             `json:"servings"`
}

// TotalItems counts items across all category groups.
func (d ShoppingListData) TotalItems() int {
	n := 0
	for _, g := range d.Ingredients {
		n += len(g.Items)
	}
	return n
}
