package client

import (
	"context"
	"fmt"
	"time"

	"cuisinehub/internal/shopping"
	"cuisinehub/pkg/models"
)

// Aggregation calls run noticeably longer than plain reads, so they
// get their own budget: a soft threshold that only signals the caller
// (show a "still working" notice) and a hard deadline that cancels.
const (
	SoftAggregateTimeout = 15 * time.Second
	HardAggregateTimeout = 30 * time.Second
)

// AggregateOptions tunes the timeout behavior of BuildShoppingList.
// Zero durations fall back to the package defaults.
type AggregateOptions struct {
	SoftTimeout time.Duration
	HardTimeout time.Duration
	OnSlow      func()
}

// BuildShoppingList asks the backend to consolidate the given recipes
// into a categorized shopping list scaled to servings.
func (c *Client) BuildShoppingList(ctx context.Context, recipeIDs []int64, servings int, opts AggregateOptions) (models.ShoppingListData, error) {
	soft := opts.SoftTimeout
	if soft <= 0 {
		soft = SoftAggregateTimeout
	}
	hard := opts.HardTimeout
	if hard <= 0 {
		hard = HardAggregateTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, hard)
	defer cancel()

	if opts.OnSlow != nil {
		timer := time.AfterFunc(soft, opts.OnSlow)
		defer timer.Stop()
	}

	body := map[string]any{
		"recipe_ids": recipeIDs,
		"servings":   servings,
	}
	var data models.ShoppingListData
	if err := c.doJSON(ctx, "POST", "/api/v1/shopping", body, &data); err != nil {
		return models.ShoppingListData{}, err
	}
	return data, nil
}

// SaveShoppingList persists a built list under a name.
func (c *Client) SaveShoppingList(ctx context.Context, name string, recipeIDs []int64, data models.ShoppingListData) (int64, error) {
	body := map[string]any{
		"name":       name,
		"recipe_ids": recipeIDs,
		"list":       data,
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(ctx, "POST", "/shopping-lists", body, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) ShoppingLists(ctx context.Context) ([]models.ShoppingList, error) {
	var out struct {
		Items []models.ShoppingList `json:"items"`
	}
	if err := c.doJSON(ctx, "GET", "/shopping-lists", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ShoppingListDetail is a saved list header plus its regrouped items.
type ShoppingListDetail struct {
	List models.ShoppingList     `json:"list"`
	Data models.ShoppingListData `json:"data"`
}

func (c *Client) ShoppingList(ctx context.Context, id int64) (*ShoppingListDetail, error) {
	var detail ShoppingListDetail
	if err := c.doJSON(ctx, "GET", fmt.Sprintf("/shopping-lists/%d", id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) DeleteShoppingList(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "DELETE", fmt.Sprintf("/shopping-lists/%d", id), nil, nil)
}

// SetItemChecked persists one item's checkbox. The server scopes the
// write to the authenticated user's lists.
func (c *Client) SetItemChecked(ctx context.Context, itemID int64, checked bool) error {
	body := map[string]any{"is_checked": checked}
	return c.doJSON(ctx, "PATCH", fmt.Sprintf("/shopping-lists/items/%d/check", itemID), body, nil)
}

// Items adapts the client to the shopping state machine's ItemStore,
// so toggles made against a local State persist over HTTP.
func (c *Client) Items() shopping.ItemStore {
	return clientItems{c: c}
}

type clientItems struct {
	c *Client
}

func (s clientItems) SetChecked(ctx context.Context, itemID int64, checked bool) error {
	return s.c.SetItemChecked(ctx, itemID, checked)
}
