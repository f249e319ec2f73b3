package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"cuisinehub/pkg/models"
)

// RecipeFilter mirrors the catalog query parameters.
type RecipeFilter struct {
	Query      string
	Country    string
	CategoryID int64
	Sort       string
	Limit      int
	Offset     int
}

type recipeListing struct {
	Items []models.Recipe `json:"items"`
	Total int             `json:"total"`
}

func (c *Client) Recipes(ctx context.Context, f RecipeFilter) ([]models.Recipe, int, error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Country != "" {
		q.Set("country", f.Country)
	}
	if f.CategoryID > 0 {
		q.Set("category_id", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}

	path := "/api/v1/recipes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var listing recipeListing
	if err := c.doJSON(ctx, "GET", path, nil, &listing); err != nil {
		return nil, 0, err
	}
	return listing.Items, listing.Total, nil
}

func (c *Client) RecipeDetails(ctx context.Context, id int64) (*models.RecipeDetails, error) {
	var details models.RecipeDetails
	if err := c.doJSON(ctx, "GET", fmt.Sprintf("/api/v1/recipes/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) Explore(ctx context.Context) ([]models.Recipe, error) {
	var out struct {
		Items []models.Recipe `json:"items"`
	}
	if err := c.doJSON(ctx, "GET", "/api/v1/explore", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out struct {
		Items []models.Category `json:"items"`
	}
	if err := c.doJSON(ctx, "GET", "/api/v1/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) Inspirations(ctx context.Context) ([]models.Inspiration, error) {
	var out struct {
		Items []models.Inspiration `json:"items"`
	}
	if err := c.doJSON(ctx, "GET", "/api/v1/inspirations", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) Favorites(ctx context.Context) ([]models.Recipe, error) {
	var out struct {
		Items []models.Recipe `json:"items"`
	}
	if err := c.doJSON(ctx, "GET", "/api/v1/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) AddFavorite(ctx context.Context, recipeID int64) error {
	return c.doJSON(ctx, "POST", fmt.Sprintf("/api/v1/favorites/%d", recipeID), nil, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, recipeID int64) error {
	return c.doJSON(ctx, "DELETE", fmt.Sprintf("/api/v1/favorites/%d", recipeID), nil, nil)
}

// RecipesAccessor builds a snapshot-keeping accessor over the catalog
// listing.
func (c *Client) RecipesAccessor(f RecipeFilter) *Accessor[[]models.Recipe] {
	return NewAccessor(func(ctx context.Context) ([]models.Recipe, error) {
		items, _, err := c.Recipes(ctx, f)
		return items, err
	})
}

// FavoritesAccessor builds a snapshot-keeping accessor over the user's
// favorites.
func (c *Client) FavoritesAccessor() *Accessor[[]models.Recipe] {
	return NewAccessor(c.Favorites)
}
