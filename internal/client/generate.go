package client

import (
	"context"

	"cuisinehub/internal/generation"
	"cuisinehub/pkg/models"
)

// Ping checks that the generation endpoints are reachable before a
// job is submitted.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, "GET", "/ping", nil, nil)
}

// GenerateRecipe submits a generation job and returns immediately with
// its id. Completion arrives out of band (UDP push or realtime feed);
// there is no polling endpoint.
func (c *Client) GenerateRecipe(ctx context.Context, req generation.Request) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		JobID   string `json:"job_id"`
	}
	if err := c.doJSON(ctx, "POST", "/api/v1/recipes/generate", req, &out); err != nil {
		return "", err
	}
	return out.JobID, nil
}

// GenerateRecipeSync uses the legacy synchronous endpoint: the full
// generated recipe comes back in the response and nothing is stored
// server-side.
func (c *Client) GenerateRecipeSync(ctx context.Context, req generation.Request) (*models.RecipeDetails, error) {
	var out struct {
		Success bool                 `json:"success"`
		Data    models.RecipeDetails `json:"data"`
	}
	if err := c.doJSON(ctx, "POST", "/generate-recipe", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
