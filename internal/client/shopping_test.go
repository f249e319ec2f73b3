package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cuisinehub/internal/shopping"
	"cuisinehub/pkg/models"
)

func aggregateServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/shopping", r.URL.Path)

		var req struct {
			RecipeIDs []int64 `json:"recipe_ids"`
			Servings  int     `json:"servings"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}

		data := models.ShoppingListData{
			TotalRecipes: len(req.RecipeIDs),
			Servings:     req.Servings,
			Ingredients: []models.CategoryGroup{
				{Category: "Légumes", Items: []models.ShoppingListItem{{Name: "Tomates", Quantity: "4"}}},
			},
		}
		_ = json.NewEncoder(w).Encode(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBuildShoppingList(t *testing.T) {
	srv := aggregateServer(t, 0)
	api := New(srv.URL)

	data, err := api.BuildShoppingList(context.Background(), []int64{1, 2}, 4, AggregateOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, data.TotalRecipes)
	require.Equal(t, 4, data.Servings)
	require.Equal(t, 1, data.TotalItems())
}

func TestBuildShoppingListSoftTimeoutWarns(t *testing.T) {
	srv := aggregateServer(t, 80*time.Millisecond)
	api := New(srv.URL)

	var warned atomic.Bool
	data, err := api.BuildShoppingList(context.Background(), []int64{1}, 2, AggregateOptions{
		SoftTimeout: 10 * time.Millisecond,
		HardTimeout: 2 * time.Second,
		OnSlow:      func() { warned.Store(true) },
	})
	// the call still succeeds, the warning only signals slowness
	require.NoError(t, err)
	require.Equal(t, 1, data.TotalRecipes)
	require.True(t, warned.Load())
}

func TestBuildShoppingListHardTimeoutCancels(t *testing.T) {
	srv := aggregateServer(t, 2*time.Second)
	api := New(srv.URL)

	var warned atomic.Bool
	_, err := api.BuildShoppingList(context.Background(), []int64{1}, 2, AggregateOptions{
		SoftTimeout: 10 * time.Millisecond,
		HardTimeout: 60 * time.Millisecond,
		OnSlow:      func() { warned.Store(true) },
	})
	require.Error(t, err)
	require.True(t, warned.Load())
}

func TestStateMachinePersistsThroughClient(t *testing.T) {
	var patches atomic.Int32
	var rejectWrites atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /shopping-lists/7", func(w http.ResponseWriter, r *http.Request) {
		detail := ShoppingListDetail{
			List: models.ShoppingList{ID: 7, Name: "Semaine 1"},
			Data: models.ShoppingListData{
				TotalRecipes: 1,
				Servings:     4,
				Ingredients: []models.CategoryGroup{
					{Category: "Légumes", Items: []models.ShoppingListItem{
						{ID: 1, Name: "Tomates", Quantity: "4"},
						{ID: 2, Name: "Oignons", Quantity: "2"},
					}},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(detail)
	})
	mux.HandleFunc("PATCH /shopping-lists/items/", func(w http.ResponseWriter, r *http.Request) {
		if rejectWrites.Load() {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "item not found"})
			return
		}
		patches.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	api := New(srv.URL)

	detail, err := api.ShoppingList(ctx, 7)
	require.NoError(t, err)

	state := shopping.NewState(detail.Data, api.Items())
	require.InDelta(t, 0.0, state.Progress(), 1e-9)

	require.NoError(t, state.ToggleItem(ctx, "Légumes", 1, "Tomates"))
	require.Equal(t, int32(1), patches.Load())
	require.InDelta(t, 0.5, state.Progress(), 1e-9)

	// checked items sink below unchecked ones
	sorted := state.SortForDisplay("Légumes", detail.Data.Ingredients[0].Items)
	require.Equal(t, "Oignons", sorted[0].Name)
	require.Equal(t, "Tomates", sorted[1].Name)

	// a rejected write rolls the local flag back
	rejectWrites.Store(true)
	require.Error(t, state.ToggleItem(ctx, "Légumes", 2, "Oignons"))
	require.False(t, state.IsChecked("Légumes", "Oignons"))
	require.InDelta(t, 0.5, state.Progress(), 1e-9)
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "servings must be > 0"})
	}))
	t.Cleanup(srv.Close)

	api := New(srv.URL)
	_, err := api.BuildShoppingList(context.Background(), []int64{1}, 0, AggregateOptions{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "servings must be > 0", apiErr.Message)
}
