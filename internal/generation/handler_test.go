package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"cuisinehub/pkg/models"
)

type fakeGenerator struct {
	raw string
	err error
}

func (f fakeGenerator) Generate(context.Context, Request) (string, error) {
	return f.raw, f.err
}

type fakeRecipeStore struct {
	mu    sync.Mutex
	saved []models.RecipeDetails
	err   error
}

func (f *fakeRecipeStore) Create(_ context.Context, d models.RecipeDetails) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, d)
	return int64(len(f.saved)), nil
}

type fakeNotifier struct {
	done chan int64
}

func (f *fakeNotifier) BroadcastRecipeReady(recipeID int64, _ string) {
	f.done <- recipeID
}

func newTestRouter(gen Generator, store RecipeStore, notify Notifier, apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(gen, store, notify, nil, apiKey).RegisterRoutes(r)
	return r
}

func TestPing(t *testing.T) {
	r := newTestRouter(fakeGenerator{}, &fakeRecipeStore{}, nil, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	r := newTestRouter(fakeGenerator{raw: validPayload}, &fakeRecipeStore{}, nil, "secret-key")

	body := `{"dish_type":"plat principal","recipe_name":"Gratin"}`

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/generate-recipe", strings.NewReader(body)))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("POST", "/generate-recipe", strings.NewReader(body))
	req.Header.Set("X-API-Key", "secret-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateSyncReturnsData(t *testing.T) {
	store := &fakeRecipeStore{}
	r := newTestRouter(fakeGenerator{raw: validPayload}, store, nil, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/generate-recipe",
		strings.NewReader(`{"dish_type":"plat principal","recipe_name":"Gratin"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    models.RecipeDetails `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "Gratin dauphinois", resp.Data.Recipe.Title)

	// legacy endpoint never persists
	require.Empty(t, store.saved)
}

func TestGenerateSyncRejectsInvalidRequest(t *testing.T) {
	r := newTestRouter(fakeGenerator{raw: validPayload}, &fakeRecipeStore{}, nil, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/generate-recipe",
		strings.NewReader(`{"recipe_name":"Gratin"}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateSyncInvalidPayloadIsUnprocessable(t *testing.T) {
	r := newTestRouter(fakeGenerator{raw: `{"title":""}`}, &fakeRecipeStore{}, nil, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/generate-recipe",
		strings.NewReader(`{"dish_type":"plat principal","recipe_name":"Gratin"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGenerateAsyncPersistsAndNotifies(t *testing.T) {
	store := &fakeRecipeStore{}
	notifier := &fakeNotifier{done: make(chan int64, 1)}
	r := newTestRouter(fakeGenerator{raw: validPayload}, store, notifier, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/recipes/generate",
		strings.NewReader(`{"dish_type":"plat principal","recipe_name":"Gratin"}`)))
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		JobID   string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.JobID)

	select {
	case recipeID := <-notifier.done:
		require.Equal(t, int64(1), recipeID)
	case <-time.After(2 * time.Second):
		t.Fatal("completion notification never arrived")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.saved, 1)
	require.Equal(t, "Gratin dauphinois", store.saved[0].Recipe.Title)
}

func TestGenerateAsyncSaveFailureStaysQuiet(t *testing.T) {
	store := &fakeRecipeStore{err: errors.New("disk full")}
	notifier := &fakeNotifier{done: make(chan int64, 1)}
	r := newTestRouter(fakeGenerator{raw: validPayload}, store, notifier, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/recipes/generate",
		strings.NewReader(`{"dish_type":"plat principal","recipe_name":"Gratin"}`)))
	require.Equal(t, http.StatusAccepted, w.Code)

	select {
	case <-notifier.done:
		t.Fatal("no notification expected on save failure")
	case <-time.After(200 * time.Millisecond):
	}
}
