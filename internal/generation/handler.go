package generation

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cuisinehub/internal/realtime"
	"cuisinehub/pkg/models"
)

// RecipeStore persists a finished generation. Implemented by the
// recipes repo.
type RecipeStore interface {
	Create(ctx context.Context, d models.RecipeDetails) (int64, error)
}

// Notifier pushes the out-of-band completion notice to devices.
type Notifier interface {
	BroadcastRecipeReady(recipeID int64, title string)
}

const jobTimeout = 2 * time.Minute

type Handler struct {
	Gen    Generator
	Store  RecipeStore
	Notify Notifier
	Hub    *realtime.Hub
	APIKey string
}

func NewHandler(gen Generator, store RecipeStore, notify Notifier, hub *realtime.Hub, apiKey string) *Handler {
	return &Handler{Gen: gen, Store: store, Notify: notify, Hub: hub, APIKey: apiKey}
}

// APIKeyMiddleware rejects requests without the expected X-API-Key
// header. An empty configured key disables the check (dev mode).
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.APIKey != "" && c.GetHeader("X-API-Key") != h.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", h.ping)

	keyed := r.Group("/", h.APIKeyMiddleware())
	keyed.POST("/generate-recipe", h.generateSync)
	keyed.POST("/api/v1/recipes/generate", h.generateAsync)
}

func (h *Handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// generateSync is the legacy contract: generate, validate, return the
// full recipe data in the response. Nothing is persisted here.
func (h *Handler) generateSync(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw, err := h.Gen.Generate(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
		return
	}

	details, err := ParsePayload(raw)
	if err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "generated data is invalid"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": details})
}

// generateAsync accepts the job, answers immediately and finishes in
// the background. Completion is announced over UDP push and the
// realtime feed; clients never poll.
func (h *Handler) generateAsync(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID := uuid.NewString()
	go h.runJob(jobID, req)

	c.JSON(http.StatusAccepted, gin.H{"success": true, "job_id": jobID})
}

func (h *Handler) runJob(jobID string, req Request) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	raw, err := h.Gen.Generate(ctx, req)
	if err != nil {
		log.Printf("generation job %s failed: %v", jobID, err)
		return
	}

	details, err := ParsePayload(raw)
	if err != nil {
		log.Printf("generation job %s produced invalid payload: %v", jobID, err)
		return
	}

	recipeID, err := h.Store.Create(ctx, *details)
	if err != nil {
		log.Printf("generation job %s save failed: %v", jobID, err)
		return
	}
	log.Printf("generation job %s done: recipe %d (%s)", jobID, recipeID, details.Recipe.Title)

	if h.Notify != nil {
		h.Notify.BroadcastRecipeReady(recipeID, details.Recipe.Title)
	}
	if h.Hub != nil {
		h.Hub.Broadcast(realtime.RecipeReadyEvent{
			RecipeID: recipeID,
			Title:    details.Recipe.Title,
		})
	}
}
