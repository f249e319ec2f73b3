package recipes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cuisinehub/pkg/models"
)

type Handler struct {
	Repo  *Repo
	Cache *Cache
}

func NewHandler(repo *Repo, cache *Cache) *Handler {
	return &Handler{Repo: repo, Cache: cache}
}

// RegisterPublicRoutes mounts the read-only catalog endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/api/v1/recipes", h.list)
	rg.GET("/api/v1/recipes/:id", h.details)
	rg.GET("/api/v1/explore", h.explore)
	rg.GET("/api/v1/categories", h.categories)
	rg.GET("/api/v1/inspirations", h.inspirations)
}

// RegisterAuthRoutes mounts the endpoints that mutate the catalog.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/api/v1/recipes", h.create)
	rg.DELETE("/api/v1/recipes/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	f := ListFilter{
		Query:   c.Query("q"),
		Country: c.Query("country"),
		Sort:    c.DefaultQuery("sort", "newest"),
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		f.CategoryID = id
	}
	if v := c.Query("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := c.Query("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}
	if f.Sort != "newest" && f.Sort != "oldest" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be newest or oldest"})
		return
	}

	key := listingKey(f)
	if cached, ok := h.Cache.getListing(c.Request.Context(), key); ok {
		c.JSON(http.StatusOK, gin.H{"items": cached.Items, "total": cached.Total})
		return
	}

	items, total, err := h.Repo.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	h.Cache.setListing(c.Request.Context(), key, cachedListing{Items: items, Total: total})
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) details(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	details, err := h.Repo.GetDetails(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if details == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, details)
}

type createRecipeReq struct {
	Recipe      models.Recipe       `json:"recipe"`
	Ingredients []models.Ingredient `json:"ingredients"`
	Steps       []models.Step       `json:"steps"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRecipeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Recipe.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	if req.Recipe.Servings <= 0 {
		req.Recipe.Servings = 4
	}

	id, err := h.Repo.Create(c.Request.Context(), models.RecipeDetails{
		Recipe:      req.Recipe,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) explore(c *gin.Context) {
	items, err := h.Repo.Explore(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "explore failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) categories(c *gin.Context) {
	items, err := h.Repo.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "categories failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) inspirations(c *gin.Context) {
	items, err := h.Repo.Inspirations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "inspirations failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
