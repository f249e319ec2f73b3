package shopping

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cuisinehub/internal/auth"
	"cuisinehub/internal/realtime"
	"cuisinehub/pkg/models"
)

// RecipeSource resolves recipe ids into their ingredient lists for
// aggregation. Implemented by the recipes repo.
type RecipeSource interface {
	IngredientsForRecipes(ctx context.Context, ids []int64) ([]RecipeIngredients, error)
}

type Handler struct {
	Repo    *Repo
	Recipes RecipeSource
	Hub     *realtime.Hub
}

func NewHandler(repo *Repo, recipes RecipeSource, hub *realtime.Hub) *Handler {
	return &Handler{Repo: repo, Recipes: recipes, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/api/v1/shopping", h.aggregate)
	rg.POST("/shopping-lists", h.create)
	rg.GET("/shopping-lists", h.list)
	rg.GET("/shopping-lists/:id", h.get)
	rg.DELETE("/shopping-lists/:id", h.remove)
	rg.PATCH("/shopping-lists/items/:item_id/check", h.checkItem)
}

type aggregateReq struct {
	RecipeIDs []int64 `json:"recipe_ids"`
	Servings  int     `json:"servings"`
}

func (h *Handler) aggregate(c *gin.Context) {
	var req aggregateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.RecipeIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe_ids required"})
		return
	}
	if req.Servings <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "servings must be > 0"})
		return
	}

	recipes, err := h.Recipes.IngredientsForRecipes(c.Request.Context(), req.RecipeIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregate failed"})
		return
	}
	if len(recipes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recipes found"})
		return
	}

	c.JSON(http.StatusOK, Aggregate(recipes, req.Servings))
}

type createReq struct {
	Name      string                  `json:"name"`
	RecipeIDs []int64                 `json:"recipe_ids"`
	List      models.ShoppingListData `json:"list"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	if req.List.TotalItems() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "list has no items"})
		return
	}

	listID, err := h.Repo.CreateList(c.Request.Context(), models.ShoppingList{
		UserID:    claims.UserID,
		Name:      strings.TrimSpace(req.Name),
		RecipeIDs: req.RecipeIDs,
	}, req.List)
	if err != nil {
		// the whole save is considered failed, even if the header row
		// already landed (see Repo.CreateList)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(realtime.ListSavedEvent{
			UserID: claims.UserID,
			ListID: listID,
			Name:   strings.TrimSpace(req.Name),
		})
	}

	c.JSON(http.StatusCreated, gin.H{"id": listID})
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	lists, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lists})
}

func (h *Handler) get(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid list id"})
		return
	}

	list, err := h.Repo.GetList(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if list == nil || list.UserID != claims.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	items, err := h.Repo.GetItems(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get items failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"list": list,
		"data": models.ShoppingListData{
			Ingredients:  GroupItems(items),
			TotalRecipes: list.TotalRecipes,
			Servings:     list.Servings,
		},
	})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid list id"})
		return
	}

	ok, err := h.Repo.DeleteList(c.Request.Context(), claims.UserID, listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(realtime.ListDeletedEvent{
			UserID: claims.UserID,
			ListID: listID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type checkReq struct {
	IsChecked bool `json:"is_checked"`
}

func (h *Handler) checkItem(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req checkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	err = h.Repo.SetChecked(c.Request.Context(), claims.UserID, itemID, req.IsChecked)
	if errors.Is(err, ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
