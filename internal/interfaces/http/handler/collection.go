package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	collectionapp "github.com/erp/ledger/internal/application/collection"
)

// CollectionHandler handles collection endpoints
type CollectionHandler struct {
	BaseHandler
	collectionService *collectionapp.CollectionService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionService *collectionapp.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
	}
}

// RegisterRoutes mounts the collection routes
func (h *CollectionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/collections")
	g.POST("", h.Create)
	g.GET("", h.ListByAccount)
	g.GET("/:id", h.GetByID)
	g.DELETE("/:id", h.Delete)
}

// Create handles POST /collections
func (h *CollectionHandler) Create(c *gin.Context) {
	var req collectionapp.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	a := actor(c)
	col, err := h.collectionService.CreateCollection(c.Request.Context(), req, a.ID, a.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, col)
}

// ListByAccount handles GET /collections?account_id=
func (h *CollectionHandler) ListByAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Query("account_id"))
	if err != nil {
		h.BadRequest(c, "account_id query parameter must be a valid ID")
		return
	}

	items, err := h.collectionService.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetByID handles GET /collections/:id
func (h *CollectionHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "collection")
		return
	}

	col, err := h.collectionService.GetCollection(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, col)
}

// Delete handles DELETE /collections/:id. Account totals are not touched.
func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "collection")
		return
	}

	if err := h.collectionService.DeleteCollection(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
