package handler

import (
	"github.com/gin-gonic/gin"

	materialapp "github.com/erp/ledger/internal/application/material"
)

// MaterialHandler handles material catalog and stock endpoints
type MaterialHandler struct {
	BaseHandler
	materialService *materialapp.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *materialapp.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
	}
}

// RegisterRoutes mounts the material routes
func (h *MaterialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/materials")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.POST("/code", h.GenerateCode)
	g.POST("/stock-out", h.ReduceStock)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/stock-in", h.AddStock)
	g.GET("/:id/movements", h.ListMovements)
	g.GET("/:id/reconcile", h.Reconcile)
}

// Create handles POST /materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req materialapp.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	m, err := h.materialService.CreateMaterial(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// GenerateCode handles POST /materials/code. It previews the code a new
// material with this name would get; nothing is reserved.
func (h *MaterialHandler) GenerateCode(c *gin.Context) {
	var req materialapp.GenerateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	code, err := h.materialService.GenerateCode(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"code": code})
}

// GetByID handles GET /materials/:id
func (h *MaterialHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "material")
		return
	}

	m, err := h.materialService.GetMaterial(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// List handles GET /materials
func (h *MaterialHandler) List(c *gin.Context) {
	var filter materialapp.ListMaterialsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.materialService.ListMaterials(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AddStock handles POST /materials/:id/stock-in
func (h *MaterialHandler) AddStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "material")
		return
	}
	var req materialapp.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.MaterialID = id

	mv, err := h.materialService.AddStockWithCost(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, mv)
}

// ReduceStock handles POST /materials/stock-out. The material is addressed
// by code, as invoice lines do.
func (h *MaterialHandler) ReduceStock(c *gin.Context) {
	var req materialapp.ReduceStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	mv, err := h.materialService.ReduceStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, mv)
}

// ListMovements handles GET /materials/:id/movements
func (h *MaterialHandler) ListMovements(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "material")
		return
	}

	mvs, err := h.materialService.ListMovements(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mvs)
}

// Reconcile handles GET /materials/:id/reconcile
func (h *MaterialHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "material")
		return
	}

	rec, err := h.materialService.ReconcileStock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}
