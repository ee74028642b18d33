package material

import (
	"time"

	"github.com/erp/ledger/internal/domain/material"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateMaterialRequest represents a request to create a catalog entry.
// Code is optional; a unique code is generated from Name when it is blank.
type CreateMaterialRequest struct {
	Code         string           `json:"code" binding:"omitempty,max=50"`
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	Unit         string           `json:"unit" binding:"required,max=20"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	VATRate      int              `json:"vat_rate" binding:"min=0,max=100"`
	Note         string           `json:"note"`
	OpeningStock *decimal.Decimal `json:"opening_stock"`
	OpeningCost  *decimal.Decimal `json:"opening_cost"`
}

// GenerateCodeRequest asks for a code preview
type GenerateCodeRequest struct {
	Name string `json:"name" binding:"required"`
}

// ReduceStockRequest removes stock from the material identified by Code
type ReduceStockRequest struct {
	Code     string          `json:"code" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	RefKind  string          `json:"ref_kind"`
	RefID    string          `json:"ref_id"`
	Note     string          `json:"note"`
}

// AddStockRequest books a receipt at a purchase price
type AddStockRequest struct {
	MaterialID uuid.UUID       `json:"-"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"required"`
	RefKind    string          `json:"ref_kind"`
	RefID      string          `json:"ref_id"`
	Note       string          `json:"note"`
}

// ListMaterialsFilter represents filter options for the material list
type ListMaterialsFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=code name stock created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	Stock           decimal.Decimal `json:"stock"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	VATRate         int             `json:"vat_rate"`
	CurrentBuyPrice decimal.Decimal `json:"current_buy_price"`
	AverageCost     decimal.Decimal `json:"average_cost"`
	StockValue      decimal.Decimal `json:"stock_value"`
	Note            string          `json:"note"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID               uuid.UUID       `json:"id"`
	MaterialID       uuid.UUID       `json:"material_id"`
	Kind             string          `json:"kind"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalValue       decimal.Decimal `json:"total_value"`
	ResultingStock   decimal.Decimal `json:"resulting_stock"`
	ResultingAvgCost decimal.Decimal `json:"resulting_avg_cost"`
	RefKind          string          `json:"ref_kind"`
	RefID            string          `json:"ref_id"`
	Note             string          `json:"note,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ToMaterialResponse converts a domain material to a response
func ToMaterialResponse(m *material.Material) MaterialResponse {
	return MaterialResponse{
		ID:              m.ID,
		Code:            m.Code,
		Name:            m.Name,
		Unit:            m.Unit,
		Stock:           m.Stock,
		UnitPrice:       m.UnitPrice,
		VATRate:         m.VATRate,
		CurrentBuyPrice: m.CurrentBuyPrice,
		AverageCost:     m.AverageCost,
		StockValue:      m.Stock.Mul(m.AverageCost),
		Note:            m.Note,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToMovementResponse converts a domain movement to a response
func ToMovementResponse(mv *material.StockMovement) MovementResponse {
	return MovementResponse{
		ID:               mv.ID,
		MaterialID:       mv.MaterialID,
		Kind:             string(mv.Kind),
		Quantity:         mv.Quantity,
		UnitPrice:        mv.UnitPrice,
		TotalValue:       mv.TotalValue,
		ResultingStock:   mv.ResultingStock,
		ResultingAvgCost: mv.ResultingAvgCost,
		RefKind:          string(mv.RefKind),
		RefID:            mv.RefID,
		Note:             mv.Note,
		CreatedAt:        mv.CreatedAt,
	}
}
