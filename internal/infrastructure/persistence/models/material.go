package models

import (
	"github.com/erp/ledger/internal/domain/material"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialModel is the persistence model for the Material aggregate
type MaterialModel struct {
	AggregateModel
	Code            string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Unit            string          `gorm:"type:varchar(20);not null"`
	Stock           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VATRate         int             `gorm:"column:vat_rate;not null;default:0"`
	CurrentBuyPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AverageCost     decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	Note            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "materials"
}

// ToDomain converts the persistence model to a domain Material
func (m *MaterialModel) ToDomain() *material.Material {
	return &material.Material{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Unit:              m.Unit,
		Stock:             m.Stock,
		UnitPrice:         m.UnitPrice,
		VATRate:           m.VATRate,
		CurrentBuyPrice:   m.CurrentBuyPrice,
		AverageCost:       m.AverageCost,
		Note:              m.Note,
	}
}

// FromDomain populates the persistence model from a domain Material
func (m *MaterialModel) FromDomain(mat *material.Material) {
	m.FromDomainAggregateRoot(mat.BaseAggregateRoot)
	m.Code = mat.Code
	m.Name = mat.Name
	m.Unit = mat.Unit
	m.Stock = mat.Stock
	m.UnitPrice = mat.UnitPrice
	m.VATRate = mat.VATRate
	m.CurrentBuyPrice = mat.CurrentBuyPrice
	m.AverageCost = mat.AverageCost
	m.Note = mat.Note
}

// MaterialModelFromDomain creates a new persistence model from a domain Material
func MaterialModelFromDomain(mat *material.Material) *MaterialModel {
	m := &MaterialModel{}
	m.FromDomain(mat)
	return m
}

// StockMovementModel is an append-only stock ledger row
type StockMovementModel struct {
	BaseModel
	MaterialID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_material"`
	Kind             string          `gorm:"type:varchar(8);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalValue       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ResultingStock   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ResultingAvgCost decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	RefKind          string          `gorm:"type:varchar(20);not null;index:idx_movement_ref,priority:1"`
	RefID            string          `gorm:"type:varchar(64);index:idx_movement_ref,priority:2"`
	Note             string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *material.StockMovement {
	return &material.StockMovement{
		BaseEntity:       m.BaseModel.ToDomain(),
		MaterialID:       m.MaterialID,
		Kind:             material.MovementKind(m.Kind),
		Quantity:         m.Quantity,
		UnitPrice:        m.UnitPrice,
		TotalValue:       m.TotalValue,
		ResultingStock:   m.ResultingStock,
		ResultingAvgCost: m.ResultingAvgCost,
		RefKind:          material.RefKind(m.RefKind),
		RefID:            m.RefID,
		Note:             m.Note,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement
func StockMovementModelFromDomain(mv *material.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
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
	}
	m.FromDomainBaseEntity(mv.BaseEntity)
	return m
}
