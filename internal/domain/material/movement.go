package material

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind is the direction of a stock movement
type MovementKind string

const (
	MovementIn  MovementKind = "IN"
	MovementOut MovementKind = "OUT"
)

// IsValid returns true if the kind is IN or OUT
func (k MovementKind) IsValid() bool {
	return k == MovementIn || k == MovementOut
}

// RefKind names the document that caused a movement
type RefKind string

const (
	RefInvoice RefKind = "INVOICE"
	RefStockIn RefKind = "STOCK_IN"
	RefOpening RefKind = "OPENING"
	RefManual  RefKind = "MANUAL"
)

// Reference ties a movement to its source document
type Reference struct {
	Kind RefKind
	ID   string
	Note string
}

// StockMovement is an immutable ledger row. Stock and cost snapshots are
// taken after the movement was applied, so the last row of a material
// always equals its current state.
type StockMovement struct {
	shared.BaseEntity
	MaterialID       uuid.UUID
	Kind             MovementKind
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	TotalValue       decimal.Decimal
	ResultingStock   decimal.Decimal
	ResultingAvgCost decimal.Decimal
	RefKind          RefKind
	RefID            string
	Note             string
}

func newMovement(m *Material, kind MovementKind, qty, unitPrice decimal.Decimal, ref Reference) *StockMovement {
	return &StockMovement{
		BaseEntity:       shared.NewBaseEntity(),
		MaterialID:       m.ID,
		Kind:             kind,
		Quantity:         qty,
		UnitPrice:        unitPrice,
		TotalValue:       qty.Mul(unitPrice),
		ResultingStock:   m.Stock,
		ResultingAvgCost: m.AverageCost,
		RefKind:          ref.Kind,
		RefID:            ref.ID,
		Note:             ref.Note,
	}
}

// SignedQuantity returns the quantity with the sign of its direction
func (s *StockMovement) SignedQuantity() decimal.Decimal {
	if s.Kind == MovementOut {
		return s.Quantity.Neg()
	}
	return s.Quantity
}

// Reconciliation compares a material row against its movement ledger
type Reconciliation struct {
	MaterialID     uuid.UUID       `json:"material_id"`
	Code           string          `json:"code"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	LedgerStock    decimal.Decimal `json:"ledger_stock"`
	CurrentAvgCost decimal.Decimal `json:"current_avg_cost"`
	LedgerAvgCost  decimal.Decimal `json:"ledger_avg_cost"`
	MovementCount  int             `json:"movement_count"`
	Balanced       bool            `json:"balanced"`
}

// Reconcile replays movements (oldest first) and checks the material's
// stock equals their signed sum and its cost equals the last snapshot.
func Reconcile(m *Material, movements []StockMovement) Reconciliation {
	sum := decimal.Zero
	lastCost := decimal.Zero
	for i := range movements {
		sum = sum.Add(movements[i].SignedQuantity())
		lastCost = movements[i].ResultingAvgCost
	}
	return Reconciliation{
		MaterialID:     m.ID,
		Code:           m.Code,
		CurrentStock:   m.Stock,
		LedgerStock:    sum,
		CurrentAvgCost: m.AverageCost,
		LedgerAvgCost:  lastCost,
		MovementCount:  len(movements),
		Balanced:       sum.Equal(m.Stock) && lastCost.Equal(m.AverageCost),
	}
}
