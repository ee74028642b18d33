package material

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockTolerance absorbs rounding noise when comparing stock to a requested quantity
var StockTolerance = decimal.NewFromFloat(0.01)

// costPrecision is the number of decimal places kept for the weighted-average cost
const costPrecision = 6

// Material is a catalog item whose stock and cost are tracked over time.
// Stock is signed: a negative value means goods were sold ahead of receipt.
type Material struct {
	shared.BaseAggregateRoot
	Code            string
	Name            string
	Unit            string
	Stock           decimal.Decimal
	UnitPrice       decimal.Decimal
	VATRate         int
	CurrentBuyPrice decimal.Decimal
	AverageCost     decimal.Decimal
	Note            string
}

// NewMaterial creates an empty material with the given code.
// Stock and cost can only be changed through AddStock and ReduceStock afterwards.
func NewMaterial(code, name, unit string) (*Material, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	code = NormalizeCode(code)
	if name == "" {
		return nil, shared.NewValidationError("material name is required")
	}
	if unit == "" {
		return nil, shared.NewValidationError("material unit is required")
	}
	if code == "" {
		return nil, shared.NewValidationError("material code is required")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("material name cannot exceed 200 characters")
	}

	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Unit:              unit,
		Stock:             decimal.Zero,
		UnitPrice:         decimal.Zero,
		CurrentBuyPrice:   decimal.Zero,
		AverageCost:       decimal.Zero,
	}, nil
}

// SetPricing sets the selling price and VAT rate
func (m *Material) SetPricing(unitPrice decimal.Decimal, vatRate int) error {
	if unitPrice.IsNegative() {
		return shared.NewValidationError("unit price cannot be negative")
	}
	if vatRate < 0 || vatRate > 100 {
		return shared.NewValidationError("VAT rate must be between 0 and 100")
	}
	m.UnitPrice = unitPrice
	m.VATRate = vatRate
	return nil
}

// CanSupply reports whether qty can be taken out of stock.
// A material already in negative stock accepts any further outflow.
func (m *Material) CanSupply(qty decimal.Decimal) bool {
	if m.Stock.IsNegative() {
		return true
	}
	return !m.Stock.LessThan(qty.Sub(StockTolerance))
}

// AddStock books an inbound quantity and blends unitPrice into the weighted-average cost.
// When there is no stock on hand (zero, or a negative backlog) the new cost is unitPrice.
// A negative backlog deliberately skips the blend: stock*cost of a backlog is not a
// value on hand, and a receipt that lands stock on exactly zero would divide by zero.
func (m *Material) AddStock(qty, unitPrice decimal.Decimal, ref Reference) (*StockMovement, error) {
	if !qty.IsPositive() {
		return nil, shared.NewValidationError("quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit price cannot be negative")
	}

	if m.Stock.IsPositive() {
		totalValue := m.Stock.Mul(m.AverageCost).Add(qty.Mul(unitPrice))
		m.AverageCost = totalValue.Div(m.Stock.Add(qty)).Round(costPrecision)
	} else {
		m.AverageCost = unitPrice
	}
	m.Stock = m.Stock.Add(qty)
	m.CurrentBuyPrice = unitPrice
	m.Touch()

	return newMovement(m, MovementIn, qty, unitPrice, ref), nil
}

// ReduceStock books an outbound quantity at the existing average cost.
// Outflow never changes the average cost.
func (m *Material) ReduceStock(qty decimal.Decimal, ref Reference) (*StockMovement, error) {
	if !qty.IsPositive() {
		return nil, shared.NewValidationError("quantity must be greater than zero")
	}
	if !m.CanSupply(qty) {
		return nil, shared.NewInsufficientStockError(shared.StockShortage{
			LineNo:       1,
			MaterialCode: m.Code,
			Requested:    qty,
			Available:    m.Stock,
		})
	}

	m.Stock = m.Stock.Sub(qty)
	m.Touch()

	return newMovement(m, MovementOut, qty, m.AverageCost, ref), nil
}
