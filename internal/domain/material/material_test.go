package material

import (
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMaterial(t *testing.T) *Material {
	t.Helper()
	m, err := NewMaterial("blt", "Bolt", "pcs")
	require.NoError(t, err)
	return m
}

func TestNewMaterial(t *testing.T) {
	t.Run("normalizes code and starts empty", func(t *testing.T) {
		m := newTestMaterial(t)
		assert.Equal(t, "BLT", m.Code)
		assert.True(t, m.Stock.IsZero())
		assert.True(t, m.AverageCost.IsZero())
		assert.Equal(t, 1, m.Version)
	})

	tests := []struct {
		name  string
		code  string
		mName string
		unit  string
		msg   string
	}{
		{"missing name", "X", " ", "pcs", "name"},
		{"missing unit", "X", "Bolt", "", "unit"},
		{"missing code", "  ", "Bolt", "pcs", "code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMaterial(tt.code, tt.mName, tt.unit)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, shared.ErrValidation))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestMaterial_AddStock(t *testing.T) {
	t.Run("first receipt sets cost to unit price", func(t *testing.T) {
		m := newTestMaterial(t)
		mv, err := m.AddStock(decimal.NewFromInt(10), decimal.NewFromInt(5), Reference{Kind: RefStockIn, ID: "r1"})
		require.NoError(t, err)

		assert.True(t, m.Stock.Equal(decimal.NewFromInt(10)))
		assert.True(t, m.AverageCost.Equal(decimal.NewFromInt(5)))
		assert.True(t, m.CurrentBuyPrice.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, MovementIn, mv.Kind)
		assert.True(t, mv.TotalValue.Equal(decimal.NewFromInt(50)))
		assert.True(t, mv.ResultingStock.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 2, m.Version)
	})

	t.Run("blends into weighted average", func(t *testing.T) {
		m := newTestMaterial(t)
		_, err := m.AddStock(decimal.NewFromInt(10), decimal.NewFromInt(5), Reference{Kind: RefOpening})
		require.NoError(t, err)
		_, err = m.AddStock(decimal.NewFromInt(10), decimal.NewFromInt(7), Reference{Kind: RefStockIn})
		require.NoError(t, err)

		assert.True(t, m.Stock.Equal(decimal.NewFromInt(20)))
		assert.True(t, m.AverageCost.Equal(decimal.NewFromInt(6)), m.AverageCost.String())
		assert.True(t, m.CurrentBuyPrice.Equal(decimal.NewFromInt(7)))
	})

	t.Run("average equals weighted mean of all receipts", func(t *testing.T) {
		m := newTestMaterial(t)
		receipts := []struct{ qty, price int64 }{{4, 10}, {6, 20}, {10, 13}}
		for _, r := range receipts {
			_, err := m.AddStock(decimal.NewFromInt(r.qty), decimal.NewFromInt(r.price), Reference{Kind: RefStockIn})
			require.NoError(t, err)
		}
		// (40 + 120 + 130) / 20
		assert.True(t, m.AverageCost.Equal(decimal.NewFromFloat(14.5)), m.AverageCost.String())
	})

	t.Run("negative stock backlog resets cost to unit price", func(t *testing.T) {
		m := newTestMaterial(t)
		m.Stock = decimal.NewFromInt(-3)
		m.AverageCost = decimal.NewFromInt(100)
		_, err := m.AddStock(decimal.NewFromInt(5), decimal.NewFromInt(8), Reference{Kind: RefStockIn})
		require.NoError(t, err)
		assert.True(t, m.Stock.Equal(decimal.NewFromInt(2)))
		assert.True(t, m.AverageCost.Equal(decimal.NewFromInt(8)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		m := newTestMaterial(t)
		_, err := m.AddStock(decimal.Zero, decimal.NewFromInt(5), Reference{})
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, 1, m.Version)
	})
}

func TestMaterial_ReduceStock(t *testing.T) {
	t.Run("keeps average cost on outflow", func(t *testing.T) {
		m := newTestMaterial(t)
		m.Stock = decimal.NewFromInt(20)
		m.AverageCost = decimal.NewFromInt(6)

		mv, err := m.ReduceStock(decimal.NewFromInt(5), Reference{Kind: RefInvoice, ID: "inv-1"})
		require.NoError(t, err)

		assert.True(t, m.Stock.Equal(decimal.NewFromInt(15)))
		assert.True(t, m.AverageCost.Equal(decimal.NewFromInt(6)))
		assert.Equal(t, MovementOut, mv.Kind)
		assert.True(t, mv.UnitPrice.Equal(decimal.NewFromInt(6)))
		assert.True(t, mv.SignedQuantity().Equal(decimal.NewFromInt(-5)))
	})

	t.Run("fails beyond tolerance and leaves stock untouched", func(t *testing.T) {
		m := newTestMaterial(t)
		m.Stock = decimal.NewFromInt(3)

		mv, err := m.ReduceStock(decimal.NewFromInt(5), Reference{Kind: RefInvoice})
		require.Error(t, err)
		assert.Nil(t, mv)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.True(t, m.Stock.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, 1, m.Version)
	})

	t.Run("allows rounding noise within tolerance", func(t *testing.T) {
		m := newTestMaterial(t)
		m.Stock = decimal.RequireFromString("4.995")

		_, err := m.ReduceStock(decimal.NewFromInt(5), Reference{Kind: RefInvoice})
		require.NoError(t, err)
		assert.True(t, m.Stock.Equal(decimal.RequireFromString("-0.005")))
	})

	t.Run("negative stock always accepts more outflow", func(t *testing.T) {
		m := newTestMaterial(t)
		m.Stock = decimal.NewFromInt(-2)

		_, err := m.ReduceStock(decimal.NewFromInt(50), Reference{Kind: RefInvoice})
		require.NoError(t, err)
		assert.True(t, m.Stock.Equal(decimal.NewFromInt(-52)))
	})
}

func TestReconcile(t *testing.T) {
	m := newTestMaterial(t)
	var movements []StockMovement
	mv, err := m.AddStock(decimal.NewFromInt(10), decimal.NewFromInt(5), Reference{Kind: RefOpening})
	require.NoError(t, err)
	movements = append(movements, *mv)
	mv, err = m.ReduceStock(decimal.NewFromInt(4), Reference{Kind: RefInvoice})
	require.NoError(t, err)
	movements = append(movements, *mv)

	rec := Reconcile(m, movements)
	assert.True(t, rec.Balanced)
	assert.True(t, rec.LedgerStock.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 2, rec.MovementCount)

	m.Stock = decimal.NewFromInt(7)
	assert.False(t, Reconcile(m, movements).Balanced)
}
