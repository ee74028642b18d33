package collection

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollection(t *testing.T) {
	in := Input{
		AccountID:  uuid.New(),
		Date:       time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.NewFromInt(400),
		OldBalance: decimal.NewFromInt(1000),
		NewBalance: decimal.NewFromInt(600),
	}

	t.Run("stores caller balances verbatim", func(t *testing.T) {
		c, err := NewCollection(in, "u1", "Ayşe")
		require.NoError(t, err)
		assert.Equal(t, MethodCash, c.PaymentMethod)
		assert.True(t, c.OldBalance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, c.NewBalance.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, "u1", c.CreatedBy)
	})

	invalid := map[string]func(*Input){
		"missing account": func(i *Input) { i.AccountID = uuid.Nil },
		"missing date":    func(i *Input) { i.Date = time.Time{} },
		"zero amount":     func(i *Input) { i.Amount = decimal.Zero },
		"unknown method":  func(i *Input) { i.PaymentMethod = "BARTER" },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			bad := in
			mutate(&bad)
			c, err := NewCollection(bad, "u1", "Ayşe")
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}
}
