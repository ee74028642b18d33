package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("material", "ABC")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, CodeNotFound, ErrorCode(wrapped))
}

func TestNewStorageError(t *testing.T) {
	t.Run("wraps foreign errors", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewStorageError("save material", cause)

		assert.True(t, errors.Is(err, ErrStorage))
		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, "save material failed: connection refused", err.Error())
	})

	t.Run("keeps domain errors", func(t *testing.T) {
		err := NewStorageError("save material", ErrConcurrencyConflict)
		assert.Same(t, ErrConcurrencyConflict, err)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, NewStorageError("noop", nil))
	})
}

func TestInsufficientStockError(t *testing.T) {
	err := NewInsufficientStockError(
		StockShortage{LineNo: 2, MaterialCode: "BLT", Requested: decimal.NewFromInt(5), Available: decimal.NewFromInt(1)},
		StockShortage{LineNo: 3, MaterialCode: "NUT", Requested: decimal.NewFromInt(9), Available: decimal.Zero},
	)

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, CodeInsufficientStock, ErrorCode(err))
	assert.Contains(t, err.Error(), "line 2 (BLT)")
	assert.Contains(t, err.Error(), "line 3 (NUT)")
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{
		From: mustDate("2026-01-10"),
		To:   mustDate("2026-01-20"),
	}
	assert.True(t, r.Contains(mustDate("2026-01-10")))
	assert.True(t, r.Contains(mustDate("2026-01-20").Add(23*time.Hour)))
	assert.False(t, r.Contains(mustDate("2026-01-09")))
	assert.False(t, r.Contains(mustDate("2026-01-21")))
	assert.True(t, DateRange{}.Contains(mustDate("1999-12-31")))
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
