package invoice

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows invoice queries
type Filter struct {
	shared.Filter
	AccountIDs []uuid.UUID
	Kind       Kind
	Range      shared.DateRange
}

// InvoiceRepository persists the Invoice aggregate together with its lines
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter Filter) ([]Invoice, int64, error)
	// FindForStatement returns every invoice of the given accounts in range, unpaged
	FindForStatement(ctx context.Context, filter Filter) ([]Invoice, error)
	// NumbersForYear returns the stored numbers of one kind dated in year
	NumbersForYear(ctx context.Context, kind Kind, year int) ([]string, error)
	Create(ctx context.Context, inv *Invoice) error
	// SaveWithLock replaces header and lines if the stored version is inv.Version-1
	SaveWithLock(ctx context.Context, inv *Invoice) error
}

// SeedFunc supplies the starting value of a counter that does not exist yet
type SeedFunc func(ctx context.Context) (int64, error)

// CounterRepository hands out monotonic sequence values per (kind, year)
type CounterRepository interface {
	Next(ctx context.Context, kind Kind, year int, seed SeedFunc) (int64, error)
	// Raise lifts the counter to at least value so later draws skip it
	Raise(ctx context.Context, kind Kind, year int, value int64, seed SeedFunc) error
}
