package account

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository persists the Account aggregate
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Account, error)
	ExistsByTaxIDHash(ctx context.Context, hash string) (bool, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Account, int64, error)
	Create(ctx context.Context, a *Account) error
	// IncrementDebit adds amount to the aggregate debit in a single atomic update
	IncrementDebit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	// IncrementCredit adds amount to the aggregate credit in a single atomic update
	IncrementCredit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}
