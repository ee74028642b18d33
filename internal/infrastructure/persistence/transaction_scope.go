package persistence

import (
	"context"

	"github.com/erp/ledger/internal/application/txscope"
	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/collection"
	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/erp/ledger/internal/domain/material"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txscope.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// GormRepositories builds every ledger repository on one *gorm.DB handle,
// which is a transaction inside Execute and the pool elsewhere.
type GormRepositories struct {
	db *gorm.DB
}

// NewRepositories creates repositories bound to db
func NewRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

// Materials returns the material repository
func (r *GormRepositories) Materials() material.MaterialRepository {
	return NewGormMaterialRepository(r.db)
}

// Movements returns the stock movement repository
func (r *GormRepositories) Movements() material.MovementRepository {
	return NewGormMovementRepository(r.db)
}

// Accounts returns the account repository
func (r *GormRepositories) Accounts() account.AccountRepository {
	return NewGormAccountRepository(r.db)
}

// Invoices returns the invoice repository
func (r *GormRepositories) Invoices() invoice.InvoiceRepository {
	return NewGormInvoiceRepository(r.db)
}

// Counters returns the document counter repository
func (r *GormRepositories) Counters() invoice.CounterRepository {
	return NewGormCounterRepository(r.db)
}

// Collections returns the collection repository
func (r *GormRepositories) Collections() collection.CollectionRepository {
	return NewGormCollectionRepository(r.db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ txscope.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements Repositories
var _ txscope.Repositories = (*GormRepositories)(nil)
