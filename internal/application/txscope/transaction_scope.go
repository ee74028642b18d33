package txscope

import (
	"context"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/collection"
	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/erp/ledger/internal/domain/material"
)

// TransactionScope runs a unit of work. When fn returns an error every write
// made through the supplied repositories is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every ledger repository. Inside Execute all
// of them share one database transaction.
type Repositories interface {
	Materials() material.MaterialRepository
	Movements() material.MovementRepository
	Accounts() account.AccountRepository
	Invoices() invoice.InvoiceRepository
	Counters() invoice.CounterRepository
	Collections() collection.CollectionRepository
}

// StaticRepositories is a plain Repositories value
type StaticRepositories struct {
	MaterialRepo   material.MaterialRepository
	MovementRepo   material.MovementRepository
	AccountRepo    account.AccountRepository
	InvoiceRepo    invoice.InvoiceRepository
	CounterRepo    invoice.CounterRepository
	CollectionRepo collection.CollectionRepository
}

func (r *StaticRepositories) Materials() material.MaterialRepository       { return r.MaterialRepo }
func (r *StaticRepositories) Movements() material.MovementRepository       { return r.MovementRepo }
func (r *StaticRepositories) Accounts() account.AccountRepository          { return r.AccountRepo }
func (r *StaticRepositories) Invoices() invoice.InvoiceRepository          { return r.InvoiceRepo }
func (r *StaticRepositories) Counters() invoice.CounterRepository          { return r.CounterRepo }
func (r *StaticRepositories) Collections() collection.CollectionRepository { return r.CollectionRepo }

// NoOpTransactionScope runs fn directly against fixed repositories without a
// real transaction. Useful for tests with in-memory fakes.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute implements TransactionScope
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

var (
	_ TransactionScope = (*NoOpTransactionScope)(nil)
	_ Repositories     = (*StaticRepositories)(nil)
)
