package account

import (
	"context"
	"strings"

	"github.com/erp/ledger/internal/application/txscope"
	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService manages customer and supplier accounts and their running totals
type AccountService struct {
	accounts account.AccountRepository
	hasher   account.TaxIDHasher
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts account.AccountRepository, hasher account.TaxIDHasher) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
	}
}

// CreateAccount opens an account with zero totals. The tax id must be unique;
// uniqueness is checked on its hash so formatting variants collide.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	in := account.NewAccountInput{
		LegalName:   req.LegalName,
		TaxID:       req.TaxID,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		City:        req.City,
		PaymentTerm: req.PaymentTerm,
		Contact:     req.Contact,
	}
	hash := ""
	if account.NormalizeTaxID(req.TaxID) != "" {
		hash = s.hasher.Hash(req.TaxID)
	}
	a, err := account.NewAccount(in, hash)
	if err != nil {
		return nil, err
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		a.AddNote(logger.GetUserID(ctx), note)
	}

	exists, err := s.accounts.ExistsByTaxIDHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("an account with tax id %s already exists", a.MaskedTaxID())
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Account created",
		zap.String("account_id", a.ID.String()),
		zap.String("tax_id", a.MaskedTaxID()),
	)
	resp := ToAccountResponse(a)
	return &resp, nil
}

// AddDebit increases the aggregate debit by amount. Negative amounts are
// accepted so callers can post explicit reversals; nothing is reversed automatically.
func (s *AccountService) AddDebit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*AccountResponse, error) {
	if err := s.accounts.IncrementDebit(ctx, id, amount); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Account debit posted",
		zap.String("account_id", id.String()),
		zap.String("amount", amount.String()),
	)
	return s.GetAccount(ctx, id)
}

// AddCredit increases the aggregate credit by amount
func (s *AccountService) AddCredit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*AccountResponse, error) {
	if err := s.accounts.IncrementCredit(ctx, id, amount); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Account credit posted",
		zap.String("account_id", id.String()),
		zap.String("amount", amount.String()),
	)
	return s.GetAccount(ctx, id)
}

// AddDebitInTx posts a debit inside an existing unit of work
func AddDebitInTx(ctx context.Context, repos txscope.Repositories, id uuid.UUID, amount decimal.Decimal) error {
	return repos.Accounts().IncrementDebit(ctx, id, amount)
}

// GetAccount returns an account by id
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(a)
	return &resp, nil
}

// ListAccounts returns a page of accounts
func (s *AccountService) ListAccounts(ctx context.Context, f ListAccountsFilter) (shared.Paginated[AccountResponse], error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "legal_name"
	filter.OrderDir = "asc"
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}

	items, total, err := s.accounts.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[AccountResponse]{}, err
	}
	out := make([]AccountResponse, len(items))
	for i := range items {
		out[i] = ToAccountResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}
