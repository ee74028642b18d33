package collection

import (
	"context"
	"strings"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/collection"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CollectionService records payments received. It never changes account
// totals: callers post the matching credit or debit themselves.
type CollectionService struct {
	collections collection.CollectionRepository
	accounts    account.AccountRepository
	metrics     *telemetry.LedgerMetrics
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(collections collection.CollectionRepository, accounts account.AccountRepository) *CollectionService {
	return &CollectionService{
		collections: collections,
		accounts:    accounts,
	}
}

// SetMetrics sets the ledger metrics recorder
func (s *CollectionService) SetMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// CreateCollection stores a collection with the caller-supplied balances as given
func (s *CollectionService) CreateCollection(ctx context.Context, req CreateCollectionRequest, actorID, actorName string) (*CollectionResponse, error) {
	in := collection.Input{
		AccountID:     req.AccountID,
		AccountName:   req.AccountName,
		Date:          req.Date,
		Amount:        req.Amount,
		PaymentMethod: collection.PaymentMethod(strings.ToUpper(req.PaymentMethod)),
		CashOrBank:    req.CashOrBank,
		Note:          req.Note,
		DueDate:       req.DueDate,
		DocumentNo:    req.DocumentNo,
		OldBalance:    req.OldBalance,
		NewBalance:    req.NewBalance,
	}
	c, err := collection.NewCollection(in, actorID, actorName)
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.FindByID(ctx, c.AccountID)
	if err != nil {
		return nil, err
	}
	if c.AccountName == "" {
		c.AccountName = acc.LegalName
	}

	if err := s.collections.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Collection recorded",
		zap.String("collection_id", c.ID.String()),
		zap.String("account_id", c.AccountID.String()),
		zap.String("amount", c.Amount.String()),
		zap.String("payment_method", string(c.PaymentMethod)),
	)
	if s.metrics != nil {
		s.metrics.RecordCollection(ctx, string(c.PaymentMethod))
	}
	resp := ToCollectionResponse(c)
	return &resp, nil
}

// DeleteCollection removes the record only
func (s *CollectionService) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	if err := s.collections.Delete(ctx, id); err != nil {
		return err
	}
	logger.L(ctx).Info("Collection deleted", zap.String("collection_id", id.String()))
	return nil
}

// GetCollection returns a collection by id
func (s *CollectionService) GetCollection(ctx context.Context, id uuid.UUID) (*CollectionResponse, error) {
	c, err := s.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCollectionResponse(c)
	return &resp, nil
}

// ListByAccount returns an account's collections, newest first
func (s *CollectionService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]CollectionResponse, error) {
	items, err := s.collections.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]CollectionResponse, len(items))
	for i := range items {
		out[i] = ToCollectionResponse(&items[i])
	}
	return out, nil
}
