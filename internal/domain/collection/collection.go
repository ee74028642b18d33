package collection

import (
	"context"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a collection was paid
type PaymentMethod string

const (
	MethodCash           PaymentMethod = "CASH"
	MethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	MethodCreditCard     PaymentMethod = "CREDIT_CARD"
	MethodCheck          PaymentMethod = "CHECK"
	MethodPromissoryNote PaymentMethod = "PROMISSORY_NOTE"
)

// IsValid returns true if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCreditCard, MethodCheck, MethodPromissoryNote:
		return true
	}
	return false
}

// Collection is a payment received against an account.
// OldBalance and NewBalance are stored exactly as the caller supplied them.
type Collection struct {
	shared.BaseEntity
	AccountID          uuid.UUID
	AccountName        string
	Date               time.Time
	Amount             decimal.Decimal
	PaymentMethod      PaymentMethod
	CashOrBank         string
	Note               string
	DueDate            *time.Time
	DocumentNo         string
	OldBalance         decimal.Decimal
	NewBalance         decimal.Decimal
	CreatedBy          string
	CreatedByName      string
	LastModifiedBy     string
	LastModifiedByName string
}

// Input carries the fields of a new collection
type Input struct {
	AccountID     uuid.UUID
	AccountName   string
	Date          time.Time
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	CashOrBank    string
	Note          string
	DueDate       *time.Time
	DocumentNo    string
	OldBalance    decimal.Decimal
	NewBalance    decimal.Decimal
}

// NewCollection validates in and creates a collection record
func NewCollection(in Input, actorID, actorName string) (*Collection, error) {
	if in.AccountID == uuid.Nil {
		return nil, shared.NewValidationError("collection account is required")
	}
	if in.Date.IsZero() {
		return nil, shared.NewValidationError("collection date is required")
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("collection amount must be greater than zero")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = MethodCash
	}
	if !in.PaymentMethod.IsValid() {
		return nil, shared.NewValidationError("payment method %q is not valid", in.PaymentMethod)
	}

	return &Collection{
		BaseEntity:         shared.NewBaseEntity(),
		AccountID:          in.AccountID,
		AccountName:        strings.TrimSpace(in.AccountName),
		Date:               in.Date,
		Amount:             in.Amount,
		PaymentMethod:      in.PaymentMethod,
		CashOrBank:         strings.TrimSpace(in.CashOrBank),
		Note:               in.Note,
		DueDate:            in.DueDate,
		DocumentNo:         strings.TrimSpace(in.DocumentNo),
		OldBalance:         in.OldBalance,
		NewBalance:         in.NewBalance,
		CreatedBy:          actorID,
		CreatedByName:      actorName,
		LastModifiedBy:     actorID,
		LastModifiedByName: actorName,
	}, nil
}

// Filter narrows collection queries
type Filter struct {
	AccountIDs []uuid.UUID
	Range      shared.DateRange
}

// CollectionRepository persists collections
type CollectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]Collection, error)
	FindForStatement(ctx context.Context, filter Filter) ([]Collection, error)
	Create(ctx context.Context, c *Collection) error
	Delete(ctx context.Context, id uuid.UUID) error
}
