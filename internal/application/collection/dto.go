package collection

import (
	"time"

	"github.com/erp/ledger/internal/domain/collection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCollectionRequest represents a payment received against an account
type CreateCollectionRequest struct {
	AccountID     uuid.UUID       `json:"account_id" binding:"required"`
	AccountName   string          `json:"account_name" binding:"omitempty,max=200"`
	Date          time.Time       `json:"date" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=CASH BANK_TRANSFER CREDIT_CARD CHECK PROMISSORY_NOTE"`
	CashOrBank    string          `json:"cash_or_bank" binding:"omitempty,max=100"`
	Note          string          `json:"note"`
	DueDate       *time.Time      `json:"due_date"`
	DocumentNo    string          `json:"document_no" binding:"omitempty,max=50"`
	OldBalance    decimal.Decimal `json:"old_balance"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

// CollectionResponse represents a collection in API responses
type CollectionResponse struct {
	ID                 uuid.UUID       `json:"id"`
	AccountID          uuid.UUID       `json:"account_id"`
	AccountName        string          `json:"account_name"`
	Date               time.Time       `json:"date"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentMethod      string          `json:"payment_method"`
	CashOrBank         string          `json:"cash_or_bank"`
	Note               string          `json:"note"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	DocumentNo         string          `json:"document_no"`
	OldBalance         decimal.Decimal `json:"old_balance"`
	NewBalance         decimal.Decimal `json:"new_balance"`
	CreatedBy          string          `json:"created_by"`
	CreatedByName      string          `json:"created_by_name"`
	LastModifiedBy     string          `json:"last_modified_by"`
	LastModifiedByName string          `json:"last_modified_by_name"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ToCollectionResponse converts a domain collection to a response
func ToCollectionResponse(c *collection.Collection) CollectionResponse {
	return CollectionResponse{
		ID:                 c.ID,
		AccountID:          c.AccountID,
		AccountName:        c.AccountName,
		Date:               c.Date,
		Amount:             c.Amount,
		PaymentMethod:      string(c.PaymentMethod),
		CashOrBank:         c.CashOrBank,
		Note:               c.Note,
		DueDate:            c.DueDate,
		DocumentNo:         c.DocumentNo,
		OldBalance:         c.OldBalance,
		NewBalance:         c.NewBalance,
		CreatedBy:          c.CreatedBy,
		CreatedByName:      c.CreatedByName,
		LastModifiedBy:     c.LastModifiedBy,
		LastModifiedByName: c.LastModifiedByName,
		CreatedAt:          c.CreatedAt,
	}
}
