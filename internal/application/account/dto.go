package account

import (
	"time"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to open an account
type CreateAccountRequest struct {
	LegalName   string          `json:"legal_name" binding:"required,max=200"`
	TaxID       string          `json:"tax_id" binding:"required,max=50"`
	Phone       string          `json:"phone" binding:"required,max=50"`
	Email       string          `json:"email" binding:"required,email"`
	Address     string          `json:"address" binding:"required"`
	City        string          `json:"city" binding:"omitempty,max=100"`
	PaymentTerm string          `json:"payment_term" binding:"omitempty,max=30"`
	Contact     account.Contact `json:"contact"`
	Note        string          `json:"note"`
}

// AmountRequest carries a signed amount for debit or credit postings
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ListAccountsFilter represents filter options for the account list
type ListAccountsFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// StatementRequest selects the accounts, date range and document kind of a statement
type StatementRequest struct {
	AccountIDs []uuid.UUID `json:"account_ids" binding:"required,min=1"`
	DateFrom   *time.Time  `json:"date_from"`
	DateTo     *time.Time  `json:"date_to"`
	// Kind restricts invoice lines to one invoice kind; collections are always included
	Kind string `json:"kind" binding:"omitempty,oneof=SALES SERVICE EXPORT"`
	// Currency, when set, adds a display-only conversion of the summary
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID              uuid.UUID       `json:"id"`
	LegalName       string          `json:"legal_name"`
	TaxID           string          `json:"tax_id"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	AggregateDebit  decimal.Decimal `json:"aggregate_debit"`
	AggregateCredit decimal.Decimal `json:"aggregate_credit"`
	Balance         decimal.Decimal `json:"balance"`
	Status          string          `json:"status"`
	PaymentTerm     string          `json:"payment_term"`
	Contact         account.Contact `json:"contact"`
	Notes           []account.Note  `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ConvertedSummary is a statement summary expressed in another currency for display
type ConvertedSummary struct {
	Currency     string          `json:"currency"`
	Rate         decimal.Decimal `json:"rate"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	Stale        bool            `json:"stale"`
}

// StatementResponse is a built statement plus optional display conversion
type StatementResponse struct {
	account.Statement
	Converted *ConvertedSummary `json:"converted,omitempty"`
}

// ToAccountResponse converts a domain account to a response. The tax id is masked.
func ToAccountResponse(a *account.Account) AccountResponse {
	notes := a.Notes
	if notes == nil {
		notes = []account.Note{}
	}
	return AccountResponse{
		ID:              a.ID,
		LegalName:       a.LegalName,
		TaxID:           a.MaskedTaxID(),
		Phone:           a.Phone,
		Email:           a.Email,
		Address:         a.Address,
		City:            a.City,
		AggregateDebit:  a.AggregateDebit,
		AggregateCredit: a.AggregateCredit,
		Balance:         a.Balance(),
		Status:          string(a.Status),
		PaymentTerm:     a.PaymentTerm,
		Contact:         a.Contact,
		Notes:           notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
