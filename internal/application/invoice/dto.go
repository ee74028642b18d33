package invoice

import (
	"time"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineRequest is one invoice line in a create or update request
type LineRequest struct {
	MaterialCode string          `json:"material_code" binding:"omitempty,max=50"`
	MaterialName string          `json:"material_name" binding:"omitempty,max=200"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit" binding:"omitempty,max=20"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VATRate      int             `json:"vat_rate" binding:"min=0,max=100"`
	PaymentTerm  string          `json:"payment_term" binding:"omitempty,max=30"`
}

// CreateInvoiceRequest represents a request to issue an invoice
type CreateInvoiceRequest struct {
	// Number is optional; when empty the next number for (kind, year) is assigned
	Number    string        `json:"number" binding:"omitempty,max=50"`
	Date      *time.Time    `json:"date"`
	Kind      string        `json:"kind" binding:"omitempty,oneof=SALES SERVICE EXPORT"`
	AccountID *uuid.UUID    `json:"account_id"`
	Note      string        `json:"note"`
	Lines     []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest is a partial edit; omitted fields stay unchanged
type UpdateInvoiceRequest struct {
	Date   *time.Time    `json:"date"`
	Kind   *string       `json:"kind" binding:"omitempty,oneof=SALES SERVICE EXPORT"`
	Status *string       `json:"status" binding:"omitempty,oneof=issued paid cancelled"`
	Note   *string       `json:"note"`
	Lines  []LineRequest `json:"lines" binding:"omitempty,dive"`
}

// ListInvoicesFilter represents filter options for the invoice list
type ListInvoicesFilter struct {
	AccountID string     `form:"account_id" binding:"omitempty,uuid"`
	Kind      string     `form:"kind" binding:"omitempty,oneof=SALES SERVICE EXPORT"`
	DateFrom  *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// LineResponse represents an invoice line in API responses
type LineResponse struct {
	LineNo       int             `json:"line_no"`
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VATRate      int             `json:"vat_rate"`
	PaymentTerm  string          `json:"payment_term,omitempty"`
	LineTotal    decimal.Decimal `json:"line_total"`
	LineVAT      decimal.Decimal `json:"line_vat"`
	LineNetTotal decimal.Decimal `json:"line_net_total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                 uuid.UUID         `json:"id"`
	Number             string            `json:"number"`
	Date               time.Time         `json:"date"`
	Kind               string            `json:"kind"`
	AccountID          *uuid.UUID        `json:"account_id,omitempty"`
	Lines              []LineResponse    `json:"lines"`
	Total              decimal.Decimal   `json:"total"`
	TotalVAT           decimal.Decimal   `json:"total_vat"`
	NetTotal           decimal.Decimal   `json:"net_total"`
	Status             string            `json:"status"`
	AccountSnapshot    *account.Snapshot `json:"account_snapshot,omitempty"`
	Note               string            `json:"note"`
	CreatedBy          string            `json:"created_by"`
	CreatedByName      string            `json:"created_by_name"`
	LastModifiedBy     string            `json:"last_modified_by"`
	LastModifiedByName string            `json:"last_modified_by_name"`
	Version            int               `json:"version"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func toLineInputs(lines []LineRequest) []invoice.LineInput {
	if lines == nil {
		return nil
	}
	out := make([]invoice.LineInput, len(lines))
	for i, l := range lines {
		out[i] = invoice.LineInput{
			MaterialCode: l.MaterialCode,
			MaterialName: l.MaterialName,
			Quantity:     l.Quantity,
			Unit:         l.Unit,
			UnitPrice:    l.UnitPrice,
			VATRate:      l.VATRate,
			PaymentTerm:  l.PaymentTerm,
		}
	}
	return out
}

// ToInvoiceResponse converts a domain invoice to a response
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	lines := make([]LineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = LineResponse{
			LineNo:       l.LineNo,
			MaterialCode: l.MaterialCode,
			MaterialName: l.MaterialName,
			Quantity:     l.Quantity,
			Unit:         l.Unit,
			UnitPrice:    l.UnitPrice,
			VATRate:      l.VATRate,
			PaymentTerm:  l.PaymentTerm,
			LineTotal:    l.LineTotal,
			LineVAT:      l.LineVAT,
			LineNetTotal: l.LineNetTotal,
		}
	}
	return InvoiceResponse{
		ID:                 inv.ID,
		Number:             inv.Number,
		Date:               inv.Date,
		Kind:               string(inv.Kind),
		AccountID:          inv.AccountID,
		Lines:              lines,
		Total:              inv.Total,
		TotalVAT:           inv.TotalVAT,
		NetTotal:           inv.NetTotal,
		Status:             string(inv.Status),
		AccountSnapshot:    inv.AccountSnapshot,
		Note:               inv.Note,
		CreatedBy:          inv.CreatedBy,
		CreatedByName:      inv.CreatedByName,
		LastModifiedBy:     inv.LastModifiedBy,
		LastModifiedByName: inv.LastModifiedByName,
		Version:            inv.Version,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
}
