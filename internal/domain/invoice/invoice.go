package invoice

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/material"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the document type of an invoice
type Kind string

const (
	KindSales   Kind = "SALES"
	KindService Kind = "SERVICE"
	KindExport  Kind = "EXPORT"
)

// IsValid returns true if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindSales, KindService, KindExport:
		return true
	}
	return false
}

// Prefix returns the invoice number prefix for the kind
func (k Kind) Prefix() string {
	switch k {
	case KindService:
		return "SRV"
	case KindExport:
		return "EXP"
	default:
		return "INV"
	}
}

// Status is the business status of a stored invoice
type Status string

const (
	StatusIssued    Status = "issued"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusIssued, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Line is one invoice row. Lines without a material code carry no stock effect.
type Line struct {
	LineNo       int
	MaterialCode string
	MaterialName string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	VATRate      int
	PaymentTerm  string
	// LineTotal is quantity x unit price before VAT
	LineTotal decimal.Decimal
	LineVAT   decimal.Decimal
	// LineNetTotal is LineTotal plus VAT
	LineNetTotal decimal.Decimal
}

// LineInput is the caller-supplied part of a line
type LineInput struct {
	MaterialCode string
	MaterialName string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	VATRate      int
	PaymentTerm  string
}

// HasStockEffect reports whether the line should move material stock
func (l *Line) HasStockEffect() bool {
	return l.MaterialCode != "" && l.Quantity.IsPositive()
}

// Actor identifies who performed an operation
type Actor struct {
	ID   string
	Name string
}

// Invoice is a sales document. Totals are derived from its lines.
type Invoice struct {
	shared.BaseAggregateRoot
	Number             string
	Date               time.Time
	Kind               Kind
	AccountID          *uuid.UUID
	Lines              []Line
	Total              decimal.Decimal
	TotalVAT           decimal.Decimal
	NetTotal           decimal.Decimal
	Status             Status
	AccountSnapshot    *account.Snapshot
	Note               string
	CreatedBy          string
	CreatedByName      string
	LastModifiedBy     string
	LastModifiedByName string
}

// NewInvoice validates the lines and builds an issued invoice with totals
func NewInvoice(number string, date time.Time, kind Kind, accountID *uuid.UUID, inputs []LineInput, actor Actor) (*Invoice, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("invoice kind %q is not valid", kind)
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("invoice number is required")
	}
	lines, err := buildLines(inputs)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Number:             strings.TrimSpace(number),
		Date:               date,
		Kind:               kind,
		AccountID:          accountID,
		Lines:              lines,
		Status:             StatusIssued,
		CreatedBy:          actor.ID,
		CreatedByName:      actor.Name,
		LastModifiedBy:     actor.ID,
		LastModifiedByName: actor.Name,
	}
	inv.recalculate()
	return inv, nil
}

func buildLines(inputs []LineInput) ([]Line, error) {
	if len(inputs) == 0 {
		return nil, shared.NewValidationError("invoice must have at least one line")
	}
	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		no := i + 1
		if in.Quantity.IsNegative() {
			return nil, shared.NewValidationError("line %d: quantity cannot be negative", no)
		}
		if in.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("line %d: unit price cannot be negative", no)
		}
		if in.VATRate < 0 || in.VATRate > 100 {
			return nil, shared.NewValidationError("line %d: VAT rate must be between 0 and 100", no)
		}
		if strings.TrimSpace(in.MaterialCode) == "" && strings.TrimSpace(in.MaterialName) == "" {
			return nil, shared.NewValidationError("line %d: material code or description is required", no)
		}
		lines = append(lines, Line{
			LineNo:       no,
			MaterialCode: material.NormalizeCode(in.MaterialCode),
			MaterialName: strings.TrimSpace(in.MaterialName),
			Quantity:     in.Quantity,
			Unit:         strings.TrimSpace(in.Unit),
			UnitPrice:    in.UnitPrice,
			VATRate:      in.VATRate,
			PaymentTerm:  strings.TrimSpace(in.PaymentTerm),
		})
	}
	return lines, nil
}

var hundred = decimal.NewFromInt(100)

// recalculate derives line and header totals from quantities and prices
func (inv *Invoice) recalculate() {
	total := decimal.Zero
	vat := decimal.Zero
	for i := range inv.Lines {
		l := &inv.Lines[i]
		l.LineTotal = l.Quantity.Mul(l.UnitPrice).Round(2)
		l.LineVAT = l.LineTotal.Mul(decimal.NewFromInt(int64(l.VATRate))).Div(hundred).Round(2)
		l.LineNetTotal = l.LineTotal.Add(l.LineVAT)
		total = total.Add(l.LineTotal)
		vat = vat.Add(l.LineVAT)
	}
	inv.Total = total
	inv.TotalVAT = vat
	inv.NetTotal = total.Add(vat)
}

// AttachSnapshot freezes the account display fields on the invoice
func (inv *Invoice) AttachSnapshot(snap account.Snapshot) {
	inv.AccountSnapshot = &snap
}

// LineTerm returns the first payment term set on any line
func (inv *Invoice) LineTerm() string {
	for i := range inv.Lines {
		if inv.Lines[i].PaymentTerm != "" {
			return inv.Lines[i].PaymentTerm
		}
	}
	return ""
}

// SnapshotTerm returns the payment term frozen in the account snapshot
func (inv *Invoice) SnapshotTerm() string {
	if inv.AccountSnapshot == nil {
		return ""
	}
	return inv.AccountSnapshot.PaymentTerm
}

// StockLines returns the lines that move stock, in order
func (inv *Invoice) StockLines() []Line {
	out := make([]Line, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		if l.HasStockEffect() {
			out = append(out, l)
		}
	}
	return out
}

// Update holds a partial edit; nil fields are left unchanged
type Update struct {
	Date   *time.Time
	Kind   *Kind
	Status *Status
	Note   *string
	Lines  []LineInput
}

// ApplyUpdate edits header fields and lines and recomputes the invoice's own
// totals. Stock and account totals booked at creation are not revisited.
func (inv *Invoice) ApplyUpdate(u Update, actor Actor) error {
	if u.Kind != nil && !u.Kind.IsValid() {
		return shared.NewValidationError("invoice kind %q is not valid", *u.Kind)
	}
	if u.Status != nil && !u.Status.IsValid() {
		return shared.NewValidationError("invoice status %q is not valid", *u.Status)
	}
	var lines []Line
	if u.Lines != nil {
		var err error
		if lines, err = buildLines(u.Lines); err != nil {
			return err
		}
	}

	if u.Date != nil {
		inv.Date = *u.Date
	}
	if u.Kind != nil {
		inv.Kind = *u.Kind
	}
	if u.Status != nil {
		inv.Status = *u.Status
	}
	if u.Note != nil {
		inv.Note = *u.Note
	}
	if lines != nil {
		inv.Lines = lines
	}
	inv.recalculate()
	inv.LastModifiedBy = actor.ID
	inv.LastModifiedByName = actor.Name
	inv.Touch()
	return nil
}
