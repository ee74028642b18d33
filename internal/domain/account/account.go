package account

import (
	"regexp"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the status of an account
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Contact holds secondary contact details for an account
type Contact struct {
	Person  string `json:"person,omitempty"`
	Title   string `json:"title,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
	Fax     string `json:"fax,omitempty"`
	Website string `json:"website,omitempty"`
}

// Note is a dated free-text remark on an account
type Note struct {
	At     time.Time `json:"at"`
	Author string    `json:"author,omitempty"`
	Text   string    `json:"text"`
}

// Account is a customer or supplier with running debit and credit totals.
// The totals are aggregates maintained by invoices and collections and are
// never recomputed from history.
type Account struct {
	shared.BaseAggregateRoot
	LegalName       string
	TaxID           string
	TaxIDHash       string
	Phone           string
	Email           string
	Address         string
	City            string
	AggregateDebit  decimal.Decimal
	AggregateCredit decimal.Decimal
	Status          Status
	PaymentTerm     string
	Contact         Contact
	Notes           []Note
}

// NewAccountInput carries the fields required to open an account
type NewAccountInput struct {
	LegalName   string
	TaxID       string
	Phone       string
	Email       string
	Address     string
	City        string
	PaymentTerm string
	Contact     Contact
}

// NewAccount validates input and creates an account with zero totals.
// taxIDHash must be computed by the caller with a TaxIDHasher.
func NewAccount(in NewAccountInput, taxIDHash string) (*Account, error) {
	in.LegalName = strings.TrimSpace(in.LegalName)
	in.TaxID = NormalizeTaxID(in.TaxID)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)

	required := []struct{ field, value string }{
		{"legal name", in.LegalName},
		{"tax id", in.TaxID},
		{"phone", in.Phone},
		{"email", in.Email},
		{"address", in.Address},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, shared.NewValidationError("account %s is required", r.field)
		}
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, shared.NewValidationError("account email %q is not valid", in.Email)
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LegalName:         in.LegalName,
		TaxID:             in.TaxID,
		TaxIDHash:         taxIDHash,
		Phone:             in.Phone,
		Email:             in.Email,
		Address:           in.Address,
		City:              strings.TrimSpace(in.City),
		AggregateDebit:    decimal.Zero,
		AggregateCredit:   decimal.Zero,
		Status:            StatusActive,
		PaymentTerm:       strings.TrimSpace(in.PaymentTerm),
		Contact:           in.Contact,
		Notes:             []Note{},
	}, nil
}

// Balance returns debit minus credit
func (a *Account) Balance() decimal.Decimal {
	return a.AggregateDebit.Sub(a.AggregateCredit)
}

// AddNote appends a remark
func (a *Account) AddNote(author, text string) {
	a.Notes = append(a.Notes, Note{At: time.Now(), Author: author, Text: text})
}

// MaskedTaxID shows only the last four characters of the tax id
func (a *Account) MaskedTaxID() string {
	return MaskTaxID(a.TaxID)
}

// Snapshot freezes the display fields of the account at this moment
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		SchemaVersion: SnapshotVersion,
		AccountID:     a.ID,
		LegalName:     a.LegalName,
		TaxID:         a.MaskedTaxID(),
		Phone:         a.Phone,
		Email:         a.Email,
		Address:       a.Address,
		City:          a.City,
		PaymentTerm:   a.PaymentTerm,
		TakenAt:       time.Now(),
	}
}

// SnapshotVersion is the current encoding version of Snapshot
const SnapshotVersion = 1

// Snapshot is a point-in-time copy of an account's display fields,
// embedded in documents so later account edits do not rewrite history.
type Snapshot struct {
	SchemaVersion int       `json:"v"`
	AccountID     uuid.UUID `json:"account_id"`
	LegalName     string    `json:"legal_name"`
	TaxID         string    `json:"tax_id"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	PaymentTerm   string    `json:"payment_term,omitempty"`
	TakenAt       time.Time `json:"taken_at"`
}

// NormalizeTaxID strips blanks and separators from a tax id
func NormalizeTaxID(taxID string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '/', '\t':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(taxID)))
}

// MaskTaxID replaces all but the last four characters with '*'
func MaskTaxID(taxID string) string {
	if len(taxID) <= 4 {
		return strings.Repeat("*", len(taxID))
	}
	return strings.Repeat("*", len(taxID)-4) + taxID[len(taxID)-4:]
}
