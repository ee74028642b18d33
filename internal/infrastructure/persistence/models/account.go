package models

import (
	"github.com/erp/ledger/internal/domain/account"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account aggregate
type AccountModel struct {
	AggregateModel
	LegalName       string          `gorm:"type:varchar(200);not null;index"`
	TaxID           string          `gorm:"column:tax_id;type:varchar(32);not null"`
	TaxIDHash       string          `gorm:"column:tax_id_hash;type:varchar(64);not null;uniqueIndex"`
	Phone           string          `gorm:"type:varchar(50);not null"`
	Email           string          `gorm:"type:varchar(200);not null"`
	Address         string          `gorm:"type:text;not null"`
	City            string          `gorm:"type:varchar(100)"`
	AggregateDebit  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AggregateCredit decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status          string          `gorm:"type:varchar(20);not null;default:'active'"`
	PaymentTerm     string          `gorm:"type:varchar(50)"`
	Contact         account.Contact `gorm:"type:text;serializer:json"`
	Notes           []account.Note  `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *account.Account {
	notes := m.Notes
	if notes == nil {
		notes = []account.Note{}
	}
	return &account.Account{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		LegalName:         m.LegalName,
		TaxID:             m.TaxID,
		TaxIDHash:         m.TaxIDHash,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
		City:              m.City,
		AggregateDebit:    m.AggregateDebit,
		AggregateCredit:   m.AggregateCredit,
		Status:            account.Status(m.Status),
		PaymentTerm:       m.PaymentTerm,
		Contact:           m.Contact,
		Notes:             notes,
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *account.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.LegalName = a.LegalName
	m.TaxID = a.TaxID
	m.TaxIDHash = a.TaxIDHash
	m.Phone = a.Phone
	m.Email = a.Email
	m.Address = a.Address
	m.City = a.City
	m.AggregateDebit = a.AggregateDebit
	m.AggregateCredit = a.AggregateCredit
	m.Status = string(a.Status)
	m.PaymentTerm = a.PaymentTerm
	m.Contact = a.Contact
	m.Notes = a.Notes
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *account.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}
