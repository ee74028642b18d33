package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate header
type InvoiceModel struct {
	AggregateModel
	Number             string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Date               time.Time          `gorm:"not null;index"`
	Kind               string             `gorm:"type:varchar(20);not null;index"`
	AccountID          *uuid.UUID         `gorm:"type:uuid;index"`
	Total              decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	TotalVAT           decimal.Decimal    `gorm:"column:total_vat;type:decimal(18,2);not null;default:0"`
	NetTotal           decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Status             string             `gorm:"type:varchar(20);not null;default:'issued'"`
	AccountSnapshot    *account.Snapshot  `gorm:"type:text;serializer:json"`
	Note               string             `gorm:"type:text"`
	CreatedBy          string             `gorm:"type:varchar(100)"`
	CreatedByName      string             `gorm:"type:varchar(200)"`
	LastModifiedBy     string             `gorm:"type:varchar(100)"`
	LastModifiedByName string             `gorm:"type:varchar(200)"`
	Lines              []InvoiceLineModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	lines := make([]invoice.Line, len(m.Lines))
	for i := range m.Lines {
		lines[i] = m.Lines[i].ToDomain()
	}
	return &invoice.Invoice{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		Number:             m.Number,
		Date:               m.Date,
		Kind:               invoice.Kind(m.Kind),
		AccountID:          m.AccountID,
		Lines:              lines,
		Total:              m.Total,
		TotalVAT:           m.TotalVAT,
		NetTotal:           m.NetTotal,
		Status:             invoice.Status(m.Status),
		AccountSnapshot:    m.AccountSnapshot,
		Note:               m.Note,
		CreatedBy:          m.CreatedBy,
		CreatedByName:      m.CreatedByName,
		LastModifiedBy:     m.LastModifiedBy,
		LastModifiedByName: m.LastModifiedByName,
	}
}

// FromDomain populates the persistence model from a domain Invoice, lines included
func (m *InvoiceModel) FromDomain(inv *invoice.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.Number = inv.Number
	m.Date = inv.Date
	m.Kind = string(inv.Kind)
	m.AccountID = inv.AccountID
	m.Total = inv.Total
	m.TotalVAT = inv.TotalVAT
	m.NetTotal = inv.NetTotal
	m.Status = string(inv.Status)
	m.AccountSnapshot = inv.AccountSnapshot
	m.Note = inv.Note
	m.CreatedBy = inv.CreatedBy
	m.CreatedByName = inv.CreatedByName
	m.LastModifiedBy = inv.LastModifiedBy
	m.LastModifiedByName = inv.LastModifiedByName
	m.Lines = make([]InvoiceLineModel, len(inv.Lines))
	for i := range inv.Lines {
		m.Lines[i] = InvoiceLineModelFromDomain(inv.ID, inv.Lines[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceLineModel is one stored invoice row
type InvoiceLineModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_line_no,priority:1"`
	LineNo       int             `gorm:"not null;uniqueIndex:idx_invoice_line_no,priority:2"`
	MaterialCode string          `gorm:"type:varchar(64);index"`
	MaterialName string          `gorm:"type:varchar(200)"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit         string          `gorm:"type:varchar(20)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VATRate      int             `gorm:"column:vat_rate;not null;default:0"`
	PaymentTerm  string          `gorm:"type:varchar(50)"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineVAT      decimal.Decimal `gorm:"column:line_vat;type:decimal(18,2);not null;default:0"`
	LineNetTotal decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain Line
func (m *InvoiceLineModel) ToDomain() invoice.Line {
	return invoice.Line{
		LineNo:       m.LineNo,
		MaterialCode: m.MaterialCode,
		MaterialName: m.MaterialName,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		UnitPrice:    m.UnitPrice,
		VATRate:      m.VATRate,
		PaymentTerm:  m.PaymentTerm,
		LineTotal:    m.LineTotal,
		LineVAT:      m.LineVAT,
		LineNetTotal: m.LineNetTotal,
	}
}

// InvoiceLineModelFromDomain creates a line model owned by invoiceID
func InvoiceLineModelFromDomain(invoiceID uuid.UUID, l invoice.Line) InvoiceLineModel {
	return InvoiceLineModel{
		InvoiceID:    invoiceID,
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

// DocumentCounterModel holds the last handed-out sequence per kind and year
type DocumentCounterModel struct {
	Kind      string    `gorm:"type:varchar(20);primaryKey"`
	Year      int       `gorm:"primaryKey;autoIncrement:false"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentCounterModel) TableName() string {
	return "document_counters"
}
