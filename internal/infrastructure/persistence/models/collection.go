package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/collection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionModel is the persistence model for a collection
type CollectionModel struct {
	BaseModel
	AccountID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_collection_account_date,priority:1"`
	AccountName        string          `gorm:"type:varchar(200)"`
	Date               time.Time       `gorm:"not null;index:idx_collection_account_date,priority:2"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentMethod      string          `gorm:"type:varchar(30);not null"`
	CashOrBank         string          `gorm:"type:varchar(100)"`
	Note               string          `gorm:"type:text"`
	DueDate            *time.Time
	DocumentNo         string          `gorm:"type:varchar(50)"`
	OldBalance         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NewBalance         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreatedBy          string          `gorm:"type:varchar(100)"`
	CreatedByName      string          `gorm:"type:varchar(200)"`
	LastModifiedBy     string          `gorm:"type:varchar(100)"`
	LastModifiedByName string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CollectionModel) TableName() string {
	return "collections"
}

// ToDomain converts the persistence model to a domain Collection
func (m *CollectionModel) ToDomain() *collection.Collection {
	return &collection.Collection{
		BaseEntity:         m.BaseModel.ToDomain(),
		AccountID:          m.AccountID,
		AccountName:        m.AccountName,
		Date:               m.Date,
		Amount:             m.Amount,
		PaymentMethod:      collection.PaymentMethod(m.PaymentMethod),
		CashOrBank:         m.CashOrBank,
		Note:               m.Note,
		DueDate:            m.DueDate,
		DocumentNo:         m.DocumentNo,
		OldBalance:         m.OldBalance,
		NewBalance:         m.NewBalance,
		CreatedBy:          m.CreatedBy,
		CreatedByName:      m.CreatedByName,
		LastModifiedBy:     m.LastModifiedBy,
		LastModifiedByName: m.LastModifiedByName,
	}
}

// CollectionModelFromDomain creates a persistence model from a domain Collection
func CollectionModelFromDomain(c *collection.Collection) *CollectionModel {
	m := &CollectionModel{
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
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
