package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find account", "account", id.String(), err)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the accounts that exist among ids, in no particular order
func (r *GormAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]account.Account, error) {
	if len(ids) == 0 {
		return []account.Account{}, nil
	}
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, shared.NewStorageError("find accounts", err)
	}
	return accountsToDomain(rows), nil
}

// ExistsByTaxIDHash reports whether an account already uses the hashed tax id
func (r *GormAccountRepository) ExistsByTaxIDHash(ctx context.Context, hash string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Where("tax_id_hash = ?", hash).
		Count(&count).Error; err != nil {
		return false, shared.NewStorageError("check account tax id", err)
	}
	return count > 0, nil
}

// FindAll lists accounts with search and pagination and returns the total match count
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]account.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{})
	if p := searchPattern(filter.Search); p != "" {
		query = query.Where("LOWER(legal_name) LIKE ? OR LOWER(city) LIKE ? OR LOWER(email) LIKE ?", p, p, p)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, shared.NewStorageError("count accounts", err)
	}

	var rows []models.AccountModel
	if err := paginate(query, filter, AccountSortFields, "legal_name").Find(&rows).Error; err != nil {
		return nil, 0, shared.NewStorageError("list accounts", err)
	}
	return accountsToDomain(rows), total, nil
}

// Create inserts a new account
func (r *GormAccountRepository) Create(ctx context.Context, a *account.Account) error {
	if err := r.db.WithContext(ctx).Create(models.AccountModelFromDomain(a)).Error; err != nil {
		return translateError("create account", "account", a.LegalName, err)
	}
	return nil
}

// IncrementDebit adds amount to aggregate_debit in one UPDATE statement
func (r *GormAccountRepository) IncrementDebit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.increment(ctx, id, "aggregate_debit", amount)
}

// IncrementCredit adds amount to aggregate_credit in one UPDATE statement
func (r *GormAccountRepository) IncrementCredit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.increment(ctx, id, "aggregate_credit", amount)
}

// increment adds amount to column without reading it first
func (r *GormAccountRepository) increment(ctx context.Context, id uuid.UUID, column string, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			column:       gorm.Expr(column+" + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return shared.NewStorageError("increment account "+column, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("account", id.String())
	}
	return nil
}

func accountsToDomain(rows []models.AccountModel) []account.Account {
	out := make([]account.Account, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormAccountRepository implements AccountRepository
var _ account.AccountRepository = (*GormAccountRepository)(nil)
