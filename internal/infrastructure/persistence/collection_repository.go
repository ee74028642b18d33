package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/collection"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCollectionRepository implements CollectionRepository using GORM
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// FindByID finds a collection by its ID
func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*collection.Collection, error) {
	var model models.CollectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find collection", "collection", id.String(), err)
	}
	return model.ToDomain(), nil
}

// FindByAccount returns the collections of one account, newest first
func (r *GormCollectionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]collection.Collection, error) {
	var rows []models.CollectionModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("date DESC").Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, shared.NewStorageError("find collections by account", err)
	}
	return collectionsToDomain(rows), nil
}

// FindForStatement returns the collections of the given accounts in range, oldest first
func (r *GormCollectionRepository) FindForStatement(ctx context.Context, filter collection.Filter) ([]collection.Collection, error) {
	if len(filter.AccountIDs) == 0 {
		return []collection.Collection{}, nil
	}
	query := r.db.WithContext(ctx).Where("account_id IN ?", filter.AccountIDs)
	var rows []models.CollectionModel
	if err := applyDateRange(query, "date", filter.Range).
		Order("date ASC").Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, shared.NewStorageError("find collections for statement", err)
	}
	return collectionsToDomain(rows), nil
}

// Create inserts a collection
func (r *GormCollectionRepository) Create(ctx context.Context, c *collection.Collection) error {
	if err := r.db.WithContext(ctx).Create(models.CollectionModelFromDomain(c)).Error; err != nil {
		return translateError("create collection", "collection", c.ID.String(), err)
	}
	return nil
}

// Delete removes a collection permanently
func (r *GormCollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CollectionModel{}, "id = ?", id)
	if result.Error != nil {
		return shared.NewStorageError("delete collection", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("collection", id.String())
	}
	return nil
}

func collectionsToDomain(rows []models.CollectionModel) []collection.Collection {
	out := make([]collection.Collection, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormCollectionRepository implements CollectionRepository
var _ collection.CollectionRepository = (*GormCollectionRepository)(nil)
