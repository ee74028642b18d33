package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/material"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*material.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find material", "material", id.String(), err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a material by its normalized code
func (r *GormMaterialRepository) FindByCode(ctx context.Context, code string) (*material.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, translateError("find material by code", "material", code, err)
	}
	return model.ToDomain(), nil
}

// FindByCodePrefix returns materials whose code starts with prefix, ordered by code
func (r *GormMaterialRepository) FindByCodePrefix(ctx context.Context, prefix string, limit int) ([]material.Material, error) {
	if prefix == "" {
		return []material.Material{}, nil
	}
	query := r.db.WithContext(ctx).
		Where("code LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("code ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.MaterialModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, shared.NewStorageError("find materials by code prefix", err)
	}
	return materialsToDomain(rows), nil
}

// ExistsByCode reports whether a material with the exact code exists
func (r *GormMaterialRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MaterialModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, shared.NewStorageError("check material code", err)
	}
	return count > 0, nil
}

// FindAll lists materials with search and pagination and returns the total match count
func (r *GormMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]material.Material, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialModel{})
	if p := searchPattern(filter.Search); p != "" {
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", p, p)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, shared.NewStorageError("count materials", err)
	}

	var rows []models.MaterialModel
	if err := paginate(query, filter, MaterialSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, shared.NewStorageError("list materials", err)
	}
	return materialsToDomain(rows), total, nil
}

// Create inserts a new material
func (r *GormMaterialRepository) Create(ctx context.Context, m *material.Material) error {
	model := models.MaterialModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError("create material", "material", m.Code, err)
	}
	return nil
}

// SaveWithLock persists the mutable fields only when the stored version is
// m.Version-1. A concurrent writer makes it fail with a concurrency conflict.
func (r *GormMaterialRepository) SaveWithLock(ctx context.Context, m *material.Material) error {
	result := r.db.WithContext(ctx).Model(&models.MaterialModel{}).
		Where("id = ? AND version = ?", m.ID, m.Version-1).
		Updates(map[string]any{
			"name":              m.Name,
			"unit":              m.Unit,
			"stock":             m.Stock,
			"unit_price":        m.UnitPrice,
			"vat_rate":          m.VATRate,
			"current_buy_price": m.CurrentBuyPrice,
			"average_cost":      m.AverageCost,
			"note":              m.Note,
			"version":           m.Version,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return shared.NewStorageError("save material", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("material", m.Code)
	}
	return nil
}

func materialsToDomain(rows []models.MaterialModel) []material.Material {
	out := make([]material.Material, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GormMovementRepository implements the append-only MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts a movement row
func (r *GormMovementRepository) Append(ctx context.Context, mv *material.StockMovement) error {
	if mv == nil {
		return errors.New("nil stock movement")
	}
	if err := r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(mv)).Error; err != nil {
		return shared.NewStorageError("append stock movement", err)
	}
	return nil
}

// FindByMaterial returns movements of one material oldest first
func (r *GormMovementRepository) FindByMaterial(ctx context.Context, materialID uuid.UUID) ([]material.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, shared.NewStorageError("find stock movements", err)
	}
	out := make([]material.StockMovement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CountByRef counts movements caused by one source document
func (r *GormMovementRepository) CountByRef(ctx context.Context, kind material.RefKind, refID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).
		Where("ref_kind = ? AND ref_id = ?", string(kind), refID).
		Count(&count).Error; err != nil {
		return 0, shared.NewStorageError("count stock movements", err)
	}
	return count, nil
}

// Ensure the GORM repositories implement the domain interfaces
var (
	_ material.MaterialRepository = (*GormMaterialRepository)(nil)
	_ material.MovementRepository = (*GormMovementRepository)(nil)
)
