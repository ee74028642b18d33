package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM.
// Lines live in invoice_lines and are always loaded with their header.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find invoice", "invoice", id.String(), err)
	}
	return model.ToDomain(), nil
}

// FindAll lists invoices with filters and pagination and returns the total match count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoice.Filter) ([]invoice.Invoice, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, shared.NewStorageError("count invoices", err)
	}

	var rows []models.InvoiceModel
	if err := paginate(query, filter.Filter, InvoiceSortFields, "date").
		Preload("Lines", preloadLines).
		Find(&rows).Error; err != nil {
		return nil, 0, shared.NewStorageError("list invoices", err)
	}
	return invoicesToDomain(rows), total, nil
}

// FindForStatement returns every matching invoice ordered by date, unpaged
func (r *GormInvoiceRepository) FindForStatement(ctx context.Context, filter invoice.Filter) ([]invoice.Invoice, error) {
	if len(filter.AccountIDs) == 0 {
		return []invoice.Invoice{}, nil
	}
	var rows []models.InvoiceModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Order("date ASC").Order("number ASC").
		Preload("Lines", preloadLines).
		Find(&rows).Error; err != nil {
		return nil, shared.NewStorageError("find invoices for statement", err)
	}
	return invoicesToDomain(rows), nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoice.Filter) *gorm.DB {
	if len(filter.AccountIDs) > 0 {
		query = query.Where("account_id IN ?", filter.AccountIDs)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}
	if p := searchPattern(filter.Search); p != "" {
		query = query.Where("LOWER(number) LIKE ? OR LOWER(note) LIKE ?", p, p)
	}
	return applyDateRange(query, "date", filter.Range)
}

// NumbersForYear returns the stored numbers of one kind dated in year
func (r *GormInvoiceRepository) NumbersForYear(ctx context.Context, kind invoice.Kind, year int) ([]string, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("kind = ? AND date >= ? AND date < ?", string(kind), from, from.AddDate(1, 0, 0)).
		Pluck("number", &numbers).Error; err != nil {
		return nil, shared.NewStorageError("list invoice numbers", err)
	}
	return numbers, nil
}

// Create inserts the invoice header and its lines
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error; err != nil {
		return translateError("create invoice", "invoice", inv.Number, err)
	}
	return nil
}

// SaveWithLock replaces header and lines when the stored version is inv.Version-1.
// Callers run it inside a transaction so the line swap is atomic.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Updates(map[string]any{
			"date":                  model.Date,
			"kind":                  model.Kind,
			"total":                 model.Total,
			"total_vat":             model.TotalVAT,
			"net_total":             model.NetTotal,
			"status":                model.Status,
			"note":                  model.Note,
			"last_modified_by":      model.LastModifiedBy,
			"last_modified_by_name": model.LastModifiedByName,
			"version":               inv.Version,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return shared.NewStorageError("save invoice", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("invoice", inv.Number)
	}

	if err := db.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLineModel{}).Error; err != nil {
		return shared.NewStorageError("replace invoice lines", err)
	}
	if len(model.Lines) > 0 {
		if err := db.Create(&model.Lines).Error; err != nil {
			return shared.NewStorageError("replace invoice lines", err)
		}
	}
	return nil
}

func invoicesToDomain(rows []models.InvoiceModel) []invoice.Invoice {
	out := make([]invoice.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// applyDateRange keeps rows whose column falls on a day inside r, both ends inclusive
func applyDateRange(query *gorm.DB, column string, r shared.DateRange) *gorm.DB {
	if !r.From.IsZero() {
		query = query.Where(column+" >= ?", startOfDay(r.From))
	}
	if !r.To.IsZero() {
		query = query.Where(column+" < ?", startOfDay(r.To).AddDate(0, 0, 1))
	}
	return query
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// GormCounterRepository implements CounterRepository on the document_counters table
type GormCounterRepository struct {
	db *gorm.DB
}

// NewGormCounterRepository creates a new GormCounterRepository
func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

const counterWhere = "kind = ? AND year = ?"

// ensure creates a missing (kind, year) counter from seed
func (r *GormCounterRepository) ensure(ctx context.Context, db *gorm.DB, kind invoice.Kind, year int, seed invoice.SeedFunc) error {
	var row models.DocumentCounterModel
	err := db.Where(counterWhere, string(kind), year).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		start := int64(0)
		if seed != nil {
			if start, err = seed(ctx); err != nil {
				return err
			}
		}
		row = models.DocumentCounterModel{Kind: string(kind), Year: year, Value: start, UpdatedAt: time.Now()}
		err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	}
	if err != nil {
		return shared.NewStorageError("load document counter", err)
	}
	return nil
}

// Next increments the (kind, year) counter and returns the new value.
// A missing counter is created from seed first, so the first value is seed+1.
func (r *GormCounterRepository) Next(ctx context.Context, kind invoice.Kind, year int, seed invoice.SeedFunc) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := r.ensure(ctx, db, kind, year, seed); err != nil {
		return 0, err
	}

	if err := db.Model(&models.DocumentCounterModel{}).
		Where(counterWhere, string(kind), year).
		Updates(map[string]any{
			"value":      gorm.Expr("value + 1"),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return 0, shared.NewStorageError("increment document counter", err)
	}
	var row models.DocumentCounterModel
	if err := db.Where(counterWhere, string(kind), year).Take(&row).Error; err != nil {
		return 0, shared.NewStorageError("read document counter", err)
	}
	return row.Value, nil
}

// Raise lifts the (kind, year) counter to value unless it already stands higher.
func (r *GormCounterRepository) Raise(ctx context.Context, kind invoice.Kind, year int, value int64, seed invoice.SeedFunc) error {
	db := r.db.WithContext(ctx)
	if err := r.ensure(ctx, db, kind, year, seed); err != nil {
		return err
	}

	if err := db.Model(&models.DocumentCounterModel{}).
		Where(counterWhere+" AND value < ?", string(kind), year, value).
		Updates(map[string]any{
			"value":      value,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return shared.NewStorageError("raise document counter", err)
	}
	return nil
}

// Ensure the GORM repositories implement the domain interfaces
var (
	_ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)
	_ invoice.CounterRepository = (*GormCounterRepository)(nil)
)
