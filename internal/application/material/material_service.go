package material

import (
	"context"
	"strings"
	"time"

	"github.com/erp/ledger/internal/application/txscope"
	"github.com/erp/ledger/internal/domain/material"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaterialService owns the material catalog, stock levels, weighted-average
// cost and the movement ledger
type MaterialService struct {
	materials   material.MaterialRepository
	movements   material.MovementRepository
	scope       txscope.TransactionScope
	maxAttempts int
	now         func() time.Time
	metrics     *telemetry.LedgerMetrics
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	materials material.MaterialRepository,
	movements material.MovementRepository,
	scope txscope.TransactionScope,
) *MaterialService {
	return &MaterialService{
		materials:   materials,
		movements:   movements,
		scope:       scope,
		maxAttempts: txscope.DefaultMaxAttempts,
		now:         time.Now,
	}
}

// SetMaxAttempts sets how often a unit of work is retried on a version conflict
func (s *MaterialService) SetMaxAttempts(n int) {
	if n > 0 {
		s.maxAttempts = n
	}
}

// SetMetrics sets the ledger metrics recorder
func (s *MaterialService) SetMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetClock overrides the time source used for code fallbacks
func (s *MaterialService) SetClock(now func() time.Time) {
	s.now = now
}

// GenerateCode returns the code a material with this name would receive now
func (s *MaterialService) GenerateCode(ctx context.Context, name string) (string, error) {
	return material.GenerateCode(ctx, name, s.codeExists(s.materials), s.now)
}

func (s *MaterialService) codeExists(repo material.MaterialRepository) material.CodeExistsFunc {
	return func(ctx context.Context, code string) (bool, error) {
		return repo.ExistsByCode(ctx, code)
	}
}

// CreateMaterial stores a new material. An explicit code must be unique;
// otherwise a free code is generated from the name. Opening stock, if any,
// is booked as an IN movement in the same transaction.
func (s *MaterialService) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, shared.NewValidationError("material name is required")
	}
	if strings.TrimSpace(req.Unit) == "" {
		return nil, shared.NewValidationError("material unit is required")
	}
	if req.OpeningStock != nil && req.OpeningStock.IsNegative() {
		return nil, shared.NewValidationError("opening stock cannot be negative")
	}

	explicit := material.NormalizeCode(req.Code)
	var created *material.Material
	err := txscope.ExecuteWithRetry(ctx, s.scope, s.maxAttempts, "create_material", func(repos txscope.Repositories) error {
		code := explicit
		if code != "" {
			taken, err := repos.Materials().ExistsByCode(ctx, code)
			if err != nil {
				return err
			}
			if taken {
				return shared.NewAlreadyExistsError("material code %q already exists", code)
			}
		} else {
			generated, err := material.GenerateCode(ctx, req.Name, s.codeExists(repos.Materials()), s.now)
			if err != nil {
				return err
			}
			code = generated
		}

		m, err := material.NewMaterial(code, req.Name, req.Unit)
		if err != nil {
			return err
		}
		if err := m.SetPricing(req.UnitPrice, req.VATRate); err != nil {
			return err
		}
		m.Note = req.Note

		if err := repos.Materials().Create(ctx, m); err != nil {
			return err
		}

		if req.OpeningStock != nil && req.OpeningStock.IsPositive() {
			cost := decimal.Zero
			if req.OpeningCost != nil {
				cost = *req.OpeningCost
			}
			if _, err := addStock(ctx, repos, m, *req.OpeningStock, cost, material.Reference{Kind: material.RefOpening, ID: m.ID.String()}); err != nil {
				return err
			}
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Material created",
		zap.String("material_id", created.ID.String()),
		zap.String("code", created.Code),
		zap.Bool("generated_code", explicit == ""),
	)
	resp := ToMaterialResponse(created)
	return &resp, nil
}

// ReduceStock deducts stock from the material found by code (with legacy
// fallback). Stock that is already negative accepts any further deduction.
func (s *MaterialService) ReduceStock(ctx context.Context, req ReduceStockRequest) (*MovementResponse, error) {
	ref := material.Reference{Kind: refKindOr(req.RefKind, material.RefManual), ID: req.RefID, Note: req.Note}

	var mv *material.StockMovement
	err := txscope.ExecuteWithRetry(ctx, s.scope, s.maxAttempts, "reduce_stock", func(repos txscope.Repositories) error {
		var err error
		mv, err = ReduceStockInTx(ctx, repos, req.Code, req.Quantity, ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordMovement(ctx, mv)
	resp := ToMovementResponse(mv)
	return &resp, nil
}

// AddStockWithCost books a receipt and recomputes the weighted-average cost
func (s *MaterialService) AddStockWithCost(ctx context.Context, req AddStockRequest) (*MovementResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewValidationError("quantity must be greater than zero")
	}
	ref := material.Reference{Kind: refKindOr(req.RefKind, material.RefStockIn), ID: req.RefID, Note: req.Note}

	var mv *material.StockMovement
	err := txscope.ExecuteWithRetry(ctx, s.scope, s.maxAttempts, "add_stock", func(repos txscope.Repositories) error {
		m, err := repos.Materials().FindByID(ctx, req.MaterialID)
		if err != nil {
			return err
		}
		mv, err = addStock(ctx, repos, m, req.Quantity, req.UnitPrice, ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordMovement(ctx, mv)
	resp := ToMovementResponse(mv)
	return &resp, nil
}

// GetMaterial returns a material by id
func (s *MaterialService) GetMaterial(ctx context.Context, id uuid.UUID) (*MaterialResponse, error) {
	m, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMaterialResponse(m)
	return &resp, nil
}

// ListMaterials returns a page of materials
func (s *MaterialService) ListMaterials(ctx context.Context, f ListMaterialsFilter) (shared.Paginated[MaterialResponse], error) {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}

	items, total, err := s.materials.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[MaterialResponse]{}, err
	}
	out := make([]MaterialResponse, len(items))
	for i := range items {
		out[i] = ToMaterialResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// ListMovements returns the movement ledger of a material, oldest first
func (s *MaterialService) ListMovements(ctx context.Context, materialID uuid.UUID) ([]MovementResponse, error) {
	if _, err := s.materials.FindByID(ctx, materialID); err != nil {
		return nil, err
	}
	mvs, err := s.movements.FindByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	out := make([]MovementResponse, len(mvs))
	for i := range mvs {
		out[i] = ToMovementResponse(&mvs[i])
	}
	return out, nil
}

// ReconcileStock replays the movement ledger against the material row
func (s *MaterialService) ReconcileStock(ctx context.Context, materialID uuid.UUID) (*material.Reconciliation, error) {
	m, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	mvs, err := s.movements.FindByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	rec := material.Reconcile(m, mvs)
	if !rec.Balanced {
		logger.L(ctx).Warn("Stock ledger out of balance",
			zap.String("material_id", m.ID.String()),
			zap.String("current_stock", rec.CurrentStock.String()),
			zap.String("ledger_stock", rec.LedgerStock.String()),
		)
	}
	return &rec, nil
}

func (s *MaterialService) recordMovement(ctx context.Context, mv *material.StockMovement) {
	logger.L(ctx).Info("Stock movement appended",
		zap.String("material_id", mv.MaterialID.String()),
		zap.String("kind", string(mv.Kind)),
		zap.String("quantity", mv.Quantity.String()),
		zap.String("resulting_stock", mv.ResultingStock.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordStockMovement(ctx, string(mv.Kind), string(mv.RefKind))
	}
}

func refKindOr(kind string, fallback material.RefKind) material.RefKind {
	if k := strings.TrimSpace(kind); k != "" {
		return material.RefKind(strings.ToUpper(k))
	}
	return fallback
}
