package material

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/application/txscope"
	"github.com/erp/ledger/internal/domain/material"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// legacyCandidateLimit bounds the prefix scan of legacy code resolution
const legacyCandidateLimit = 200

// ResolveByCode finds a material by its normalized code. When no exact match
// exists it falls back to legacy code resolution.
func ResolveByCode(ctx context.Context, repo material.MaterialRepository, code string) (*material.Material, error) {
	normalized := material.NormalizeCode(code)
	if normalized == "" {
		return nil, shared.NewValidationError("material code is required")
	}

	m, err := repo.FindByCode(ctx, normalized)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return resolveLegacyCode(ctx, repo, normalized)
}

// resolveLegacyCode recovers a material whose stored code carries a collision
// counter the caller does not know about, or lost one the caller still uses.
// It strips trailing digits and searches by prefix.
func resolveLegacyCode(ctx context.Context, repo material.MaterialRepository, code string) (*material.Material, error) {
	base := material.LegacyBaseCode(code)
	if base == "" {
		return nil, shared.NewNotFoundError("material", code)
	}
	candidates, err := repo.FindByCodePrefix(ctx, base, legacyCandidateLimit)
	if err != nil {
		return nil, err
	}
	m := material.PickLegacyMatch(base, candidates)
	if m == nil {
		return nil, shared.NewNotFoundError("material", code)
	}
	logger.L(ctx).Warn("Material resolved through legacy code",
		zap.String("requested_code", code),
		zap.String("resolved_code", m.Code),
	)
	return m, nil
}

// reduceStock applies an outbound movement to m inside repos and appends it to the ledger
func reduceStock(ctx context.Context, repos txscope.Repositories, m *material.Material, qty decimal.Decimal, ref material.Reference) (*material.StockMovement, error) {
	mv, err := m.ReduceStock(qty, ref)
	if err != nil {
		return nil, err
	}
	if err := repos.Materials().SaveWithLock(ctx, m); err != nil {
		return nil, err
	}
	if err := repos.Movements().Append(ctx, mv); err != nil {
		return nil, err
	}
	return mv, nil
}

// addStock applies an inbound movement to m inside repos and appends it to the ledger
func addStock(ctx context.Context, repos txscope.Repositories, m *material.Material, qty, unitPrice decimal.Decimal, ref material.Reference) (*material.StockMovement, error) {
	mv, err := m.AddStock(qty, unitPrice, ref)
	if err != nil {
		return nil, err
	}
	if err := repos.Materials().SaveWithLock(ctx, m); err != nil {
		return nil, err
	}
	if err := repos.Movements().Append(ctx, mv); err != nil {
		return nil, err
	}
	return mv, nil
}

// ReduceStockInTx resolves code and deducts qty within an existing unit of work.
// Callers coordinating several writes (invoices) use it so the deduction
// commits or rolls back with the rest of their transaction.
func ReduceStockInTx(ctx context.Context, repos txscope.Repositories, code string, qty decimal.Decimal, ref material.Reference) (*material.StockMovement, error) {
	m, err := ResolveByCode(ctx, repos.Materials(), code)
	if err != nil {
		return nil, err
	}
	return reduceStock(ctx, repos, m, qty, ref)
}
