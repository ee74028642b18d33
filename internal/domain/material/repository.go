package material

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// MaterialRepository persists the Material aggregate
type MaterialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	// FindByCode matches the normalized code exactly
	FindByCode(ctx context.Context, code string) (*Material, error)
	// FindByCodePrefix returns materials whose code starts with prefix, ordered by code
	FindByCodePrefix(ctx context.Context, prefix string, limit int) ([]Material, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, int64, error)
	Create(ctx context.Context, m *Material) error
	// SaveWithLock persists stock and cost only if the stored version is m.Version-1
	SaveWithLock(ctx context.Context, m *Material) error
}

// MovementRepository is the append-only stock movement ledger
type MovementRepository interface {
	Append(ctx context.Context, mv *StockMovement) error
	// FindByMaterial returns movements oldest first
	FindByMaterial(ctx context.Context, materialID uuid.UUID) ([]StockMovement, error)
	CountByRef(ctx context.Context, kind RefKind, refID string) (int64, error)
}
