package persistence

import (
	"errors"

	"github.com/erp/ledger/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver and GORM errors onto the domain error taxonomy.
// entity and key describe the row for not-found and duplicate messages.
func translateError(op, entity, key string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(entity, key)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewAlreadyExistsError("%s %q already exists", entity, key)
	default:
		return shared.NewStorageError(op, err)
	}
}
