package txscope

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds retries of a unit of work that lost an optimistic lock
const DefaultMaxAttempts = 3

// ExecuteWithRetry runs fn in a fresh transaction and repeats the whole unit
// when it fails with a concurrency conflict, up to attempts times.
func ExecuteWithRetry(ctx context.Context, scope TransactionScope, attempts int, op string, fn func(repos Repositories) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = scope.Execute(ctx, fn)
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		logger.L(ctx).Warn("Concurrency conflict, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*10) * time.Millisecond):
		}
	}
	return err
}
