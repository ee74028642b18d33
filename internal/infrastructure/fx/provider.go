package fx

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
)

// Provider answers display rate lookups from the cache, refreshing from the
// fetcher on a miss and falling back to configured static rates. Static
// rates are always reported as stale.
type Provider struct {
	base    string
	ttl     time.Duration
	cache   Cache
	fetcher Fetcher
	static  *RateTable
	logger  *zap.Logger

	// serializes refreshes so a cold cache triggers one fetch
	refreshMu sync.Mutex
}

// ProviderOption is a functional option for configuring the provider
type ProviderOption func(*Provider)

// WithFetcher sets the remote rate source. Without one only static rates are served.
func WithFetcher(f Fetcher) ProviderOption {
	return func(p *Provider) {
		p.fetcher = f
	}
}

// WithLogger sets the logger for the provider
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = l
	}
}

// NewProvider creates a provider for cfg backed by cache
func NewProvider(cfg config.FXConfig, cache Cache, opts ...ProviderOption) *Provider {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	p := &Provider{
		base:   strings.ToUpper(cfg.BaseCurrency),
		ttl:    ttl,
		cache:  cache,
		static: staticTable(cfg.BaseCurrency, cfg.StaticRates),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Base returns the currency all rates are quoted against
func (p *Provider) Base() string {
	return p.base
}

// Rate returns how many units of currency one base unit buys
func (p *Provider) Rate(ctx context.Context, currency string) (decimal.Decimal, bool, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return decimal.Zero, false, fmt.Errorf("%w: empty currency", ErrRateUnavailable)
	}
	if currency == p.base {
		return decimal.NewFromInt(1), false, nil
	}

	table, err := p.cache.Get(ctx, p.base)
	if err != nil {
		logger.L(ctx).Warn("FX cache read failed", zap.Error(err))
	}
	if r, ok := table.Lookup(currency); ok {
		return r, false, nil
	}

	if p.fetcher != nil {
		table, err = p.Refresh(ctx)
		if err != nil {
			logger.L(ctx).Warn("FX refresh failed, using static rates",
				zap.String("currency", currency),
				zap.Error(err),
			)
		} else if r, ok := table.Lookup(currency); ok {
			return r, false, nil
		}
	}

	if r, ok := p.static.Lookup(currency); ok {
		return r, true, nil
	}
	return decimal.Zero, false, fmt.Errorf("%w: %s", ErrRateUnavailable, currency)
}

// Refresh fetches a new table and stores it in the cache
func (p *Provider) Refresh(ctx context.Context) (*RateTable, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("fx: no fetcher configured")
	}
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	table, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Set(ctx, table, p.ttl); err != nil {
		// the fetched table is still usable for this call
		p.logger.Warn("FX cache write failed", zap.Error(err))
	}
	p.logger.Debug("FX rates refreshed",
		zap.String("base", table.Base),
		zap.Int("currencies", len(table.Rates)),
	)
	return table, nil
}
