package fx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/ledger/internal/infrastructure/config"
)

func fxConfig(endpoint string) config.FXConfig {
	return config.FXConfig{
		Enabled:      true,
		Endpoint:     endpoint,
		BaseCurrency: "TRY",
		Currencies:   []string{"USD", "EUR"},
		Timeout:      2 * time.Second,
		CacheTTL:     time.Hour,
		StaticRates:  map[string]float64{"usd": 0.03, "gbp": 0.025},
	}
}

type stubFetcher struct {
	calls atomic.Int32
	table *RateTable
	err   error
}

func (s *stubFetcher) Fetch(context.Context) (*RateTable, error) {
	s.calls.Add(1)
	return s.table, s.err
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"TRY","rates":{"usd":0.03125,"EUR":"0.0275","XXX":0}}`))
	}))
	defer srv.Close()

	table, err := NewHTTPFetcher(fxConfig(srv.URL)).Fetch(context.Background())
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "base=TRY")
	assert.Contains(t, gotQuery, "symbols=USD%2CEUR")
	assert.Equal(t, "TRY", table.Base)
	assert.True(t, table.Rates["USD"].Equal(decimal.RequireFromString("0.03125")))
	assert.True(t, table.Rates["EUR"].Equal(decimal.RequireFromString("0.0275")))
	assert.NotContains(t, table.Rates, "XXX")
	assert.False(t, table.FetchedAt.IsZero())
}

func TestHTTPFetcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusUnauthorized, `{"message":"invalid key"}`, "invalid key"},
		{"wrong base", http.StatusOK, `{"base":"USD","rates":{"EUR":0.9}}`, "want TRY"},
		{"no rates", http.StatusOK, `{"base":"TRY","rates":{}}`, "no usable rates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPFetcher(fxConfig(srv.URL)).Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	miss, err := c.Get(ctx, "TRY")
	require.NoError(t, err)
	assert.Nil(t, miss)

	table := &RateTable{Base: "TRY", Rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("0.03")}}
	require.NoError(t, c.Set(ctx, table, time.Minute))

	got, err := c.Get(ctx, "try")
	require.NoError(t, err)
	assert.Same(t, table, got)

	now = now.Add(time.Minute)
	got, err = c.Get(ctx, "TRY")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewCache_FallsBackToMemory(t *testing.T) {
	_, ok := NewCache(config.RedisConfig{}, nil).(*MemoryCache)
	assert.True(t, ok)

	_, ok = NewCache(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, zap.NewNop()).(*MemoryCache)
	assert.True(t, ok)
}

func TestRateTable_Lookup(t *testing.T) {
	var nilTable *RateTable
	_, ok := nilTable.Lookup("USD")
	assert.False(t, ok)

	table := staticTable("try", map[string]float64{"usd": 0.03, "bad": -1})
	r, ok := table.Lookup("try")
	require.True(t, ok)
	assert.True(t, r.Equal(decimal.NewFromInt(1)))

	r, ok = table.Lookup("Usd")
	require.True(t, ok)
	assert.True(t, r.Equal(decimal.NewFromFloat(0.03)))

	_, ok = table.Lookup("BAD")
	assert.False(t, ok)
}

func TestProvider_Rate(t *testing.T) {
	ctx := context.Background()
	fresh := &RateTable{Base: "TRY", Rates: map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("0.031"),
		"EUR": decimal.RequireFromString("0.028"),
	}}

	t.Run("base currency is one", func(t *testing.T) {
		p := NewProvider(fxConfig(""), NewMemoryCache())
		r, stale, err := p.Rate(ctx, "try")
		require.NoError(t, err)
		assert.False(t, stale)
		assert.True(t, r.Equal(decimal.NewFromInt(1)))
	})

	t.Run("fetches once then serves from cache", func(t *testing.T) {
		f := &stubFetcher{table: fresh}
		p := NewProvider(fxConfig(""), NewMemoryCache(), WithFetcher(f))

		for range 3 {
			r, stale, err := p.Rate(ctx, "EUR")
			require.NoError(t, err)
			assert.False(t, stale)
			assert.True(t, r.Equal(decimal.RequireFromString("0.028")))
		}
		assert.Equal(t, int32(1), f.calls.Load())
	})

	t.Run("fetch failure falls back to static and is stale", func(t *testing.T) {
		f := &stubFetcher{err: errors.New("connection refused")}
		p := NewProvider(fxConfig(""), NewMemoryCache(), WithFetcher(f))

		r, stale, err := p.Rate(ctx, "usd")
		require.NoError(t, err)
		assert.True(t, stale)
		assert.True(t, r.Equal(decimal.NewFromFloat(0.03)))
	})

	t.Run("currency missing from fetched table uses static", func(t *testing.T) {
		p := NewProvider(fxConfig(""), NewMemoryCache(), WithFetcher(&stubFetcher{table: fresh}))
		r, stale, err := p.Rate(ctx, "GBP")
		require.NoError(t, err)
		assert.True(t, stale)
		assert.True(t, r.Equal(decimal.NewFromFloat(0.025)))
	})

	t.Run("unknown currency", func(t *testing.T) {
		p := NewProvider(fxConfig(""), NewMemoryCache())
		_, _, err := p.Rate(ctx, "JPY")
		assert.ErrorIs(t, err, ErrRateUnavailable)

		_, _, err = p.Rate(ctx, " ")
		assert.ErrorIs(t, err, ErrRateUnavailable)
	})
}

func TestProvider_RefreshWithoutFetcher(t *testing.T) {
	p := NewProvider(fxConfig(""), NewMemoryCache())
	_, err := p.Refresh(context.Background())
	assert.Error(t, err)
}

func TestRefresher(t *testing.T) {
	f := &stubFetcher{table: &RateTable{Base: "TRY", Rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("0.03")}}}
	cache := NewMemoryCache()
	p := NewProvider(fxConfig(""), cache, WithFetcher(f))

	bad := NewRefresher(p, "not a schedule", nil)
	assert.Error(t, bad.Start())

	r := NewRefresher(p, "0 0 * * * *", zap.NewNop())
	require.NoError(t, r.Start())
	defer r.Stop()

	assert.Eventually(t, func() bool {
		table, _ := cache.Get(context.Background(), "TRY")
		return table != nil
	}, 2*time.Second, 10*time.Millisecond)
}
