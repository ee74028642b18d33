package fx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/erp/ledger/internal/infrastructure/config"
)

// Fetcher loads a fresh rate table from a remote source
type Fetcher interface {
	Fetch(ctx context.Context) (*RateTable, error)
}

// HTTPFetcher is a resty-backed Fetcher for "latest rates" style endpoints:
//
//	GET <endpoint>?base=TRY&symbols=USD,EUR
//	{"base":"TRY","rates":{"USD":0.031,"EUR":0.028}}
type HTTPFetcher struct {
	httpClient *resty.Client
	endpoint   string
	base       string
	currencies []string
	now        func() time.Time
}

// NewHTTPFetcher builds a fetcher from the fx configuration
func NewHTTPFetcher(cfg config.FXConfig) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	restyClient := resty.New()
	restyClient.
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &HTTPFetcher{
		httpClient: restyClient,
		endpoint:   cfg.Endpoint,
		base:       strings.ToUpper(cfg.BaseCurrency),
		currencies: cfg.Currencies,
		now:        time.Now,
	}
}

type latestResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (*RateTable, error) {
	result := new(latestResponse)
	apiErr := new(apiError)

	resp, err := f.httpClient.R().
		SetContext(ctx).
		SetQueryParam("base", f.base).
		SetQueryParam("symbols", strings.ToUpper(strings.Join(f.currencies, ","))).
		SetResult(result).
		SetError(apiErr).
		Get(f.endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch fx rates: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return nil, fmt.Errorf("fx api error: status=%d, message=%s", resp.StatusCode(), message)
	}

	base := strings.ToUpper(result.Base)
	if base == "" {
		base = f.base
	}
	if base != f.base {
		return nil, fmt.Errorf("fx api returned base %s, want %s", base, f.base)
	}

	table := &RateTable{Base: base, Rates: make(map[string]decimal.Decimal, len(result.Rates)), FetchedAt: f.now().UTC()}
	for c, r := range result.Rates {
		if r.IsPositive() {
			table.Rates[strings.ToUpper(c)] = r
		}
	}
	if len(table.Rates) == 0 {
		return nil, fmt.Errorf("fx api returned no usable rates")
	}
	return table, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
