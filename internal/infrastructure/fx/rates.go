// Package fx supplies exchange rates for display-only conversion of
// statement summaries. Rates never feed back into stored amounts.
package fx

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable is returned when no source knows the requested currency
var ErrRateUnavailable = errors.New("fx: rate unavailable")

// RateTable is one snapshot of rates quoted against Base.
// Rates[c] is how many units of c one unit of Base buys.
type RateTable struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Lookup returns the rate for currency, case-insensitively
func (t *RateTable) Lookup(currency string) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	currency = strings.ToUpper(currency)
	if currency == t.Base {
		return decimal.NewFromInt(1), true
	}
	r, ok := t.Rates[currency]
	if !ok || !r.IsPositive() {
		return decimal.Zero, false
	}
	return r, true
}

// staticTable builds a table from configured fallback rates. Non-positive
// entries are dropped.
func staticTable(base string, raw map[string]float64) *RateTable {
	t := &RateTable{Base: strings.ToUpper(base), Rates: make(map[string]decimal.Decimal, len(raw))}
	for c, v := range raw {
		if v <= 0 {
			continue
		}
		t.Rates[strings.ToUpper(c)] = decimal.NewFromFloat(v)
	}
	return t
}
