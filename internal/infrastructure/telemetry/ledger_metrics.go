package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Instrument names
const (
	MetricStockMovements    = "ledger_stock_movements_total"
	MetricInvoicesCreated   = "ledger_invoices_created_total"
	MetricInvoicesRejected  = "ledger_invoices_rejected_total"
	MetricInvoiceNetTotal   = "ledger_invoice_net_total"
	MetricCollections       = "ledger_collections_total"
	MetricStatementDuration = "ledger_statement_build_duration_seconds"
)

// LedgerMetrics counts ledger activity: stock movements, invoices and collections.
// A nil *LedgerMetrics records nothing.
type LedgerMetrics struct {
	stockMovements    metric.Int64Counter
	invoicesCreated   metric.Int64Counter
	invoicesRejected  metric.Int64Counter
	invoiceNetTotal   metric.Float64Histogram
	collections       metric.Int64Counter
	statementDuration metric.Float64Histogram
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	lm := &LedgerMetrics{}
	var err error

	counters := []struct {
		dst        *metric.Int64Counter
		name, desc string
		unit       string
	}{
		{&lm.stockMovements, MetricStockMovements, "Stock movements appended to the ledger", "{movement}"},
		{&lm.invoicesCreated, MetricInvoicesCreated, "Invoices committed", "{invoice}"},
		{&lm.invoicesRejected, MetricInvoicesRejected, "Invoice creations rolled back", "{invoice}"},
		{&lm.collections, MetricCollections, "Collections recorded", "{collection}"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit)); err != nil {
			return nil, err
		}
	}

	if lm.invoiceNetTotal, err = meter.Float64Histogram(MetricInvoiceNetTotal,
		metric.WithDescription("Net total of committed invoices"),
		metric.WithExplicitBucketBoundaries(10, 100, 1_000, 10_000, 100_000, 1_000_000),
	); err != nil {
		return nil, err
	}
	if lm.statementDuration, err = meter.Float64Histogram(MetricStatementDuration,
		metric.WithDescription("Time to build an account statement"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return lm, nil
}

// RecordStockMovement counts one movement of the given kind (IN/OUT) and source document kind
func (m *LedgerMetrics) RecordStockMovement(ctx context.Context, kind, refKind string) {
	if m == nil {
		return
	}
	m.stockMovements.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("ref_kind", refKind),
	))
}

// RecordInvoiceCreated counts a committed invoice and its net total
func (m *LedgerMetrics) RecordInvoiceCreated(ctx context.Context, kind string, netTotal float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.invoicesCreated.Add(ctx, 1, attrs)
	m.invoiceNetTotal.Record(ctx, netTotal, attrs)
}

// RecordInvoiceRejected counts a rolled back invoice by error code
func (m *LedgerMetrics) RecordInvoiceRejected(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.invoicesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("error_code", code)))
}

// RecordCollection counts a recorded collection by payment method
func (m *LedgerMetrics) RecordCollection(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.collections.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", method)))
}

// RecordStatementBuilt observes how long a statement over accounts took
func (m *LedgerMetrics) RecordStatementBuilt(ctx context.Context, accounts int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.statementDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.Int("accounts", accounts)))
}
