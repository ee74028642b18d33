package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewLedgerMetrics(t *testing.T) {
	_, err := telemetry.NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)

	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProviderWithReader("ledger-test", reader, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	lm, err := telemetry.NewLedgerMetrics(mp.Meter("ledger"))
	require.NoError(t, err)

	ctx := context.Background()
	lm.RecordStockMovement(ctx, "IN", "STOCK_IN")
	lm.RecordStockMovement(ctx, "OUT", "INVOICE")
	lm.RecordStockMovement(ctx, "OUT", "INVOICE")
	lm.RecordInvoiceCreated(ctx, "SALES", 120)
	lm.RecordInvoiceRejected(ctx, "INSUFFICIENT_STOCK")
	lm.RecordCollection(ctx, "CASH")
	lm.RecordStatementBuilt(ctx, 2, 15*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}
	sumOf := func(name string) int64 {
		sum, ok := byName[name].Data.(metricdata.Sum[int64])
		require.True(t, ok, name)
		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		return total
	}
	assert.Equal(t, int64(3), sumOf(telemetry.MetricStockMovements))
	assert.Equal(t, int64(1), sumOf(telemetry.MetricInvoicesCreated))
	assert.Equal(t, int64(1), sumOf(telemetry.MetricInvoicesRejected))
	assert.Equal(t, int64(1), sumOf(telemetry.MetricCollections))

	hist, ok := byName[telemetry.MetricInvoiceNetTotal].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, 120.0, hist.DataPoints[0].Sum)
	assert.Contains(t, byName, telemetry.MetricStatementDuration)

	assert.NoError(t, mp.Shutdown(ctx))
}

func TestLedgerMetrics_NilIsNoop(t *testing.T) {
	var lm *telemetry.LedgerMetrics
	ctx := context.Background()
	lm.RecordStockMovement(ctx, "IN", "STOCK_IN")
	lm.RecordInvoiceCreated(ctx, "SALES", 1)
	lm.RecordInvoiceRejected(ctx, "VALIDATION_ERROR")
	lm.RecordCollection(ctx, "CASH")
	lm.RecordStatementBuilt(ctx, 1, time.Millisecond)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	assert.NoError(t, telemetry.RegisterDBTracing(nil, telemetry.DBTracingConfig{Enabled: false}, zap.NewNop()))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	ctx, span := provider.Tracer("test").Start(context.Background(), "root")
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	telemetry.RecordError(span, errors.New("boom"))
	telemetry.RecordError(span, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "boom", ended[0].Status().Description)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	_, s := telemetry.StartServiceSpan(context.Background(), "invoice", "create")
	s.End()
}
