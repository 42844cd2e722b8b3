package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordRequest(t *testing.T) {
	reader := metric.NewManualReader()
	obs := NewWithReader(reader, "cinema-sage-test")
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordRequest(ctx, 120*time.Millisecond, "found")
	obs.RecordRequest(ctx, 80*time.Millisecond, "found")
	obs.RecordRequest(ctx, 10*time.Millisecond, "failed")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	counter, ok := byName["requests.processed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range counter.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, counter.DataPoints, 2)

	hist, ok := byName["requests.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestRecordRequest_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordRequest(context.Background(), time.Second, "found")
		obs.Shutdown()
	})
	assert.NotPanics(t, func() {
		(&Observability{}).RecordRequest(context.Background(), time.Second, "found")
	})
}
