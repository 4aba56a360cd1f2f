package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ecotrace-api/internal/infrastructure/metrics"
)

func TestMetrics_Contadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.BatchClassified("auto_verified", "none")
	m.BatchClassified("auto_verified", "none")
	m.BatchClassified("lab_required", "major")
	m.TransportRecorded("diesel")
	m.TransportRejected("duplicate_route")
	m.ObserveScoreProvider("ok", 120*time.Millisecond)
	m.OriginsCacheLookup(true)
	m.OriginsCacheLookup(false)
	m.OriginsCacheLookup(false)
	m.ObserveHTTP("GET", "/api/batches/:id", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchesClassified.WithLabelValues("auto_verified", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchesClassified.WithLabelValues("lab_required", "major")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransportsRecorded.WithLabelValues("diesel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransportsRejected.WithLabelValues("duplicate_route")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/batches/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OriginsCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OriginsCache.WithLabelValues("miss")))

	n, err := testutil.GatherAndCount(reg, "ecotrace_score_provider_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_ReceptorNil(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.BatchClassified("ai_review", "minor")
		m.ObserveScoreProvider("error", time.Second)
		m.TransportRecorded("petrol")
		m.TransportRejected("invalid_origin")
		m.OriginsCacheLookup(true)
		m.ObserveHTTP("POST", "/api/transports", 201, time.Millisecond)
	})
}

func TestMetrics_RegistrosIndependientes(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New(prometheus.NewRegistry())
		metrics.New(prometheus.NewRegistry())
	}, "cada registro acepta su propio juego de métricas")
}
