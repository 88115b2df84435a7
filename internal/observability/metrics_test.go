package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("test")

	m.RecordSimulation(true, 70)
	m.RecordSimulation(false, 60)
	m.RecordSimulation(true, 80)
	m.RecordSimulationError("not_approved")
	m.SetFeedSubscribers(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("payback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("no_payback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulationErrors.WithLabelValues("not_approved")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FeedSubscribers))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.RecordHTTPRequest("/api/simulate", http.MethodPost, 201, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `test_http_request_duration_seconds_count{method="POST",route="/api/simulate",status="2xx"} 1`))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSimulation(true, 70)
		m.RecordSimulationError("x")
		m.RecordAnalyticsFailure()
		m.SetFeedSubscribers(1)
		m.RecordHTTPRequest("/", http.MethodGet, 200, time.Millisecond)
		m.RecordDecision("GO")
		m.RecordFeedDrop()
		m.RecordTechnologySubmitted()
		m.RecordTechnologyApproved()
		m.RecordUserRegistered("CONSUMER")
	})

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
	assert.NotNil(t, m.Handler())
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances with the same namespace must not collide.
	assert.NotPanics(t, func() {
		NewMetrics("dup")
		NewMetrics("dup")
	})
}
