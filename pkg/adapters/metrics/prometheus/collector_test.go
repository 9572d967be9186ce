package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveRequest(t *testing.T) {
	c := NewCollector()

	c.ObserveRequest(http.MethodGet, "/health", http.StatusOK, 5*time.Millisecond)
	c.ObserveRequest(http.MethodGet, "/health", http.StatusOK, 7*time.Millisecond)
	c.ObserveRequest(http.MethodGet, "unmatched", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.requestDuration))
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.IncInFlight()
	c.IncInFlight()
	c.DecInFlight()
	c.IncBodyRejected("malformed")
	c.IncFaults()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsInFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.bodyRejections.WithLabelValues("malformed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.faultsTotal))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// Each collector owns its registry, so building two must not panic on duplicate registration.
	require.NotPanics(t, func() {
		NewCollector()
		NewCollector()
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.ObserveRequest(http.MethodGet, "/ready", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `devops_api_http_requests_total{method="GET",route="/ready",status="200"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
