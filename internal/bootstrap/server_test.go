package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/domora/config"
	"github.com/Domenick1991/domora/internal/metrics"
)

func newTestHandler(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	collector := metrics.NewMetricsCollector()
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(collector))
	cfg := config.Default()
	return NewHandler(&cfg, Dependencies{Metrics: collector, Gatherer: registry})
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `domora_http_request_duration_seconds_count{code="200",method="GET",route="/healthz"} 1`)
}

func TestSwaggerDocument(t *testing.T) {
	h := newTestHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", swaggerJSONPath, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/api/bookings"`)
}
