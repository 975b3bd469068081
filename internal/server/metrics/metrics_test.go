package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/archdrive/internal/server/retry"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveAttempt(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAttempt(retry.Attempt{Outcome: retry.Retryable, Delay: 10 * time.Second})
	m.ObserveAttempt(retry.Attempt{Outcome: retry.Retryable})
	m.ObserveAttempt(retry.Attempt{Outcome: retry.Ok})

	body := scrape(t, m)
	assert.Contains(t, body, `archdrive_upload_attempts_total{outcome="retryable"} 2`)
	assert.Contains(t, body, `archdrive_upload_attempts_total{outcome="ok"} 1`)
	assert.Contains(t, body, "archdrive_upload_retries_total 1")
	assert.Contains(t, body, "archdrive_upload_retry_delay_seconds_sum 10")
}

func TestObserveOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("upload", nil)
	m.ObserveOperation("upload", errors.New("x"))
	m.ObserveOperation("upload", nil)

	body := scrape(t, m)
	assert.Contains(t, body, `archdrive_operations_total{operation="upload",result="ok"} 2`)
	assert.Contains(t, body, `archdrive_operations_total{operation="upload",result="error"} 1`)
}

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest(http.MethodGet, "/api/files", http.StatusOK, 5*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `archdrive_http_requests_total{method="GET",route="/api/files",status="200"} 1`)
	assert.Contains(t, body, "archdrive_http_request_duration_seconds_bucket")
}
