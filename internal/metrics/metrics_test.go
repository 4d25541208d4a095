package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/humane/internal/scoring"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("POST", "POST /api/analyze", 200, 12*time.Millisecond)
	m.ObserveRequest("POST", "POST /api/analyze", 200, 8*time.Millisecond)
	m.ObserveRequest("POST", "POST /api/analyze", 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "POST /api/analyze", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "POST /api/analyze", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestObserveScore(t *testing.T) {
	m := New()

	m.ObserveScore(scoring.Default().Explain("leverage leverage synergy"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ruleMatches.WithLabelValues("jargon")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ruleMatches.WithLabelValues("strategic")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.scores))
}

func TestObserveLLMCallAndWebhook(t *testing.T) {
	m := New()

	m.ObserveLLMCall("rewrite", nil, time.Second)
	m.ObserveLLMCall("rewrite", errors.New("boom"), time.Second)
	m.ObserveWebhook("", "rejected")
	m.ObserveWebhook("customer.subscription.created", "handled")
	m.ObserveQuotaDenial()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmCalls.WithLabelValues("rewrite", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmCalls.WithLabelValues("rewrite", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("unknown", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("customer.subscription.created", "handled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDenials))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "GET /health", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `humane_http_requests_total{method="GET",route="GET /health",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
