package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestCounters(t *testing.T) {
	m := New()
	m.Message("entry")
	m.Message("entry")
	m.Message("command")
	m.ClassifyFallback()
	m.StoreFailure()
	m.Stored("happy")
	m.ObserveGenerate(time.Now())

	out := scrape(t, m)
	assert.Contains(t, out, `mindvault_messages_total{kind="entry"} 2`)
	assert.Contains(t, out, `mindvault_messages_total{kind="command"} 1`)
	assert.Contains(t, out, "mindvault_classifier_fallbacks_total 1")
	assert.Contains(t, out, "mindvault_generate_fallbacks_total 0")
	assert.Contains(t, out, "mindvault_store_failures_total 1")
	assert.Contains(t, out, `mindvault_emotions_total{emotion="happy"} 1`)
	assert.Contains(t, out, "mindvault_generate_duration_seconds_count 1")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Message("entry")
	m.ClassifyFallback()
	m.GenerationFallback()
	m.StoreFailure()
	m.Stored("sad")
	m.ObserveGenerate(time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestHandler_IncludesRuntime(t *testing.T) {
	assert.Contains(t, scrape(t, New()), "go_goroutines")
}
