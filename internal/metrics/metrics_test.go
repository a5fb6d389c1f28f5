package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuery(t *testing.T) {
	m := New(nil)

	m.ObserveQuery("AGENT_BY_NAME", 50*time.Millisecond)
	m.ObserveQuery("AGENT_BY_NAME", 80*time.Millisecond)
	m.ObserveQuery("COUNT_QUERY", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("AGENT_BY_NAME")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("COUNT_QUERY")))
}

func TestObserveAnswerCacheAccounting(t *testing.T) {
	m := New(nil)

	m.ObserveAnswer("ollama")
	m.ObserveAnswer("cache")
	m.ObserveAnswer("extractor")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answers.WithLabelValues("ollama")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(nil)
	m.ObserveQuery("AGENT_BY_NAME", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "concierge_queries_total")
}
