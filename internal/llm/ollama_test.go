package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ndjsonServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.NotEmpty(t, req.Model)

		w.Header().Set("Content-Type", "application/x-ndjson")
		for i, ch := range chunks {
			done := i == len(chunks)-1
			fmt.Fprintf(w, `{"response":%q,"done":%t}`+"\n", ch, done)
		}
	}))
}

func TestOllamaStream(t *testing.T) {
	srv := ndjsonServer(t, []string{"John ", "Smith ", "works at ABC."})
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL})

	var chunks []string
	got, err := c.Stream(context.Background(), "prompt", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "John Smith works at ABC.", got)
	assert.Equal(t, []string{"John ", "Smith ", "works at ABC."}, chunks)
}

func TestOllamaStreamServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL})

	_, err := c.Stream(context.Background(), "prompt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestOllamaCircuitBreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Timeout: time.Second})

	for i := 0; i < 3; i++ {
		_, err := c.Stream(context.Background(), "prompt", nil)
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.Stream(context.Background(), "prompt", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestOllamaHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/version" {
			fmt.Fprint(w, `{"version":"0.5.1"}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL})
	assert.NoError(t, c.HealthCheck(context.Background()))

	srv.Close()
	assert.Error(t, c.HealthCheck(context.Background()))
}

func TestOllamaStreamCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Stream(ctx, "prompt", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context canceled") || strings.Contains(err.Error(), "canceled"))
}
