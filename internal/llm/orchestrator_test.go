package llm

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator counts calls and either streams a fixed answer in chunks or
// fails with a fixed error.
type stubGenerator struct {
	name   string
	chunks []string
	err    error
	calls  int
}

func (s *stubGenerator) Stream(ctx context.Context, prompt string, sink Sink) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	var b strings.Builder
	for _, ch := range s.chunks {
		if sink != nil {
			if err := sink(ch); err != nil {
				return "", err
			}
		}
		b.WriteString(ch)
	}
	return b.String(), nil
}

func (s *stubGenerator) Name() string { return s.name }

func quietLogger() *log.Logger {
	return log.New(&strings.Builder{}, "", 0)
}

func TestGeneratePrimarySuccess(t *testing.T) {
	primary := &stubGenerator{name: "ollama", chunks: []string{"Hello ", "world"}}
	o := NewOrchestrator(primary, nil, nil, 2, quietLogger())

	var streamed strings.Builder
	res, err := o.Generate(context.Background(), "prompt", func(chunk string) error {
		streamed.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello world", res.Text)
	assert.Equal(t, "ollama", res.Backend)
	assert.False(t, res.Cached)
	assert.Equal(t, "Hello world", streamed.String())
	assert.Equal(t, 1, primary.calls)
}

func TestGenerateSecondCallServedFromCache(t *testing.T) {
	primary := &stubGenerator{name: "ollama", chunks: []string{"answer"}}
	o := NewOrchestrator(primary, nil, nil, 2, quietLogger())

	_, err := o.Generate(context.Background(), "prompt", nil)
	require.NoError(t, err)
	require.Equal(t, 1, primary.calls)

	var streamed strings.Builder
	res, err := o.Generate(context.Background(), "prompt", func(chunk string) error {
		streamed.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls, "cache hit must not invoke any backend")
	assert.True(t, res.Cached)
	assert.Equal(t, BackendCache, res.Backend)
	assert.Equal(t, "answer", res.Text)
	assert.Equal(t, "answer", streamed.String())
}

func TestGenerateRetriesThenFallsBack(t *testing.T) {
	primary := &stubGenerator{name: "ollama", err: errors.New("connection refused")}
	fallback := &stubGenerator{name: "openai", chunks: []string{"rescued"}}

	o := NewOrchestrator(primary, fallback, nil, 2, quietLogger())
	o.backoffBase = time.Millisecond

	res, err := o.Generate(context.Background(), "prompt", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, primary.calls, "initial attempt plus two retries")
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, "openai", res.Backend)
	assert.Equal(t, "rescued", res.Text)
}

func TestGenerateFallbackNotCached(t *testing.T) {
	primary := &stubGenerator{name: "ollama", err: errors.New("down")}
	fallback := &stubGenerator{name: "openai", chunks: []string{"rescued"}}

	o := NewOrchestrator(primary, fallback, nil, 0, quietLogger())
	o.backoffBase = time.Millisecond

	_, err := o.Generate(context.Background(), "prompt", nil)
	require.NoError(t, err)

	_, err = o.Generate(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, primary.calls, "fallback answers must not populate the cache")
	assert.Equal(t, 2, fallback.calls)
}

func TestGenerateAllBackendsFail(t *testing.T) {
	primary := &stubGenerator{name: "ollama", err: errors.New("down")}
	fallback := &stubGenerator{name: "openai", err: errors.New("also down")}

	o := NewOrchestrator(primary, fallback, nil, 1, quietLogger())
	o.backoffBase = time.Millisecond

	_, err := o.Generate(context.Background(), "prompt", nil)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerateNoBackendsConfigured(t *testing.T) {
	o := NewOrchestrator(nil, nil, nil, 0, quietLogger())

	_, err := o.Generate(context.Background(), "prompt", nil)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerateCanceledDuringBackoff(t *testing.T) {
	primary := &stubGenerator{name: "ollama", err: errors.New("down")}
	o := NewOrchestrator(primary, nil, nil, 3, quietLogger())
	o.backoffBase = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := o.Generate(ctx, "prompt", nil)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Generate did not return after cancellation")
	}
	assert.Equal(t, 1, primary.calls)
}
