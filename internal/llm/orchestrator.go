package llm

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrGenerationUnavailable reports that every configured backend failed, or
// that none is configured. Callers degrade to the deterministic extractor.
var ErrGenerationUnavailable = errors.New("no generation backend available")

// BackendCache is the attribution label for cache-served answers.
const BackendCache = "cache"

// Result records how an answer was produced.
type Result struct {
	Text    string
	Backend string
	Cached  bool
}

// Orchestrator sequences answer generation: cache check, primary backend
// with bounded retry and exponential backoff, then the fallback backend.
// Successful primary responses are cached; fallback responses are not.
type Orchestrator struct {
	primary     Generator
	fallback    Generator
	cache       *ResponseCache
	maxRetries  int
	backoffBase time.Duration
	logger      *log.Logger
}

// NewOrchestrator builds an orchestrator. Either generator may be nil when
// the corresponding backend is unconfigured.
func NewOrchestrator(primary, fallback Generator, cache *ResponseCache, maxRetries int, logger *log.Logger) *Orchestrator {
	if cache == nil {
		cache = NewResponseCache(0, 0)
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		primary:     primary,
		fallback:    fallback,
		cache:       cache,
		maxRetries:  maxRetries,
		backoffBase: time.Second,
		logger:      logger,
	}
}

// Generate produces an answer for the prompt, forwarding chunks to sink as
// they arrive. Returns ErrGenerationUnavailable when no backend succeeds.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, sink Sink) (Result, error) {
	key := CacheKey(prompt)

	if cached, ok := o.cache.Get(key); ok {
		o.logger.Printf("cache hit key=%s", key[:8])
		if sink != nil {
			if err := sink(cached); err != nil {
				return Result{}, err
			}
		}
		return Result{Text: cached, Backend: BackendCache, Cached: true}, nil
	}

	if o.primary != nil {
		for attempt := 0; ; attempt++ {
			o.logger.Printf("generating backend=%s attempt=%d", o.primary.Name(), attempt)
			text, err := o.primary.Stream(ctx, prompt, sink)
			if err == nil {
				o.cache.Put(key, text)
				return Result{Text: text, Backend: o.primary.Name()}, nil
			}
			o.logger.Printf("backend %s failed: %v", o.primary.Name(), err)
			if attempt >= o.maxRetries {
				break
			}
			if err := o.backoff(ctx, attempt); err != nil {
				return Result{}, err
			}
		}
	}

	if o.fallback != nil {
		o.logger.Printf("switching to fallback backend=%s", o.fallback.Name())
		text, err := o.fallback.Stream(ctx, prompt, sink)
		if err == nil {
			return Result{Text: text, Backend: o.fallback.Name()}, nil
		}
		o.logger.Printf("fallback %s failed: %v", o.fallback.Name(), err)
	}

	return Result{}, ErrGenerationUnavailable
}

// backoff sleeps for the retry delay, doubling from the base each attempt,
// unless the context is canceled first.
func (o *Orchestrator) backoff(ctx context.Context, attempt int) error {
	delay := o.backoffBase << uint(attempt)
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
