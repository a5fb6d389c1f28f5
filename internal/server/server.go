// Package server provides HTTP server initialization and lifecycle
// management for the concierge API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tripdesk/concierge/internal/config"
	"github.com/tripdesk/concierge/internal/extract"
	"github.com/tripdesk/concierge/internal/index"
	"github.com/tripdesk/concierge/internal/intent"
	"github.com/tripdesk/concierge/internal/llm"
	"github.com/tripdesk/concierge/internal/metrics"
	"github.com/tripdesk/concierge/internal/resolve"
	"github.com/tripdesk/concierge/internal/store"
	"github.com/tripdesk/concierge/web/handlers"
)

// Deps carries the long-lived services the handlers are built from. The
// entity index and classifier are constructed once at startup and are
// read-only afterwards.
type Deps struct {
	Store        store.RecordStore
	Index        *index.EntityIndex
	Classifier   *intent.Classifier
	Orchestrator *llm.Orchestrator
	Ollama       *llm.OllamaClient // nil when no primary backend is configured
	Metrics      *metrics.Metrics
	Logger       *log.Logger
}

// Start initializes and starts the HTTP server. Returns the actual address
// being listened on (useful for testing with port 0) and the activity hub
// for event broadcasts. Cancel ctx to shut down gracefully.
func Start(ctx context.Context, cfg *config.Config, deps Deps) (string, *handlers.ActivityHub) {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := http.NewServeMux()

	var originPatterns []string
	if cfg.Server.AllowOrigins != "" {
		for _, o := range strings.Split(cfg.Server.AllowOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				originPatterns = append(originPatterns, o)
			}
		}
	}
	wsHub := handlers.NewActivityHub(originPatterns)
	go wsHub.Run()

	rateLimiter := handlers.NewRateLimiter(cfg.Server.RatePerSec, cfg.Server.RateBurst)

	resolver := resolve.NewResolver(deps.Index)
	extractor := extract.NewExtractor(deps.Index)

	askHandlers := handlers.NewAskHandlers(deps.Classifier, resolver, deps.Orchestrator, extractor, deps.Metrics, wsHub, logger)
	statsHandlers := handlers.NewStatsHandlers(deps.Store, deps.Index, deps.Ollama)

	mux.HandleFunc("/api/ask", askHandlers.HandleAsk)
	mux.HandleFunc("/api/stats", statsHandlers.HandleStats)
	mux.HandleFunc("/api/health", statsHandlers.HandleHealth)
	mux.Handle("/ws", wsHub)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}

	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = handlers.SecurityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}
	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Printf("Server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub
}
