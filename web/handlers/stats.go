package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/tripdesk/concierge/internal/index"
	"github.com/tripdesk/concierge/internal/llm"
	"github.com/tripdesk/concierge/internal/store"
)

// StatsHandlers serves the read-only aggregate endpoints. Counts come
// straight from the record store, not the entity index.
type StatsHandlers struct {
	store  store.RecordStore
	idx    *index.EntityIndex
	ollama *llm.OllamaClient
}

// NewStatsHandlers creates the stats handler set. The Ollama client may be
// nil when no primary backend is configured.
func NewStatsHandlers(rs store.RecordStore, idx *index.EntityIndex, ollama *llm.OllamaClient) *StatsHandlers {
	return &StatsHandlers{store: rs, idx: idx, ollama: ollama}
}

// HandleStats handles GET /api/stats.
func (h *StatsHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
		return
	}

	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to compute stats", err)
		return
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		TotalAgents:   stats.TotalAgents,
		Companies:     stats.Companies,
		Nationalities: stats.Nationalities,
	})
}

// HandleHealth handles GET /api/health. A degraded primary backend does not
// make the service unhealthy; the pipeline degrades to fallback and
// extraction.
func (h *StatsHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "healthy",
		IndexedAgents: len(h.idx.Agents()),
	}

	if h.ollama != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ollama.HealthCheck(ctx); err != nil {
			resp.Ollama = "unreachable"
		} else {
			resp.Ollama = "ok"
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
