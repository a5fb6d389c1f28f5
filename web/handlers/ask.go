package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/concierge/internal/extract"
	"github.com/tripdesk/concierge/internal/intent"
	"github.com/tripdesk/concierge/internal/llm"
	"github.com/tripdesk/concierge/internal/metrics"
	"github.com/tripdesk/concierge/internal/prompt"
	"github.com/tripdesk/concierge/internal/resolve"
)

const (
	maxQuestionLen = 1000

	outOfScopeReply = "I can only answer questions about travel agent profiles and login history. Please ask something like:\n" +
		"- 'Find agent John Smith'\n" +
		"- 'Show all agents from ABC Company'\n" +
		"- 'When did CHAGT001 last login?'\n" +
		"- 'How many times did agent@email.com login?'"

	noResultsReply = "No matching records found in the database for your query."

	genericFailureReply = "Unable to process your query. Please try again."
)

// questionCharset restricts questions to a safe printable character set.
var questionCharset = regexp.MustCompile(`^[a-zA-Z0-9\s.,?!@#\-_()+"':;/\\]+$`)

// AskHandlers serves the question-answering endpoint: classify, resolve,
// build prompt, generate (with cache and fallback), degrade to the
// deterministic extractor.
type AskHandlers struct {
	classifier   *intent.Classifier
	resolver     *resolve.Resolver
	orchestrator *llm.Orchestrator
	extractor    *extract.Extractor
	metrics      *metrics.Metrics
	hub          *ActivityHub
	logger       *log.Logger
}

// NewAskHandlers creates the ask handler set. Metrics and hub may be nil.
func NewAskHandlers(classifier *intent.Classifier, resolver *resolve.Resolver, orchestrator *llm.Orchestrator, extractor *extract.Extractor, m *metrics.Metrics, hub *ActivityHub, logger *log.Logger) *AskHandlers {
	if logger == nil {
		logger = log.Default()
	}
	return &AskHandlers{
		classifier:   classifier,
		resolver:     resolver,
		orchestrator: orchestrator,
		extractor:    extractor,
		metrics:      m,
		hub:          hub,
		logger:       logger,
	}
}

// HandleAsk handles POST /api/ask. The answer is streamed as plain text;
// validation failures are rejected as structured JSON errors before any
// core work runs.
func (h *AskHandlers) HandleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
		return
	}

	start := time.Now()
	requestID := uuid.New().String()[:8]

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "failed to parse request body", err)
		return
	}
	if msg, ok := validateQuestion(req.Question); !ok {
		h.logger.Printf("[%s] validation failed: %s", requestID, msg)
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg, nil)
		return
	}

	question := req.Question
	h.logger.Printf("[%s] query received: %q", requestID, question)

	ir := h.classifier.Classify(question)
	h.logger.Printf("[%s] intent=%s list=%t logins=%t", requestID, ir.Primary, ir.IsListQuery, ir.NeedsLoginData)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	// Out-of-scope questions short-circuit before any index lookup.
	if ir.IsOutOfScope {
		h.logger.Printf("[%s] out of scope", requestID)
		w.Write([]byte(outOfScopeReply))
		h.finish(requestID, question, ir, "scope-check", start)
		return
	}

	snippets := h.resolver.Resolve(question, ir)
	if len(snippets) == 0 {
		h.logger.Printf("[%s] no matching records", requestID)
		w.Write([]byte(noResultsReply))
		h.finish(requestID, question, ir, "no-results", start)
		return
	}
	h.logger.Printf("[%s] resolved %d records in %s", requestID, len(snippets), time.Since(start))

	p := prompt.Build(question, snippets, ir)

	flusher, _ := w.(http.Flusher)
	sink := func(chunk string) error {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	result, err := h.orchestrator.Generate(r.Context(), p, sink)
	if err == nil {
		h.logger.Printf("[%s] answered via %s in %s", requestID, result.Backend, time.Since(start))
		h.finish(requestID, question, ir, result.Backend, start)
		return
	}

	if errors.Is(err, llm.ErrGenerationUnavailable) {
		h.logger.Printf("[%s] all backends failed, using extractor", requestID)
		answer := h.extractor.Extract(question, snippets)
		if answer == "" {
			answer = genericFailureReply
		}
		w.Write([]byte(answer))
		h.finish(requestID, question, ir, "extractor", start)
		return
	}

	// Client disconnects and mid-stream write failures land here; there is
	// nothing useful left to write.
	h.logger.Printf("[%s] generation aborted: %v", requestID, err)
}

func (h *AskHandlers) finish(requestID, question string, ir intent.Result, backend string, start time.Time) {
	elapsed := time.Since(start)
	if h.metrics != nil {
		h.metrics.ObserveQuery(ir.Primary, elapsed)
		h.metrics.ObserveAnswer(backend)
	}
	if h.hub != nil {
		h.hub.Broadcast(QueryActivity{
			RequestID:  requestID,
			Question:   question,
			Intent:     ir.Primary,
			Backend:    backend,
			DurationMs: elapsed.Milliseconds(),
			Timestamp:  time.Now().UTC(),
		})
	}
}

// validateQuestion applies the length and character-set bounds. Whitespace
// padding does not count toward the minimum.
func validateQuestion(q string) (string, bool) {
	if len(strings.TrimSpace(q)) == 0 {
		return "Question must be 1-1000 characters", false
	}
	if len(q) > maxQuestionLen {
		return "Question must be 1-1000 characters", false
	}
	if !questionCharset.MatchString(q) {
		return "Invalid characters in question", false
	}
	return "", true
}
