// Package resolve turns a classified question into a ranked, deduplicated,
// size-bounded list of context snippets by querying the entity index through
// a fixed sequence of resolution stages.
package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tripdesk/concierge/internal/index"
	"github.com/tripdesk/concierge/internal/intent"
)

var (
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	agentIDPattern = regexp.MustCompile(`(?i)-?CHAGT\d+`)
	loginIDPattern = regexp.MustCompile(`(?i)\bid\s*(\d+)\b`)

	pvtLtdPattern = regexp.MustCompile(`(?i)pvt\.?\s*ltd\.?`)
	coWordPattern = regexp.MustCompile(`(?i)\bco\b\.?`)
)

// Stop words stripped before company and name matching.
var (
	companyStopWords = map[string]struct{}{
		"company": {}, "all": {}, "agent": {}, "agents": {}, "list": {},
		"show": {}, "from": {}, "work": {}, "working": {},
	}
	nameStopWords = map[string]struct{}{
		"what": {}, "is": {}, "the": {}, "of": {}, "for": {}, "tell": {},
		"me": {}, "whose": {}, "with": {}, "ends": {}, "starts": {},
		"agent": {}, "details": {}, "give": {}, "all": {}, "last": {},
		"login": {}, "date": {}, "full": {}, "find": {}, "show": {},
		"search": {}, "get": {}, "who": {}, "which": {}, "where": {},
		"when": {}, "about": {},
	}
)

// Resolver executes the resolution stages against a read-only entity index.
type Resolver struct {
	idx *index.EntityIndex
}

func NewResolver(idx *index.EntityIndex) *Resolver {
	return &Resolver{idx: idx}
}

// Resolve runs the staged resolution for a question. Stages run in fixed
// order and resolution stops at the first stage that produced snippets. The
// result is truncated to the intent result limit.
func (r *Resolver) Resolve(question string, ir intent.Result) []Snippet {
	normalized := normalizeQuestion(question)
	includeLogins := ir.NeedsLoginData
	fullHistory := ir.Has(intent.LoginHistory) || ir.Has(intent.FirstLogin)

	seen := make(map[string]struct{})
	var snippets []Snippet

	add := func(s Snippet) {
		if _, ok := seen[s.Fields.AgentID]; ok {
			return
		}
		seen[s.Fields.AgentID] = struct{}{}
		snippets = append(snippets, s)
	}

	// Analytics intents bypass lexical matching entirely.
	switch ir.Primary {
	case intent.MostActive:
		for _, rank := range r.idx.MostActive(ir.ResultLimit) {
			add(buildAgentSnippet(r.idx, rank.Agent, 100, true, fullHistory))
		}
	case intent.LeastActive:
		for _, rank := range r.idx.LeastActive(ir.ResultLimit) {
			add(buildAgentSnippet(r.idx, rank.Agent, 100, true, fullHistory))
		}
	case intent.InactiveAgents:
		for _, a := range r.idx.NeverLoggedIn() {
			add(buildAgentSnippet(r.idx, a, 100, includeLogins, fullHistory))
		}
	}
	if len(snippets) > 0 {
		return truncate(snippets, ir.ResultLimit)
	}

	emails, agentIDs, loginIDs := extractIdentifiers(normalized)

	// Numeric login identifiers resolve against the login-id map first.
	for _, id := range loginIDs {
		ev, ok := r.idx.LoginByID(id)
		if !ok {
			continue
		}
		if a, ok := r.idx.ResolveIdentifier(ev.AgentRef); ok {
			add(buildAgentSnippet(r.idx, a, 100, true, fullHistory))
		} else {
			add(buildLoginEventSnippet(ev))
		}
	}

	// Direct identifier lookup.
	for _, identifier := range append(emails, agentIDs...) {
		if a, ok := r.idx.ResolveIdentifier(identifier); ok {
			add(buildAgentSnippet(r.idx, a, 100, includeLogins, fullHistory))
			continue
		}
		if logins := r.idx.LoginsFor(identifier); len(logins) > 0 {
			add(buildOrphanLoginSnippet(identifier, logins))
		}
	}
	if len(snippets) > 0 {
		return truncate(snippets, ir.ResultLimit)
	}

	lower := strings.ToLower(normalized)

	// Exact nationality grouping.
	if strings.Contains(lower, "nationality") || strings.Contains(lower, "from") || strings.Contains(lower, "country") {
		for _, nationality := range r.idx.Nationalities() {
			if !strings.Contains(lower, strings.ToLower(nationality)) {
				continue
			}
			for _, a := range r.idx.ByNationality(nationality) {
				add(buildAgentSnippet(r.idx, a, 100, includeLogins, fullHistory))
			}
		}
		if len(snippets) > 0 {
			return truncate(snippets, ir.ResultLimit)
		}
	}

	// Fuzzy company matching over the stop-word-stripped remainder.
	if strings.Contains(lower, "company") || strings.Contains(lower, "all agent") || strings.Contains(lower, "list agent") {
		tokens := filterTokens(index.Tokenize(normalized), companyStopWords)
		if len(tokens) > 0 {
			for _, m := range r.idx.FuzzyMatchCompany(strings.Join(tokens, " ")) {
				add(buildAgentSnippet(r.idx, m.Agent, 95, includeLogins, fullHistory))
			}
		}
		if len(snippets) > 0 {
			return truncate(snippets, ir.ResultLimit)
		}
	}

	// Name path: exact/partial, then fuzzy, then token overlap.
	tokens := filterTokens(index.Tokenize(normalized), nameStopWords)
	for _, m := range r.idx.FuzzyMatchName(tokens) {
		add(buildAgentSnippet(r.idx, m.Agent, m.Score, includeLogins, fullHistory))
	}

	return truncate(snippets, ir.ResultLimit)
}

func truncate(snippets []Snippet, limit int) []Snippet {
	if limit > 0 && len(snippets) > limit {
		return snippets[:limit]
	}
	return snippets
}

// normalizeQuestion canonicalizes company spellings in the raw question so
// downstream matching sees one form.
func normalizeQuestion(q string) string {
	q = pvtLtdPattern.ReplaceAllString(q, "pvt ltd")
	q = strings.ReplaceAll(q, "&", "and")
	q = coWordPattern.ReplaceAllString(q, "company")
	return strings.TrimSpace(q)
}

// extractIdentifiers pulls email-shaped, agent-id-shaped and numeric
// login-id tokens out of the question.
func extractIdentifiers(q string) (emails, agentIDs []string, loginIDs []int64) {
	emails = emailPattern.FindAllString(q, -1)
	agentIDs = agentIDPattern.FindAllString(q, -1)
	for _, m := range loginIDPattern.FindAllStringSubmatch(q, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		loginIDs = append(loginIDs, id)
	}
	return emails, agentIDs, loginIDs
}

func filterTokens(tokens []string, stop map[string]struct{}) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := stop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}
