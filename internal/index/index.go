// Package index builds in-memory lookup structures over the agent and login
// collections: identifier maps, name/company/nationality groupings, a token
// inverted index, and login maps keyed by every identifier form an event
// might reference.
//
// An index is built once from a full store snapshot and is read-only
// afterwards; reloading data means building a new index and swapping the
// reference.
package index

import (
	"sort"
	"strings"

	"github.com/tripdesk/concierge/internal/store"
)

// EntityIndex holds the derived lookup structures. All keys are case-folded.
type EntityIndex struct {
	agents []store.Agent

	byIdentifier  map[string]*store.Agent // agent ID and email forms
	byCompany     map[string][]*store.Agent
	byNationality map[string][]*store.Agent
	companyKeys   []string                       // first-seen order, for deterministic iteration
	tokens        map[string]map[string]struct{} // token -> set of agent IDs

	loginsByRef map[string][]store.LoginEvent
	loginsByID  map[int64]store.LoginEvent
}

// Build constructs a new EntityIndex over the given records. The slices are
// copied; later mutation of the arguments does not affect the index.
func Build(agents []store.Agent, logins []store.LoginEvent) *EntityIndex {
	e := &EntityIndex{
		agents:        append([]store.Agent(nil), agents...),
		byIdentifier:  make(map[string]*store.Agent),
		byCompany:     make(map[string][]*store.Agent),
		byNationality: make(map[string][]*store.Agent),
		tokens:        make(map[string]map[string]struct{}),
		loginsByRef:   make(map[string][]store.LoginEvent),
		loginsByID:    make(map[int64]store.LoginEvent),
	}

	for i := range e.agents {
		a := &e.agents[i]
		if a.AgentID != "" {
			e.byIdentifier[strings.ToLower(a.AgentID)] = a
		}
		if a.Email != "" {
			e.byIdentifier[strings.ToLower(a.Email)] = a
		}
		if a.Company != "" {
			key := strings.ToLower(a.Company)
			if _, seen := e.byCompany[key]; !seen {
				e.companyKeys = append(e.companyKeys, key)
			}
			e.byCompany[key] = append(e.byCompany[key], a)
		}
		if a.Nationality != "" {
			key := strings.ToLower(a.Nationality)
			e.byNationality[key] = append(e.byNationality[key], a)
		}

		for _, tok := range Tokenize(a.Name + " " + a.Email + " " + a.AgentID + " " + a.Company) {
			set, ok := e.tokens[tok]
			if !ok {
				set = make(map[string]struct{})
				e.tokens[tok] = set
			}
			set[a.AgentID] = struct{}{}
		}
	}

	for _, l := range logins {
		if l.AgentRef != "" {
			key := strings.ToLower(l.AgentRef)
			e.loginsByRef[key] = append(e.loginsByRef[key], l)
		}
		e.loginsByID[l.ID] = l
	}

	return e
}

// Agents returns the indexed agent records in load order.
func (e *EntityIndex) Agents() []store.Agent {
	return e.agents
}

// ResolveIdentifier looks up an agent by either identifier form,
// case-insensitively.
func (e *EntityIndex) ResolveIdentifier(id string) (*store.Agent, bool) {
	if id == "" {
		return nil, false
	}
	a, ok := e.byIdentifier[strings.ToLower(id)]
	return a, ok
}

// LoginByID looks up a login event by its numeric identifier.
func (e *EntityIndex) LoginByID(id int64) (store.LoginEvent, bool) {
	l, ok := e.loginsByID[id]
	return l, ok
}

// LoginsFor returns the login events reachable from the given identifier,
// newest first. When the identifier resolves to an agent, events found under
// any of the agent's identifier forms are unioned and deduplicated by event
// ID; an event linked through both the agent ID and the email counts once.
func (e *EntityIndex) LoginsFor(id string) []store.LoginEvent {
	if id == "" {
		return nil
	}

	refs := []string{strings.ToLower(id)}
	if a, ok := e.ResolveIdentifier(id); ok {
		refs = refs[:0]
		if a.AgentID != "" {
			refs = append(refs, strings.ToLower(a.AgentID))
		}
		if a.Email != "" && !strings.EqualFold(a.Email, a.AgentID) {
			refs = append(refs, strings.ToLower(a.Email))
		}
	}

	seen := make(map[int64]struct{})
	var out []store.LoginEvent
	for _, ref := range refs {
		for _, l := range e.loginsByRef[ref] {
			if _, dup := seen[l.ID]; dup {
				continue
			}
			seen[l.ID] = struct{}{}
			out = append(out, l)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoginAt.After(out[j].LoginAt)
	})
	return out
}

// ByNationality returns the agents grouped under an exact nationality key
// (case-insensitive).
func (e *EntityIndex) ByNationality(nationality string) []*store.Agent {
	return e.byNationality[strings.ToLower(nationality)]
}

// Nationalities returns every distinct nationality key in the index.
func (e *EntityIndex) Nationalities() []string {
	keys := make([]string, 0, len(e.byNationality))
	for k := range e.byNationality {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TokenOverlap ranks agents by the number of query tokens found in the
// inverted index, descending, capped at limit.
func (e *EntityIndex) TokenOverlap(tokens []string, limit int) []Match {
	counts := make(map[string]int)
	for _, tok := range tokens {
		for agentID := range e.tokens[tok] {
			counts[agentID]++
		}
	}

	var matches []Match
	for i := range e.agents {
		a := &e.agents[i]
		if n := counts[a.AgentID]; n > 0 {
			matches = append(matches, Match{Agent: a, Score: float64(n) * 20})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Tokenize lowercases, splits on whitespace, trims trailing punctuation, and
// drops tokens shorter than three characters.
func Tokenize(text string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(text)) {
		f = strings.Trim(f, ".,?!;:'\"")
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}
