package index

import (
	"sort"
	"strings"

	"github.com/tripdesk/concierge/internal/store"
)

// Match pairs an agent with an ordinal relevance score. Scores rank results
// within a single query; they are not calibrated across queries.
type Match struct {
	Agent *store.Agent
	Score float64
}

const (
	scoreExactName   = 100
	scorePartialName = 95
	scoreFuzzyName   = 90

	// nameSimilarityThreshold is the minimum normalized edit-distance
	// similarity for a query token to count against a name token.
	nameSimilarityThreshold = 0.70

	fuzzyMatchCap = 10
)

// Levenshtein computes the edit distance between two strings using a
// single-row dynamic programming formulation.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j-1]+cost, minInt(curr[j-1]+1, prev[j]+1))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity returns a normalized edit-distance similarity in [0, 1]:
// 1 - distance/maxLen. It is symmetric in its arguments.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(maxLen)
}

// FuzzyMatchName resolves query tokens against agent names using three
// escalating strategies; the first strategy producing any result wins.
//
//  1. Exact full-name equality (score 100), then partial match where both
//     the first and last query token appear among the name's tokens (95).
//  2. Token-level fuzzy matching: similarities >= 0.70 are summed over every
//     query-token/name-token pair; a record is kept when the sum reaches
//     half the query token count. Ranked by the sum, capped at 10.
//  3. Inverted-index token overlap, ranked by matching-token count, capped
//     at 10.
func (e *EntityIndex) FuzzyMatchName(tokens []string) []Match {
	if len(tokens) == 0 {
		return nil
	}
	query := strings.ToLower(strings.Join(tokens, " "))
	first := strings.ToLower(tokens[0])
	last := strings.ToLower(tokens[len(tokens)-1])

	var matches []Match
	for i := range e.agents {
		a := &e.agents[i]
		name := strings.ToLower(a.Name)
		if name == query {
			matches = append(matches, Match{Agent: a, Score: scoreExactName})
			continue
		}
		if len(tokens) >= 2 {
			parts := strings.Fields(name)
			if containsToken(parts, first) && containsToken(parts, last) {
				matches = append(matches, Match{Agent: a, Score: scorePartialName})
			}
		}
	}
	if len(matches) > 0 {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Score > matches[j].Score
		})
		return matches
	}

	// Fuzzy tier for typos.
	type fuzzyCandidate struct {
		agent *store.Agent
		sum   float64
	}
	var fuzzy []fuzzyCandidate
	required := float64(len(tokens)) / 2
	for i := range e.agents {
		a := &e.agents[i]
		parts := strings.Fields(strings.ToLower(a.Name))
		sum := 0.0
		for _, tok := range tokens {
			for _, part := range parts {
				if sim := Similarity(tok, part); sim >= nameSimilarityThreshold {
					sum += sim
				}
			}
		}
		if sum >= required && sum > 0 {
			fuzzy = append(fuzzy, fuzzyCandidate{agent: a, sum: sum})
		}
	}
	if len(fuzzy) > 0 {
		sort.SliceStable(fuzzy, func(i, j int) bool {
			return fuzzy[i].sum > fuzzy[j].sum
		})
		if len(fuzzy) > fuzzyMatchCap {
			fuzzy = fuzzy[:fuzzyMatchCap]
		}
		matches = make([]Match, 0, len(fuzzy))
		for _, c := range fuzzy {
			matches = append(matches, Match{Agent: c.agent, Score: scoreFuzzyName})
		}
		return matches
	}

	return e.TokenOverlap(tokens, fuzzyMatchCap)
}

func containsToken(parts []string, tok string) bool {
	for _, p := range parts {
		if p == tok {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
