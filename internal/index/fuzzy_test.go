package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/concierge/internal/store"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"smith", "smith", 0},
		{"smith", "smyth", 1},
		{"flaw", "lawn", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"smith", "smyth"},
		{"john", "jon"},
		{"abc company", "abc co"},
		{"", "x"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]),
			"similarity(%q, %q) must be symmetric", p[0], p[1])
	}
}

func TestSimilarityBounds(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("same", "same"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestFuzzyMatchNameExact(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	matches := idx.FuzzyMatchName([]string{"john", "smith"})
	require.Len(t, matches, 1)
	assert.Equal(t, "CHAGT001", matches[0].Agent.AgentID)
	assert.Equal(t, 100.0, matches[0].Score)
}

func TestFuzzyMatchNamePartial(t *testing.T) {
	agents := testAgents()
	agents = append(agents, store.Agent{AgentID: "CHAGT004", Name: "John Michael Smith", Email: "jms@example.com", Company: "ABC Company", Nationality: "Indian"})
	idx := Build(agents, nil)

	matches := idx.FuzzyMatchName([]string{"john", "smith"})
	require.Len(t, matches, 2)
	// Exact match ranks above the first-and-last-token partial match.
	assert.Equal(t, 100.0, matches[0].Score)
	assert.Equal(t, "John Smith", matches[0].Agent.Name)
	assert.Equal(t, 95.0, matches[1].Score)
	assert.Equal(t, "John Michael Smith", matches[1].Agent.Name)
}

func TestFuzzyMatchNameTypo(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	matches := idx.FuzzyMatchName([]string{"jhon", "smith"})
	require.NotEmpty(t, matches)
	assert.Equal(t, "John Smith", matches[0].Agent.Name)
	assert.Equal(t, 90.0, matches[0].Score)
}

func TestFuzzyMatchNameRejectsBelowThreshold(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	// No token resembles any indexed name or indexed token.
	matches := idx.FuzzyMatchName([]string{"zzzzzz", "qqqqqq"})
	assert.Empty(t, matches)
}

func TestFuzzyMatchNameEmptyTokens(t *testing.T) {
	idx := Build(testAgents(), testLogins())
	assert.Nil(t, idx.FuzzyMatchName(nil))
}
