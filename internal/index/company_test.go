package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCompany(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ABC Company", "abc company"},
		{"XYZ Travels Pvt. Ltd.", "xyz travels pvt ltd"},
		{"XYZ Travels PVT LTD", "xyz travels pvt ltd"},
		{"Smith & Sons", "smith and sons"},
		{"Global Co.", "global company"},
		{"Global Co", "global company"},
		{"  Spaced   Out  ", "spaced out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCompany(tt.in), "NormalizeCompany(%q)", tt.in)
	}
}

func TestNormalizeCompanyIdempotent(t *testing.T) {
	inputs := []string{
		"ABC Company",
		"XYZ Travels Pvt. Ltd.",
		"Smith & Sons Co.",
		"already normalized pvt ltd",
	}
	for _, in := range inputs {
		once := NormalizeCompany(in)
		assert.Equal(t, once, NormalizeCompany(once), "normalizing %q twice must be stable", in)
	}
}

func TestFuzzyMatchCompanyExact(t *testing.T) {
	idx := Build(testAgents(), nil)

	matches := idx.FuzzyMatchCompany("ABC Company")
	require.Len(t, matches, 2)
	assert.Equal(t, 100.0, matches[0].Score)
	assert.Equal(t, "CHAGT001", matches[0].Agent.AgentID)
	assert.Equal(t, "CHAGT003", matches[1].Agent.AgentID)
}

func TestFuzzyMatchCompanySubstring(t *testing.T) {
	idx := Build(testAgents(), nil)

	matches := idx.FuzzyMatchCompany("XYZ Travels")
	require.NotEmpty(t, matches)
	assert.Equal(t, "CHAGT002", matches[0].Agent.AgentID)
	assert.Equal(t, 90.0, matches[0].Score)
}

func TestFuzzyMatchCompanySuffixVariance(t *testing.T) {
	idx := Build(testAgents(), nil)

	// Different legal-entity punctuation still hits the same company.
	matches := idx.FuzzyMatchCompany("xyz travels pvt. ltd.")
	require.NotEmpty(t, matches)
	assert.Equal(t, "CHAGT002", matches[0].Agent.AgentID)
	assert.Equal(t, 100.0, matches[0].Score)
}

func TestFuzzyMatchCompanyNoMatch(t *testing.T) {
	idx := Build(testAgents(), nil)

	assert.Empty(t, idx.FuzzyMatchCompany("qqqq zzzz"))
	assert.Empty(t, idx.FuzzyMatchCompany(""))
}
