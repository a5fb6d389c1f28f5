package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/concierge/internal/store"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 10, 0, 0, 0, time.UTC)
}

func testAgents() []store.Agent {
	return []store.Agent{
		{AgentID: "CHAGT001", Name: "John Smith", Email: "john.smith@example.com", Company: "ABC Company", Nationality: "Indian", CreatedAt: day(1)},
		{AgentID: "CHAGT002", Name: "Jane Doe", Email: "jane.doe@example.com", Company: "XYZ Travels Pvt Ltd", Nationality: "British", CreatedAt: day(2)},
		{AgentID: "CHAGT003", Name: "Ahmed Khan", Email: "ahmed.khan@example.com", Company: "ABC Company", Nationality: "Indian", CreatedAt: day(3)},
	}
}

func testLogins() []store.LoginEvent {
	return []store.LoginEvent{
		{ID: 1, AgentRef: "CHAGT001", LoginAt: day(10)},
		{ID: 2, AgentRef: "john.smith@example.com", LoginAt: day(12)},
		{ID: 3, AgentRef: "CHAGT001", LoginAt: day(11)},
		{ID: 4, AgentRef: "CHAGT002", LoginAt: day(5)},
		{ID: 452, AgentRef: "CHAGT099", LoginAt: day(20)},
	}
}

func TestResolveIdentifier(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	a, ok := idx.ResolveIdentifier("chagt001")
	require.True(t, ok)
	assert.Equal(t, "John Smith", a.Name)

	a, ok = idx.ResolveIdentifier("JANE.DOE@EXAMPLE.COM")
	require.True(t, ok)
	assert.Equal(t, "CHAGT002", a.AgentID)

	_, ok = idx.ResolveIdentifier("CHAGT999")
	assert.False(t, ok)

	_, ok = idx.ResolveIdentifier("")
	assert.False(t, ok)
}

func TestLoginByID(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	ev, ok := idx.LoginByID(452)
	require.True(t, ok)
	assert.Equal(t, "CHAGT099", ev.AgentRef)

	_, ok = idx.LoginByID(9999)
	assert.False(t, ok)
}

func TestLoginsForDeduplicatesAliases(t *testing.T) {
	agents := testAgents()
	logins := testLogins()
	// The same event is reachable under both the agent ID and the email.
	logins = append(logins, store.LoginEvent{ID: 2, AgentRef: "CHAGT001", LoginAt: day(12)})

	idx := Build(agents, logins)

	events := idx.LoginsFor("CHAGT001")
	require.Len(t, events, 3)

	seen := make(map[int64]int)
	for _, ev := range events {
		seen[ev.ID]++
	}
	assert.Equal(t, 1, seen[2], "event reachable via both aliases must count once")
}

func TestLoginsForSortsNewestFirst(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	events := idx.LoginsFor("CHAGT001")
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].LoginAt.After(events[i-1].LoginAt),
			"events must be ordered newest first")
	}
	assert.Equal(t, day(12), events[0].LoginAt)
}

func TestLoginsForUnknownIdentifier(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	// Login-only identifier: events exist but no profile does.
	events := idx.LoginsFor("CHAGT099")
	require.Len(t, events, 1)
	assert.Equal(t, int64(452), events[0].ID)

	assert.Empty(t, idx.LoginsFor("nobody@example.com"))
}

func TestByNationality(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	indians := idx.ByNationality("indian")
	require.Len(t, indians, 2)
	assert.Equal(t, "CHAGT001", indians[0].AgentID)
	assert.Equal(t, "CHAGT003", indians[1].AgentID)

	assert.Equal(t, []string{"british", "indian"}, idx.Nationalities())
}

func TestTokenOverlap(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	matches := idx.TokenOverlap([]string{"john", "smith"}, 5)
	require.Len(t, matches, 1)
	assert.Equal(t, "CHAGT001", matches[0].Agent.AgentID)
	assert.Equal(t, 40.0, matches[0].Score)
}

func TestTokenOverlapRespectsLimit(t *testing.T) {
	idx := Build(testAgents(), testLogins())

	// "company" appears in two agents' company names.
	matches := idx.TokenOverlap([]string{"company"}, 1)
	assert.Len(t, matches, 1)
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Who is John Smith?")
	assert.Equal(t, []string{"who", "john", "smith"}, tokens)

	assert.Empty(t, Tokenize("a an of"))
}
