package index

import (
	"sort"

	"github.com/tripdesk/concierge/internal/store"
)

// ActivityRank pairs an agent with its deduplicated login count.
type ActivityRank struct {
	Agent      *store.Agent
	LoginCount int
}

// MostActive returns the n agents with the highest login counts, descending.
// Counts are deduplicated across identifier aliases.
func (e *EntityIndex) MostActive(n int) []ActivityRank {
	ranks := e.activityRanks()
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].LoginCount > ranks[j].LoginCount
	})
	return truncateRanks(ranks, n)
}

// LeastActive returns the n agents with the lowest login counts, ascending.
func (e *EntityIndex) LeastActive(n int) []ActivityRank {
	ranks := e.activityRanks()
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].LoginCount < ranks[j].LoginCount
	})
	return truncateRanks(ranks, n)
}

// NeverLoggedIn returns every agent with no login events under any
// identifier form.
func (e *EntityIndex) NeverLoggedIn() []*store.Agent {
	var out []*store.Agent
	for i := range e.agents {
		a := &e.agents[i]
		if len(e.LoginsFor(a.AgentID)) == 0 {
			out = append(out, a)
		}
	}
	return out
}

func (e *EntityIndex) activityRanks() []ActivityRank {
	ranks := make([]ActivityRank, 0, len(e.agents))
	for i := range e.agents {
		a := &e.agents[i]
		ranks = append(ranks, ActivityRank{Agent: a, LoginCount: len(e.LoginsFor(a.AgentID))})
	}
	return ranks
}

func truncateRanks(ranks []ActivityRank, n int) []ActivityRank {
	if n > 0 && len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}
