package resolve

import (
	"fmt"
	"strings"
	"time"

	"github.com/tripdesk/concierge/internal/index"
	"github.com/tripdesk/concierge/internal/store"
)

const dateLayout = "02-Jan-2006"

// recentLoginLimit bounds how many individual login dates a snippet carries.
const recentLoginLimit = 5

// Fields is the structured form of a context snippet. The deterministic
// extractor consumes these directly instead of re-parsing the rendered text.
type Fields struct {
	AgentID        string
	Name           string
	Email          string
	Company        string
	Nationality    string
	Created        *time.Time
	LastLogin      *time.Time
	TotalLogins    int
	EarliestLogin  *time.Time
	RecentLogins   []time.Time
	LoginID        int64
	LoginDate      *time.Time
	MissingProfile bool
}

// Snippet is one resolved context record: a stable identifier, the rendered
// text handed to the prompt builder, an ordinal relevance score, and the
// structured fields the text was rendered from.
type Snippet struct {
	ID     string
	Text   string
	Score  float64
	Fields Fields
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// buildAgentSnippet renders an agent profile snippet, embedding a login
// summary when includeLogins is set and a short history when fullHistory is
// also set.
func buildAgentSnippet(idx *index.EntityIndex, a *store.Agent, score float64, includeLogins, fullHistory bool) Snippet {
	f := Fields{
		AgentID:     a.AgentID,
		Name:        a.Name,
		Email:       a.Email,
		Company:     a.Company,
		Nationality: a.Nationality,
	}
	if !a.CreatedAt.IsZero() {
		created := a.CreatedAt
		f.Created = &created
	}

	var b strings.Builder
	fmt.Fprintf(&b, "AgentID: %s\n", orNA(a.AgentID))
	fmt.Fprintf(&b, "Name: %s\n", orNA(a.Name))
	fmt.Fprintf(&b, "Email: %s\n", orNA(a.Email))
	fmt.Fprintf(&b, "Company: %s\n", orNA(a.Company))
	fmt.Fprintf(&b, "Nationality: %s\n", orNA(a.Nationality))
	if f.Created != nil {
		fmt.Fprintf(&b, "Created: %s", formatDate(*f.Created))
	} else {
		b.WriteString("Created: N/A")
	}

	if includeLogins {
		logins := idx.LoginsFor(a.AgentID)
		if len(logins) > 0 {
			last := logins[0].LoginAt
			earliest := logins[len(logins)-1].LoginAt
			f.LastLogin = &last
			f.TotalLogins = len(logins)
			f.EarliestLogin = &earliest

			fmt.Fprintf(&b, "\nLast Login: %s", formatDate(last))
			fmt.Fprintf(&b, "\nTotal Logins: %d", len(logins))
			if fullHistory {
				fmt.Fprintf(&b, "\nFirst Login: %s", formatDate(earliest))
				if len(logins) > 1 {
					n := len(logins)
					if n > recentLoginLimit {
						n = recentLoginLimit
					}
					dates := make([]string, 0, n)
					for _, ev := range logins[:n] {
						f.RecentLogins = append(f.RecentLogins, ev.LoginAt)
						dates = append(dates, formatDate(ev.LoginAt))
					}
					fmt.Fprintf(&b, "\nLogin History: %s", strings.Join(dates, ", "))
				}
			}
		} else if a.LastLogin != nil {
			f.LastLogin = a.LastLogin
			fmt.Fprintf(&b, "\nLast Login: %s", formatDate(*a.LastLogin))
		}
	}

	return Snippet{ID: a.AgentID, Text: b.String(), Score: score, Fields: f}
}

// buildOrphanLoginSnippet renders a summary for an identifier that appears
// only in login history, with no matching profile record.
func buildOrphanLoginSnippet(identifier string, logins []store.LoginEvent) Snippet {
	last := logins[0].LoginAt
	f := Fields{
		AgentID:        identifier,
		LastLogin:      &last,
		TotalLogins:    len(logins),
		MissingProfile: true,
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Login Information for %s:\n", identifier)
	fmt.Fprintf(&b, "- Last Login Date: %s\n", formatDate(last))
	fmt.Fprintf(&b, "- Total Logins: %d\n", len(logins))
	b.WriteString("- Note: No agent profile found in database")
	return Snippet{ID: identifier, Text: b.String(), Score: 100, Fields: f}
}

// buildLoginEventSnippet renders a single login event whose owning agent has
// no profile record.
func buildLoginEventSnippet(ev store.LoginEvent) Snippet {
	loginAt := ev.LoginAt
	f := Fields{
		AgentID:        ev.AgentRef,
		LoginID:        ev.ID,
		LoginDate:      &loginAt,
		MissingProfile: true,
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Login Record (ID: %d):\n", ev.ID)
	fmt.Fprintf(&b, "- Agent: %s\n", ev.AgentRef)
	fmt.Fprintf(&b, "- Login Date: %s\n", formatDate(ev.LoginAt))
	b.WriteString("- Note: No agent profile found in database")
	return Snippet{ID: fmt.Sprintf("LOGIN_%d", ev.ID), Text: b.String(), Score: 100, Fields: f}
}
