// Package extract derives an answer directly from resolved context snippets
// when every generation backend is unavailable. It makes no external calls
// and never fails: the worst case is a generic "no information" reply.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tripdesk/concierge/internal/index"
	"github.com/tripdesk/concierge/internal/resolve"
)

const (
	noInformation = "No information found in the database."
	dateLayout    = "02-Jan-2006"
)

// Question-vocabulary checks, evaluated in fixed priority order.
var (
	countQueryPattern       = regexp.MustCompile(`total|count|how many|number of|all candidates|all agents`)
	loginQueryPattern       = regexp.MustCompile(`login|last\s*login|login\s*time|login\s*date|when.*log`)
	companyQueryPattern     = regexp.MustCompile(`company|work.*at|works.*at|employed|organization|firm`)
	emailQueryPattern       = regexp.MustCompile(`email|contact|mail|reach`)
	agentIDQueryPattern     = regexp.MustCompile(`agent\s*id|agentid|id\s*is|identification`)
	nationalityQueryPattern = regexp.MustCompile(`nationality|country|from\s*where|origin`)
	listQueryPattern        = regexp.MustCompile(`list|all|show.*all|give.*all|candidates|employees|agents|people|members`)
	totalDatabasePattern    = regexp.MustCompile(`total.*database|all.*database|how many.*total|entire database`)
)

var nameQueryStopWords = map[string]struct{}{
	"what": {}, "is": {}, "the": {}, "of": {}, "for": {}, "company": {},
	"name": {}, "candidate": {}, "work": {}, "at": {}, "works": {},
	"given": {}, "this": {}, "tell": {}, "me": {}, "about": {}, "who": {},
	"where": {}, "when": {}, "how": {}, "does": {}, "do": {}, "can": {},
	"will": {},
}

// Extractor answers questions from structured snippet fields. The entity
// index is consulted only for whole-database counts.
type Extractor struct {
	idx *index.EntityIndex
}

func NewExtractor(idx *index.EntityIndex) *Extractor {
	return &Extractor{idx: idx}
}

// Extract produces a short textual answer from the snippets.
func (e *Extractor) Extract(question string, snippets []resolve.Snippet) string {
	q := strings.ToLower(strings.TrimSpace(question))

	agents := profileFields(snippets)
	if len(agents) == 0 {
		return noInformation
	}

	switch {
	case countQueryPattern.MatchString(q):
		return e.answerCount(q, agents)
	case loginQueryPattern.MatchString(q):
		return answerLogin(agents)
	case companyQueryPattern.MatchString(q):
		return answerCompany(q, agents)
	case emailQueryPattern.MatchString(q):
		return answerEmail(agents)
	case agentIDQueryPattern.MatchString(q):
		return answerAgentID(agents)
	case nationalityQueryPattern.MatchString(q):
		return answerNationality(agents)
	case listQueryPattern.MatchString(q):
		return answerList(agents)
	}
	return formatAgentInfo(agents[0])
}

// profileFields keeps the snippets that carry enough identity to answer
// from. Login-only records qualify via their identifier.
func profileFields(snippets []resolve.Snippet) []resolve.Fields {
	var out []resolve.Fields
	for _, s := range snippets {
		f := s.Fields
		if f.Name == "" {
			if !f.MissingProfile {
				continue
			}
			f.Name = f.AgentID
		}
		out = append(out, f)
	}
	return out
}

func (e *Extractor) answerCount(q string, agents []resolve.Fields) string {
	if totalDatabasePattern.MatchString(q) && e.idx != nil {
		return fmt.Sprintf("Total candidates in the database: %d", len(e.idx.Agents()))
	}

	company := agents[0].Company
	allSame := company != ""
	for _, a := range agents {
		if a.Company != company {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Sprintf("There are %d agent(s) from %s.", len(agents), company)
	}
	return fmt.Sprintf("Found %d agent(s) matching your query.", len(agents))
}

func answerLogin(agents []resolve.Fields) string {
	if len(agents) == 1 {
		a := agents[0]
		if a.LastLogin != nil {
			answer := fmt.Sprintf("%s last logged in on %s.", a.Name, formatDate(a.LastLogin))
			if a.TotalLogins > 0 {
				answer += fmt.Sprintf(" Total logins: %d", a.TotalLogins)
			}
			return answer
		}
		return fmt.Sprintf("No login information available for %s. Login records may not be linked to AgentID %s.", a.Name, a.AgentID)
	}

	lines := make([]string, len(agents))
	for i, a := range agents {
		if a.LastLogin != nil {
			lines[i] = fmt.Sprintf("%s: %s", a.Name, formatDate(a.LastLogin))
		} else {
			lines[i] = fmt.Sprintf("%s: No login data", a.Name)
		}
	}
	return strings.Join(lines, "\n")
}

func answerCompany(q string, agents []resolve.Fields) string {
	if name := nameFromQuestion(q); name != "" && len(agents) > 1 {
		if match := findByName(agents, name); match != nil {
			return fmt.Sprintf("%s works at %s.", match.Name, match.Company)
		}
	}
	if len(agents) == 1 {
		return fmt.Sprintf("%s works at %s.", agents[0].Name, agents[0].Company)
	}

	company := agents[0].Company
	allSame := true
	for _, a := range agents {
		if a.Company != company {
			allSame = false
			break
		}
	}
	if allSame {
		lines := make([]string, len(agents))
		for i, a := range agents {
			lines[i] = fmt.Sprintf("%d. %s", i+1, a.Name)
		}
		return fmt.Sprintf("Agents from %s:\n\n%s", company, strings.Join(lines, "\n"))
	}

	lines := make([]string, len(agents))
	for i, a := range agents {
		lines[i] = fmt.Sprintf("%d. %s - %s", i+1, a.Name, a.Company)
	}
	return strings.Join(lines, "\n")
}

func answerEmail(agents []resolve.Fields) string {
	if len(agents) == 1 {
		return fmt.Sprintf("%s's email: %s", agents[0].Name, agents[0].Email)
	}
	lines := make([]string, len(agents))
	for i, a := range agents {
		lines[i] = fmt.Sprintf("%s: %s", a.Name, a.Email)
	}
	return strings.Join(lines, "\n")
}

func answerAgentID(agents []resolve.Fields) string {
	if len(agents) == 1 {
		return fmt.Sprintf("%s's AgentID: %s", agents[0].Name, agents[0].AgentID)
	}
	lines := make([]string, len(agents))
	for i, a := range agents {
		lines[i] = fmt.Sprintf("%s: %s", a.Name, a.AgentID)
	}
	return strings.Join(lines, "\n")
}

func answerNationality(agents []resolve.Fields) string {
	if len(agents) == 1 {
		return fmt.Sprintf("%s is from %s.", agents[0].Name, agents[0].Nationality)
	}
	lines := make([]string, len(agents))
	for i, a := range agents {
		lines[i] = fmt.Sprintf("%s: %s", a.Name, a.Nationality)
	}
	return strings.Join(lines, "\n")
}

func answerList(agents []resolve.Fields) string {
	if len(agents) == 1 {
		return formatAgentInfo(agents[0])
	}

	company := agents[0].Company
	allSame := company != ""
	for _, a := range agents {
		if a.Company != company {
			allSame = false
			break
		}
	}
	if allSame {
		lines := make([]string, len(agents))
		for i, a := range agents {
			lines[i] = fmt.Sprintf("%d. %s", i+1, a.Name)
		}
		return fmt.Sprintf("Agents from %s:\n\n%s", company, strings.Join(lines, "\n"))
	}

	lines := make([]string, len(agents))
	for i, a := range agents {
		lines[i] = fmt.Sprintf("%d. %s (%s)", i+1, a.Name, a.Company)
	}
	return fmt.Sprintf("Found %d agents:\n\n%s", len(agents), strings.Join(lines, "\n"))
}

// nameFromQuestion strips interrogative filler, leaving the words likely to
// be a person's name.
func nameFromQuestion(q string) string {
	var words []string
	for _, w := range strings.Fields(q) {
		if _, ok := nameQueryStopWords[strings.ToLower(w)]; !ok {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

func findByName(agents []resolve.Fields, name string) *resolve.Fields {
	parts := strings.Fields(name)
	for i := range agents {
		lower := strings.ToLower(agents[i].Name)
		if strings.Contains(lower, name) {
			return &agents[i]
		}
		all := len(parts) > 0
		for _, p := range parts {
			if !strings.Contains(lower, p) {
				all = false
				break
			}
		}
		if all {
			return &agents[i]
		}
	}
	return nil
}

func formatAgentInfo(a resolve.Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", a.Name)
	fmt.Fprintf(&b, "Company: %s\n", a.Company)
	fmt.Fprintf(&b, "Email: %s\n", a.Email)
	fmt.Fprintf(&b, "AgentID: %s", a.AgentID)
	if a.Nationality != "" {
		fmt.Fprintf(&b, "\nNationality: %s", a.Nationality)
	}
	if a.LastLogin != nil {
		fmt.Fprintf(&b, "\nLast Login: %s", formatDate(a.LastLogin))
	}
	return b.String()
}

func formatDate(t *time.Time) string {
	return t.Format(dateLayout)
}
