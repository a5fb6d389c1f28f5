// Package intent classifies a raw question into zero or more named intents
// via independent pattern matchers, and derives aggregate hints for the
// resolver: result cardinality, whether login data is required, and whether
// the question is out of scope entirely.
package intent

import (
	"regexp"
	"sort"
)

// Data requirement tags carried by each matcher.
const (
	NeedProfile = "profile"
	NeedLogins  = "logins"
)

// Intent labels.
const (
	AgentByEmail       = "AGENT_BY_EMAIL"
	AgentByID          = "AGENT_BY_ID"
	LoginByID          = "LOGIN_BY_ID"
	AgentByName        = "AGENT_BY_NAME"
	LastLogin          = "LAST_LOGIN"
	FirstLogin         = "FIRST_LOGIN"
	LoginCount         = "LOGIN_COUNT"
	LoginHistory       = "LOGIN_HISTORY"
	InactiveAgents     = "INACTIVE_AGENTS"
	MostActive         = "MOST_ACTIVE"
	LeastActive        = "LEAST_ACTIVE"
	RecentLogins       = "RECENT_LOGINS"
	AllAgentsCompany   = "ALL_AGENTS_COMPANY"
	CompanyCount       = "COMPANY_COUNT"
	NationalitySearch  = "NATIONALITY_SEARCH"
	CountQuery         = "COUNT_QUERY"
	DateRange          = "DATE_RANGE"
	MultipleAgentIDs   = "MULTIPLE_AGENTIDS"
	DirtyData          = "DIRTY_DATA"
	AgentsNotInProfile = "AGENTS_NOT_IN_PROFILE"
	ListAll            = "LIST_ALL"
	OutOfScope         = "OUT_OF_SCOPE"
	Unknown            = "UNKNOWN"
)

// Result limits by query cardinality.
const (
	SingleResultLimit = 5
	ListResultLimit   = 20
)

// Matcher is a single named intent detector. Priority makes primacy
// explicit: when several matchers fire, the highest-priority match is the
// primary intent.
type Matcher struct {
	Label       string
	Pattern     *regexp.Regexp
	Description string
	Needs       []string
	Priority    int
	List        bool // list-type intents get the larger result limit
}

// Matched is one detected intent.
type Matched struct {
	Label       string   `json:"intent"`
	Description string   `json:"description"`
	Needs       []string `json:"dataNeeded"`
}

// Result is the aggregate classification of a question.
type Result struct {
	Intents          []Matched `json:"intents"`
	Primary          string    `json:"primaryIntent"`
	IsListQuery      bool      `json:"isListQuery"`
	IsOutOfScope     bool      `json:"isOutOfScope"`
	NeedsLoginData   bool      `json:"needsLoginData"`
	NeedsProfileData bool      `json:"needsProfileData"`
	ResultLimit      int       `json:"resultLimit"`
}

// Has reports whether the given intent label was matched.
func (r Result) Has(label string) bool {
	for _, m := range r.Intents {
		if m.Label == label {
			return true
		}
	}
	return false
}

// Classifier evaluates every matcher against a question. Matchers are held
// sorted by priority descending.
type Classifier struct {
	matchers []Matcher
}

// NewClassifier builds a classifier from the given matchers. The slice is
// copied and sorted by priority descending (stable, so equal priorities keep
// their given order).
func NewClassifier(matchers []Matcher) *Classifier {
	ms := append([]Matcher(nil), matchers...)
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].Priority > ms[j].Priority
	})
	return &Classifier{matchers: ms}
}

// NewDefaultClassifier builds a classifier with the built-in matcher set.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultMatchers())
}

// Classify evaluates every matcher; all matches are kept (classification is
// multi-label) and the highest-priority match becomes the primary intent.
func (c *Classifier) Classify(question string) Result {
	var r Result

	for _, m := range c.matchers {
		if !m.Pattern.MatchString(question) {
			continue
		}
		r.Intents = append(r.Intents, Matched{
			Label:       m.Label,
			Description: m.Description,
			Needs:       m.Needs,
		})
		if r.Primary == "" {
			r.Primary = m.Label
		}
		if m.List {
			r.IsListQuery = true
		}
		if m.Label == OutOfScope {
			r.IsOutOfScope = true
		}
		for _, need := range m.Needs {
			switch need {
			case NeedLogins:
				r.NeedsLoginData = true
			case NeedProfile:
				r.NeedsProfileData = true
			}
		}
	}

	if r.Primary == "" {
		r.Primary = Unknown
	}
	r.ResultLimit = SingleResultLimit
	if r.IsListQuery {
		r.ResultLimit = ListResultLimit
	}
	return r
}

// DefaultMatchers returns the built-in matcher set. Priorities descend in
// steps of ten so override files can slot new matchers between existing
// ones.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{
			Label:       AgentByEmail,
			Pattern:     regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
			Description: "Find agent by email",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    220,
		},
		{
			Label:       AgentByID,
			Pattern:     regexp.MustCompile(`(?i)CHAGT\d+`),
			Description: "Find agent by AgentID",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    210,
		},
		{
			Label:       LoginByID,
			Pattern:     regexp.MustCompile(`(?i)\b(?:login\s*)?id\s*\d+\b`),
			Description: "Find login by ID",
			Needs:       []string{NeedLogins, NeedProfile},
			Priority:    200,
		},
		{
			Label:       AgentByName,
			Pattern:     regexp.MustCompile(`(?i)who is|find|details|info|tell me about|profile|agent.*name`),
			Description: "Find agent by name",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    190,
		},
		{
			Label:       LastLogin,
			Pattern:     regexp.MustCompile(`(?i)last\s*(login|seen|active|access|time)|when.*last.*login|most\s*recent\s*login`),
			Description: "Get last login date",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    180,
		},
		{
			Label:       FirstLogin,
			Pattern:     regexp.MustCompile(`(?i)first\s*(login|recorded|entry)|earliest\s*login`),
			Description: "Get first login date",
			Needs:       []string{NeedLogins},
			Priority:    170,
		},
		{
			Label:       LoginCount,
			Pattern:     regexp.MustCompile(`(?i)how many times.*login|login\s*count|total\s*login|frequency|times.*login`),
			Description: "Count logins",
			Needs:       []string{NeedLogins, NeedProfile},
			Priority:    160,
		},
		{
			Label:       LoginHistory,
			Pattern:     regexp.MustCompile(`(?i)login\s*history|all\s*login|when.*login|login.*dates`),
			Description: "Full login history",
			Needs:       []string{NeedLogins, NeedProfile},
			Priority:    150,
		},
		{
			Label:       InactiveAgents,
			Pattern:     regexp.MustCompile(`(?i)not\s*login|inactive|haven.t\s*login|no\s*login|dormant|never\s*logged`),
			Description: "Agents who haven't logged in",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    140,
		},
		{
			Label:       MostActive,
			Pattern:     regexp.MustCompile(`(?i)most\s*(active|login)|highest\s*login|top\s*agent|who.*logged.*most|most\s*frequent`),
			Description: "Most active agents",
			Needs:       []string{NeedLogins, NeedProfile},
			Priority:    130,
			List:        true,
		},
		{
			Label:       LeastActive,
			Pattern:     regexp.MustCompile(`(?i)least\s*(active|login)|lowest\s*login|fewest\s*login|who.*logged.*least`),
			Description: "Least active agents",
			Needs:       []string{NeedLogins, NeedProfile},
			Priority:    120,
			List:        true,
		},
		{
			Label:       RecentLogins,
			Pattern:     regexp.MustCompile(`(?i)recent|latest|today|this\s*week|this\s*month|last\s*\d+\s*days|on\s*\d{4}`),
			Description: "Recently logged in agents",
			Needs:       []string{NeedLogins, NeedProfile},
			Priority:    110,
			List:        true,
		},
		{
			Label:       AllAgentsCompany,
			Pattern:     regexp.MustCompile(`(?i)all\s*agent|list\s*agent|who\s*work|agent.*company|company.*agent|agents?\s*from`),
			Description: "List all agents in a company",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    100,
			List:        true,
		},
		{
			Label:       CompanyCount,
			Pattern:     regexp.MustCompile(`(?i)how\s*many.*company|count.*agent.*company|total.*agent.*company`),
			Description: "Count agents per company",
			Needs:       []string{NeedProfile},
			Priority:    90,
		},
		{
			Label:       NationalitySearch,
			Pattern:     regexp.MustCompile(`(?i)nationality|citizen|from\s+[A-Z][a-z]+|country|agents?\s*from\s*[A-Z]`),
			Description: "Search by nationality",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    80,
			List:        true,
		},
		{
			Label:       CountQuery,
			Pattern:     regexp.MustCompile(`(?i)how\s*many|count|total|number\s*of`),
			Description: "Count/aggregate query",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    70,
			List:        true,
		},
		{
			Label:       DateRange,
			Pattern:     regexp.MustCompile(`(?i)between|from\s+\d|to\s+\d|after|before|since|until|\d{4}-\d{2}-\d{2}|on\s*\d{4}`),
			Description: "Date range query",
			Needs:       []string{NeedLogins, NeedProfile},
			Priority:    60,
		},
		{
			Label:       MultipleAgentIDs,
			Pattern:     regexp.MustCompile(`(?i)multiple\s*agent|different\s*agent|same\s*email|duplicate`),
			Description: "Agents with multiple AgentIDs",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    50,
		},
		{
			Label:       DirtyData,
			Pattern:     regexp.MustCompile(`(?i)dirty\s*data|spaces\s*in|mixed\s*case|data\s*quality|inconsistent`),
			Description: "Detect dirty data",
			Needs:       []string{NeedProfile, NeedLogins},
			Priority:    40,
		},
		{
			Label:       AgentsNotInProfile,
			Pattern:     regexp.MustCompile(`(?i)not\s*in\s*profile|login.*not.*profile|missing\s*profile`),
			Description: "Agents in login data but not in profile",
			Needs:       []string{NeedLogins, NeedProfile},
			Priority:    30,
			List:        true,
		},
		{
			Label:       ListAll,
			Pattern:     regexp.MustCompile(`(?i)list\s*all|show\s*all|every\s*agent|all\s*agents|give\s*me\s*all`),
			Description: "List all agents",
			Needs:       []string{NeedProfile},
			Priority:    20,
			List:        true,
		},
		{
			Label:       OutOfScope,
			Pattern:     regexp.MustCompile(`(?i)weather|news|joke|capital\s*of|who\s*is\s*president|stock\s*price|recipe`),
			Description: "Not related to travel agent records",
			Needs:       nil,
			Priority:    10,
		},
	}
}
