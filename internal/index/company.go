package index

import (
	"regexp"
	"sort"
	"strings"
)

// Company name scoring tiers. Substring containment ranks just below exact
// equality; word-overlap scores stay strictly below both.
const (
	scoreCompanyExact     = 100
	scoreCompanySubstring = 90
	scoreCompanyWordCap   = 85

	companyWordFuzzyThreshold = 0.75
	companyWholeSimThreshold  = 0.65
)

var (
	pvtLtdPattern = regexp.MustCompile(`(?i)pvt\.?\s*ltd\.?`)
	coWordPattern = regexp.MustCompile(`(?i)\bco\b\.?`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// NormalizeCompany applies a small set of canonicalizations that reduce
// false mismatches from formatting variance: legal-entity suffixes are
// collapsed, "&" becomes "and", and the abbreviated word "co" becomes
// "company". The result is lowercase. Normalization is idempotent.
func NormalizeCompany(s string) string {
	s = strings.ToLower(s)
	s = pvtLtdPattern.ReplaceAllString(s, "pvt ltd")
	s = strings.ReplaceAll(s, "&", "and")
	s = coWordPattern.ReplaceAllString(s, "company")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FuzzyMatchCompany ranks companies against the query term and returns their
// agents concatenated in company score order. Agents are not deduplicated
// across companies; callers dedupe by agent ID.
//
// Scoring: 100 for exact normalized equality, 90 for substring containment
// in either direction, a weighted word-overlap score capped at 85 (exact
// word +2, prefix/substring word +1, fuzzy word >= 0.75 similarity +0.5),
// and as a last resort a whole-string similarity >= 0.65 scaled to a score.
func (e *EntityIndex) FuzzyMatchCompany(term string) []Match {
	normTerm := NormalizeCompany(term)
	if normTerm == "" {
		return nil
	}
	termWords := strings.Fields(normTerm)

	type companyMatch struct {
		key   string
		score float64
	}
	var companies []companyMatch

	for _, key := range e.companyKeys {
		normCompany := NormalizeCompany(key)

		if normCompany == normTerm {
			companies = append(companies, companyMatch{key: key, score: scoreCompanyExact})
			continue
		}
		if strings.Contains(normCompany, normTerm) || strings.Contains(normTerm, normCompany) {
			companies = append(companies, companyMatch{key: key, score: scoreCompanySubstring})
			continue
		}

		companyWords := strings.Fields(normCompany)
		points := 0.0
		for _, tw := range termWords {
			best := 0.0
			for _, cw := range companyWords {
				switch {
				case tw == cw:
					best = maxFloat(best, 2)
				case strings.HasPrefix(cw, tw) || strings.Contains(cw, tw):
					best = maxFloat(best, 1)
				case Similarity(tw, cw) >= companyWordFuzzyThreshold:
					best = maxFloat(best, 0.5)
				}
			}
			points += best
		}
		if points > 0 {
			score := points * 20
			if score > scoreCompanyWordCap {
				score = scoreCompanyWordCap
			}
			companies = append(companies, companyMatch{key: key, score: score})
			continue
		}

		if sim := Similarity(normTerm, normCompany); sim >= companyWholeSimThreshold {
			companies = append(companies, companyMatch{key: key, score: sim * 100})
		}
	}

	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].score > companies[j].score
	})

	var matches []Match
	for _, cm := range companies {
		for _, a := range e.byCompany[cm.key] {
			matches = append(matches, Match{Agent: a, Score: cm.score})
		}
	}
	return matches
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
