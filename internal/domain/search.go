package domain

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Suggestion scoring weights
	ScoreExactName     = 100.0
	ScorePrefixName    = 75.0
	ScoreSubstringName = 50.0
	ScoreDescription   = 20.0
	ScoreEligibility   = 10.0

	// DefaultSuggestLimit mirrors the search box dropdown size.
	DefaultSuggestLimit = 5
)

// Candidate is a scholarship matched by a search query.
type Candidate struct {
	Scholarship *Scholarship
	Score       float64
}

// NormalizeText lowercases s and strips diacritics so "Bourse Étudiant"
// matches "etudiant".
func NormalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(strings.TrimSpace(result))
}

// MatchesQuery reports whether the normalized query appears in the name,
// description or eligibility. An empty query matches everything.
func (s *Scholarship) MatchesQuery(query string) bool {
	q := NormalizeText(query)
	if q == "" {
		return true
	}
	return strings.Contains(NormalizeText(s.Name), q) ||
		strings.Contains(NormalizeText(s.Description), q) ||
		strings.Contains(NormalizeText(s.Eligibility), q)
}

// FilterScholarships keeps records matching both the query and the based
// filter, preserving catalog order.
func FilterScholarships(list []*Scholarship, query, based string) []*Scholarship {
	out := make([]*Scholarship, 0, len(list))
	for _, s := range list {
		if s == nil || !s.MatchesQuery(query) || !s.MatchesBased(based) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ScoreScholarship rates how well a record matches the query; 0 means no match.
func ScoreScholarship(query string, s *Scholarship) float64 {
	q := NormalizeText(query)
	if s == nil || q == "" {
		return 0.0
	}

	name := NormalizeText(s.Name)
	switch {
	case name == q:
		return ScoreExactName
	case strings.HasPrefix(name, q):
		return ScorePrefixName
	case strings.Contains(name, q):
		return ScoreSubstringName
	case strings.Contains(NormalizeText(s.Description), q):
		return ScoreDescription
	case strings.Contains(NormalizeText(s.Eligibility), q):
		return ScoreEligibility
	}
	return 0.0
}

// RankCandidates scores every record and returns matches best first.
// Equal scores keep catalog order.
func RankCandidates(query string, list []*Scholarship) []*Candidate {
	candidates := make([]*Candidate, 0, len(list))
	for _, s := range list {
		score := ScoreScholarship(query, s)
		if score == 0.0 {
			continue
		}
		candidates = append(candidates, &Candidate{Scholarship: s, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// Suggest returns at most limit ranked matches for the search dropdown.
// limit <= 0 uses DefaultSuggestLimit.
func Suggest(query string, list []*Scholarship, limit int) []*Scholarship {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	candidates := RankCandidates(query, list)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]*Scholarship, len(candidates))
	for i, c := range candidates {
		out[i] = c.Scholarship
	}
	return out
}
