package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleCatalog() []*Scholarship {
	return []*Scholarship{
		{ID: "1", Name: "HOPE Scholarship", Based: "Merit", Description: "Georgia lottery funded award", Eligibility: "Georgia residents"},
		{ID: "2", Name: "Ronald McDonald House Charities", Based: "Need", Description: "Supports students with hope for the future"},
		{ID: "3", Name: "Doodle for Google", Based: "Merit", Eligibility: "K-12 students"},
		{ID: "4", Name: "Bourse Étudiante Québec", Based: "Both need and merit"},
		{ID: "5", Name: "Hope", Based: ""},
	}
}

func ids(list []*Scholarship) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func TestFilterScholarships(t *testing.T) {
	catalog := sampleCatalog()

	tests := []struct {
		name     string
		query    string
		based    string
		expected []string
	}{
		{"empty query all types", "", "all", []string{"1", "2", "3", "4", "5"}},
		{"query matches name and description", "hope", "", []string{"1", "2", "5"}},
		{"query matches eligibility", "k-12", "all", []string{"3"}},
		{"diacritics ignored", "etudiante", "all", []string{"4"}},
		{"need filter", "", "need", []string{"2", "4"}},
		{"merit filter is substring", "", "merit", []string{"1", "3", "4"}},
		{"both filter", "", "both", []string{"4"}},
		{"query and filter combined", "hope", "merit", []string{"1"}},
		{"unknown filter behaves like all", "doodle", "whatever", []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterScholarships(catalog, tt.query, tt.based)
			assert.Equal(t, tt.expected, ids(got))
		})
	}
}

func TestRankCandidatesOrdering(t *testing.T) {
	candidates := RankCandidates("hope", sampleCatalog())

	// exact name, prefix name, then description match
	assert.Equal(t, []string{"5", "1", "2"}, ids([]*Scholarship{
		candidates[0].Scholarship, candidates[1].Scholarship, candidates[2].Scholarship,
	}))
	assert.Equal(t, ScoreExactName, candidates[0].Score)
	assert.Equal(t, ScorePrefixName, candidates[1].Score)
	assert.Equal(t, ScoreDescription, candidates[2].Score)
}

func TestSuggestLimit(t *testing.T) {
	catalog := sampleCatalog()

	assert.Len(t, Suggest("o", catalog, 2), 2)
	assert.Len(t, Suggest("o", catalog, 0), DefaultSuggestLimit)
	assert.Empty(t, Suggest("", catalog, 5))
	assert.Empty(t, Suggest("zzz", catalog, 5))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "etudiante quebec", NormalizeText("  Étudiante Québec "))
	assert.Equal(t, "plain", NormalizeText("PLAIN"))
}
