package calendar

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

var testNow = time.Date(2026, time.October, 18, 15, 4, 5, 0, time.UTC)

func testCatalog() []*domain.Scholarship {
	return []*domain.Scholarship{
		{ID: "42", Name: "Early Bird", Deadline: "Early December normally the 1st"},
		{ID: "7", Name: "Split Deadline", Deadline: "November 15/ December 2"},
		{ID: "1", Name: "Past", Deadline: "February 13, 2026"},
		{ID: "2", Name: "Rolling", Deadline: "Rolling admissions"},
		{ID: "3", Name: "No Deadline"},
		{ID: "4", Name: "Vague", Deadline: "whenever the committee meets"},
		{ID: "5", Name: "Next Year", Deadline: "March 2027"},
		{ID: "6", Name: "Same Day", Deadline: "November 15, 2026"},
		{ID: "8", Name: "Month End", Deadline: "November 30, 2026"},
	}
}

func ids(list []*domain.Scholarship) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2026, time.February, 28},
		{2000, time.February, 29},
		{1900, time.February, 28},
		{2026, time.April, 30},
		{2026, time.December, 31},
	}

	for _, tt := range tests {
		t.Run(time.Date(tt.year, tt.month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"), func(t *testing.T) {
			assert.Equal(t, tt.want, DaysInMonth(tt.year, tt.month))
		})
	}
}

func TestFirstWeekdayOfMonth(t *testing.T) {
	assert.Equal(t, time.Thursday, FirstWeekdayOfMonth(2026, time.October))
	assert.Equal(t, time.Sunday, FirstWeekdayOfMonth(2026, time.November))
	assert.Equal(t, time.Tuesday, FirstWeekdayOfMonth(2026, time.December))
	assert.Equal(t, time.Sunday, FirstWeekdayOfMonth(2026, time.February))
	assert.Equal(t, time.Thursday, FirstWeekdayOfMonth(2024, time.February))
}

func TestScholarshipsByDay(t *testing.T) {
	catalog := testCatalog()

	dec := ScholarshipsByDay(catalog, 2026, time.December, testNow)
	assert.Equal(t, map[int][]string{1: {"42"}}, mapIDs(dec))

	nov := ScholarshipsByDay(catalog, 2026, time.November, testNow)
	assert.Equal(t, map[int][]string{15: {"7", "6"}, 30: {"8"}}, mapIDs(nov), "same-day records keep catalog order")

	feb := ScholarshipsByDay(catalog, 2026, time.February, testNow)
	assert.Equal(t, map[int][]string{13: {"1"}}, mapIDs(feb))

	empty := ScholarshipsByDay(catalog, 2026, time.July, testNow)
	assert.Empty(t, empty)
}

func TestScholarshipsByDay_SplitDeadlineOnlyOnFirstDate(t *testing.T) {
	catalog := []*domain.Scholarship{{ID: "7", Deadline: "November 15/ December 2"}}

	assert.Len(t, ScholarshipsByDay(catalog, 2026, time.November, testNow)[15], 1)
	assert.Empty(t, ScholarshipsByDay(catalog, 2026, time.December, testNow))
}

func TestScholarshipsByDay_Idempotent(t *testing.T) {
	catalog := testCatalog()

	first := ScholarshipsByDay(catalog, 2026, time.November, testNow)
	second := ScholarshipsByDay(catalog, 2026, time.November, testNow)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("grouping changed between calls (-first +second):\n%s", diff)
	}
}

func TestBuildMonth_FiveRows(t *testing.T) {
	m := BuildMonth(testCatalog(), 2026, time.November, testNow, false)

	assert.Equal(t, 2026, m.Year)
	assert.Equal(t, time.November, m.Month)
	assert.Equal(t, 30, m.DaysInMonth)
	assert.Equal(t, time.Sunday, m.FirstWeekday)
	require.Len(t, m.Cells, 35)
	assert.Len(t, m.Weeks(), 5)

	assert.Equal(t, 1, m.Cells[0].Day)
	assert.True(t, m.Cells[0].InMonth)
	assert.Equal(t, []string{"7", "6"}, ids(m.Cells[14].Scholarships))

	// Trailing overflow belongs to December
	overflow := m.Cells[30]
	assert.False(t, overflow.InMonth)
	assert.Equal(t, time.December, overflow.Date.Month())
	assert.Equal(t, []string{"42"}, ids(overflow.Scholarships))
}

func TestBuildMonth_LeadingOverflow(t *testing.T) {
	m := BuildMonth(testCatalog(), 2026, time.December, testNow, false)

	require.Len(t, m.Cells, 35)
	assert.Equal(t, time.Tuesday, m.FirstWeekday)

	lead := m.Cells[:2]
	assert.Equal(t, []int{29, 30}, []int{lead[0].Day, lead[1].Day})
	assert.False(t, lead[1].InMonth)
	assert.Equal(t, []string{"8"}, ids(lead[1].Scholarships))

	assert.True(t, m.Cells[2].InMonth)
	assert.Equal(t, []string{"42"}, ids(m.Cells[2].Scholarships))
}

func TestBuildMonth_SixRows(t *testing.T) {
	m := BuildMonth(testCatalog(), 2026, time.November, testNow, true)

	require.Len(t, m.Cells, GridCells)
	last := m.Cells[GridCells-1]
	assert.Equal(t, time.Date(2026, time.December, 12, 0, 0, 0, 0, time.UTC), last.Date)
	assert.False(t, last.InMonth)
}

func TestBuildMonth_FebruaryFourRows(t *testing.T) {
	m := BuildMonth(testCatalog(), 2026, time.February, testNow, false)
	require.Len(t, m.Cells, 28)
	assert.Equal(t, []string{"1"}, ids(m.Cells[12].Scholarships))

	six := BuildMonth(testCatalog(), 2026, time.February, testNow, true)
	require.Len(t, six.Cells, GridCells)
	assert.Equal(t, time.March, six.Cells[28].Date.Month())
}

func TestBuildMonth_NormalisesMonth(t *testing.T) {
	m := BuildMonth(nil, 2026, 13, testNow, false)
	assert.Equal(t, 2027, m.Year)
	assert.Equal(t, time.January, m.Month)
}

func TestBuildMonth_EmptyCellsHaveEmptyLists(t *testing.T) {
	m := BuildMonth(nil, 2026, time.July, testNow, true)
	for _, c := range m.Cells {
		assert.NotNil(t, c.Scholarships)
		assert.Empty(t, c.Scholarships)
	}
}

func TestUpcoming(t *testing.T) {
	entries := Upcoming(testCatalog(), testNow, 0)

	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Scholarship.ID)
	}
	want := []string{"7", "6", "8", "42", "5", "2", "3", "4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Upcoming order mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, entries[0].Date)
	assert.Equal(t, "exact", entries[0].Kind)
	assert.Nil(t, entries[5].Date)
	assert.Equal(t, "open_ended", entries[6].Kind)
	assert.Equal(t, "Open", entries[6].Label)
	assert.Equal(t, "unparseable", entries[7].Kind)
}

func TestUpcoming_Limit(t *testing.T) {
	entries := Upcoming(testCatalog(), testNow, 3)
	require.Len(t, entries, 3)
	assert.Equal(t, "8", entries[2].Scholarship.ID)
}

func TestUpcoming_TodayIncluded(t *testing.T) {
	catalog := []*domain.Scholarship{{ID: "today", Deadline: "October 18, 2026"}, {ID: "yesterday", Deadline: "October 17, 2026"}}
	entries := Upcoming(catalog, testNow, 5)
	require.Len(t, entries, 1)
	assert.Equal(t, "today", entries[0].Scholarship.ID)
}

func mapIDs(m map[int][]*domain.Scholarship) map[int][]string {
	out := make(map[int][]string, len(m))
	for day, list := range m {
		out[day] = ids(list)
	}
	return out
}
