package calendar

import (
	"sort"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

const (
	// GridCells is the size of a six-row month grid.
	GridCells = 6 * 7
	// DefaultUpcomingLimit bounds Upcoming when no limit is given.
	DefaultUpcomingLimit = 10
)

// Cell is one day of a month grid.
type Cell struct {
	Date         time.Time             `json:"date"`
	Day          int                   `json:"day"`
	InMonth      bool                  `json:"inMonth"`
	Scholarships []*domain.Scholarship `json:"scholarships"`
}

// Month is a week-aligned grid starting on Sunday.
type Month struct {
	Year         int          `json:"year"`
	Month        time.Month   `json:"month"`
	DaysInMonth  int          `json:"daysInMonth"`
	FirstWeekday time.Weekday `json:"firstWeekday"`
	Cells        []Cell       `json:"cells"`
}

// Weeks splits the grid into rows of seven cells.
func (m Month) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, len(m.Cells)/7)
	for i := 0; i+7 <= len(m.Cells); i += 7 {
		weeks = append(weeks, m.Cells[i:i+7])
	}
	return weeks
}

// DaysInMonth returns the length of month, leap years included.
func DaysInMonth(year int, month time.Month) int {
	return domain.DaysIn(year, month)
}

// FirstWeekdayOfMonth returns the weekday of the 1st (Sunday = 0).
func FirstWeekdayOfMonth(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}

// dated pairs a record with its exact deadline.
type dated struct {
	scholarship *domain.Scholarship
	year        int
	month       time.Month
	day         int
}

// exactDeadlines parses every deadline once, keeping exact dates in catalog
// order. Open-ended and unparseable deadlines never reach the grid.
func exactDeadlines(catalog []*domain.Scholarship, now time.Time) []dated {
	out := make([]dated, 0, len(catalog))
	for _, s := range catalog {
		d := domain.ParseDeadline(s.Deadline, now)
		if !d.IsExact() {
			continue
		}
		y, m, day := d.Date.Date()
		out = append(out, dated{scholarship: s, year: y, month: m, day: day})
	}
	return out
}

// ScholarshipsByDay groups records whose deadline falls in year/month by day
// of month. Records keep catalog order within a day. Relative deadlines
// resolve against now.
func ScholarshipsByDay(catalog []*domain.Scholarship, year int, month time.Month, now time.Time) map[int][]*domain.Scholarship {
	return groupByDay(exactDeadlines(catalog, now), year, month)
}

func groupByDay(entries []dated, year int, month time.Month) map[int][]*domain.Scholarship {
	byDay := make(map[int][]*domain.Scholarship)
	for _, e := range entries {
		if e.year == year && e.month == month {
			byDay[e.day] = append(byDay[e.day], e.scholarship)
		}
	}
	return byDay
}

// BuildMonth lays out year/month as a Sunday-first grid. Leading and
// trailing cells belong to the adjacent months and are filled against their
// own month and year. With sixRows the grid always has GridCells cells,
// otherwise it stops at the end of the last week holding a day of the month.
func BuildMonth(catalog []*domain.Scholarship, year int, month time.Month, now time.Time, sixRows bool) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	year, month = first.Year(), first.Month()

	days := DaysInMonth(year, month)
	lead := int(FirstWeekdayOfMonth(year, month))

	total := lead + days
	if sixRows {
		total = GridCells
	} else if rem := total % 7; rem != 0 {
		total += 7 - rem
	}

	entries := exactDeadlines(catalog, now)
	groups := make(map[[2]int]map[int][]*domain.Scholarship, 3)
	lookup := func(d time.Time) []*domain.Scholarship {
		key := [2]int{d.Year(), int(d.Month())}
		g, ok := groups[key]
		if !ok {
			g = groupByDay(entries, d.Year(), d.Month())
			groups[key] = g
		}
		return g[d.Day()]
	}

	cells := make([]Cell, total)
	start := first.AddDate(0, 0, -lead)
	for i := range cells {
		d := start.AddDate(0, 0, i)
		list := lookup(d)
		if list == nil {
			list = []*domain.Scholarship{}
		}
		cells[i] = Cell{
			Date:         d,
			Day:          d.Day(),
			InMonth:      d.Month() == month && d.Year() == year,
			Scholarships: list,
		}
	}

	return Month{
		Year:         year,
		Month:        month,
		DaysInMonth:  days,
		FirstWeekday: time.Weekday(lead),
		Cells:        cells,
	}
}

// UpcomingEntry is one row of the upcoming list.
type UpcomingEntry struct {
	Scholarship *domain.Scholarship `json:"scholarship"`
	Deadline    domain.Deadline     `json:"-"`
	Kind        string              `json:"kind"`
	Date        *time.Time          `json:"date,omitempty"`
	Label       string              `json:"label"`
}

// Upcoming lists deadlines for the home page: exact dates from today on,
// soonest first, then open-ended, then unparseable. Past exact dates are
// dropped. Ties keep catalog order. limit <= 0 means DefaultUpcomingLimit.
func Upcoming(catalog []*domain.Scholarship, now time.Time, limit int) []UpcomingEntry {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	entries := make([]UpcomingEntry, 0, len(catalog))
	for _, s := range catalog {
		dl := domain.ParseDeadline(s.Deadline, now)
		if dl.IsExact() && dl.Date.Before(today) {
			continue
		}
		e := UpcomingEntry{
			Scholarship: s,
			Deadline:    dl,
			Kind:        dl.Kind.String(),
			Label:       dl.Label(),
		}
		if dl.IsExact() {
			date := dl.Date
			e.Date = &date
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Deadline, entries[j].Deadline
		if ra, rb := rank(a.Kind), rank(b.Kind); ra != rb {
			return ra < rb
		}
		if a.IsExact() {
			return a.Date.Before(b.Date)
		}
		return false
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func rank(k domain.DeadlineKind) int {
	switch k {
	case domain.DeadlineExact:
		return 0
	case domain.DeadlineOpenEnded:
		return 1
	default:
		return 2
	}
}
