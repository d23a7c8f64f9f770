package domain

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, time.October, 18, 15, 4, 5, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDeadlineExact(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		rule     string
	}{
		{"full month day year", "February 13, 2026", date(2026, time.February, 13), "month_day_year"},
		{"ordinal without comma", "Dec 1st 2025", date(2025, time.December, 1), "month_day_year"},
		{"abbreviation with dot", "Dec. 5, 2026", date(2026, time.December, 5), "month_day_year"},
		{"sept abbreviation", "Sept 30, 2027", date(2027, time.September, 30), "month_day_year"},
		{"embedded in prose", "Applications due by March 1, 2027 at noon", date(2027, time.March, 1), "month_day_year"},
		{"two digit year 2000s", "March 15 26", date(2026, time.March, 15), "month_day_short_year"},
		{"two digit year 1900s", "March 15 99", date(1999, time.March, 15), "month_day_short_year"},
		{"month and year", "March 2026", date(2026, time.March, 1), "month_year"},
		{"month slash month", "November/December", date(2026, time.November, 1), "month_slash_month"},
		{"early month", "Early December normally the 1st", date(2026, time.December, 1), "early_month"},
		{"two month days", "November 15/ December 2", date(2026, time.November, 15), "two_month_days"},
		{"spring with year", "Spring 2027", date(2027, time.April, 1), "spring"},
		{"spring without year", "Late spring", date(2026, time.April, 1), "spring"},
		{"iso date", "2026-05-20", date(2026, time.May, 20), "generic"},
		{"us numeric date", "5/20/2026", date(2026, time.May, 20), "generic"},
		{"month day without year", "March 3", date(2026, time.March, 3), "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDeadline(tt.input, testNow)
			if got.Kind != DeadlineExact {
				t.Fatalf("ParseDeadline(%q).Kind = %v, want exact", tt.input, got.Kind)
			}
			if !got.Date.Equal(tt.expected) {
				t.Errorf("ParseDeadline(%q).Date = %v, want %v", tt.input, got.Date, tt.expected)
			}
			if got.Rule != tt.rule {
				t.Errorf("ParseDeadline(%q).Rule = %q, want %q", tt.input, got.Rule, tt.rule)
			}
		})
	}
}

func TestParseDeadlineOpenEnded(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Rolling",
		"ROLLING admissions, reviewed monthly until March 1, 2027",
		"Open until filled",
		"Monthly drawing",
		"Accepted throughout the year",
		"Not set",
		"Sometime in the fall",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := ParseDeadline(input, testNow)
			if got.Kind != DeadlineOpenEnded {
				t.Errorf("ParseDeadline(%q).Kind = %v, want open_ended", input, got.Kind)
			}
			if !got.Date.IsZero() {
				t.Errorf("ParseDeadline(%q).Date = %v, want zero", input, got.Date)
			}
		})
	}
}

func TestParseDeadlineUnparseable(t *testing.T) {
	inputs := []string{
		"TBD",
		"varies by school",
		"February 30, 2026",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := ParseDeadline(input, testNow)
			if got.Kind != DeadlineUnparseable {
				t.Errorf("ParseDeadline(%q) = %+v, want unparseable", input, got)
			}
		})
	}
}

func TestParseDeadlineUsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := ParseDeadline("January 2, 2027", testNow.In(loc))
	if got.Date.Location() != loc {
		t.Errorf("Date location = %v, want %v", got.Date.Location(), loc)
	}
	if !got.On(2027, time.January, 2) {
		t.Errorf("On(2027, January, 2) = false for %v", got.Date)
	}
}

func TestDeadlineKindString(t *testing.T) {
	tests := map[DeadlineKind]string{
		DeadlineExact:       "exact",
		DeadlineOpenEnded:   "open_ended",
		DeadlineUnparseable: "unparseable",
	}
	for kind, want := range tests {
		if kind.String() != want {
			t.Errorf("%d.String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2026, time.January, 31},
		{2026, time.April, 30},
		{2026, time.February, 28},
		{2028, time.February, 29},
		{2100, time.February, 28},
		{2000, time.February, 29},
	}
	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysIn(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
