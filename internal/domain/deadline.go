package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DeadlineKind classifies a parsed deadline.
type DeadlineKind int

const (
	// DeadlineUnparseable means no rule recognised the text.
	DeadlineUnparseable DeadlineKind = iota
	// DeadlineExact means the text resolved to a calendar date.
	DeadlineExact
	// DeadlineOpenEnded means the deadline is rolling, continuous or absent.
	DeadlineOpenEnded
)

func (k DeadlineKind) String() string {
	switch k {
	case DeadlineExact:
		return "exact"
	case DeadlineOpenEnded:
		return "open_ended"
	default:
		return "unparseable"
	}
}

// MarshalText encodes the kind by name so JSON payloads stay readable.
func (k DeadlineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Deadline is the result of parsing a free-text deadline.
type Deadline struct {
	Kind DeadlineKind
	// Date is midnight of the deadline day. Zero unless Kind is DeadlineExact.
	Date time.Time
	// Raw is the input text.
	Raw string
	// Rule names the rule that decided the result ("" when unparseable).
	Rule string
}

// IsExact reports whether the deadline resolved to a date.
func (d Deadline) IsExact() bool { return d.Kind == DeadlineExact }

// Label returns the text shown for the deadline, "Open" when absent.
func (d Deadline) Label() string {
	if strings.TrimSpace(d.Raw) == "" {
		return "Open"
	}
	return d.Raw
}

// On reports whether the deadline falls on the given day.
func (d Deadline) On(year int, month time.Month, day int) bool {
	if d.Kind != DeadlineExact {
		return false
	}
	y, m, dd := d.Date.Date()
	return y == year && m == month && dd == day
}

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	openEndedKeywords = []string{"open", "rolling", "drawing", "throughout", "not set", "sometime"}

	reMonthDayYear    = regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?[,\s]+(\d{4})\b`)
	reMonthDayShortYr = regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?\s+(\d{2})\b`)
	reMonthYear       = regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s+(\d{4})\b`)
	reMonthSlashMonth = regexp.MustCompile(`(?i)\b` + monthPattern + `\s*/\s*` + monthPattern + `\b`)
	reEarlyMonth      = regexp.MustCompile(`(?i)\bearly\s+` + monthPattern + `\b`)
	reTwoMonthDays    = regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?\s*/\s*` + monthPattern + `\.?\s+(\d{1,2})\b`)
	reFourDigitYear   = regexp.MustCompile(`\b(\d{4})\b`)

	// Layouts tried by the generic fallback, in order.
	fallbackLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"1/2/2006",
		"01/02/2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"January 2 2006",
		"2 January 2006",
	}
	// Fallback layouts without a year; the current year is assumed.
	yearlessLayouts = []string{
		"January 2",
		"Jan 2",
	}
)

type deadlineRule struct {
	name  string
	match func(text string, now time.Time) (time.Time, bool)
}

// deadlineRules run in order; the first match wins.
var deadlineRules = []deadlineRule{
	{"month_day_year", matchMonthDayYear},
	{"month_day_short_year", matchMonthDayShortYear},
	{"month_year", matchMonthYear},
	{"month_slash_month", matchMonthSlashMonth},
	{"early_month", matchEarlyMonth},
	{"two_month_days", matchTwoMonthDays},
	{"spring", matchSpring},
	{"generic", matchGeneric},
}

// ParseDeadline converts free-text deadline prose into a Deadline.
// now supplies the current year for rules that omit one and the location of
// the resulting date. It never fails: unknown text yields DeadlineUnparseable.
func ParseDeadline(text string, now time.Time) Deadline {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Deadline{Kind: DeadlineOpenEnded, Raw: text, Rule: "absent"}
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range openEndedKeywords {
		if strings.Contains(lower, kw) {
			return Deadline{Kind: DeadlineOpenEnded, Raw: text, Rule: "keyword"}
		}
	}

	for _, rule := range deadlineRules {
		if date, ok := rule.match(trimmed, now); ok {
			return Deadline{Kind: DeadlineExact, Date: date, Raw: text, Rule: rule.name}
		}
	}

	return Deadline{Kind: DeadlineUnparseable, Raw: text}
}

func matchMonthDayYear(text string, now time.Time) (time.Time, bool) {
	m := reMonthDayYear.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return makeDate(atoi(m[3]), monthFromName(m[1]), atoi(m[2]), now.Location())
}

func matchMonthDayShortYear(text string, now time.Time) (time.Time, bool) {
	m := reMonthDayShortYr.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	year := atoi(m[3])
	if year < 50 {
		year += 2000
	} else {
		year += 1900
	}
	return makeDate(year, monthFromName(m[1]), atoi(m[2]), now.Location())
}

func matchMonthYear(text string, now time.Time) (time.Time, bool) {
	m := reMonthYear.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return makeDate(atoi(m[2]), monthFromName(m[1]), 1, now.Location())
}

func matchMonthSlashMonth(text string, now time.Time) (time.Time, bool) {
	m := reMonthSlashMonth.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return makeDate(now.Year(), monthFromName(m[1]), 1, now.Location())
}

func matchEarlyMonth(text string, now time.Time) (time.Time, bool) {
	m := reEarlyMonth.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return makeDate(now.Year(), monthFromName(m[1]), 1, now.Location())
}

func matchTwoMonthDays(text string, now time.Time) (time.Time, bool) {
	m := reTwoMonthDays.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return makeDate(now.Year(), monthFromName(m[1]), atoi(m[2]), now.Location())
}

func matchSpring(text string, now time.Time) (time.Time, bool) {
	if !strings.Contains(strings.ToLower(text), "spring") {
		return time.Time{}, false
	}
	year := now.Year()
	if m := reFourDigitYear.FindStringSubmatch(text); m != nil {
		year = atoi(m[1])
	}
	return makeDate(year, time.April, 1, now.Location())
}

func matchGeneric(text string, now time.Time) (time.Time, bool) {
	s := strings.TrimSuffix(strings.TrimSpace(text), ".")
	loc := now.Location()
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return makeDate(t.Year(), t.Month(), t.Day(), loc)
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return makeDate(now.Year(), t.Month(), t.Day(), loc)
		}
	}
	return time.Time{}, false
}

// DaysIn returns the number of days in the month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// makeDate rejects impossible days instead of letting time.Date normalise them.
func makeDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > DaysIn(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), true
}

func monthFromName(name string) time.Month {
	if len(name) < 3 {
		return 0
	}
	switch strings.ToLower(name[:3]) {
	case "jan":
		return time.January
	case "feb":
		return time.February
	case "mar":
		return time.March
	case "apr":
		return time.April
	case "may":
		return time.May
	case "jun":
		return time.June
	case "jul":
		return time.July
	case "aug":
		return time.August
	case "sep":
		return time.September
	case "oct":
		return time.October
	case "nov":
		return time.November
	case "dec":
		return time.December
	}
	return 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
