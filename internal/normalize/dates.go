package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateParser parses the date encodings seen in zonal sheets: ISO dates,
// day-first dates with dot, slash or dash separators, Excel serial numbers
// and a few free-text layouts. Day/month ambiguity is broken against the
// current calendar month, so the clock is injectable for tests.
type DateParser struct {
	Now func() time.Time
}

// NewDateParser returns a parser using the real clock.
func NewDateParser() DateParser {
	return DateParser{Now: time.Now}
}

// Excel serial dates count days from 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Plausible serial range, roughly 1982 to 2064. Values below look like time
// fractions, values above like arbitrary numbers.
const (
	serialMin = 30000
	serialMax = 60000
)

// Go's RE2 engine has no backreferences, so both separators are captured
// and required to match after the fact.
var (
	yearFirstPattern = regexp.MustCompile(`(\d{4})([./-])(\d{1,2})([./-])(\d{1,2})`)
	dayFirstPattern  = regexp.MustCompile(`(\d{1,2})([./-])(\d{1,2})([./-])(\d{4})`)
)

// fallback layouts for free-text values that the patterns miss.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
	"2 January 2006",
	"02-Jan-2006",
}

// Parse converts a raw cell value to a date. The boolean is false for empty,
// time-only, bare-year and otherwise unintelligible values; those normalize
// to "no date" rather than guessing.
func (p DateParser) Parse(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	if isNumeric(s) {
		serial, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		if serial > serialMin && serial < serialMax {
			return serialEpoch.AddDate(0, 0, int(serial)), true
		}
		// Bare years ("2024") and time fractions are not dates.
		return time.Time{}, false
	}

	// Time-only values ("00:00:00") must not become "today".
	if strings.Contains(s, ":") && !strings.ContainsAny(s, "/-.") {
		return time.Time{}, false
	}

	if m := yearFirstPattern.FindStringSubmatch(s); m != nil && m[2] == m[4] {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[3])
		day, _ := strconv.Atoi(m[5])
		if dt, ok := makeDate(year, month, day); ok {
			return p.correctStaleYear(dt, now), true
		}
	}

	if m := dayFirstPattern.FindStringSubmatch(s); m != nil && m[2] == m[4] {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[3])
		year, _ := strconv.Atoi(m[5])
		if dt, ok := p.resolveDayFirst(day, month, year, now); ok {
			return p.correctStaleYear(dt, now), true
		}
	}

	for _, layout := range fallbackLayouts {
		if dt, err := time.Parse(layout, s); err == nil {
			return p.correctStaleYear(dt, now), true
		}
	}

	return time.Time{}, false
}

// resolveDayFirst builds a date from a day-first match, disambiguating the
// day and month fields against the current calendar month.
func (p DateParser) resolveDayFirst(day, month, year int, now time.Time) (time.Time, bool) {
	currentMonth := int(now.Month())

	dt, ok := makeDate(year, month, day)
	if !ok {
		// "25/07" style values already failed; the only recoverable case is a
		// month-first entry whose day field is a valid month.
		if swapped, swapOK := makeDate(year, day, month); swapOK {
			return swapped, true
		}
		return time.Time{}, false
	}

	// The first field matching the current month wins over a literal
	// day-first read of an ambiguous value.
	if int(dt.Month()) != currentMonth && day == currentMonth {
		if swapped, swapOK := makeDate(year, day, month); swapOK {
			return swapped, true
		}
	}

	// Day-one rule: "07/01" in July is July 1st, not January 7th.
	if dt.Day() != 1 && month == 1 && day == currentMonth {
		if swapped, swapOK := makeDate(year, day, month); swapOK {
			return swapped, true
		}
	}

	return dt, true
}

// correctStaleYear bumps an exact one-year-stale year to the current year
// when the month matches, a common copy-forward typo in the sheets.
func (p DateParser) correctStaleYear(dt time.Time, now time.Time) time.Time {
	if dt.Month() == now.Month() && dt.Year() == now.Year()-1 {
		return dt.AddDate(1, 0, 0)
	}
	return dt
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	dt := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if dt.Day() != day || int(dt.Month()) != month {
		// Overflowed an invalid calendar day such as 31/02.
		return time.Time{}, false
	}
	return dt, true
}

func isNumeric(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && dots == 0:
			dots++
		default:
			return false
		}
	}
	return true
}
