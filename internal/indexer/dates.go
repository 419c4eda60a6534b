package indexer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxDetectedDates caps how many mined dates a single document keeps.
const maxDetectedDates = 50

// Years outside this window are treated as noise (part numbers, IDs).
const (
	minYear = 1900
	maxYear = 2100
)

var monthNumbers = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may":  5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

const monthAlternation = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayPattern  = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthPattern  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthAlternation + `)\.?,?\s+(\d{4})\b`)
)

// ExtractDates mines dates out of document text. Recognised forms are
// ISO (2023-06-15), US slash (6/15/2023), and month names in either
// order (June 15, 2023 / 15 June 2023). Results are normalised to
// YYYY-MM-DD, deduplicated, sorted ascending and capped.
func ExtractDates(text string) []string {
	seen := make(map[string]bool)

	for _, m := range isoDatePattern.FindAllStringSubmatch(text, -1) {
		addDate(seen, m[1], m[2], m[3])
	}
	for _, m := range slashDatePattern.FindAllStringSubmatch(text, -1) {
		addDate(seen, m[3], m[1], m[2])
	}
	for _, m := range monthDayPattern.FindAllStringSubmatch(text, -1) {
		addDate(seen, m[3], strconv.Itoa(monthNumbers[strings.ToLower(m[1])]), m[2])
	}
	for _, m := range dayMonthPattern.FindAllStringSubmatch(text, -1) {
		addDate(seen, m[3], strconv.Itoa(monthNumbers[strings.ToLower(m[2])]), m[1])
	}

	if len(seen) == 0 {
		return nil
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	if len(dates) > maxDetectedDates {
		dates = dates[:maxDetectedDates]
	}
	return dates
}

func addDate(seen map[string]bool, year, month, day string) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	if y < minYear || y > maxYear || m < 1 || m > 12 || d < 1 || d > 31 {
		return
	}
	seen[fmt.Sprintf("%04d-%02d-%02d", y, m, d)] = true
}
