package account

import (
	"strconv"
	"strings"
	"unicode"
)

// DefaultDueDays is used when no payment term is known or it is not recognised
const DefaultDueDays = 30

var cashTerms = map[string]bool{
	"cash":  true,
	"peşin": true,
	"pesin": true,
	"nakit": true,
	"0":     true,
}

var knownTermDays = map[int]bool{30: true, 60: true, 120: true}

// DueDays maps a payment term to a number of days after the document date.
// Cash terms are due immediately; "30", "60" and "120" (optionally followed
// by a unit such as "days") map to themselves; anything else is 30 days.
func DueDays(term string) int {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return DefaultDueDays
	}
	if cashTerms[t] {
		return 0
	}
	end := strings.IndexFunc(t, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(t)
	}
	if end == 0 {
		return DefaultDueDays
	}
	days, err := strconv.Atoi(t[:end])
	if err != nil || !knownTermDays[days] {
		return DefaultDueDays
	}
	return days
}

// ResolveTerm returns the first non-blank term in priority order
func ResolveTerm(terms ...string) string {
	for _, t := range terms {
		if strings.TrimSpace(t) != "" {
			return t
		}
	}
	return ""
}
