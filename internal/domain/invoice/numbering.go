package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FormatNumber renders a sequence value as PREFIX-YEAR-NNNNNN
func FormatNumber(kind Kind, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%06d", kind.Prefix(), year, seq)
}

// ParseSequence extracts the trailing numeric suffix of an invoice number.
// Numbers without digits at the end yield ok=false.
func ParseSequence(number string) (seq int64, ok bool) {
	number = strings.TrimSpace(number)
	start := strings.LastIndexFunc(number, func(r rune) bool { return !unicode.IsDigit(r) }) + 1
	if start >= len(number) {
		return 0, false
	}
	v, err := strconv.ParseInt(number[start:], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MaxSequence returns the highest parseable suffix among numbers, or 0
func MaxSequence(numbers []string) int64 {
	var max int64
	for _, n := range numbers {
		if v, ok := ParseSequence(n); ok && v > max {
			max = v
		}
	}
	return max
}

// ParseNumber splits a number in the PREFIX-YEAR-NNNNNN form of kind.
// Numbers in any other form yield ok=false.
func ParseNumber(kind Kind, number string) (year int, seq int64, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(number), kind.Prefix()+"-")
	if !found {
		return 0, 0, false
	}
	yearPart, seqPart, found := strings.Cut(rest, "-")
	if !found || len(yearPart) != 4 || seqPart == "" {
		return 0, 0, false
	}
	y, err := strconv.Atoi(yearPart)
	if err != nil {
		return 0, 0, false
	}
	for _, r := range seqPart {
		if !unicode.IsDigit(r) {
			return 0, 0, false
		}
	}
	s, err := strconv.ParseInt(seqPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return y, s, true
}
