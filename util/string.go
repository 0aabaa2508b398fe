package util

import (
	"strconv"
)

// SplitTrailingNumber returns s without its trailing run of decimal digits,
// and that run as a string
//
// if s does not end in a digit, then digits is the empty string
func SplitTrailingNumber(s string) (head string, digits string) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	return s[:i], s[i:]
}

// IncrementTrailingNumber increments the whole trailing numeric run of s,
// or appends "1" if there is none: "x" → "x1", "x1" → "x2", "x9" → "x10".
func IncrementTrailingNumber(s string) string {
	head, digits := SplitTrailingNumber(s)
	if digits == "" {
		return s + "1"
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		// too many digits to count, start a new run
		return s + "1"
	}
	return head + strconv.FormatUint(n+1, 10)
}
