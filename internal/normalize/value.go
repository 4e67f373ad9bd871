package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var reDigits = regexp.MustCompile(`\d+`)

// Weight extracts the first integer run from a carried-weight string.
func Weight(raw string) *int {
	m := reDigits.FindString(raw)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// Numeric parses a number that may carry currency punctuation. Empty and
// "N/A" inputs are nil rather than zero.
func Numeric(raw string) *float64 {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, ",", ""), "$", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "N/A" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Seconds parses a running time, either plain seconds or MM:SS.ss.
func Seconds(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		minutes, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		secs, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return nil
		}
		v := minutes*60 + secs
		return &v
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Odds parses odds, either decimal or fractional N/M.
func Odds(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil || den == 0 {
			return nil
		}
		v := num / den
		return &v
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// CleanDate reduces a source timestamp like "2001-03-25+00:00" or
// "2001-03-25T00:00:00" to its date part.
func CleanDate(raw string) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	s := raw
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return &s
}
