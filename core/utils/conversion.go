package utils

import (
	"strconv"
	"strings"
)

// ParseBool parses an availability flag. It accepts true/false and the
// legacy enabled/disabled spellings, case-insensitively. ok is false for
// anything else.
func ParseBool(val string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "enabled":
		return true, true
	case "false", "disabled":
		return false, true
	default:
		return false, false
	}
}

// IsBoolLiteral reports whether val would parse as an availability flag.
func IsBoolLiteral(val string) bool {
	_, ok := ParseBool(val)
	return ok
}

// ParseLevel parses a decimal level literal. Empty input yields (nil, nil).
func ParseLevel(val string) (*int, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// SplitCSV splits a comma-separated list, trimming every token and
// discarding empty ones. Duplicates are dropped, first occurrence wins.
func SplitCSV(val string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, tok := range strings.Split(val, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// JoinCSV is the inverse of SplitCSV.
func JoinCSV(vals []string) string {
	return strings.Join(vals, ",")
}

// FormatBool renders an availability flag in its canonical form.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}
