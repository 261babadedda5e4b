package types

import (
	"math"
	"regexp"
	"strings"
)

var truthy = regexp.MustCompile(`(?i)^[yt]|1`)

// NormalizeBool is the boolean default normalizer. See DefaultBool.
func NormalizeBool(value any) any {
	return DefaultBool(value)
}

// DefaultBool derives a boolean from a declared default such as "Y/n".
//
// Strings are scanned for yes-like (y, t, 1) and no-like (n, f, 0)
// characters, case-insensitively. With only one class present that class
// wins. With both present the upper-cased class wins ("Y/n" is true, "y/N"
// is false); when emphasis is tied the class that appears first wins. With
// neither present the string is true when non-empty. Other values use their
// truthiness.
func DefaultBool(value any) bool {
	s, ok := value.(string)
	if !ok {
		return truthiness(value)
	}

	yes := strings.IndexFunc(s, isYes)
	no := strings.IndexFunc(s, isNo)
	switch {
	case yes < 0 && no < 0:
		return s != ""
	case no < 0:
		return true
	case yes < 0:
		return false
	}

	yesUpper := strings.ContainsAny(s, "YT")
	noUpper := strings.ContainsAny(s, "NF")
	if yesUpper != noUpper {
		return yesUpper
	}
	return yes < no
}

// CoerceBool turns typed answers ("y", "yes", "true", "1") and plain values
// into a strict boolean.
func CoerceBool(value any) bool {
	if s, ok := value.(string); ok {
		return truthy.MatchString(s)
	}
	return truthiness(value)
}

func isYes(r rune) bool {
	switch r {
	case 'y', 'Y', 't', 'T', '1':
		return true
	}
	return false
}

func isNo(r rune) bool {
	switch r {
	case 'n', 'N', 'f', 'F', '0':
		return true
	}
	return false
}

func truthiness(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	default:
		return true
	}
}
