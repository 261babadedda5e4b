package types

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-asks/pkg/schema"
)

// NoLimit leaves a Length bound open.
const NoLimit = -1

// Length rejects values whose text is shorter than minLen or longer than
// maxLen runes. Pass NoLimit to leave a bound open.
func Length(minLen, maxLen int) schema.Validator {
	return schema.SyncCheck(func(value any, _ bool) (bool, string) {
		n := utf8.RuneCountInString(Text(value))
		if minLen > 0 && n < minLen {
			return false, fmt.Sprintf("{{ name }} must be at least %d characters", minLen)
		}
		if maxLen >= 0 && n > maxLen {
			return false, fmt.Sprintf("{{ name }} must be at most %d characters", maxLen)
		}
		return true, ""
	})
}

// OneOf accepts only the listed values, compared by their text.
func OneOf(options ...string) schema.Validator {
	allowed := make(map[string]struct{}, len(options))
	for _, opt := range options {
		allowed[opt] = struct{}{}
	}
	msg := "{{ name }} must be one of: " + strings.Join(options, ", ")
	return schema.SyncCheck(func(value any, _ bool) (bool, string) {
		if _, ok := allowed[Text(value)]; ok {
			return true, ""
		}
		return false, msg
	})
}
