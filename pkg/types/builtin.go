package types

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-asks/pkg/schema"
)

var builtins = map[string]schema.Type{
	String: {
		Setter: schema.SyncTransform(func(value any, _ bool) any {
			return Text(value)
		}),
	},
	Number: {
		Validator: schema.SyncCheck(func(value any, _ bool) (bool, string) {
			_, ok := toFloat(value)
			return ok, ""
		}),
		Setter: schema.SyncTransform(func(value any, _ bool) any {
			f, _ := toFloat(value)
			return f
		}),
	},
	Integer: {
		Validator: schema.SyncCheck(func(value any, _ bool) (bool, string) {
			_, ok := toInt(value)
			return ok, ""
		}),
		Setter: schema.SyncTransform(func(value any, _ bool) any {
			i, _ := toInt(value)
			return i
		}),
	},
	Boolean: {
		Setter:    schema.SyncTransform(func(value any, _ bool) any { return CoerceBool(value) }),
		Normalize: NormalizeBool,
	},
	Path: {
		Setter: schema.AsyncTransform(func(_ context.Context, value any, _ bool) (any, error) {
			return AbsPath(Text(value))
		}),
	},
	URL: {
		Validator: schema.SyncCheck(func(value any, _ bool) (bool, string) {
			u, err := url.Parse(strings.TrimSpace(Text(value)))
			return err == nil && u.Host != "", ""
		}),
	},
}

// Text renders a value the way it would have been typed.
func Text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// AbsPath expands a leading "~" to the home directory and returns the
// absolute, cleaned path.
func AbsPath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("types: resolve home: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("types: resolve path %q: %w", raw, err)
	}
	return abs, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case fmt.Stringer:
		return toFloat(v.String())
	default:
		return 0, false
	}
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case uint:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return i, err == nil
	case fmt.Stringer:
		return toInt(v.String())
	default:
		return 0, false
	}
}
