package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// ErrInvalidAnswers is returned when an answers document is not valid JSON.
var ErrInvalidAnswers = errors.New("reader: answers document is not valid JSON")

// Answers resolves fields from a JSON document keyed by field name. Values are
// handed over as they would have been typed ("8080", "true"); missing or null
// keys take the default. A field is answered at most once per run: asking
// again after a failed check cancels, since the document cannot change its
// answer. A read carrying a different Config.Run starts a fresh run.
type Answers struct {
	mu     sync.Mutex
	raw    []byte
	prefix string
	run    string
	asked  map[string]struct{}
}

// AnswersOption configures an Answers reader.
type AnswersOption func(*Answers)

// WithPrefix nests lookups under a gjson path, e.g. "profiles.dev".
func WithPrefix(path string) AnswersOption {
	return func(a *Answers) {
		a.prefix = strings.Trim(strings.TrimSpace(path), ".")
	}
}

// NewAnswers validates doc and builds the reader.
func NewAnswers(doc []byte, options ...AnswersOption) (*Answers, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidAnswers
	}
	a := &Answers{
		raw:   append([]byte(nil), doc...),
		asked: make(map[string]struct{}),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Read implements LineReader.
func (a *Answers) Read(ctx context.Context, cfg Config) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if cfg.Run != a.run {
		a.run = cfg.Run
		clear(a.asked)
	}
	if _, seen := a.asked[cfg.Name]; seen {
		return nil, false, fmt.Errorf("%w: no further answers for %q", ErrCanceled, cfg.Name)
	}
	a.asked[cfg.Name] = struct{}{}

	result := gjson.GetBytes(a.raw, a.path(cfg.Name))
	if !result.Exists() || result.Type == gjson.Null {
		value, isDefault := resolve(cfg, "")
		return value, isDefault, nil
	}

	answer := result.String()
	if result.IsObject() || result.IsArray() {
		answer = result.Raw
	}
	value, isDefault := resolve(cfg, answer)
	return value, isDefault, nil
}

func (a *Answers) path(name string) string {
	key := escapePath(name)
	if a.prefix == "" {
		return key
	}
	return a.prefix + "." + key
}

func escapePath(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
