package reader

import (
	"context"
	"errors"
	"io"

	"github.com/goliatone/go-asks/pkg/types"
)

// ErrCanceled signals the operator aborted input (Ctrl+C, closed input). It is
// never retried.
var ErrCanceled = errors.New("reader: canceled")

// Config describes a single read.
type Config struct {
	// Name is the field being read. Non-interactive sources use it as a key.
	Name string
	// PromptText is the already rendered prompt.
	PromptText string
	// Masked hides the typed characters.
	Masked bool
	// Default is returned, with isDefault set, when the answer is empty.
	Default    any
	HasDefault bool
	// Run identifies the prompt batch the read belongs to.
	Run string
}

// DefaultText is the default as it is displayed and typed.
func (c Config) DefaultText() string {
	if !c.HasDefault {
		return ""
	}
	return types.Text(c.Default)
}

// LineReader reads one answer. An empty answer resolves to the configured
// default, or to "" when there is none, with isDefault set.
type LineReader interface {
	Read(ctx context.Context, cfg Config) (value any, isDefault bool, err error)
}

// Func adapts a function to LineReader.
type Func func(ctx context.Context, cfg Config) (any, bool, error)

// Read implements LineReader.
func (f Func) Read(ctx context.Context, cfg Config) (any, bool, error) {
	return f(ctx, cfg)
}

// IsCanceled reports whether err ends input for good: an explicit
// cancellation, exhausted input or a done context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// resolve maps a raw answer onto the value/isDefault pair.
func resolve(cfg Config, answer string) (any, bool) {
	if answer == "" {
		if cfg.HasDefault {
			return cfg.Default, true
		}
		return "", true
	}
	return answer, false
}
