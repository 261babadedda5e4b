package reader

import (
	"context"
	"fmt"
	"sync"
)

// Step is one scripted answer. A non-nil Err is returned instead of Answer.
type Step struct {
	Answer string
	Err    error
}

// Cancel is a step that aborts input.
var Cancel = Step{Err: ErrCanceled}

// Scripted replays a fixed list of answers. It records every read so callers
// can assert which prompts were shown. Running out of steps cancels input.
type Scripted struct {
	mu    sync.Mutex
	steps []Step
	pos   int
	reads []Config
}

// NewScripted builds a reader from steps.
func NewScripted(steps ...Step) *Scripted {
	return &Scripted{steps: append([]Step(nil), steps...)}
}

// Lines builds a reader that answers each read with the next line. An empty
// line takes the default.
func Lines(lines ...string) *Scripted {
	steps := make([]Step, len(lines))
	for i, line := range lines {
		steps[i] = Step{Answer: line}
	}
	return NewScripted(steps...)
}

// Read implements LineReader.
func (s *Scripted) Read(ctx context.Context, cfg Config) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads = append(s.reads, cfg)
	if s.pos >= len(s.steps) {
		return nil, false, fmt.Errorf("%w: no scripted answer for %q", ErrCanceled, cfg.Name)
	}
	step := s.steps[s.pos]
	s.pos++
	if step.Err != nil {
		return nil, false, step.Err
	}
	value, isDefault := resolve(cfg, step.Answer)
	return value, isDefault, nil
}

// Reads returns the configurations seen so far, in order.
func (s *Scripted) Reads() []Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Config(nil), s.reads...)
}

// Remaining reports how many steps have not been consumed.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps) - s.pos
}
