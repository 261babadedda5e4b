package reader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Stream reads one line per answer from a plain reader, for piped input
// where no terminal is attached. Prompts are written to out when non-nil.
// Masking is not possible on a plain stream and is ignored.
type Stream struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewStream wraps in (usually os.Stdin) and out (usually os.Stderr).
func NewStream(in io.Reader, out io.Writer) *Stream {
	return &Stream{in: bufio.NewReader(in), out: out}
}

// Read implements LineReader.
func (s *Stream) Read(ctx context.Context, cfg Config) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out != nil {
		prompt := cfg.PromptText
		if def := cfg.DefaultText(); def != "" && !cfg.Masked {
			prompt = fmt.Sprintf("%s (%s)", prompt, def)
		}
		if _, err := fmt.Fprintf(s.out, "%s ", prompt); err != nil {
			return nil, false, fmt.Errorf("reader: write prompt: %w", err)
		}
	}

	line, err := s.in.ReadString('\n')
	if err != nil {
		// A final unterminated line still counts as an answer.
		if !errors.Is(err, io.EOF) || line == "" {
			if errors.Is(err, io.EOF) {
				return nil, false, fmt.Errorf("%w: %w", ErrCanceled, err)
			}
			return nil, false, fmt.Errorf("reader: read line: %w", err)
		}
	}

	value, isDefault := resolve(cfg, strings.TrimRight(line, "\r\n"))
	return value, isDefault, nil
}
