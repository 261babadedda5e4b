package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mgutz/ansi"
)

// Logger receives already rendered notices.
type Logger interface {
	Error(msg string)
	Warn(msg string)
	Info(msg string)
}

// Terminal writes one notice per line, coloured by level.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// TerminalOption configures a Terminal logger.
type TerminalOption func(*Terminal)

// WithColor toggles ANSI colouring.
func WithColor(enabled bool) TerminalOption {
	return func(t *Terminal) {
		t.color = enabled
	}
}

// NewTerminal logs to out (usually os.Stderr) with colours on.
func NewTerminal(out io.Writer, options ...TerminalOption) *Terminal {
	t := &Terminal{out: out, color: true}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

var (
	errorPaint = ansi.ColorFunc("red")
	warnPaint  = ansi.ColorFunc("yellow")
	infoPaint  = ansi.ColorFunc("black+h")
)

func (t *Terminal) Error(msg string) { t.write(errorPaint, msg) }
func (t *Terminal) Warn(msg string)  { t.write(warnPaint, msg) }
func (t *Terminal) Info(msg string)  { t.write(infoPaint, msg) }

func (t *Terminal) write(paint func(string) string, msg string) {
	if t == nil || t.out == nil {
		return
	}
	if t.color {
		msg = paint(msg)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.out, msg)
}

// Slog forwards notices to a structured logger.
type Slog struct {
	logger *slog.Logger
	attrs  []slog.Attr
}

// FromSlog adapts logger; nil uses slog.Default().
func FromSlog(logger *slog.Logger, attrs ...slog.Attr) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger, attrs: attrs}
}

func (s *Slog) Error(msg string) { s.log(slog.LevelError, msg) }
func (s *Slog) Warn(msg string)  { s.log(slog.LevelWarn, msg) }
func (s *Slog) Info(msg string)  { s.log(slog.LevelInfo, msg) }

func (s *Slog) log(level slog.Level, msg string) {
	s.logger.LogAttrs(context.Background(), level, msg, s.attrs...)
}

// Discard drops every notice.
var Discard Logger = discard{}

type discard struct{}

func (discard) Error(string) {}
func (discard) Warn(string)  {}
func (discard) Info(string)  {}

// Recorder keeps notices in memory. Handy in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Entry is a recorded notice.
type Entry struct {
	Level string
	Msg   string
}

func (r *Recorder) Error(msg string) { r.add("error", msg) }
func (r *Recorder) Warn(msg string)  { r.add("warn", msg) }
func (r *Recorder) Info(msg string)  { r.add("info", msg) }

// Entries returns a copy of the recorded notices.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Recorder) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg})
}
