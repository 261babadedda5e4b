package reader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Terminal reads answers interactively with survey. Masked fields use a
// password prompt; others show the default inline.
type Terminal struct {
	askOpts []survey.AskOpt
}

// TerminalOption configures a Terminal reader.
type TerminalOption func(*Terminal)

// WithStdio overrides the terminal streams, mainly for tests driving a pty.
func WithStdio(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.askOpts = append(t.askOpts, survey.WithStdio(in, out, errOut))
	}
}

// WithAskOptions forwards raw survey options (icons, help keys, ...).
func WithAskOptions(opts ...survey.AskOpt) TerminalOption {
	return func(t *Terminal) {
		t.askOpts = append(t.askOpts, opts...)
	}
}

// NewTerminal constructs a survey backed reader.
func NewTerminal(options ...TerminalOption) *Terminal {
	t := &Terminal{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// Read implements LineReader.
func (t *Terminal) Read(ctx context.Context, cfg Config) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var (
		answer string
		prompt survey.Prompt
	)
	if cfg.Masked {
		prompt = &survey.Password{Message: cfg.PromptText}
	} else {
		prompt = &survey.Input{
			Message: cfg.PromptText,
			Default: cfg.DefaultText(),
		}
	}

	if err := survey.AskOne(prompt, &answer, t.askOpts...); err != nil {
		return nil, false, translateSurveyErr(err)
	}

	// survey substitutes the default for an empty answer itself.
	if !cfg.Masked && cfg.HasDefault && answer == cfg.DefaultText() {
		return cfg.Default, true, nil
	}
	value, isDefault := resolve(cfg, answer)
	return value, isDefault, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCanceled
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}
