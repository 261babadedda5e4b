package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"

	"github.com/goliatone/go-asks/pkg/logging"
	"github.com/goliatone/go-asks/pkg/orchestrator"
	"github.com/goliatone/go-asks/pkg/render"
)

// Logger formats accepted by ASKS_LOGGER.
const (
	LoggerTerminal = "terminal"
	LoggerText     = "text"
	LoggerJSON     = "json"
)

// ErrUnknownLogger is returned for an unsupported ASKS_LOGGER value.
var ErrUnknownLogger = errors.New("config: unknown logger")

// Config is the environment configuration. Empty strings keep the library
// defaults.
type Config struct {
	// ENV: ASKS_PROMPT_TEMPLATE
	PromptTemplate string `env:"ASKS_PROMPT_TEMPLATE"`
	// ENV: ASKS_DEFAULT_MESSAGE
	DefaultMessage string `env:"ASKS_DEFAULT_MESSAGE"`
	// ENV: ASKS_REQUIRED_MESSAGE
	RequiredMessage string `env:"ASKS_REQUIRED_MESSAGE"`
	// ENV: ASKS_RETRY. Zero keeps the default budget, -1 is unlimited.
	Retry int `env:"ASKS_RETRY,default=0"`
	// ENV: ASKS_NO_COLOR
	NoColor bool `env:"ASKS_NO_COLOR,default=false"`
	// ENV: NO_COLOR. Any non-empty value disables colours.
	NoColorConvention string `env:"NO_COLOR"`
	// ENV: ASKS_LOGGER (terminal, text or json)
	Logger string `env:"ASKS_LOGGER,default=terminal"`
}

// FromEnv decodes Config from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode environment: %w", err)
	}
	if cfg.Logger == "" {
		cfg.Logger = LoggerTerminal
	}
	return cfg, nil
}

// Color reports whether ANSI colours are enabled.
func (c Config) Color() bool {
	return !c.NoColor && strings.TrimSpace(c.NoColorConvention) == ""
}

// NewLogger builds the configured logger writing to w.
func (c Config) NewLogger(w io.Writer) (logging.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(c.Logger)) {
	case "", LoggerTerminal:
		return logging.NewTerminal(w, logging.WithColor(c.Color())), nil
	case LoggerText:
		return logging.FromSlog(slog.New(slog.NewTextHandler(w, nil))), nil
	case LoggerJSON:
		return logging.FromSlog(slog.New(slog.NewJSONHandler(w, nil))), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogger, c.Logger)
	}
}

// Options converts the configuration into orchestrator options. Notices are
// written to w.
func (c Config) Options(w io.Writer) ([]orchestrator.Option, error) {
	log, err := c.NewLogger(w)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(render.WithColor(c.Color()))
	if err != nil {
		return nil, fmt.Errorf("config: build renderer: %w", err)
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(log),
		orchestrator.WithRenderer(renderer),
	}
	if c.PromptTemplate != "" {
		opts = append(opts, orchestrator.WithPromptTemplate(c.PromptTemplate))
	}
	if c.DefaultMessage != "" {
		opts = append(opts, orchestrator.WithDefaultMessage(c.DefaultMessage))
	}
	if c.RequiredMessage != "" {
		opts = append(opts, orchestrator.WithRequiredMessage(c.RequiredMessage))
	}
	if c.Retry != 0 {
		opts = append(opts, orchestrator.WithDefaultRetry(c.Retry))
	}
	return opts, nil
}
