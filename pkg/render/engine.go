package render

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/mgutz/ansi"
)

// Renderer is the text rendering seam used for prompts and messages. Render
// never fails: a template that cannot be rendered is returned verbatim.
type Renderer interface {
	Render(template string, data map[string]any) string
}

// Option configures the Engine before construction.
type Option func(*config)

type config struct {
	color      bool
	globalData map[string]any
	filters    map[string]func(input any, param any) (any, error)
}

// WithColor toggles ANSI styling. When disabled, colour filters still parse
// but produce plain text.
func WithColor(enabled bool) Option {
	return func(cfg *config) {
		cfg.color = enabled
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithFilter registers an additional filter when the engine is built.
func WithFilter(name string, fn func(input any, param any) (any, error)) Option {
	return func(cfg *config) {
		if cfg.filters == nil {
			cfg.filters = make(map[string]func(any, any) (any, error))
		}
		cfg.filters[strings.TrimSpace(name)] = fn
	}
}

// noTemplates backs the template set; only string templates are rendered.
var noTemplates embed.FS

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Engine renders pongo2 templates such as "{{ description|gray }}".
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	color       bool
}

var _ Renderer = (*Engine)(nil)

// New constructs an Engine. Colours are on unless disabled with WithColor.
func New(options ...Option) (*Engine, error) {
	cfg := &config{color: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("asks", pongo2.NewFSLoader(noTemplates)),
		templates:   make(map[string]*pongo2.Template),
		color:       cfg.color,
	}
	registerDefaultFilters()

	if len(cfg.globalData) > 0 {
		engine.templateSet.Globals = pongo2.Context(cfg.globalData)
	}
	for name, fn := range cfg.filters {
		if err := engine.RegisterFilter(name, fn); err != nil {
			return nil, fmt.Errorf("render: register filter %q: %w", name, err)
		}
	}
	return engine, nil
}

// MustNew panics when the engine cannot be built.
func MustNew(options ...Option) *Engine {
	engine, err := New(options...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Render implements Renderer.
func (e *Engine) Render(template string, data map[string]any) string {
	out, err := e.RenderString(template, data)
	if err != nil {
		return template
	}
	return out
}

// RenderString renders template against data and reports failures.
func (e *Engine) RenderString(template string, data map[string]any) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("render: engine is nil")
	}
	if !strings.Contains(template, "{{") && !strings.Contains(template, "{%") {
		return template, nil
	}

	tmpl, err := e.getTemplate(template)
	if err != nil {
		return "", err
	}

	out, err := tmpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}
	if !e.color {
		out = StripANSI(out)
	}
	return out, nil
}

// RegisterFilter registers a filter globally. Existing filters are an error.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("render: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("render: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// StripANSI removes colour escape sequences.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func (e *Engine) getTemplate(source string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[source]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[source]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromString(rawOpen + source + rawClose)
	if err != nil {
		return nil, fmt.Errorf("render: parse template: %w", err)
	}
	e.templates[source] = tmpl
	return tmpl, nil
}

// Prompts are terminal text, not HTML. Escaping is switched off per template
// so the process-wide pongo2 setting is left alone.
const (
	rawOpen  = "{% autoescape off %}"
	rawClose = "{% endautoescape %}"
)

// styles maps filter names to mgutz/ansi style strings.
var styles = map[string]string{
	"gray":      "black+h",
	"grey":      "black+h",
	"red":       "red",
	"green":     "green",
	"yellow":    "yellow",
	"blue":      "blue",
	"magenta":   "magenta",
	"cyan":      "cyan",
	"white":     "white",
	"bold":      "default+b",
	"underline": "default+u",
}

var registerOnce sync.Once

func registerDefaultFilters() {
	registerOnce.Do(func() {
		for name, style := range styles {
			if pongo2.FilterExists(name) {
				continue
			}
			_ = pongo2.RegisterFilter(name, styleFilter(ansi.ColorFunc(style)))
		}
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
	})
}

func styleFilter(paint func(string) string) pongo2.FilterFunction {
	return func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		if in.IsNil() || in.String() == "" {
			return pongo2.AsSafeValue(""), nil
		}
		return pongo2.AsSafeValue(paint(in.String())), nil
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
