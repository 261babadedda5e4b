package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-asks/pkg/compiler"
	"github.com/goliatone/go-asks/pkg/events"
	"github.com/goliatone/go-asks/pkg/logging"
	"github.com/goliatone/go-asks/pkg/reader"
	"github.com/goliatone/go-asks/pkg/render"
	"github.com/goliatone/go-asks/pkg/resolver"
	"github.com/goliatone/go-asks/pkg/schema"
	"github.com/goliatone/go-asks/pkg/types"
)

// ErrNilSchema is returned by Get when no schema is supplied.
var ErrNilSchema = errors.New("orchestrator: schema is required")

// Option customises an Asks instance.
type Option func(*Asks)

// WithPromptTemplate overrides the template rendered into each prompt. It
// receives name, description and default.
func WithPromptTemplate(tpl string) Option {
	return func(a *Asks) {
		a.compilerOptions = append(a.compilerOptions, compiler.WithPromptTemplate(tpl))
	}
}

// WithDefaultMessage overrides the failure message used when neither the
// check nor the field supplies one.
func WithDefaultMessage(msg string) Option {
	return func(a *Asks) {
		a.compilerOptions = append(a.compilerOptions, compiler.WithDefaultMessage(msg))
	}
}

// WithRequiredMessage overrides the message shown for empty required fields.
func WithRequiredMessage(msg string) Option {
	return func(a *Asks) {
		a.compilerOptions = append(a.compilerOptions, compiler.WithRequiredMessage(msg))
	}
}

// WithDefaultRetry sets the retry budget of fields that do not declare one.
func WithDefaultRetry(n int) Option {
	return func(a *Asks) {
		a.compilerOptions = append(a.compilerOptions, compiler.WithDefaultRetry(n))
	}
}

// WithBinding exposes v to checks and transforms through compiler.Binding.
func WithBinding(v any) Option {
	return func(a *Asks) {
		a.binding = v
	}
}

// WithLogger routes the default event handlers to log.
func WithLogger(log logging.Logger) Option {
	return func(a *Asks) {
		a.logger = log
	}
}

// WithReader replaces the terminal reader.
func WithReader(lr reader.LineReader) Option {
	return func(a *Asks) {
		a.reader = lr
	}
}

// WithRenderer replaces the prompt and message renderer.
func WithRenderer(r render.Renderer) Option {
	return func(a *Asks) {
		a.renderer = r
	}
}

// WithRegistry shares a type registry between instances.
func WithRegistry(r *types.Registry) Option {
	return func(a *Asks) {
		a.registry = r
	}
}

// WithSkip lists fields that resolve to their default without prompting.
func WithSkip(names ...string) Option {
	return func(a *Asks) {
		if a.skip == nil {
			a.skip = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				a.skip[name] = struct{}{}
			}
		}
	}
}

// Asks prompts for schemas. One Get runs at a time since every field shares
// the same line reader.
type Asks struct {
	run sync.Mutex

	cacheMu sync.Mutex
	cache   map[*schema.Schema]*compiler.Schema

	compilerOptions []compiler.Option
	compiler        *compiler.Compiler
	registry        *types.Registry
	bus             *events.Bus
	reader          reader.LineReader
	renderer        render.Renderer
	logger          logging.Logger
	binding         any
	skip            map[string]struct{}
}

// New builds an Asks instance. Without options it prompts on the terminal,
// renders coloured prompts and logs notices to stderr.
func New(options ...Option) *Asks {
	a := &Asks{
		cache: make(map[*schema.Schema]*compiler.Schema),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}

	if a.registry == nil {
		a.registry = types.NewRegistry()
	}
	if a.renderer == nil {
		a.renderer = render.MustNew()
	}
	if a.reader == nil {
		a.reader = reader.NewTerminal()
	}
	if a.logger == nil {
		a.logger = logging.NewTerminal(os.Stderr)
	}
	a.bus = events.NewBus(a.logger)

	opts := append([]compiler.Option{
		compiler.WithRegistry(a.registry),
		compiler.WithRenderer(a.renderer),
	}, a.compilerOptions...)
	a.compiler = compiler.New(opts...)
	return a
}

// RegisterType adds or replaces a named type. Schemas compiled before the
// call keep the bundle they were compiled with.
func (a *Asks) RegisterType(name string, bundle schema.Type) error {
	return a.registry.Register(name, bundle)
}

// On subscribes listener to typ. Subscribing replaces the built-in handler
// for that type.
func (a *Asks) On(typ events.Type, listener events.Listener) *Asks {
	a.bus.On(typ, listener)
	return a
}

// Registry exposes the type registry.
func (a *Asks) Registry() *types.Registry {
	return a.registry
}

// Compile returns the compiled form of s, compiling it on first use. Later
// changes to s are not picked up. Compiled schemas stay cached until Forget.
func (a *Asks) Compile(s *schema.Schema) *compiler.Schema {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()

	if compiled, ok := a.cache[s]; ok {
		return compiled
	}
	compiled := a.compiler.CompileSchema(s)
	a.cache[s] = compiled
	return compiled
}

// Forget drops the compiled form of s, so the next Get recompiles it.
// Callers that build a new schema per call should Forget it afterwards.
func (a *Asks) Forget(s *schema.Schema) {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	delete(a.cache, s)
}

// Get prompts for every field of s in order. The first field that fails or
// is canceled aborts the batch; no partial result is returned.
func (a *Asks) Get(ctx context.Context, s *schema.Schema) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if s == nil {
		return Result{}, ErrNilSchema
	}

	a.run.Lock()
	defer a.run.Unlock()

	compiled := a.Compile(s)
	runID := uuid.NewString()
	ctx = compiler.WithBinding(ctx, a.binding)

	res := resolver.New(a.reader, a.bus,
		resolver.WithRenderer(a.renderer),
		resolver.WithRunID(runID),
	)

	result := newResult(compiled.Len())
	for _, rule := range compiled.Rules() {
		if _, skipped := a.skip[rule.Name]; skipped {
			answer := a.skipped(ctx, rule, runID)
			result.add(rule.Name, answer)
			continue
		}

		resolution, err := res.Resolve(ctx, rule)
		if err != nil {
			return Result{}, fmt.Errorf("orchestrator: field %q: %w", rule.Name, err)
		}
		result.add(rule.Name, Answer{Value: resolution.Value, IsDefault: resolution.IsDefault})
	}
	return result, nil
}

func (a *Asks) skipped(ctx context.Context, rule *compiler.Rule, runID string) Answer {
	value := rule.Default
	if !rule.HasDefault {
		value = ""
	}
	a.bus.Emit(ctx, events.Event{
		Type:  events.Skip,
		Field: rule.Name,
		Value: value,
		RunID: runID,
	})
	return Answer{Value: value, IsDefault: true}
}
