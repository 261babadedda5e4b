package resolver

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/goliatone/go-asks/pkg/compiler"
	"github.com/goliatone/go-asks/pkg/events"
	"github.com/goliatone/go-asks/pkg/reader"
	"github.com/goliatone/go-asks/pkg/render"
	"github.com/goliatone/go-asks/pkg/schema"
)

// Resolution is a resolved field.
type Resolution struct {
	Rule      *compiler.Rule
	Value     any
	IsDefault bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRunID stamps id on every emitted event.
func WithRunID(id string) Option {
	return func(r *Resolver) {
		r.runID = id
	}
}

// WithRenderer sets the renderer used for failure messages.
func WithRenderer(renderer render.Renderer) Option {
	return func(r *Resolver) {
		if renderer != nil {
			r.renderer = renderer
		}
	}
}

// Resolver drives one field through prompt, validate and set, retrying
// within the rule's budget.
type Resolver struct {
	reader   reader.LineReader
	bus      *events.Bus
	renderer render.Renderer
	runID    string
}

// New builds a Resolver. A nil bus drops events.
func New(lr reader.LineReader, bus *events.Bus, options ...Option) *Resolver {
	r := &Resolver{reader: lr, bus: bus}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.renderer == nil {
		r.renderer = render.MustNew()
	}
	return r
}

// Resolve prompts for rule until it resolves, the budget runs out or input
// is canceled.
func (r *Resolver) Resolve(ctx context.Context, rule *compiler.Rule) (Resolution, error) {
	if rule == nil {
		return Resolution{}, errors.New("resolver: rule is nil")
	}
	if r.reader == nil {
		return Resolution{}, errors.New("resolver: line reader is nil")
	}

	unlimited := rule.Retry == schema.Unlimited
	remaining := rule.Retry

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Resolution{}, r.cancel(ctx, rule, attempt, err)
		}

		res, err := r.attempt(ctx, rule)
		if err == nil {
			return res, nil
		}
		if canceled, ok := err.(*CanceledError); ok {
			return Resolution{}, r.cancel(ctx, rule, attempt, canceled.Err)
		}

		msg := r.message(rule, err)
		if !unlimited {
			remaining--
		}
		if unlimited || remaining >= 0 {
			left := remaining
			if unlimited {
				left = schema.Unlimited
			}
			r.emit(ctx, events.Event{
				Type:      events.Retry,
				Field:     rule.Name,
				Message:   msg,
				Err:       err,
				Attempt:   attempt,
				Remaining: left,
			})
			runtime.Gosched()
			continue
		}

		r.emit(ctx, events.Event{
			Type:    events.Error,
			Field:   rule.Name,
			Message: msg,
			Err:     err,
			Attempt: attempt,
		})
		return Resolution{}, err
	}
}

func (r *Resolver) attempt(ctx context.Context, rule *compiler.Rule) (Resolution, error) {
	cfg := rule.ReadConfig
	cfg.Run = r.runID
	value, isDefault, err := r.reader.Read(ctx, cfg)
	if err != nil {
		if reader.IsCanceled(err) {
			return Resolution{}, &CanceledError{Field: rule.Name, Err: err}
		}
		return Resolution{}, &ReaderError{Field: rule.Name, Err: err}
	}

	// Only the caller's context cancels from here on. Checks and setters
	// that time out on their own are ordinary failures.
	for _, check := range rule.Validators {
		if err := check(ctx, value, isDefault); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Resolution{}, &CanceledError{Field: rule.Name, Err: ctxErr}
			}
			return Resolution{}, &ValidationError{
				Field:   rule.Name,
				Message: r.message(rule, err),
				Err:     err,
			}
		}
	}

	for i, set := range rule.Setters {
		next, err := set(ctx, value, isDefault)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Resolution{}, &CanceledError{Field: rule.Name, Err: ctxErr}
			}
			return Resolution{}, &SetterError{Field: rule.Name, Stage: i, Err: err}
		}
		value = next
	}

	return Resolution{Rule: rule, Value: value, IsDefault: isDefault}, nil
}

func (r *Resolver) cancel(ctx context.Context, rule *compiler.Rule, attempt int, cause error) error {
	r.emit(ctx, events.Event{
		Type:    events.Cancel,
		Field:   rule.Name,
		Err:     cause,
		Attempt: attempt,
	})
	return &CanceledError{Field: rule.Name, Err: cause}
}

func (r *Resolver) emit(ctx context.Context, evt events.Event) {
	if r.bus == nil {
		return
	}
	evt.RunID = r.runID
	r.bus.Emit(context.WithoutCancel(ctx), evt)
}

// message picks the failure text: the error's own message, else the rule's
// message. The result is rendered against the rule metadata.
func (r *Resolver) message(rule *compiler.Rule, err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Message != "" {
		return verr.Message
	}

	tpl := ""
	var failure *compiler.Failure
	switch {
	case errors.As(err, &failure):
		tpl = failure.Message
	case errors.Is(err, compiler.ErrInvalid):
	case err != nil:
		tpl = errorText(err)
	}
	if tpl == "" {
		tpl = rule.Message
	}
	if tpl == "" {
		tpl = compiler.DefaultMessage
	}
	return r.renderer.Render(tpl, rule.Meta)
}

func errorText(err error) string {
	var rerr *ReaderError
	if errors.As(err, &rerr) {
		return fmt.Sprint(rerr.Err)
	}
	var serr *SetterError
	if errors.As(err, &serr) {
		return fmt.Sprint(serr.Err)
	}
	return err.Error()
}
