package asks

import (
	"context"
	"fmt"

	"github.com/goliatone/go-asks/pkg/bind"
	"github.com/goliatone/go-asks/pkg/events"
	"github.com/goliatone/go-asks/pkg/orchestrator"
	"github.com/goliatone/go-asks/pkg/reader"
	"github.com/goliatone/go-asks/pkg/schema"
)

// Asks aliases the orchestrator so callers can stay on the root package.
type Asks = orchestrator.Asks

// Option configures an Asks instance.
type Option = orchestrator.Option

// Result holds the answers of a batch in schema order.
type Result = orchestrator.Result

// Answer is a resolved value plus its default flag.
type Answer = orchestrator.Answer

// Schema is an ordered set of field rules.
type Schema = schema.Schema

// Rule describes a single field.
type Rule = schema.Rule

// Field pairs a name with its rule.
type Field = schema.Field

// Type is a named capability bundle for RegisterType.
type Type = schema.Type

// Event is delivered to listeners registered with On.
type Event = events.Event

// EventType names a lifecycle event.
type EventType = events.Type

// Lifecycle events.
const (
	EventRetry  = events.Retry
	EventError  = events.Error
	EventCancel = events.Cancel
	EventSkip   = events.Skip
)

// Unlimited disables a field's retry budget.
const Unlimited = schema.Unlimited

// ErrCanceled matches every batch failure caused by the operator aborting
// input.
var ErrCanceled = reader.ErrCanceled

// Option helpers re-exported from the orchestrator.
var (
	WithPromptTemplate  = orchestrator.WithPromptTemplate
	WithDefaultMessage  = orchestrator.WithDefaultMessage
	WithRequiredMessage = orchestrator.WithRequiredMessage
	WithDefaultRetry    = orchestrator.WithDefaultRetry
	WithBinding         = orchestrator.WithBinding
	WithLogger          = orchestrator.WithLogger
	WithReader          = orchestrator.WithReader
	WithRenderer        = orchestrator.WithRenderer
	WithRegistry        = orchestrator.WithRegistry
	WithSkip            = orchestrator.WithSkip
)

// New builds an Asks instance.
func New(options ...Option) *Asks {
	return orchestrator.New(options...)
}

// NewSchema builds a schema from fields, in prompt order.
func NewSchema(fields ...Field) *Schema {
	return schema.New(fields...)
}

// Get is a one-shot helper: it builds an instance from options and resolves
// s with it.
func Get(ctx context.Context, s *Schema, options ...Option) (Result, error) {
	return orchestrator.New(options...).Get(ctx, s)
}

// Fill prompts for the exported scalar fields of the struct dst points to and
// stores the answers in it. See bind.SchemaFor for the supported tags.
func Fill(ctx context.Context, a *Asks, dst any) error {
	s, err := bind.SchemaFor(dst)
	if err != nil {
		return err
	}
	result, err := a.Get(ctx, s)
	if err != nil {
		return err
	}
	if err := bind.Decode(result.Values(), dst); err != nil {
		return fmt.Errorf("asks: fill %T: %w", dst, err)
	}
	return nil
}
