package events

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-asks/pkg/logging"
)

// Type names a lifecycle event.
type Type string

// Lifecycle events emitted while resolving fields.
const (
	Retry  Type = "retry"
	Error  Type = "error"
	Cancel Type = "cancel"
	Skip   Type = "skip"
)

// Event is the payload handed to listeners.
type Event struct {
	Type  Type
	Field string
	// Message is the rendered, user-facing text.
	Message string
	Err     error
	// Attempt is 1-based.
	Attempt int
	// Remaining is the retry budget left after this event, or -1 when
	// unlimited.
	Remaining int
	Value     any
	RunID     string
}

// Listener observes events of one type.
type Listener func(ctx context.Context, evt Event)

// Bus dispatches events in two tiers: listeners registered for a type run in
// registration order; when there are none, the built-in default for that type
// runs. Types with neither are dropped.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Type][]Listener
	defaults  map[Type]Listener
}

// NewBus builds a bus whose defaults report to log. A nil log discards.
func NewBus(log logging.Logger) *Bus {
	if log == nil {
		log = logging.Discard
	}
	return &Bus{
		listeners: make(map[Type][]Listener),
		defaults:  defaultHandlers(log),
	}
}

// On registers listener for typ.
func (b *Bus) On(typ Type, listener Listener) {
	if listener == nil {
		return
	}
	typ = Type(strings.TrimSpace(string(typ)))

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.listeners == nil {
		b.listeners = make(map[Type][]Listener)
	}
	b.listeners[typ] = append(b.listeners[typ], listener)
}

// Has reports whether typ has user listeners.
func (b *Bus) Has(typ Type) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[typ]) > 0
}

// Emit delivers evt synchronously.
func (b *Bus) Emit(ctx context.Context, evt Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners[evt.Type]...)
	fallback := b.defaults[evt.Type]
	b.mu.RUnlock()

	if len(listeners) > 0 {
		for _, listener := range listeners {
			listener(ctx, evt)
		}
		return
	}
	if fallback != nil {
		fallback(ctx, evt)
	}
}

func defaultHandlers(log logging.Logger) map[Type]Listener {
	return map[Type]Listener{
		Error: func(_ context.Context, evt Event) {
			log.Error(describe(evt))
		},
		Retry: func(_ context.Context, evt Event) {
			log.Warn(describe(evt))
		},
		Cancel: func(context.Context, Event) {
			log.Info("canceled...")
		},
		Skip: func(_ context.Context, evt Event) {
			log.Info(fmt.Sprintf("skipped %s", evt.Field))
		},
	}
}

func describe(evt Event) string {
	if evt.Message != "" {
		return evt.Message
	}
	if evt.Err != nil {
		return evt.Err.Error()
	}
	return string(evt.Type)
}
