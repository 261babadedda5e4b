package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-asks/pkg/compiler"
	"github.com/goliatone/go-asks/pkg/events"
	"github.com/goliatone/go-asks/pkg/logging"
	"github.com/goliatone/go-asks/pkg/reader"
	"github.com/goliatone/go-asks/pkg/render"
	"github.com/goliatone/go-asks/pkg/schema"
)

type recorded struct {
	typ       events.Type
	field     string
	message   string
	attempt   int
	remaining int
}

type harness struct {
	compiler *compiler.Compiler
	bus      *events.Bus
	log      *logging.Recorder
	events   []recorded
}

func newHarness(t *testing.T, opts ...compiler.Option) *harness {
	t.Helper()
	plain := render.MustNew(render.WithColor(false))
	h := &harness{
		compiler: compiler.New(append([]compiler.Option{compiler.WithRenderer(plain)}, opts...)...),
		log:      &logging.Recorder{},
	}
	h.bus = events.NewBus(h.log)
	for _, typ := range []events.Type{events.Retry, events.Error, events.Cancel} {
		h.bus.On(typ, func(_ context.Context, evt events.Event) {
			h.events = append(h.events, recorded{
				typ:       evt.Type,
				field:     evt.Field,
				message:   evt.Message,
				attempt:   evt.Attempt,
				remaining: evt.Remaining,
			})
		})
	}
	return h
}

func (h *harness) resolver(lr reader.LineReader) *Resolver {
	return New(lr, h.bus, WithRenderer(render.MustNew(render.WithColor(false))), WithRunID("run-1"))
}

func TestResolveTypedValue(t *testing.T) {
	h := newHarness(t)
	rule := h.compiler.Compile("port", schema.Rule{Type: "integer"})

	res, err := h.resolver(reader.Lines("8080")).Resolve(context.Background(), rule)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Value != int64(8080) || res.IsDefault || res.Rule != rule {
		t.Fatalf("resolution = %+v", res)
	}
}

func TestSetterPipelineIsSequential(t *testing.T) {
	h := newHarness(t)
	add1 := schema.SyncTransform(func(v any, _ bool) any { return v.(int) + 1 })
	double := schema.AsyncTransform(func(_ context.Context, v any, _ bool) (any, error) { return v.(int) * 2, nil })
	toInt := schema.SyncTransform(func(any, bool) any { return 3 })

	rule := h.compiler.Compile("n", schema.Rule{Setter: schema.Pipeline{toInt, add1, double}})
	res, err := h.resolver(reader.Lines("3")).Resolve(context.Background(), rule)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Value != 8 {
		t.Fatalf("value = %v, want 8", res.Value)
	}
}

func TestRetryOneAllowsTwoAttempts(t *testing.T) {
	h := newHarness(t)
	rule := h.compiler.Compile("code", schema.Rule{
		Retry:     1,
		Validator: schema.MustMatch(`^\d+$`),
	})
	lr := reader.Lines("abc", "def", "123")

	_, err := h.resolver(lr).Resolve(context.Background(), rule)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Message != "code: invalid input" {
		t.Fatalf("message = %q", verr.Message)
	}
	if lr.Remaining() != 1 {
		t.Fatalf("expected exactly two reads, %d steps left", lr.Remaining())
	}

	want := []recorded{
		{typ: events.Retry, field: "code", message: "code: invalid input", attempt: 1, remaining: 0},
		{typ: events.Error, field: "code", message: "code: invalid input", attempt: 2},
	}
	if diff := cmp.Diff(want, h.events, cmp.AllowUnexported(recorded{})); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestRetryRecovers(t *testing.T) {
	h := newHarness(t, compiler.WithDefaultRetry(2))
	rule := h.compiler.Compile("code", schema.Rule{Validator: schema.MustMatch(`^\d+$`)})

	res, err := h.resolver(reader.Lines("a", "b", "42")).Resolve(context.Background(), rule)
	if err != nil || res.Value != "42" {
		t.Fatalf("resolve = (%+v, %v)", res, err)
	}
	if len(h.events) != 2 || h.events[1].remaining != 0 {
		t.Fatalf("events = %+v", h.events)
	}
}

func TestUnlimitedRetry(t *testing.T) {
	h := newHarness(t)
	rule := h.compiler.Compile("code", schema.Rule{
		Retry:     schema.Unlimited,
		Validator: schema.MustMatch(`^ok$`),
	})
	res, err := h.resolver(reader.Lines("1", "2", "3", "4", "5", "ok")).Resolve(context.Background(), rule)
	if err != nil || res.Value != "ok" {
		t.Fatalf("resolve = (%+v, %v)", res, err)
	}
	for _, evt := range h.events {
		if evt.remaining != schema.Unlimited {
			t.Fatalf("expected unlimited remaining, got %+v", evt)
		}
	}
}

func TestCancellationIsNotRetried(t *testing.T) {
	h := newHarness(t)
	rule := h.compiler.Compile("name", schema.Rule{Retry: 5})
	lr := reader.NewScripted(reader.Cancel, reader.Step{Answer: "late"})

	_, err := h.resolver(lr).Resolve(context.Background(), rule)
	var cerr *CanceledError
	if !errors.As(err, &cerr) || !errors.Is(err, reader.ErrCanceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if lr.Remaining() != 1 {
		t.Fatalf("cancellation must not retry")
	}
	if len(h.events) != 1 || h.events[0].typ != events.Cancel {
		t.Fatalf("events = %+v", h.events)
	}
}

func TestContextCancellation(t *testing.T) {
	h := newHarness(t)
	rule := h.compiler.Compile("name", schema.Rule{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.resolver(reader.Lines("x")).Resolve(ctx, rule)
	if !errors.Is(err, context.Canceled) || !errors.Is(err, reader.ErrCanceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestFirstFailingCheckStopsChain(t *testing.T) {
	h := newHarness(t)
	later := 0
	rule := h.compiler.Compile("code", schema.Rule{
		Validator: schema.Sequence{
			schema.SyncCheck(func(any, bool) (bool, string) { return false, "" }),
			schema.SyncCheck(func(any, bool) (bool, string) {
				later++
				return true, ""
			}),
		},
	})

	if _, err := h.resolver(reader.Lines("a", "b")).Resolve(context.Background(), rule); err == nil {
		t.Fatalf("expected the field to fail")
	}
	if later != 0 {
		t.Fatalf("checks after the failing one ran %d times", later)
	}
}

func TestCheckTimeoutIsRetried(t *testing.T) {
	h := newHarness(t)
	calls := 0
	rule := h.compiler.Compile("host", schema.Rule{
		Retry: 3,
		Validator: schema.AsyncCheck(func(ctx context.Context, _ any, _ bool) error {
			calls++
			if calls > 1 {
				return nil
			}
			lookup, cancel := context.WithTimeout(ctx, time.Nanosecond)
			defer cancel()
			<-lookup.Done()
			return fmt.Errorf("lookup: %w", lookup.Err())
		}),
	})
	lr := reader.Lines("a.example", "b.example")

	res, err := h.resolver(lr).Resolve(context.Background(), rule)
	if err != nil || res.Value != "b.example" {
		t.Fatalf("resolve = (%+v, %v)", res, err)
	}
	want := []recorded{
		{typ: events.Retry, field: "host", message: "lookup: context deadline exceeded", attempt: 1, remaining: 2},
	}
	if diff := cmp.Diff(want, h.events, cmp.AllowUnexported(recorded{})); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSetterEOFIsRetried(t *testing.T) {
	h := newHarness(t)
	calls := 0
	rule := h.compiler.Compile("file", schema.Rule{
		Retry: 3,
		Setter: schema.AsyncTransform(func(_ context.Context, v any, _ bool) (any, error) {
			calls++
			if calls == 1 {
				return nil, fmt.Errorf("read: %w", io.EOF)
			}
			return v, nil
		}),
	})
	lr := reader.Lines("empty.txt", "full.txt")

	res, err := h.resolver(lr).Resolve(context.Background(), rule)
	if err != nil || res.Value != "full.txt" {
		t.Fatalf("resolve = (%+v, %v)", res, err)
	}
	want := []recorded{
		{typ: events.Retry, field: "file", message: "read: EOF", attempt: 1, remaining: 2},
	}
	if diff := cmp.Diff(want, h.events, cmp.AllowUnexported(recorded{})); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestContextCanceledDuringCheck(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rule := h.compiler.Compile("name", schema.Rule{
		Retry: 3,
		Validator: schema.AsyncCheck(func(ctx context.Context, _ any, _ bool) error {
			cancel()
			return ctx.Err()
		}),
	})
	lr := reader.Lines("a", "b")

	_, err := h.resolver(lr).Resolve(ctx, rule)
	var cerr *CanceledError
	if !errors.As(err, &cerr) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if lr.Remaining() != 1 {
		t.Fatalf("cancellation must not retry")
	}
	if len(h.events) != 1 || h.events[0].typ != events.Cancel {
		t.Fatalf("events = %+v", h.events)
	}
}

func TestReadCarriesRunID(t *testing.T) {
	h := newHarness(t)
	lr := reader.Lines("x")
	if _, err := h.resolver(lr).Resolve(context.Background(), h.compiler.Compile("name", schema.Rule{})); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if reads := lr.Reads(); len(reads) != 1 || reads[0].Run != "run-1" {
		t.Fatalf("reads = %+v", reads)
	}
}

func TestRequiredFailsOnEmptyDefault(t *testing.T) {
	h := newHarness(t)
	setterRan := false
	rule := h.compiler.Compile("name", schema.Rule{
		Required: true,
		Setter:   schema.SyncTransform(func(v any, _ bool) any { setterRan = true; return v }),
	})

	_, err := h.resolver(reader.Lines("", "")).Resolve(context.Background(), rule)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != compiler.DefaultRequiredMessage {
		t.Fatalf("expected required failure, got %v", err)
	}
	if setterRan {
		t.Fatalf("setters must not run after a failed check")
	}
}

func TestDefaultSatisfiesField(t *testing.T) {
	h := newHarness(t)
	rule := h.compiler.Compile("name", schema.Rule{Required: true, Default: "x"})

	res, err := h.resolver(reader.Lines("")).Resolve(context.Background(), rule)
	if err != nil || res.Value != "x" || !res.IsDefault {
		t.Fatalf("resolve = (%+v, %v)", res, err)
	}
}

func TestMessagePrecedence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	specific := h.compiler.Compile("a", schema.Rule{
		Retry:     schema.Unlimited,
		Message:   "rule message",
		Validator: schema.SyncCheck(func(v any, _ bool) (bool, string) { return v == "ok", "{{ name }} is wrong" }),
	})
	ruleMsg := h.compiler.Compile("b", schema.Rule{
		Retry:     schema.Unlimited,
		Message:   "{{ description }} rejected",
		Validator: schema.MustMatch(`^ok$`),
	})

	if _, err := h.resolver(reader.Lines("no", "ok")).Resolve(ctx, specific); err != nil {
		t.Fatalf("resolve a: %v", err)
	}
	if _, err := h.resolver(reader.Lines("no", "ok")).Resolve(ctx, ruleMsg); err != nil {
		t.Fatalf("resolve b: %v", err)
	}

	got := []string{h.events[0].message, h.events[1].message}
	if diff := cmp.Diff([]string{"a is wrong", "b rejected"}, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderAndSetterErrorsRetry(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("tty glitch")
	calls := 0
	rule := h.compiler.Compile("f", schema.Rule{
		Retry: 2,
		Setter: schema.AsyncTransform(func(_ context.Context, v any, _ bool) (any, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("bad value")
			}
			return v, nil
		}),
	})
	lr := reader.NewScripted(reader.Step{Err: boom}, reader.Step{Answer: "one"}, reader.Step{Answer: "two"})

	res, err := h.resolver(lr).Resolve(context.Background(), rule)
	if err != nil || res.Value != "two" {
		t.Fatalf("resolve = (%+v, %v)", res, err)
	}
	got := []string{h.events[0].message, h.events[1].message}
	if diff := cmp.Diff([]string{"tty glitch", "bad value"}, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultHandlersLogWithoutListeners(t *testing.T) {
	log := &logging.Recorder{}
	bus := events.NewBus(log)
	c := compiler.New(compiler.WithRenderer(render.MustNew(render.WithColor(false))))
	rule := c.Compile("f", schema.Rule{Validator: schema.MustMatch(`^ok$`)})
	r := New(reader.Lines("no", "no"), bus, WithRenderer(render.MustNew(render.WithColor(false))))

	if _, err := r.Resolve(context.Background(), rule); err == nil {
		t.Fatalf("expected failure")
	}
	want := []logging.Entry{
		{Level: "warn", Msg: "f: invalid input"},
		{Level: "error", Msg: "f: invalid input"},
	}
	if diff := cmp.Diff(want, log.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}
