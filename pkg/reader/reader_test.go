package reader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/go-cmp/cmp"
)

func TestScriptedAnswersAndDefaults(t *testing.T) {
	r := Lines("hello", "")
	ctx := context.Background()

	value, isDefault, err := r.Read(ctx, Config{Name: "a"})
	if err != nil || value != "hello" || isDefault {
		t.Fatalf("first read = (%v, %v, %v)", value, isDefault, err)
	}

	value, isDefault, err = r.Read(ctx, Config{Name: "b", Default: 3, HasDefault: true})
	if err != nil || value != 3 || !isDefault {
		t.Fatalf("second read = (%v, %v, %v)", value, isDefault, err)
	}

	_, _, err = r.Read(ctx, Config{Name: "c"})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected exhaustion to cancel, got %v", err)
	}

	names := []string{}
	for _, cfg := range r.Reads() {
		names = append(names, cfg.Name)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Fatalf("reads mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptedEmptyWithoutDefault(t *testing.T) {
	value, isDefault, err := Lines("").Read(context.Background(), Config{Name: "a"})
	if err != nil || value != "" || !isDefault {
		t.Fatalf("read = (%v, %v, %v)", value, isDefault, err)
	}
}

func TestStreamReadsLines(t *testing.T) {
	var out bytes.Buffer
	r := NewStream(strings.NewReader("alice\r\n\nlast"), &out)
	ctx := context.Background()

	value, _, err := r.Read(ctx, Config{Name: "name", PromptText: "Name?"})
	if err != nil || value != "alice" {
		t.Fatalf("first read = (%v, %v)", value, err)
	}
	value, isDefault, err := r.Read(ctx, Config{Name: "city", PromptText: "City?", Default: "Oslo", HasDefault: true})
	if err != nil || value != "Oslo" || !isDefault {
		t.Fatalf("second read = (%v, %v, %v)", value, isDefault, err)
	}
	value, _, err = r.Read(ctx, Config{Name: "x", PromptText: "X?"})
	if err != nil || value != "last" {
		t.Fatalf("unterminated read = (%v, %v)", value, err)
	}
	_, _, err = r.Read(ctx, Config{Name: "y", PromptText: "Y?"})
	if !errors.Is(err, ErrCanceled) || !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF cancellation, got %v", err)
	}

	if got := out.String(); !strings.Contains(got, "City? (Oslo) ") || !strings.HasPrefix(got, "Name? ") {
		t.Fatalf("unexpected prompts %q", got)
	}
}

func TestAnswersReader(t *testing.T) {
	doc := []byte(`{"name":"bob","port":8080,"tls":true,"dotted.key":"v","empty":null,"dev":{"name":"dev-bob"}}`)
	r, err := NewAnswers(doc)
	if err != nil {
		t.Fatalf("new answers: %v", err)
	}
	ctx := context.Background()

	cases := []struct {
		cfg         Config
		want        any
		wantDefault bool
	}{
		{Config{Name: "name"}, "bob", false},
		{Config{Name: "port"}, "8080", false},
		{Config{Name: "tls"}, "true", false},
		{Config{Name: "dotted.key"}, "v", false},
		{Config{Name: "empty", Default: "d", HasDefault: true}, "d", true},
		{Config{Name: "missing"}, "", true},
	}
	for _, tc := range cases {
		value, isDefault, err := r.Read(ctx, tc.cfg)
		if err != nil {
			t.Fatalf("%s: %v", tc.cfg.Name, err)
		}
		if value != tc.want || isDefault != tc.wantDefault {
			t.Fatalf("%s = (%#v, %v), want (%#v, %v)", tc.cfg.Name, value, isDefault, tc.want, tc.wantDefault)
		}
	}

	if _, _, err := r.Read(ctx, Config{Name: "name"}); !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected second read of the same field to cancel, got %v", err)
	}

	nested, err := NewAnswers(doc, WithPrefix("dev"))
	if err != nil {
		t.Fatalf("new answers: %v", err)
	}
	if value, _, _ := nested.Read(ctx, Config{Name: "name"}); value != "dev-bob" {
		t.Fatalf("prefixed read = %v", value)
	}
}

func TestAnswersResetsPerRun(t *testing.T) {
	r, err := NewAnswers([]byte(`{"name":"bob"}`))
	if err != nil {
		t.Fatalf("new answers: %v", err)
	}
	ctx := context.Background()

	if _, _, err := r.Read(ctx, Config{Name: "name", Run: "first"}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, _, err := r.Read(ctx, Config{Name: "name", Run: "first"}); !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected repeated read within a run to cancel, got %v", err)
	}
	value, _, err := r.Read(ctx, Config{Name: "name", Run: "second"})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if value != "bob" {
		t.Fatalf("second run value = %v", value)
	}
}

func TestAnswersRejectsInvalidJSON(t *testing.T) {
	if _, err := NewAnswers([]byte(`{nope`)); !errors.Is(err, ErrInvalidAnswers) {
		t.Fatalf("expected ErrInvalidAnswers, got %v", err)
	}
}

func TestTranslateSurveyErr(t *testing.T) {
	if !errors.Is(translateSurveyErr(terminal.InterruptErr), ErrCanceled) {
		t.Fatalf("expected interrupt to cancel")
	}
	if !errors.Is(translateSurveyErr(io.EOF), ErrCanceled) {
		t.Fatalf("expected EOF to cancel")
	}
	other := errors.New("boom")
	if translateSurveyErr(other) != other {
		t.Fatalf("expected other errors to pass through")
	}
}

func TestIsCanceled(t *testing.T) {
	for _, err := range []error{ErrCanceled, io.EOF, context.Canceled, context.DeadlineExceeded} {
		if !IsCanceled(err) {
			t.Fatalf("expected %v to count as cancellation", err)
		}
	}
	if IsCanceled(errors.New("bad input")) {
		t.Fatalf("plain errors must not cancel")
	}
}

func TestReadersHonourContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	readers := map[string]LineReader{
		"scripted": Lines("x"),
		"stream":   NewStream(strings.NewReader("x\n"), nil),
		"terminal": NewTerminal(),
	}
	for name, r := range readers {
		if _, _, err := r.Read(ctx, Config{Name: "a"}); !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: expected context.Canceled, got %v", name, err)
		}
	}
}
