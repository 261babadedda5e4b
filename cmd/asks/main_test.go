package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-asks/pkg/logging"
	"github.com/goliatone/go-asks/pkg/orchestrator"
	"github.com/goliatone/go-asks/pkg/reader"
	"github.com/goliatone/go-asks/pkg/render"
	"github.com/goliatone/go-asks/pkg/schema"
)

func sampleResult(t *testing.T) orchestrator.Result {
	t.Helper()
	a := orchestrator.New(
		orchestrator.WithReader(reader.Lines("bob", "")),
		orchestrator.WithLogger(logging.Discard),
		orchestrator.WithRenderer(render.MustNew(render.WithColor(false))),
	)
	result, err := a.Get(context.Background(), schema.New(
		schema.Define("name"),
		schema.Define("port", schema.OfType("integer"), schema.Default(22)),
	))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return result
}

func TestWriteFormats(t *testing.T) {
	result := sampleResult(t)
	cases := []struct {
		format   string
		detailed bool
		want     string
	}{
		{"json", false, "{\n  \"name\": \"bob\",\n  \"port\": 22\n}\n"},
		{"yaml", false, "name: bob\nport: 22\n"},
		{"pretty", true, "name: bob\nport: 22 (default)\n"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := write(&buf, result, tc.format, tc.detailed); err != nil {
			t.Fatalf("%s: %v", tc.format, err)
		}
		if diff := cmp.Diff(tc.want, buf.String()); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.format, diff)
		}
	}

	if err := write(&bytes.Buffer{}, result, "xml", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestSplitList(t *testing.T) {
	if diff := cmp.Diff([]string{"a", "b"}, splitList(" a, ,b ,")); diff != "" {
		t.Fatalf("split mismatch (-want +got):\n%s", diff)
	}
	if splitList("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestLoadSchemaRejectsBothSources(t *testing.T) {
	if _, err := loadSchema(context.Background(), "a.yaml", "b.yaml", ""); err == nil {
		t.Fatalf("expected an error")
	}
}
