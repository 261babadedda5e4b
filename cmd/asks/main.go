package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-asks/pkg/config"
	"github.com/goliatone/go-asks/pkg/openapi"
	"github.com/goliatone/go-asks/pkg/orchestrator"
	"github.com/goliatone/go-asks/pkg/reader"
	"github.com/goliatone/go-asks/pkg/schema"
	"github.com/goliatone/go-asks/pkg/schemafile"
)

// exitCanceled follows the shell convention for SIGINT.
const exitCanceled = 130

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -schema file | -openapi doc -operation id [flags]\n\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		flag.PrintDefaults()
	}
	schemaPath := flag.String("schema", "", "YAML or JSON schema document")
	openapiDoc := flag.String("openapi", "", "OpenAPI document path or URL")
	operation := flag.String("operation", "", "OpenAPI operation id to prompt for (lists operations when empty)")
	answersPath := flag.String("answers", "", "JSON answers document read instead of the terminal")
	answersPrefix := flag.String("answers-prefix", "", "path inside the answers document holding the fields")
	skip := flag.String("skip", "", "comma separated fields that take their default without prompting")
	format := flag.String("format", "json", "output format: json, yaml or pretty")
	defaults := flag.Bool("defaults", false, "emit {value, isDefault} per field")
	retry := flag.Int("retry", 0, "retry budget for fields without one (-1 for unlimited)")
	noColor := flag.Bool("no-color", false, "disable colours")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}
	if *noColor {
		cfg.NoColor = true
	}
	if *retry != 0 {
		cfg.Retry = *retry
	}

	s, err := loadSchema(ctx, *schemaPath, *openapiDoc, *operation)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}
	if s == nil {
		return
	}

	opts, err := cfg.Options(os.Stderr)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	lr, err := newReader(*answersPath, *answersPrefix)
	if err != nil {
		log.Fatalf("Failed to open answers: %v", err)
	}
	opts = append(opts, orchestrator.WithReader(lr))
	if names := splitList(*skip); len(names) > 0 {
		opts = append(opts, orchestrator.WithSkip(names...))
	}

	result, err := orchestrator.New(opts...).Get(ctx, s)
	if err != nil {
		if errors.Is(err, reader.ErrCanceled) {
			os.Exit(exitCanceled)
		}
		log.Fatalf("Failed to collect answers: %v", err)
	}

	if err := write(os.Stdout, result, *format, *defaults); err != nil {
		log.Fatalf("Failed to write answers: %v", err)
	}
}

// loadSchema returns nil, nil after listing operations.
func loadSchema(ctx context.Context, schemaPath, doc, operation string) (*schema.Schema, error) {
	switch {
	case schemaPath != "" && doc != "":
		return nil, errors.New("use either -schema or -openapi")
	case schemaPath != "":
		return schemafile.Load(schemaPath)
	case doc != "":
		api, err := openapi.New().Load(ctx, doc)
		if err != nil {
			return nil, err
		}
		if operation == "" {
			for _, op := range openapi.Operations(api) {
				fmt.Printf("%s\t%s %s\t%s\n", op.ID, op.Method, op.Path, op.Summary)
			}
			return nil, nil
		}
		return openapi.SchemaFor(api, operation)
	default:
		flag.Usage()
		return nil, errors.New("a schema source is required")
	}
}

func newReader(answersPath, prefix string) (reader.LineReader, error) {
	if answersPath != "" {
		data, err := os.ReadFile(answersPath)
		if err != nil {
			return nil, err
		}
		return reader.NewAnswers(data, reader.WithPrefix(prefix))
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return reader.NewTerminal(), nil
	}
	return reader.NewStream(os.Stdin, os.Stderr), nil
}

func write(w io.Writer, result orchestrator.Result, format string, detailed bool) error {
	var value any = result
	if detailed {
		value = result.Detailed()
	}

	switch strings.ToLower(format) {
	case "json":
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	case "pretty":
		for _, name := range result.Keys() {
			answer, _ := result.Answer(name)
			suffix := ""
			if detailed && answer.IsDefault {
				suffix = " (default)"
			}
			if _, err := fmt.Fprintf(w, "%s: %v%s\n", name, answer.Value, suffix); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
