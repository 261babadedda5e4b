package openapi

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-asks/pkg/schema"
	"github.com/goliatone/go-asks/pkg/types"
)

var (
	// ErrOperationNotFound is returned when no operation matches the id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

// Operation summarises an operation that can be prompted for.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Option configures an Importer.
type Option func(*Importer)

// WithFS loads relative locations from fsys instead of the working directory.
func WithFS(fsys fs.FS) Option {
	return func(i *Importer) {
		i.fsys = fsys
	}
}

// WithExternalRefs allows $ref to other files or URLs.
func WithExternalRefs(enabled bool) Option {
	return func(i *Importer) {
		i.externalRefs = enabled
	}
}

// Importer turns OpenAPI request bodies into prompt schemas.
type Importer struct {
	fsys         fs.FS
	externalRefs bool
}

// New builds an Importer.
func New(options ...Option) *Importer {
	i := &Importer{}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Load reads a document from a file path, an fs path (see WithFS) or an
// http(s) URL.
func (i *Importer) Load(ctx context.Context, location string) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("openapi: location is required")
	}

	loader := i.loader(ctx)
	var (
		doc *openapi3.T
		err error
	)
	switch {
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		u, perr := url.Parse(location)
		if perr != nil {
			return nil, fmt.Errorf("openapi: parse url %q: %w", location, perr)
		}
		doc, err = loader.LoadFromURI(u)
	case i.fsys != nil:
		data, rerr := fs.ReadFile(i.fsys, location)
		if rerr != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", location, rerr)
		}
		doc, err = loader.LoadFromData(data)
	default:
		doc, err = loader.LoadFromFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", location, err)
	}
	return doc, nil
}

// LoadData parses an in-memory document.
func (i *Importer) LoadData(ctx context.Context, data []byte) (*openapi3.T, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	doc, err := i.loader(ctx).LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

func (i *Importer) loader(ctx context.Context) *openapi3.Loader {
	return &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.externalRefs,
	}
}

var methods = []string{"GET", "PUT", "POST", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE"}

// Operations lists operations sorted by id. Operations without an id are
// named "method:path".
func Operations(doc *openapi3.T) []Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, method := range methods {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			out = append(out, Operation{
				ID:      operationID(op, method, path),
				Method:  method,
				Path:    path,
				Summary: op.Summary,
			})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// SchemaFor builds a prompt schema from the JSON request body of the
// operation. Required properties come first in their declared order, the
// rest follow alphabetically. Read-only and nested properties are skipped.
func SchemaFor(doc *openapi3.T, id string) (*schema.Schema, error) {
	op, err := findOperation(doc, id)
	if err != nil {
		return nil, err
	}
	body := requestSchema(op)
	if body == nil || len(body.Properties) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRequestBody, id)
	}

	required := make(map[string]bool, len(body.Required))
	var names []string
	for _, name := range body.Required {
		if _, ok := body.Properties[name]; ok && !required[name] {
			required[name] = true
			names = append(names, name)
		}
	}
	var optional []string
	for name := range body.Properties {
		if !required[name] {
			optional = append(optional, name)
		}
	}
	sort.Strings(optional)
	names = append(names, optional...)

	out := schema.New()
	for _, name := range names {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly || nested(ref.Value) {
			continue
		}
		rule, err := ruleFor(ref.Value, required[name])
		if err != nil {
			return nil, fmt.Errorf("openapi: %s: property %q: %w", id, name, err)
		}
		out.Add(name, rule)
	}
	return out, nil
}

func findOperation(doc *openapi3.T, id string) (*openapi3.Operation, error) {
	if doc == nil || doc.Paths == nil {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, method := range methods {
			op := item.GetOperation(method)
			if op != nil && operationID(op, method, path) == id {
				return op, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
}

func operationID(op *openapi3.Operation, method, path string) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func nested(s *openapi3.Schema) bool {
	return s.Type != nil && (s.Type.Is(openapi3.TypeObject) || s.Type.Is(openapi3.TypeArray))
}

func ruleFor(s *openapi3.Schema, required bool) (schema.Rule, error) {
	rule := schema.Rule{
		Description: describe(s),
		Required:    required,
		Hidden:      s.Format == "password" || s.WriteOnly,
		Type:        typeFor(s),
	}
	if s.Default != nil {
		rule.Default = s.Default
		rule.HasDefault = true
	}

	var checks schema.Sequence
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return schema.Rule{}, fmt.Errorf("pattern %q: %w", s.Pattern, err)
		}
		checks = append(checks, schema.Match(re))
	}
	if s.MinLength > 0 || s.MaxLength != nil {
		maxLen := types.NoLimit
		if s.MaxLength != nil {
			maxLen = int(*s.MaxLength)
		}
		checks = append(checks, types.Length(int(s.MinLength), maxLen))
	}
	if len(s.Enum) > 0 {
		options := make([]string, 0, len(s.Enum))
		for _, v := range s.Enum {
			options = append(options, types.Text(v))
		}
		checks = append(checks, types.OneOf(options...))
	}
	if len(checks) > 0 {
		rule.Validator = checks
	}
	return rule, nil
}

func typeFor(s *openapi3.Schema) string {
	switch {
	case s.Type == nil:
		return ""
	case s.Type.Is(openapi3.TypeInteger):
		return types.Integer
	case s.Type.Is(openapi3.TypeNumber):
		return types.Number
	case s.Type.Is(openapi3.TypeBoolean):
		return types.Boolean
	case s.Format == "uri" || s.Format == "url":
		return types.URL
	case s.Format == "path" || s.Format == "file-path":
		return types.Path
	default:
		return types.String
	}
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// describe prefers the title, strips markup and collapses whitespace.
func describe(s *openapi3.Schema) string {
	text := s.Title
	if strings.TrimSpace(text) == "" {
		text = s.Description
	}
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return strings.Join(strings.Fields(html.UnescapeString(policy.Sanitize(text))), " ")
}
