package bind

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sync"

	"github.com/goccy/go-json"
	js "github.com/invopop/jsonschema"

	"github.com/goliatone/go-asks/pkg/schema"
	"github.com/goliatone/go-asks/pkg/types"
)

// ErrNotStruct is returned for targets that are not structs or struct
// pointers.
var ErrNotStruct = errors.New("bind: target must be a struct")

var schemaCache sync.Map // map[reflect.Type]*schema.Schema

// SchemaFor derives a prompt schema from the exported fields of v's struct
// type, in declaration order. It reads the json and jsonschema tags:
//
//	type Server struct {
//	    Host string `json:"host" jsonschema:"required,description=Host name"`
//	    Port int    `json:"port,omitempty" jsonschema:"default=8080"`
//	    Key  string `json:"key" jsonschema:"writeOnly=true"`
//	}
//
// Object and array fields are skipped. The schema is built once per type and
// shared, so callers must not modify it.
func SchemaFor(v any) (*schema.Schema, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*schema.Schema), nil
	}

	r := &js.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	root := r.Reflect(reflect.New(t).Interface())
	if root == nil || root.Type != "object" {
		return nil, fmt.Errorf("bind: %s does not reflect to an object", t)
	}

	required := make(map[string]bool, len(root.Required))
	for _, name := range root.Required {
		required[name] = true
	}

	out := schema.New()
	if root.Properties != nil {
		for el := root.Properties.Oldest(); el != nil; el = el.Next() {
			prop := el.Value
			if prop == nil || prop.Type == "object" || prop.Type == "array" || prop.ReadOnly {
				continue
			}
			rule, err := ruleFor(prop, required[el.Key])
			if err != nil {
				return nil, fmt.Errorf("bind: %s.%s: %w", t, el.Key, err)
			}
			out.Add(el.Key, rule)
		}
	}

	actual, _ := schemaCache.LoadOrStore(t, out)
	return actual.(*schema.Schema), nil
}

func ruleFor(prop *js.Schema, required bool) (schema.Rule, error) {
	description := prop.Description
	if description == "" {
		description = prop.Title
	}
	rule := schema.Rule{
		Description: description,
		Required:    required,
		Hidden:      prop.WriteOnly || prop.Format == "password",
		Type:        typeFor(prop),
	}
	if prop.Default != nil {
		rule.Default = prop.Default
		rule.HasDefault = true
	}

	var checks schema.Sequence
	if prop.Pattern != "" {
		re, err := regexp.Compile(prop.Pattern)
		if err != nil {
			return schema.Rule{}, fmt.Errorf("pattern %q: %w", prop.Pattern, err)
		}
		checks = append(checks, schema.Match(re))
	}
	if prop.MinLength != nil || prop.MaxLength != nil {
		minLen, maxLen := 0, types.NoLimit
		if prop.MinLength != nil {
			minLen = int(*prop.MinLength)
		}
		if prop.MaxLength != nil {
			maxLen = int(*prop.MaxLength)
		}
		checks = append(checks, types.Length(minLen, maxLen))
	}
	if len(prop.Enum) > 0 {
		options := make([]string, 0, len(prop.Enum))
		for _, v := range prop.Enum {
			options = append(options, types.Text(v))
		}
		checks = append(checks, types.OneOf(options...))
	}
	if len(checks) > 0 {
		rule.Validator = checks
	}
	return rule, nil
}

func typeFor(prop *js.Schema) string {
	switch prop.Type {
	case "integer":
		return types.Integer
	case "number":
		return types.Number
	case "boolean":
		return types.Boolean
	case "string":
		switch prop.Format {
		case "uri", "url":
			return types.URL
		case "path":
			return types.Path
		}
		return types.String
	default:
		return ""
	}
}

// Decode copies values into dst, converting through JSON so field tags and
// numeric widths are honoured.
func Decode(values map[string]any, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStruct
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("bind: encode answers: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("bind: decode answers: %w", err)
	}
	return nil
}
