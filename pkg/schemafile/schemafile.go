package schemafile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-asks/pkg/schema"
	"github.com/goliatone/go-asks/pkg/types"
)

// ErrEmpty is returned for documents without content.
var ErrEmpty = errors.New("schemafile: document is empty")

type fieldFile struct {
	Description string   `yaml:"description"`
	Message     string   `yaml:"message"`
	Required    bool     `yaml:"required"`
	Hidden      bool     `yaml:"hidden"`
	Default     any      `yaml:"default"`
	Type        string   `yaml:"type"`
	Retry       int      `yaml:"retry"`
	Pattern     patterns `yaml:"pattern"`
	Enum        []string `yaml:"enum"`
	MinLength   *int     `yaml:"minLength"`
	MaxLength   *int     `yaml:"maxLength"`
}

// patterns accepts a single expression or a list.
type patterns []string

func (p *patterns) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = patterns{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	default:
		return fmt.Errorf("line %d: pattern must be a string or a list of strings", node.Line)
	}
}

// Load reads a schema document from disk.
func Load(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads a schema document from fsys.
func LoadFS(fsys fs.FS, path string) (*schema.Schema, error) {
	if fsys == nil {
		return nil, errors.New("schemafile: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a YAML or JSON schema document. source names the document
// in errors.
func Parse(data []byte, source string) (*schema.Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, source)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemafile: parse %s: %w", source, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, source)
	}

	fields := lookup(doc.Content[0], "fields")
	if fields == nil {
		return nil, fmt.Errorf("schemafile: %s: missing fields mapping", source)
	}
	if fields.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schemafile: %s: line %d: fields must be a mapping", source, fields.Line)
	}

	out := schema.New()
	for i := 0; i+1 < len(fields.Content); i += 2 {
		keyNode, valueNode := fields.Content[i], fields.Content[i+1]
		name := strings.TrimSpace(keyNode.Value)
		if name == "" {
			return nil, fmt.Errorf("schemafile: %s: line %d: empty field name", source, keyNode.Line)
		}
		if _, exists := out.Lookup(name); exists {
			return nil, fmt.Errorf("schemafile: %s: duplicate field %q", source, name)
		}

		rule, err := decodeRule(valueNode)
		if err != nil {
			return nil, fmt.Errorf("schemafile: %s: field %q: %w", source, name, err)
		}
		out.Add(name, rule)
	}
	return out, nil
}

func decodeRule(node *yaml.Node) (schema.Rule, error) {
	var raw fieldFile
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return schema.Rule{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return schema.Rule{}, fmt.Errorf("line %d: field must be a mapping", node.Line)
	}
	if err := node.Decode(&raw); err != nil {
		return schema.Rule{}, err
	}

	rule := schema.Rule{
		Description: raw.Description,
		Message:     raw.Message,
		Required:    raw.Required,
		Hidden:      raw.Hidden,
		Default:     raw.Default,
		HasDefault:  lookup(node, "default") != nil,
		Type:        strings.TrimSpace(raw.Type),
		Retry:       raw.Retry,
	}

	var checks schema.Sequence
	for _, expr := range raw.Pattern {
		re, err := regexp.Compile(expr)
		if err != nil {
			return schema.Rule{}, fmt.Errorf("pattern %q: %w", expr, err)
		}
		checks = append(checks, schema.Match(re))
	}
	if raw.MinLength != nil || raw.MaxLength != nil {
		minLen, maxLen := 0, types.NoLimit
		if raw.MinLength != nil {
			minLen = *raw.MinLength
		}
		if raw.MaxLength != nil {
			maxLen = *raw.MaxLength
		}
		checks = append(checks, types.Length(minLen, maxLen))
	}
	if len(raw.Enum) > 0 {
		checks = append(checks, types.OneOf(raw.Enum...))
	}
	if len(checks) > 0 {
		rule.Validator = checks
	}
	return rule, nil
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
