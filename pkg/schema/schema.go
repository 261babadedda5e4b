package schema

import "strings"

// Unlimited disables the retry budget for a field.
const Unlimited = -1

// Type bundles the capabilities a type name contributes to a field: a
// validator appended after the user's checks, a setter appended after the
// user's transforms and an optional normalizer applied to declared defaults.
type Type struct {
	Validator Validator
	Setter    Setter
	Normalize func(any) any
}

// Empty reports whether the bundle contributes nothing.
func (t Type) Empty() bool {
	return t.Validator == nil && t.Setter == nil && t.Normalize == nil
}

// Rule is the user-authored description of a single field.
type Rule struct {
	Validator   Validator
	Setter      Setter
	Message     string
	Required    bool
	Hidden      bool
	Default     any
	HasDefault  bool
	Type        string
	InlineType  *Type
	Description string
	// Retry is the number of extra attempts after the first failure. Zero
	// selects the configured default; Unlimited disables the check.
	Retry int
}

// DefaultPresent reports whether the rule declares a default value. A non-nil
// Default counts even when HasDefault was left unset.
func (r Rule) DefaultPresent() bool {
	return r.HasDefault || r.Default != nil
}

// Field pairs a rule with its unique name.
type Field struct {
	Name string
	Rule Rule
}

// Schema is an ordered set of named rules. Insertion order is prompt order.
// Compiled forms are cached by pointer identity, so a Schema should not be
// mutated once it has been passed to a prompt run.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema from fields, in order. Later duplicates replace earlier
// ones while keeping the first position.
func New(fields ...Field) *Schema {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		s.Add(f.Name, f.Rule)
	}
	return s
}

// Add appends a rule, or replaces it in place when the name already exists.
// Blank names are ignored.
func (s *Schema) Add(name string, rule Rule) *Schema {
	name = strings.TrimSpace(name)
	if s == nil || name == "" {
		return s
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if idx, ok := s.index[name]; ok {
		s.fields[idx].Rule = rule
		return s
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, Field{Name: name, Rule: rule})
	return s
}

// Fields returns a copy of the fields in prompt order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Names returns the field names in prompt order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the rule registered under name.
func (s *Schema) Lookup(name string) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	idx, ok := s.index[name]
	if !ok {
		return Rule{}, false
	}
	return s.fields[idx].Rule, true
}

// Len reports the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}
