package compiler

import (
	"context"
	"strings"

	"github.com/goliatone/go-asks/pkg/reader"
	"github.com/goliatone/go-asks/pkg/render"
	"github.com/goliatone/go-asks/pkg/schema"
	"github.com/goliatone/go-asks/pkg/types"
)

// Defaults applied when no option overrides them.
const (
	DefaultPromptTemplate  = "{{ description|gray }}"
	DefaultMessage         = "{{ name }}: invalid input"
	DefaultRequiredMessage = "This field is required"
	DefaultRetry           = 1
)

// Check is a normalized validator. A nil error accepts the value.
type Check func(ctx context.Context, value any, isDefault bool) error

// Transform is a normalized setter stage.
type Transform func(ctx context.Context, value any, isDefault bool) (any, error)

// Rule is the canonical, compiled form of a field. It is not modified after
// compilation.
type Rule struct {
	Name        string
	Description string
	Type        string
	Validators  []Check
	Setters     []Transform
	// Retry is the remaining-attempt budget, or schema.Unlimited.
	Retry      int
	Hidden     bool
	Required   bool
	Default    any
	HasDefault bool
	// Message is the fallback failure template.
	Message    string
	PromptText string
	// Meta is the data message and prompt templates render against.
	Meta       map[string]any
	ReadConfig reader.Config
}

// Schema is a compiled schema. Rules keep the source order.
type Schema struct {
	rules []*Rule
}

// Rules returns the compiled rules in prompt order.
func (s *Schema) Rules() []*Rule {
	if s == nil {
		return nil
	}
	return append([]*Rule(nil), s.rules...)
}

// Len reports the number of rules.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithPromptTemplate overrides the prompt template.
func WithPromptTemplate(tpl string) Option {
	return func(c *Compiler) {
		if strings.TrimSpace(tpl) != "" {
			c.promptTemplate = tpl
		}
	}
}

// WithDefaultMessage overrides the fallback failure message.
func WithDefaultMessage(msg string) Option {
	return func(c *Compiler) {
		if strings.TrimSpace(msg) != "" {
			c.defaultMessage = msg
		}
	}
}

// WithRequiredMessage overrides the message of the required check.
func WithRequiredMessage(msg string) Option {
	return func(c *Compiler) {
		if strings.TrimSpace(msg) != "" {
			c.requiredMessage = msg
		}
	}
}

// WithDefaultRetry sets the budget used by rules that do not set one.
func WithDefaultRetry(n int) Option {
	return func(c *Compiler) {
		if n > 0 || n == schema.Unlimited {
			c.defaultRetry = n
		}
	}
}

// WithRenderer sets the prompt renderer.
func WithRenderer(r render.Renderer) Option {
	return func(c *Compiler) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithRegistry sets the type registry consulted for rule types.
func WithRegistry(r *types.Registry) Option {
	return func(c *Compiler) {
		if r != nil {
			c.registry = r
		}
	}
}

// Compiler turns schema rules into compiled rules.
type Compiler struct {
	promptTemplate  string
	defaultMessage  string
	requiredMessage string
	defaultRetry    int
	renderer        render.Renderer
	registry        *types.Registry
}

// New builds a Compiler. Without WithRenderer a colour pongo2 engine is used.
func New(options ...Option) *Compiler {
	c := &Compiler{
		promptTemplate:  DefaultPromptTemplate,
		defaultMessage:  DefaultMessage,
		requiredMessage: DefaultRequiredMessage,
		defaultRetry:    DefaultRetry,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.renderer == nil {
		c.renderer = render.MustNew()
	}
	if c.registry == nil {
		c.registry = types.NewRegistry()
	}
	return c
}

// CompileSchema compiles every field of s in order.
func (c *Compiler) CompileSchema(s *schema.Schema) *Schema {
	fields := s.Fields()
	out := &Schema{rules: make([]*Rule, 0, len(fields))}
	for _, field := range fields {
		out.rules = append(out.rules, c.Compile(field.Name, field.Rule))
	}
	return out
}

// Compile normalizes raw into its compiled form. Malformed validators and
// setters are dropped; compilation never fails.
func (c *Compiler) Compile(name string, raw schema.Rule) *Rule {
	rule := &Rule{
		Name:        name,
		Description: raw.Description,
		Type:        raw.Type,
		Hidden:      raw.Hidden,
		Required:    raw.Required,
		Default:     raw.Default,
		HasDefault:  raw.DefaultPresent(),
		Message:     raw.Message,
	}
	if strings.TrimSpace(rule.Description) == "" {
		rule.Description = name
	}
	if rule.Message == "" {
		rule.Message = c.defaultMessage
	}

	rule.Validators = flattenChecks(nil, raw.Validator)
	rule.Setters = flattenTransforms(nil, raw.Setter)

	bundle := c.resolveType(raw)
	rule.Validators = flattenChecks(rule.Validators, bundle.Validator)
	rule.Setters = flattenTransforms(rule.Setters, bundle.Setter)

	switch {
	case rule.HasDefault && bundle.Normalize != nil:
		rule.Default = bundle.Normalize(rule.Default)
	case rule.Required && !rule.HasDefault:
		rule.Validators = append([]Check{c.requiredCheck()}, rule.Validators...)
	}

	rule.Retry = c.retryBudget(raw.Retry)

	rule.Meta = map[string]any{
		"name":        rule.Name,
		"description": rule.Description,
		"default":     "",
		"type":        rule.Type,
	}
	if rule.HasDefault {
		rule.Meta["default"] = rule.Default
	}
	rule.PromptText = c.promptText(rule)

	rule.ReadConfig = reader.Config{
		Name:       rule.Name,
		PromptText: rule.PromptText,
		Masked:     rule.Hidden,
		Default:    rule.Default,
		HasDefault: rule.HasDefault,
	}
	return rule
}

func (c *Compiler) resolveType(raw schema.Rule) schema.Type {
	if raw.InlineType != nil {
		return *raw.InlineType
	}
	return c.registry.Resolve(raw.Type)
}

func (c *Compiler) retryBudget(n int) int {
	if n > 0 || n == schema.Unlimited {
		return n
	}
	return c.defaultRetry
}

func (c *Compiler) requiredCheck() Check {
	msg := c.requiredMessage
	return func(_ context.Context, value any, isDefault bool) error {
		if isDefault && isEmpty(value) {
			return Reject(msg)
		}
		return nil
	}
}

type stringRenderer interface {
	RenderString(template string, data map[string]any) (string, error)
}

func (c *Compiler) promptText(rule *Rule) string {
	if sr, ok := c.renderer.(stringRenderer); ok {
		out, err := sr.RenderString(c.promptTemplate, rule.Meta)
		if err != nil {
			return rule.Description
		}
		return out
	}
	return c.renderer.Render(c.promptTemplate, rule.Meta)
}

func flattenChecks(dst []Check, v schema.Validator) []Check {
	switch v := v.(type) {
	case schema.SyncCheck:
		if v != nil {
			dst = append(dst, adaptSync(v))
		}
	case schema.AsyncCheck:
		if v != nil {
			dst = append(dst, Check(v))
		}
	case schema.Pattern:
		if v.Expr != nil {
			expr := v.Expr
			dst = append(dst, func(_ context.Context, value any, _ bool) error {
				if expr.MatchString(types.Text(value)) {
					return nil
				}
				return ErrInvalid
			})
		}
	case schema.Sequence:
		for _, item := range v {
			dst = flattenChecks(dst, item)
		}
	}
	return dst
}

func adaptSync(fn schema.SyncCheck) Check {
	return func(_ context.Context, value any, isDefault bool) error {
		ok, msg := fn(value, isDefault)
		if ok {
			return nil
		}
		return Reject(msg)
	}
}

func flattenTransforms(dst []Transform, s schema.Setter) []Transform {
	switch s := s.(type) {
	case schema.SyncTransform:
		if s != nil {
			fn := s
			dst = append(dst, func(_ context.Context, value any, isDefault bool) (any, error) {
				return fn(value, isDefault), nil
			})
		}
	case schema.AsyncTransform:
		if s != nil {
			dst = append(dst, Transform(s))
		}
	case schema.Pipeline:
		for _, item := range s {
			dst = flattenTransforms(dst, item)
		}
	}
	return dst
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	return types.Text(value) == ""
}
