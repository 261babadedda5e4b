package schema

// Option mutates a rule while building a field with Define.
type Option func(*Rule)

// Define builds a field from options.
//
//	s := schema.New(
//	    schema.Define("name", schema.Required(), schema.Validate(schema.MustMatch(`^\w+$`))),
//	    schema.Define("port", schema.OfType("integer"), schema.Default(8080)),
//	)
func Define(name string, opts ...Option) Field {
	var rule Rule
	for _, opt := range opts {
		if opt != nil {
			opt(&rule)
		}
	}
	return Field{Name: name, Rule: rule}
}

// Required marks the field as required. Ignored when a default is declared.
func Required() Option { return func(r *Rule) { r.Required = true } }

// Hidden masks the input while typing.
func Hidden() Option { return func(r *Rule) { r.Hidden = true } }

// Describe sets the human readable description used in the prompt.
func Describe(text string) Option { return func(r *Rule) { r.Description = text } }

// Message sets the failure message used when a check fails without one.
func Message(text string) Option { return func(r *Rule) { r.Message = text } }

// Default declares a default value, including nil.
func Default(value any) Option {
	return func(r *Rule) {
		r.Default = value
		r.HasDefault = true
	}
}

// Retry sets the retry budget. See Rule.Retry.
func Retry(n int) Option { return func(r *Rule) { r.Retry = n } }

// OfType references a type registered by name.
func OfType(name string) Option { return func(r *Rule) { r.Type = name } }

// WithType attaches an inline type bundle.
func WithType(t Type) Option {
	return func(r *Rule) {
		bundle := t
		r.InlineType = &bundle
	}
}

// Validate appends validators to the field's checks.
func Validate(validators ...Validator) Option {
	return func(r *Rule) {
		if len(validators) == 0 {
			return
		}
		if r.Validator == nil && len(validators) == 1 {
			r.Validator = validators[0]
			return
		}
		seq := Sequence{}
		if r.Validator != nil {
			seq = append(seq, r.Validator)
		}
		r.Validator = append(seq, validators...)
	}
}

// Set appends setters to the field's transforms.
func Set(setters ...Setter) Option {
	return func(r *Rule) {
		if len(setters) == 0 {
			return
		}
		if r.Setter == nil && len(setters) == 1 {
			r.Setter = setters[0]
			return
		}
		pipe := Pipeline{}
		if r.Setter != nil {
			pipe = append(pipe, r.Setter)
		}
		r.Setter = append(pipe, setters...)
	}
}
