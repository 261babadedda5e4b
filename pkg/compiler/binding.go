package compiler

import "context"

type bindingKey struct{}

// WithBinding attaches v to ctx so checks and transforms can reach caller
// state through Binding.
func WithBinding(ctx context.Context, v any) context.Context {
	if v == nil {
		return ctx
	}
	return context.WithValue(ctx, bindingKey{}, v)
}

// Binding returns the value attached with WithBinding.
func Binding(ctx context.Context) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	v := ctx.Value(bindingKey{})
	return v, v != nil
}
