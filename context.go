package errorx

import "context"

type scopeKey struct{}

// ContextWithOptions returns a copy of ctx carrying opts for errors built from it.
//
// Calls accumulate: options added later win field by field over earlier ones,
// and metadata is merged at every depth. Factory.CreateContext applies the
// result between the preset and the call-site overrides, NewContext under
// the given options.
func ContextWithOptions(ctx context.Context, opts ...Options) context.Context {
	if len(opts) == 0 {
		return ctx
	}
	scope, _ := scopedOptions(ctx)
	for _, o := range opts {
		scope = mergeOptions(scope, o)
	}
	return context.WithValue(ctx, scopeKey{}, scope)
}

// NewContext builds an error from opts layered over the options carried by ctx.
func NewContext(ctx context.Context, opts Options) *Error {
	scope, _ := scopedOptions(ctx)
	return newError(mergeOptions(scope, opts), false)
}

// scopedOptions reports the accumulated options of ctx, if any.
func scopedOptions(ctx context.Context) (Options, bool) {
	if ctx == nil {
		return Options{}, false
	}
	scope, ok := ctx.Value(scopeKey{}).(Options)
	return scope, ok
}
