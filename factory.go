package errorx

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"

	"dario.cat/mergo"
)

type (
	// PresetKey identifies a preset in a Factory's table.
	PresetKey string

	// TransformContext is passed to Factory.Transform.
	TransformContext struct {
		// PresetKey is the requested key, or the default preset key when none was requested.
		PresetKey PresetKey
		// Found reports whether PresetKey exists in the table.
		Found bool
	}

	// TransformFunc rewrites the merged options before construction.
	TransformFunc func(opts Options, tc TransformContext) Options

	// Factory builds errors of one category from a preset table.
	//
	// Options are merged from lowest to highest precedence: Defaults, the preset,
	// options stored in the context, then the call-site overrides. Scalar fields
	// are replaced by later non-zero values. Metadata is merged key by key at every
	// depth. Transform, when set, receives the result and returns the final options.
	//
	// A Factory must not be modified after first use.
	Factory struct {
		Defaults      Options
		Presets       map[PresetKey]Options
		DefaultPreset PresetKey
		Transform     TransformFunc
	}
)

// IntKey returns the preset key for a numeric identifier such as an HTTP status.
func IntKey(n int) PresetKey {
	return PresetKey(strconv.Itoa(n))
}

// Int returns the key as an integer, or false if it is not numeric.
func (k PresetKey) Int() (int, bool) {
	n, err := strconv.Atoi(string(k))
	return n, err == nil
}

// Create builds an error from the preset key, falling back to the default preset
// and then to Defaults alone when the key is unknown. An empty key selects the
// default preset.
func (f *Factory) Create(key PresetKey, overrides ...Options) *Error {
	return newError(f.resolve(nil, key, overrides), false)
}

// CreateWith is Create with an empty key.
func (f *Factory) CreateWith(overrides Options) *Error {
	return f.Create("", overrides)
}

// CreateContext is Create with the options stored by ContextWithOptions
// layered between the preset and the overrides.
func (f *Factory) CreateContext(ctx context.Context, key PresetKey, overrides ...Options) *Error {
	var scope []Options
	if o, ok := scopedOptions(ctx); ok {
		scope = []Options{o}
	}
	return newError(f.resolve(scope, key, overrides), false)
}

// Wrap is Create with cause set. When no layer supplies a message, the cause's
// message is used. Returns nil if cause is nil.
func (f *Factory) Wrap(cause any, key PresetKey, overrides ...Options) *Error {
	if isNil(cause) {
		return nil
	}
	opts := f.resolve(nil, key, slices.Concat(overrides, []Options{{Cause: cause}}))
	if strings.TrimSpace(opts.Message) == "" {
		opts.Message = causeMessage(cause)
	}
	return newError(opts, false)
}

// Options returns the final options Create would construct with.
func (f *Factory) Options(key PresetKey, overrides ...Options) Options {
	return f.resolve(nil, key, overrides)
}

// Is reports whether err carries the code that Create(key) produces.
func (f *Factory) Is(err error, key PresetKey) bool {
	return HasCode(err, f.resolve(nil, key, nil).Code)
}

// With returns a copy of f whose Defaults have opts merged over them.
func (f *Factory) With(opts ...Options) *Factory {
	if len(opts) == 0 {
		return f
	}
	cp := f.clone()
	for _, o := range opts {
		cp.Defaults = mergeOptions(cp.Defaults, o)
	}
	return cp
}

func (f *Factory) clone() *Factory {
	return &Factory{
		Defaults:      f.Defaults,
		Presets:       maps.Clone(f.Presets),
		DefaultPreset: f.DefaultPreset,
		Transform:     f.Transform,
	}
}

func (f *Factory) lookup(key PresetKey) (PresetKey, Options, bool) {
	if key == "" {
		key = f.DefaultPreset
	}
	if p, ok := f.Presets[key]; ok {
		return key, p, true
	}
	if p, ok := f.Presets[f.DefaultPreset]; ok {
		return key, p, false
	}
	return key, Options{}, false
}

func (f *Factory) resolve(scope []Options, key PresetKey, overrides []Options) Options {
	key, preset, found := f.lookup(key)

	opts := mergeOptions(f.Defaults, preset)
	for _, o := range scope {
		opts = mergeOptions(opts, o)
	}
	for _, o := range overrides {
		opts = mergeOptions(opts, o)
	}

	if f.Transform != nil {
		opts = f.Transform(opts, TransformContext{PresetKey: key, Found: found})
	}
	return opts
}

// mergeOptions returns dst with the non-zero fields of src over it.
func mergeOptions(dst, src Options) Options {
	metadata := MergeMetadata(dst.Metadata, src.Metadata)
	cause := dst.Cause
	if !isNil(src.Cause) {
		cause = src.Cause
	}
	config := dst.Config
	if src.Config != nil {
		config = src.Config
	}

	// Reference fields are merged above; mergo would descend into them.
	dst.Metadata, dst.Cause, dst.Config = nil, nil, nil
	src.Metadata, src.Cause, src.Config = nil, nil, nil
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		panic("errorx: merge options: " + err.Error())
	}

	dst.Metadata, dst.Cause, dst.Config = metadata, cause, config
	return dst
}

// MergeMetadata merges layers from lowest to highest precedence.
//
// Nested map[string]any values present in both sides are merged recursively.
// Any other value is replaced. The inputs are never modified. The result is
// nil when every layer is empty.
func MergeMetadata(layers ...map[string]any) map[string]any {
	var out map[string]any
	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(layer))
		}
		mergeInto(out, layer)
	}
	return out
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		switch {
		case srcIsMap && dstIsMap:
			merged := make(map[string]any, len(dstMap)+len(srcMap))
			mergeInto(merged, dstMap)
			mergeInto(merged, srcMap)
			dst[k] = merged
		case srcIsMap:
			cp := make(map[string]any, len(srcMap))
			mergeInto(cp, srcMap)
			dst[k] = cp
		default:
			dst[k] = v
		}
	}
}
