package resolver

import (
	"strings"

	"dario.cat/mergo"

	"github.com/shiwano/errorx"
)

const (
	// DefaultNamespace is used when no layer sets Config.Namespace.
	DefaultNamespace = "errors"
	// DefaultI18nKeyTemplate is used when no layer sets Config.I18nKeyTemplate.
	DefaultI18nKeyTemplate = "{namespace}.{code}"
)

type (
	// Config is one layer of presentation settings.
	// Empty fields do not override lower layers.
	Config struct {
		Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty"`
		// I18nKeyTemplate supports {namespace}, {code}, {name} and {errorType}.
		I18nKeyTemplate string         `json:"i18nKeyTemplate,omitempty" yaml:"i18nKeyTemplate,omitempty" toml:"i18nKeyTemplate,omitempty"`
		UIMessage       string         `json:"uiMessage,omitempty" yaml:"uiMessage,omitempty" toml:"uiMessage,omitempty"`
		DocsBaseURL     string         `json:"docsBaseUrl,omitempty" yaml:"docsBaseUrl,omitempty" toml:"docsBaseUrl,omitempty"`
		DocsPath        string         `json:"docsPath,omitempty" yaml:"docsPath,omitempty" toml:"docsPath,omitempty"`
		Extra           map[string]any `json:"extra,omitempty" yaml:"extra,omitempty" toml:"extra,omitempty"`
	}

	// TypeConfig is the layer for one error type, with per-code layers in Presets.
	TypeConfig struct {
		Config  `yaml:",inline"`
		Presets map[string]Config `json:"presets,omitempty" yaml:"presets,omitempty" toml:"presets,omitempty"`
	}

	// TranslateFunc looks up a user-facing message for an i18n key.
	// params are the error's metadata. It reports false when there is no translation.
	TranslateFunc func(key string, params map[string]any) (string, bool)

	// Options configures a Resolver.
	Options struct {
		// OnResolveType classifies an error into a key of Configs.
		// When nil, the error's Type is used.
		OnResolveType func(*errorx.Error) string `json:"-" yaml:"-" toml:"-"`
		Defaults      Config                     `json:"defaults" yaml:"defaults" toml:"defaults"`
		Configs       map[string]TypeConfig      `json:"configs,omitempty" yaml:"configs,omitempty" toml:"configs,omitempty"`
		Translate     TranslateFunc              `json:"-" yaml:"-" toml:"-"`
	}

	// Context is the presentation of one error.
	Context struct {
		Error     *errorx.Error
		Type      string
		Code      string
		I18nKey   string
		UIMessage string
		DocsURL   string
		// Config is the effective, merged configuration.
		Config Config
	}

	// Resolver maps errors to a presentation R.
	// It holds no mutable state and is safe for concurrent use.
	Resolver[R any] struct {
		opts      Options
		transform func(*errorx.Error, Context) R
	}
)

// New creates a Resolver that returns the Context itself.
func New(opts Options) *Resolver[Context] {
	return &Resolver[Context]{
		opts: opts,
		transform: func(_ *errorx.Error, c Context) Context {
			return c
		},
	}
}

// NewWithTransform creates a Resolver whose result is transform applied to the Context.
func NewWithTransform[R any](opts Options, transform func(*errorx.Error, Context) R) *Resolver[R] {
	return &Resolver[R]{opts: opts, transform: transform}
}

// Options returns the options the resolver was created with.
func (r *Resolver[R]) Options() Options {
	return r.opts
}

// Resolve builds the presentation of err. err is converted with errorx.From.
//
// The effective config is Defaults, then Configs[type] without its presets,
// then Configs[type].Presets[code]. The user-facing message is chosen in order from
// the per-code preset, Translate, the type config and the defaults. It is empty
// when no layer supplies one. The error's own UIMessage and DocsURL are not
// consulted; read them from Context.Error.
func (r *Resolver[R]) Resolve(err error) R {
	e := errorx.From(err)
	return r.transform(e, r.Context(e))
}

// Context computes the presentation of e without the transform.
func (r *Resolver[R]) Context(e *errorx.Error) Context {
	typ := e.Type()
	if r.opts.OnResolveType != nil {
		typ = r.opts.OnResolveType(e)
	}
	code := e.Code()

	typeCfg, hasType := r.opts.Configs[typ]
	presetCfg, hasPreset := typeCfg.Presets[code]

	cfg := r.opts.Defaults
	if hasType {
		cfg = mergeConfig(cfg, typeCfg.Config)
	}
	if hasPreset {
		cfg = mergeConfig(cfg, presetCfg)
	}

	c := Context{
		Error:   e,
		Type:    typ,
		Code:    code,
		I18nKey: buildKey(cfg, e, typ),
		Config:  cfg,
	}
	c.UIMessage = r.uiMessage(c, typeCfg, presetCfg, e)
	c.DocsURL = docsURL(cfg, e)
	return c
}

func (r *Resolver[R]) uiMessage(c Context, typeCfg TypeConfig, presetCfg Config, e *errorx.Error) string {
	if presetCfg.UIMessage != "" {
		return presetCfg.UIMessage
	}
	if r.opts.Translate != nil && c.I18nKey != "" {
		params := e.Metadata()
		if params == nil {
			params = map[string]any{}
		}
		if msg, ok := r.opts.Translate(c.I18nKey, params); ok && msg != "" {
			return msg
		}
	}
	if typeCfg.UIMessage != "" {
		return typeCfg.UIMessage
	}
	return r.opts.Defaults.UIMessage
}

func buildKey(cfg Config, e *errorx.Error, typ string) string {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	tmpl := cfg.I18nKeyTemplate
	if tmpl == "" {
		tmpl = DefaultI18nKeyTemplate
	}
	key := strings.NewReplacer(
		"{namespace}", namespace,
		"{code}", e.Code(),
		"{name}", e.Name(),
		"{errorType}", typ,
	).Replace(tmpl)
	return strings.Trim(key, ".")
}

func docsURL(cfg Config, e *errorx.Error) string {
	if cfg.DocsBaseURL == "" && cfg.DocsPath == "" {
		return ""
	}
	return joinURL(cfg.DocsBaseURL, cfg.DocsPath) + "#" + e.Code()
}

func joinURL(base, path string) string {
	switch {
	case base == "":
		return path
	case path == "":
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func mergeConfig(dst, src Config) Config {
	extra := errorx.MergeMetadata(dst.Extra, src.Extra)
	dst.Extra, src.Extra = nil, nil
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		panic("resolver: merge config: " + err.Error())
	}
	dst.Extra = extra
	return dst
}
