// Package goi18n translates resolver i18n keys with go-i18n message bundles.
package goi18n

import (
	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/shiwano/errorx/resolver"
)

// NewBundle creates a bundle that can load JSON, YAML and TOML message files.
func NewBundle(defaultLanguage language.Tag) *i18n.Bundle {
	bundle := i18n.NewBundle(defaultLanguage)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	return bundle
}

// AddMessages registers key → text pairs for tag.
// Texts are go-i18n templates, e.g. "User {{.userId}} was not found.".
func AddMessages(bundle *i18n.Bundle, tag language.Tag, messages map[string]string) error {
	ms := make([]*i18n.Message, 0, len(messages))
	for id, text := range messages {
		ms = append(ms, &i18n.Message{ID: id, Other: text})
	}
	return bundle.AddMessages(tag, ms...)
}

// Translator returns a resolver.TranslateFunc backed by loc.
// The error metadata is passed as template data. Missing messages report false
// so the resolver falls through to its configured messages.
func Translator(loc *i18n.Localizer) resolver.TranslateFunc {
	return func(key string, params map[string]any) (string, bool) {
		msg, err := loc.Localize(&i18n.LocalizeConfig{
			MessageID:    key,
			TemplateData: params,
		})
		if err != nil {
			return "", false
		}
		return msg, true
	}
}

// ForLanguages is Translator over a localizer for the given language preferences,
// such as the values of an Accept-Language header.
func ForLanguages(bundle *i18n.Bundle, langs ...string) resolver.TranslateFunc {
	return Translator(i18n.NewLocalizer(bundle, langs...))
}
