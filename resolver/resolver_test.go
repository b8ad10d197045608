package resolver_test

import (
	"errors"
	"testing"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/resolver"
)

func newTestOptions() resolver.Options {
	return resolver.Options{
		OnResolveType: func(e *errorx.Error) string {
			if e.HTTPStatus() >= 500 {
				return "server"
			}
			return "client"
		},
		Defaults: resolver.Config{
			Namespace: "app",
			UIMessage: "Something went wrong.",
			Extra:     map[string]any{"retry": map[string]any{"enabled": false, "max": 3}},
		},
		Configs: map[string]resolver.TypeConfig{
			"server": {
				Config: resolver.Config{
					UIMessage:   "Server error.",
					DocsBaseURL: "https://docs.example.com",
					DocsPath:    "/errors/server",
					Extra:       map[string]any{"retry": map[string]any{"enabled": true}},
				},
				Presets: map[string]resolver.Config{
					"DB_TIMEOUT": {
						UIMessage: "The database is busy.",
						DocsPath:  "/errors/db",
					},
				},
			},
		},
	}
}

func TestNew(t *testing.T) {
	t.Run("returns the options it was created with", func(t *testing.T) {
		opts := newTestOptions()
		r := resolver.New(opts)

		if got := r.Options().Defaults.Namespace; got != "app" {
			t.Errorf("want namespace %q, got %q", "app", got)
		}
	})
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("preset ui message wins over translation and type", func(t *testing.T) {
		opts := newTestOptions()
		translated := false
		opts.Translate = func(key string, params map[string]any) (string, bool) {
			translated = true
			return "translated", true
		}
		r := resolver.New(opts)

		err := errorx.NewWith(errorx.Options{Code: "DB_TIMEOUT", HTTPStatus: 503})
		got := r.Resolve(err)

		if got.UIMessage != "The database is busy." {
			t.Errorf("want preset ui message, got %q", got.UIMessage)
		}
		if translated {
			t.Error("want translation not to be called when a preset message exists")
		}
	})

	t.Run("translation wins over type ui message", func(t *testing.T) {
		opts := newTestOptions()
		var gotKey string
		var gotParams map[string]any
		opts.Translate = func(key string, params map[string]any) (string, bool) {
			gotKey, gotParams = key, params
			return "Übersetzt", true
		}
		r := resolver.New(opts)

		err := errorx.NewWith(errorx.Options{
			Code:       "DISK_FULL",
			HTTPStatus: 500,
			Metadata:   map[string]any{"disk": "sda"},
		})
		got := r.Resolve(err)

		if got.UIMessage != "Übersetzt" {
			t.Errorf("want translated message, got %q", got.UIMessage)
		}
		if gotKey != "app.DISK_FULL" {
			t.Errorf("want key %q, got %q", "app.DISK_FULL", gotKey)
		}
		if gotParams["disk"] != "sda" {
			t.Errorf("want metadata as params, got %v", gotParams)
		}
	})

	t.Run("falls through when translation is missing", func(t *testing.T) {
		opts := newTestOptions()
		opts.Translate = func(string, map[string]any) (string, bool) {
			return "", false
		}
		r := resolver.New(opts)

		got := r.Resolve(errorx.NewWith(errorx.Options{Code: "DISK_FULL", HTTPStatus: 500}))
		if got.UIMessage != "Server error." {
			t.Errorf("want type ui message, got %q", got.UIMessage)
		}

		got = r.Resolve(errorx.NewWith(errorx.Options{Code: "BAD_INPUT", HTTPStatus: 400}))
		if got.UIMessage != "Something went wrong." {
			t.Errorf("want default ui message, got %q", got.UIMessage)
		}
	})

	t.Run("leaves ui message empty when no layer sets one", func(t *testing.T) {
		r := resolver.New(resolver.Options{})

		got := r.Resolve(errorx.NewWith(errorx.Options{UIMessage: "Try again later."}))
		if got.UIMessage != "" {
			t.Errorf("want empty ui message, got %q", got.UIMessage)
		}
		if got.Error.UIMessage() != "Try again later." {
			t.Errorf("want error ui message %q, got %q", "Try again later.", got.Error.UIMessage())
		}
	})

	t.Run("builds docs url from base, path and code", func(t *testing.T) {
		r := resolver.New(newTestOptions())

		got := r.Resolve(errorx.NewWith(errorx.Options{Code: "DB_TIMEOUT", HTTPStatus: 503}))
		want := "https://docs.example.com/errors/db#DB_TIMEOUT"
		if got.DocsURL != want {
			t.Errorf("want docs url %q, got %q", want, got.DocsURL)
		}
	})

	t.Run("returns empty docs url when nothing is configured", func(t *testing.T) {
		r := resolver.New(newTestOptions())

		got := r.Resolve(errorx.NewWith(errorx.Options{Code: "BAD_INPUT", HTTPStatus: 400}))
		if got.DocsURL != "" {
			t.Errorf("want empty docs url, got %q", got.DocsURL)
		}
	})

	t.Run("ignores the global docs map", func(t *testing.T) {
		errorx.Configure(errorx.Config{
			DocsBaseURL: "https://docs.example.com",
			DocsMap:     map[string]string{"BAD_INPUT": "/input"},
		})
		t.Cleanup(errorx.ResetConfig)
		r := resolver.New(resolver.Options{})

		e := errorx.NewWith(errorx.Options{Code: "BAD_INPUT"})
		if e.DocsURL() != "https://docs.example.com/input" {
			t.Fatalf("want error docs url from config, got %q", e.DocsURL())
		}
		got := r.Resolve(e)
		if got.DocsURL != "" {
			t.Errorf("want empty docs url, got %q", got.DocsURL)
		}
	})

	t.Run("merges extra at every depth", func(t *testing.T) {
		r := resolver.New(newTestOptions())

		got := r.Resolve(errorx.NewWith(errorx.Options{Code: "DISK_FULL", HTTPStatus: 500}))
		retry, ok := got.Config.Extra["retry"].(map[string]any)
		if !ok {
			t.Fatalf("want retry map, got %T", got.Config.Extra["retry"])
		}
		if retry["enabled"] != true {
			t.Errorf("want enabled overridden to true, got %v", retry["enabled"])
		}
		if retry["max"] != 3 {
			t.Errorf("want max kept from defaults, got %v", retry["max"])
		}
	})

	t.Run("uses the key template placeholders", func(t *testing.T) {
		opts := newTestOptions()
		opts.Defaults.I18nKeyTemplate = "{namespace}.{errorType}.{name}.{code}"
		r := resolver.New(opts)

		got := r.Resolve(errorx.NewWith(errorx.Options{Name: "DiskError", HTTPStatus: 500}))
		want := "app.server.DiskError.DISK_ERROR"
		if got.I18nKey != want {
			t.Errorf("want key %q, got %q", want, got.I18nKey)
		}
	})

	t.Run("uses the error type without a classifier", func(t *testing.T) {
		r := resolver.New(resolver.Options{
			Configs: map[string]resolver.TypeConfig{
				"auth": {Config: resolver.Config{UIMessage: "Please sign in."}},
			},
		})

		got := r.Resolve(errorx.NewWith(errorx.Options{Type: "auth"}))
		if got.Type != "auth" {
			t.Errorf("want type %q, got %q", "auth", got.Type)
		}
		if got.UIMessage != "Please sign in." {
			t.Errorf("want type ui message, got %q", got.UIMessage)
		}
		if got.I18nKey != "errors.ERROR" {
			t.Errorf("want default namespace key, got %q", got.I18nKey)
		}
	})

	t.Run("converts native errors", func(t *testing.T) {
		r := resolver.New(newTestOptions())

		got := r.Resolve(errors.New("plain"))
		if got.Error == nil || got.Error.Message() != "plain" {
			t.Errorf("want converted error, got %v", got.Error)
		}
	})
}

func TestNewWithTransform(t *testing.T) {
	type response struct {
		Status  int
		Message string
	}

	r := resolver.NewWithTransform(newTestOptions(), func(e *errorx.Error, c resolver.Context) response {
		return response{Status: e.HTTPStatus(), Message: c.UIMessage}
	})

	got := r.Resolve(errorx.NewWith(errorx.Options{Code: "DB_TIMEOUT", HTTPStatus: 503}))
	if got.Status != 503 {
		t.Errorf("want status 503, got %d", got.Status)
	}
	if got.Message != "The database is busy." {
		t.Errorf("want preset ui message, got %q", got.Message)
	}
}

func BenchmarkResolverResolve(b *testing.B) {
	r := resolver.New(newTestOptions())
	err := errorx.NewWith(errorx.Options{Code: "DB_TIMEOUT", HTTPStatus: 503})
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		_ = r.Resolve(err)
	}
}
