package zerolog_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shiwano/errorx"
	zerologhelper "github.com/shiwano/errorx/integrations/zerolog"
)

type errorTestCase struct {
	name string
	err  error
	want map[string]any
}

var errorTestCases = []errorTestCase{
	{
		name: "error with metadata",
		err: errorx.NewWith(errorx.Options{
			Name:       "NotFoundError",
			Message:    "user not found",
			HTTPStatus: 404,
			Metadata:   map[string]any{"user_id": "u123", "count": 42},
		}),
		want: map[string]any{
			"name":        "NotFoundError",
			"code":        "NOT_FOUND_ERROR",
			"http_status": float64(404),
			"metadata": map[string]any{
				"user_id": "u123",
				"count":   float64(42),
			},
			"origin": nil,
		},
	},
	{
		name: "error with redacted metadata",
		err: errorx.NewWith(errorx.Options{
			Name:     "NotFoundError",
			Message:  "user not found",
			Metadata: map[string]any{"email": errorx.Redact("user@example.com")},
		}),
		want: map[string]any{
			"name":     "NotFoundError",
			"code":     "NOT_FOUND_ERROR",
			"metadata": map[string]any{"email": "[REDACTED]"},
			"origin":   nil,
		},
	},
	{
		name: "wrapped error",
		err: errorx.Wrap(
			errorx.NewWith(errorx.Options{Name: "DatabaseError", Message: "connection failed"}),
			errorx.Options{Name: "LookupError", Message: "user lookup failed", Type: "lookup"},
		),
		want: map[string]any{
			"name":   "LookupError",
			"code":   "LOOKUP_ERROR",
			"type":   "lookup",
			"chain":  []any{"DATABASE_ERROR"},
			"origin": nil,
		},
	},
	{
		name: "aggregate error",
		err: errorx.Aggregate([]any{
			errorx.New("first"),
			errorx.New("second"),
		}),
		want: map[string]any{
			"name":   errorx.AggregateName,
			"code":   errorx.AggregateCode,
			"errors": []any{"first", "second"},
			"origin": nil,
		},
	},
	{
		name: "non-errorx error",
		err:  errors.New("standard error"),
		want: map[string]any{},
	},
}

func TestEmbedObject(t *testing.T) {
	for _, tt := range errorTestCases {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := zerolog.New(buf)
			logger.Info().EmbedObject(zerologhelper.Error(tt.err)).Msg("test")

			var fields map[string]any
			if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
				t.Fatalf("failed to unmarshal log: %v", err)
			}
			delete(fields, "level")
			// Msg writes its own "message" key after the embedded one.
			delete(fields, "message")

			assertFields(t, fields, tt.want)
		})
	}
}

func TestError(t *testing.T) {
	for _, tt := range errorTestCases {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := zerolog.New(buf)
			logger.Info().Object("error", zerologhelper.Error(tt.err)).Msg("operation failed")

			var fields map[string]any
			if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
				t.Fatalf("failed to unmarshal log: %v", err)
			}
			errorObj, ok := fields["error"].(map[string]any)
			if !ok {
				t.Fatalf("want error to be a nested object, got %T", fields["error"])
			}
			if _, ok := errorObj["message"].(string); !ok {
				t.Errorf("want error.message to be a string, got %T", errorObj["message"])
			}
			delete(errorObj, "message")

			assertFields(t, errorObj, tt.want)
		})
	}
}

func assertFields(t *testing.T, got, wantFields map[string]any) {
	t.Helper()

	want := make(map[string]any)
	maps.Copy(want, wantFields)
	if _, hasOrigin := want["origin"]; hasOrigin {
		want["origin"] = got["origin"]
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fields mismatch\ngot:  %#v\nwant: %#v", got, want)
	}

	if _, hasOrigin := wantFields["origin"]; !hasOrigin {
		return
	}
	origin, ok := got["origin"].(map[string]any)
	if !ok {
		t.Fatalf("want origin to be a map, got %T", got["origin"])
	}
	if v, ok := origin["file"].(string); !ok || !strings.Contains(v, "zerolog_test.go") {
		t.Errorf("want origin.file to contain 'zerolog_test.go', got %v", origin["file"])
	}
	if v, ok := origin["line"].(float64); !ok || v <= 0 {
		t.Errorf("want origin.line to be a positive number, got %v", origin["line"])
	}
}

func ExampleError() {
	logger := zerolog.New(os.Stdout)

	err := errorx.NewWith(errorx.Options{Name: "NotFoundError", Message: "user not found"})
	logger.Info().Object("error", zerologhelper.Error(err)).Msg("operation failed")
}
