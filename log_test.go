package errorx_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/shiwano/errorx"
)

func TestError_ToLogEntry(t *testing.T) {
	t.Run("fields", func(t *testing.T) {
		e := errorx.NewWith(errorx.Options{
			Name:       "NotFoundError",
			Message:    "user not found",
			HTTPStatus: 404,
			Type:       "lookup",
			Metadata:   map[string]any{"userId": "u1", "fn": func() {}},
		})
		entry := e.ToLogEntry()

		for key, want := range map[string]any{
			"name":       "NotFoundError",
			"code":       "NOT_FOUND_ERROR",
			"message":    "user not found",
			"httpStatus": 404,
			"type":       "lookup",
			"metadata":   map[string]any{"userId": "u1"},
		} {
			if !reflect.DeepEqual(entry[key], want) {
				t.Errorf("want %s=%v, got %v", key, want, entry[key])
			}
		}
		for _, key := range []string{"timestamp", "stack"} {
			if _, ok := entry[key]; !ok {
				t.Errorf("want key %q", key)
			}
		}
		for _, key := range []string{"uiMessage", "chain", "errors", "original"} {
			if _, ok := entry[key]; ok {
				t.Errorf("want no key %q", key)
			}
		}
		if _, err := json.Marshal(entry); err != nil {
			t.Errorf("want JSON-safe entry, got %v", err)
		}
	})

	t.Run("chain and original", func(t *testing.T) {
		inner := errorx.Wrap(errors.New("eof"), errorx.Options{Name: "DatabaseError"})
		e := errorx.Wrap(inner, errorx.Options{Name: "LookupError", Message: "lookup failed"})
		entry := e.ToLogEntry()

		wantChain := []map[string]any{{"name": "DatabaseError", "code": "DATABASE_ERROR", "message": "eof"}}
		if !reflect.DeepEqual(entry["chain"], wantChain) {
			t.Errorf("want chain %v, got %v", wantChain, entry["chain"])
		}
		wantOriginal := map[string]any{"name": "*errors.errorString", "message": "eof"}
		if !reflect.DeepEqual(entry["original"], wantOriginal) {
			t.Errorf("want original %v, got %v", wantOriginal, entry["original"])
		}
	})

	t.Run("aggregate members", func(t *testing.T) {
		entry := errorx.Aggregate([]any{"a", "b"}).ToLogEntry()

		members, ok := entry["errors"].([]map[string]any)
		if !ok || len(members) != 2 {
			t.Fatalf("want 2 members, got %#v", entry["errors"])
		}
		if members[1]["message"] != "b" {
			t.Errorf("want member message %q, got %v", "b", members[1]["message"])
		}
	})
}

func TestError_Attributes(t *testing.T) {
	root := errorx.NewWith(errorx.Options{Name: "DatabaseError"})
	e := errorx.Wrap(root, errorx.Options{
		Name:       "LookupError",
		Message:    "lookup failed",
		HTTPStatus: 503,
		Metadata:   map[string]any{"attempt": 2, "tags": []string{"a"}, "empty": nil},
	})

	want := map[string]any{
		"error.name":             "LookupError",
		"error.code":             "LOOKUP_ERROR",
		"error.message":          "lookup failed",
		"error.chain_depth":      2,
		"error.http_status":      503,
		"error.root.name":        "DatabaseError",
		"error.root.code":        "DATABASE_ERROR",
		"error.metadata.attempt": 2,
		"error.metadata.tags":    `["a"]`,
		"error.metadata.empty":   "null",
	}
	if got := e.Attributes(); !reflect.DeepEqual(got, want) {
		t.Errorf("attributes mismatch\ngot:  %v\nwant: %v", got, want)
	}

	agg := errorx.Aggregate([]any{"a", "b", "c"}).Attributes()
	if agg["error.aggregate.count"] != 3 {
		t.Errorf("want aggregate count 3, got %v", agg["error.aggregate.count"])
	}
}

func TestError_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	parent := errorx.NewWith(errorx.Options{Name: "DatabaseError", Message: "connection failed"})
	e := errorx.Wrap(parent, errorx.Options{
		Name:       "LookupError",
		Message:    "lookup failed",
		HTTPStatus: 503,
		Metadata:   map[string]any{"userId": "u1"},
	})
	logger.Error("request failed", "error", e)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("want JSON record, got %v", err)
	}

	want := map[string]any{
		"name":        "LookupError",
		"code":        "LOOKUP_ERROR",
		"message":     "lookup failed",
		"http_status": float64(503),
		"metadata":    map[string]any{"userId": "u1"},
		"cause": map[string]any{
			"name":    "DatabaseError",
			"code":    "DATABASE_ERROR",
			"message": "connection failed",
		},
	}
	if !reflect.DeepEqual(record["error"], want) {
		t.Errorf("log value mismatch\ngot:  %v\nwant: %v", record["error"], want)
	}
}
