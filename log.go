package errorx

import (
	"log/slog"
	"strconv"
	"time"
)

// LogEntry is a plain, JSON-safe map describing an error for a structured logger.
type LogEntry map[string]any

// ToLogEntry returns the fields a structured logger should record for e.
//
// Ancestors are summarized under "chain" as name, code and message,
// and aggregate members under "errors" in the same form.
func (e *Error) ToLogEntry() LogEntry {
	entry := LogEntry{
		"name":      e.name,
		"code":      e.code,
		"message":   e.message,
		"timestamp": e.timestamp.Format(time.RFC3339Nano),
	}
	if md := SafeMetadata(e.metadata); md != nil {
		entry["metadata"] = md
	}
	if e.httpStatus != 0 {
		entry["httpStatus"] = e.httpStatus
	}
	putString(entry, "type", e.typ)
	putString(entry, "uiMessage", e.uiMessage)
	putString(entry, "docsUrl", e.docsURL)
	putString(entry, "source", e.source)
	putString(entry, "stack", e.stack)

	if chain := e.Chain(); len(chain) > 1 {
		ancestors := make([]map[string]any, 0, len(chain)-1)
		for _, a := range chain[1:] {
			ancestors = append(ancestors, summary(a))
		}
		entry["chain"] = ancestors
	}
	if root := e.Root(); root.original != nil {
		entry["original"] = map[string]any{
			"name":    root.original.Name,
			"message": root.original.Message,
		}
	}
	if e.members != nil {
		members := make([]map[string]any, 0, len(e.members))
		for _, m := range e.members {
			members = append(members, summary(m))
		}
		entry["errors"] = members
	}
	return entry
}

// Attributes returns flat, OpenTelemetry-style attributes under the "error." prefix.
// Values are strings, ints or bools. Metadata values that are not scalars are
// rendered with SafeString.
func (e *Error) Attributes() map[string]any {
	attrs := map[string]any{
		"error.name":        e.name,
		"error.code":        e.code,
		"error.message":     e.message,
		"error.chain_depth": len(e.Chain()),
	}
	if e.httpStatus != 0 {
		attrs["error.http_status"] = e.httpStatus
	}
	putString(attrs, "error.type", e.typ)
	putString(attrs, "error.source", e.source)
	putString(attrs, "error.docs_url", e.docsURL)
	if e.parent != nil {
		root := e.Root()
		attrs["error.root.name"] = root.name
		attrs["error.root.code"] = root.code
	}
	if e.members != nil {
		attrs["error.aggregate.count"] = len(e.members)
	}
	for k, v := range SafeMetadata(e.metadata) {
		attrs["error.metadata."+k] = scalarAttr(v)
	}
	return attrs
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("name", e.name),
		slog.String("code", e.code),
		slog.String("message", e.message),
	}
	if e.httpStatus != 0 {
		attrs = append(attrs, slog.Int("http_status", e.httpStatus))
	}
	if e.typ != "" {
		attrs = append(attrs, slog.String("type", e.typ))
	}
	if md := SafeMetadata(e.metadata); md != nil {
		mdAttrs := make([]slog.Attr, 0, len(md))
		for k, v := range md {
			mdAttrs = append(mdAttrs, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Attr{Key: "metadata", Value: slog.GroupValue(mdAttrs...)})
	}
	if e.members != nil {
		members := make([]any, len(e.members))
		for i, m := range e.members {
			members[i] = slogValueToAny(m.LogValue())
		}
		attrs = append(attrs, slog.Any("errors", members))
	}
	switch {
	case e.parent != nil:
		attrs = append(attrs, slog.Any("cause", e.parent))
	case e.original != nil:
		attrs = append(attrs, slog.String("original", e.original.Error()))
	}
	return slog.GroupValue(attrs...)
}

func summary(e *Error) map[string]any {
	return map[string]any{
		"name":    e.name,
		"code":    e.code,
		"message": e.message,
	}
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func scalarAttr(v any) any {
	switch x := v.(type) {
	case string, bool, int, int64, float64:
		return x
	case nil:
		return "null"
	case uint64:
		return strconv.FormatUint(x, 10)
	}
	return SafeString(v)
}

func slogValueToAny(v slog.Value) any {
	switch v.Kind() {
	case slog.KindGroup:
		result := make(map[string]any)
		for _, attr := range v.Group() {
			result[attr.Key] = slogValueToAny(attr.Value)
		}
		return result
	case slog.KindLogValuer:
		return slogValueToAny(v.Resolve())
	default:
		return v.Any()
	}
}
