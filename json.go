package errorx

import (
	"bytes"
	"cmp"
	"encoding/json"
	"maps"
	"math"
	"reflect"
	"strconv"
	"time"
)

type (
	// Serialized is the JSON shape of an Error.
	//
	// The chain is nested: Cause holds the parent in the same shape, and
	// Original holds the snapshot of a cause that was not an Error.
	// Errors is present, possibly empty, only for aggregates.
	Serialized struct {
		Name       string         `json:"name"`
		Message    string         `json:"message"`
		Code       string         `json:"code"`
		Metadata   map[string]any `json:"metadata,omitempty"`
		Timestamp  Timestamp      `json:"timestamp"`
		HTTPStatus int            `json:"httpStatus,omitempty"`
		Stack      string         `json:"stack,omitempty"`
		UIMessage  string         `json:"uiMessage,omitempty"`
		Type       string         `json:"type,omitempty"`
		DocsURL    string         `json:"docsUrl,omitempty"`
		Source     string         `json:"source,omitempty"`
		Original   *Snapshot      `json:"original,omitempty"`
		Cause      *Serialized    `json:"cause,omitempty"`
		Errors     []*Serialized  `json:"errors,omitzero"`
	}

	// Timestamp is written as an RFC 3339 string with nanoseconds.
	// Reading also accepts epoch milliseconds.
	Timestamp struct {
		time.Time
	}
)

var (
	_ json.Marshaler   = (*Error)(nil)
	_ json.Unmarshaler = (*Error)(nil)
	_ json.Marshaler   = Timestamp{}
	_ json.Unmarshaler = (*Timestamp)(nil)
)

// ToJSON returns the serialized form of e and its whole chain.
// Metadata is passed through SafeValue, so the result always marshals.
func (e *Error) ToJSON() *Serialized {
	return e.serialize(make(map[uintptr]struct{}))
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToJSON())
}

// UnmarshalJSON implements json.Unmarshaler. See Unmarshal.
func (e *Error) UnmarshalJSON(data []byte) error {
	decoded, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*e = *decoded
	return nil
}

// String returns the JSON form of e. It never fails.
func (e *Error) String() string {
	b, err := e.MarshalJSON()
	if err != nil {
		return SafeString(e.message)
	}
	return string(b)
}

func (e *Error) serialize(visited map[uintptr]struct{}) *Serialized {
	ptr := errorPtr(e)
	visited[ptr] = struct{}{}
	defer delete(visited, ptr)

	s := &Serialized{
		Name:       e.name,
		Message:    e.message,
		Code:       e.code,
		Metadata:   sanitizeMetadata(e.metadata, visited),
		Timestamp:  Timestamp{e.timestamp},
		HTTPStatus: e.httpStatus,
		Stack:      e.stack,
		UIMessage:  e.uiMessage,
		Type:       e.typ,
		DocsURL:    e.docsURL,
		Source:     e.source,
	}
	switch {
	case e.parent != nil:
		if _, ok := visited[errorPtr(e.parent)]; !ok {
			s.Cause = e.parent.serialize(visited)
		}
	case e.original != nil:
		o := *e.original
		s.Original = &o
	}
	if e.members != nil {
		s.Errors = make([]*Serialized, 0, len(e.members))
		for _, m := range e.members {
			if _, ok := visited[errorPtr(m)]; ok {
				continue
			}
			s.Errors = append(s.Errors, m.serialize(visited))
		}
	}
	return s
}

func errorPtr(e *Error) uintptr {
	return reflect.ValueOf(e).Pointer()
}

// FromJSON rebuilds an Error and its chain from s.
//
// Causes become parents, original snapshots stay snapshots, and a non-nil
// Errors list makes the result an aggregate. Absent fields take their defaults,
// so FromJSON never fails. A nil s yields the same value as From(nil).
func FromJSON(s *Serialized) *Error {
	if s == nil {
		return From(nil)
	}

	e := &Error{
		name:       cmp.Or(s.Name, DefaultName),
		code:       cmp.Or(s.Code, CodeFromName(s.Name)),
		message:    cmp.Or(s.Message, DefaultMessage),
		httpStatus: s.HTTPStatus,
		typ:        s.Type,
		uiMessage:  s.UIMessage,
		docsURL:    s.DocsURL,
		source:     s.Source,
		stack:      s.Stack,
		timestamp:  s.Timestamp.Time,
	}
	if e.timestamp.IsZero() {
		e.timestamp = time.Now()
	}
	if len(s.Metadata) > 0 {
		e.metadata = maps.Clone(s.Metadata)
	}

	switch {
	case s.Cause != nil:
		parent := FromJSON(s.Cause)
		e.parent, e.cause = parent, parent
		if agg, ok := parent.AsAggregate(); ok {
			e.cause = agg
		}
	case s.Original != nil:
		o := *s.Original
		e.original, e.cause = &o, &o
	}

	if s.Errors != nil {
		e.members = make([]*Error, len(s.Errors))
		for i, m := range s.Errors {
			e.members[i] = FromJSON(m)
		}
	}
	return e
}

// Unmarshal decodes data into an Error.
//
// Decoding is lenient: fields of the wrong type are ignored and absent fields
// take their defaults. A JSON value that is not an object is converted with From.
// An error is returned only when data is not valid JSON.
func Unmarshal(data []byte) (*Error, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, DecodeErrors.Create(CodeDecodeFailure, Options{Cause: err})
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return From(normalizeNumbers(raw)), nil
	}
	return FromJSON(serializedFromMap(obj)), nil
}

func serializedFromMap(m map[string]any) *Serialized {
	s := &Serialized{
		Name:      stringField(m, "name"),
		Message:   stringField(m, "message"),
		Code:      stringField(m, "code"),
		Stack:     stringField(m, "stack"),
		UIMessage: stringField(m, "uiMessage"),
		Type:      stringField(m, "type"),
		DocsURL:   stringField(m, "docsUrl"),
		Source:    stringField(m, "source"),
	}
	if md, ok := m["metadata"].(map[string]any); ok {
		s.Metadata, _ = normalizeNumbers(md).(map[string]any)
	}
	if n, ok := intField(m, "httpStatus"); ok {
		s.HTTPStatus = n
	}
	if t, ok := parseTimestamp(m["timestamp"]); ok {
		s.Timestamp = Timestamp{t}
	}
	if o, ok := m["original"].(map[string]any); ok {
		s.Original = &Snapshot{
			Name:    stringField(o, "name"),
			Message: stringField(o, "message"),
			Stack:   stringField(o, "stack"),
		}
	}
	if c, ok := m["cause"].(map[string]any); ok {
		s.Cause = serializedFromMap(c)
	}
	if list, ok := m["errors"].([]any); ok {
		s.Errors = make([]*Serialized, len(list))
		for i, item := range list {
			if obj, ok := item.(map[string]any); ok {
				s.Errors[i] = serializedFromMap(obj)
			} else {
				s.Errors[i] = From(normalizeNumbers(item)).ToJSON()
			}
		}
	}
	return s
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
			return int(f), true
		}
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

// normalizeNumbers turns json.Number values into int64 or float64.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalizeNumbers(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalizeNumbers(val)
		}
		return out
	}
	return v
}

func parseTimestamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(x, 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			return time.UnixMilli(ms), true
		}
		if f, err := x.Float64(); err == nil {
			return time.UnixMilli(int64(f)), true
		}
	case float64:
		return time.UnixMilli(int64(x)), true
	}
	return time.Time{}, false
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
// Values that are neither a time string nor a number leave t unchanged.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if parsed, ok := parseTimestamp(raw); ok {
		t.Time = parsed
	}
	return nil
}
