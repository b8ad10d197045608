package errorx

import (
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// RedactedPlaceholder replaces the wrapped value of a Redacted in every rendering.
const RedactedPlaceholder = "[REDACTED]"

// Redacted holds a metadata value that stays in memory but never reaches
// serialized output: JSON, text, fmt verbs and slog all see RedactedPlaceholder.
// Use Value or RedactedValue to read the secret back.
type Redacted[T any] struct {
	secret T
}

var (
	_ fmt.Stringer           = Redacted[any]{}
	_ fmt.GoStringer         = Redacted[any]{}
	_ fmt.Formatter          = Redacted[any]{}
	_ json.Marshaler         = Redacted[any]{}
	_ encoding.TextMarshaler = Redacted[any]{}
	_ slog.LogValuer         = Redacted[any]{}
)

// Redact hides value behind RedactedPlaceholder.
func Redact[T any](value T) Redacted[T] {
	return Redacted[T]{secret: value}
}

// RedactedValue reads back the secret stored under key by Redact.
// It reports false when the key is missing or holds another type.
func RedactedValue[T any](e *Error, key string) (T, bool) {
	r, ok := e.metadata[key].(Redacted[T])
	return r.secret, ok
}

// Value returns the secret.
func (r Redacted[T]) Value() T { return r.secret }

func (Redacted[T]) String() string   { return RedactedPlaceholder }
func (Redacted[T]) GoString() string { return RedactedPlaceholder }

func (Redacted[T]) Format(s fmt.State, _ rune) {
	_, _ = io.WriteString(s, RedactedPlaceholder)
}

func (Redacted[T]) MarshalJSON() ([]byte, error) {
	return []byte(`"` + RedactedPlaceholder + `"`), nil
}

func (Redacted[T]) MarshalText() ([]byte, error) {
	return []byte(RedactedPlaceholder), nil
}

func (Redacted[T]) LogValue() slog.Value {
	return slog.StringValue(RedactedPlaceholder)
}
