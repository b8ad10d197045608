// Package zerolog renders errorx errors as zerolog objects.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/shiwano/errorx"
)

type errorMarshaler struct {
	err *errorx.Error
}

type stdErrorMarshaler struct {
	err error
}

// Error wraps an error for zerolog's structured logging.
// It returns a LogObjectMarshaler that can be used with Object() or EmbedObject().
//
// The error object contains the following fields:
//   - name, code, message
//   - http_status, type: (if present)
//   - metadata: JSON-safe metadata (if present)
//   - origin: the first stack frame (if present) with func, file, and line
//   - chain: the codes of every ancestor (if present)
//   - errors: the messages of aggregate members (if present)
//
// Example with Object() (nested under "error" key):
//
//	err := httperr.New(404, errorx.Options{Metadata: map[string]any{"user_id": "u123"}})
//	logger.Info().Object("error", Error(err)).Msg("operation failed")
//
// Example with EmbedObject() (fields at top level):
//
//	logger.Info().EmbedObject(Error(err)).Msg("operation failed")
func Error(err error) zerolog.LogObjectMarshaler {
	switch e := err.(type) {
	case *errorx.Error:
		return &errorMarshaler{err: e}
	case *errorx.AggregateError:
		return &errorMarshaler{err: e.AsError()}
	}
	return &stdErrorMarshaler{err: err}
}

func (m *errorMarshaler) MarshalZerologObject(e *zerolog.Event) {
	err := m.err
	e.Str("name", err.Name())
	e.Str("code", err.Code())
	e.Str("message", err.Message())

	if status := err.HTTPStatus(); status != 0 {
		e.Int("http_status", status)
	}
	if typ := err.Type(); typ != "" {
		e.Str("type", typ)
	}
	if md := errorx.SafeMetadata(err.Metadata()); len(md) > 0 {
		e.Object("metadata", metadataMarshaler(md))
	}
	if frames := err.Frames(); len(frames) > 0 {
		e.Object("origin", frameMarshaler{frame: frames[0]})
	}
	if chain := err.Chain(); len(chain) > 1 {
		e.Array("chain", codesMarshaler(chain[1:]))
	}
	if members := err.Errors(); members != nil {
		e.Array("errors", messagesMarshaler(members))
	}
}

type metadataMarshaler map[string]any

func (m metadataMarshaler) MarshalZerologObject(e *zerolog.Event) {
	for k, v := range m {
		e.Interface(k, v)
	}
}

type frameMarshaler struct {
	frame errorx.Frame
}

func (m frameMarshaler) MarshalZerologObject(e *zerolog.Event) {
	e.Str("func", m.frame.Func)
	e.Str("file", m.frame.File)
	e.Int("line", m.frame.Line)
}

type codesMarshaler []*errorx.Error

func (m codesMarshaler) MarshalZerologArray(a *zerolog.Array) {
	for _, e := range m {
		a.Str(e.Code())
	}
}

type messagesMarshaler []*errorx.Error

func (m messagesMarshaler) MarshalZerologArray(a *zerolog.Array) {
	for _, e := range m {
		a.Str(e.Message())
	}
}

func (m *stdErrorMarshaler) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message", m.err.Error())
}
