// Package zap renders errorx errors as structured zap fields.
package zap

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shiwano/errorx"
)

type errorMarshaler struct {
	err *errorx.Error
}

// Error wraps an error for zap's structured logging.
// It returns a Field that nests error information under the "error" key.
//
// For an *errorx.Error the object contains:
//   - name, code, message
//   - http_status, type (if present)
//   - metadata: JSON-safe metadata (if present)
//   - origin: the first stack frame (if present) with func, file, and line
//   - chain: name, code and message of every ancestor (if present)
//   - original: the snapshot of a non-errorx root cause (if present)
//
// Other errors only contribute "message".
// For top-level field expansion, use ErrorInline instead.
//
// Example:
//
//	err := dberr.Query(cause, query)
//	logger.Error("query failed", Error(err))
func Error(err error) zapcore.Field {
	return zap.Object("error", marshaler(err))
}

// ErrorInline is Error with every field expanded at the top level.
func ErrorInline(err error) zapcore.Field {
	return zap.Inline(marshaler(err))
}

func marshaler(err error) zapcore.ObjectMarshaler {
	switch e := err.(type) {
	case *errorx.Error:
		return &errorMarshaler{err: e}
	case *errorx.AggregateError:
		return &errorMarshaler{err: e.AsError()}
	}
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("message", err.Error())
		return nil
	})
}

func (m *errorMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	e := m.err
	enc.AddString("name", e.Name())
	enc.AddString("code", e.Code())
	enc.AddString("message", e.Message())

	if e.HTTPStatus() != 0 {
		enc.AddInt("http_status", e.HTTPStatus())
	}
	if e.Type() != "" {
		enc.AddString("type", e.Type())
	}
	if md := errorx.SafeMetadata(e.Metadata()); md != nil {
		_ = enc.AddObject("metadata", metadataMarshaler(md))
	}
	if frames := e.Frames(); len(frames) > 0 {
		_ = enc.AddObject("origin", frameMarshaler{frame: frames[0]})
	}
	if chain := e.Chain(); len(chain) > 1 {
		_ = enc.AddArray("chain", chainMarshaler(chain[1:]))
	}
	if members := e.Errors(); members != nil {
		_ = enc.AddArray("errors", chainMarshaler(members))
	}
	if o := e.Root().Original(); o != nil {
		_ = enc.AddObject("original", snapshotMarshaler{snapshot: o})
	}
	return nil
}

type metadataMarshaler map[string]any

func (m metadataMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for k, v := range m {
		_ = enc.AddReflected(k, v)
	}
	return nil
}

type frameMarshaler struct {
	frame errorx.Frame
}

func (m frameMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("func", m.frame.Func)
	enc.AddString("file", m.frame.File)
	enc.AddInt("line", m.frame.Line)
	return nil
}

type chainMarshaler []*errorx.Error

func (m chainMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, e := range m {
		_ = enc.AppendObject(zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
			enc.AddString("name", e.Name())
			enc.AddString("code", e.Code())
			enc.AddString("message", e.Message())
			return nil
		}))
	}
	return nil
}

type snapshotMarshaler struct {
	snapshot *errorx.Snapshot
}

func (m snapshotMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if m.snapshot.Name != "" {
		enc.AddString("name", m.snapshot.Name)
	}
	enc.AddString("message", m.snapshot.Message)
	return nil
}
