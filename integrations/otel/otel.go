// Package otel exposes errorx errors as OpenTelemetry attributes and span events.
package otel

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/fingerprint"
)

// Attribute keys. ErrorTypeKey follows the semantic conventions, the others
// live under the errorx namespace.
const (
	ErrorTypeKey      = attribute.Key("error.type")
	HTTPStatusKey     = attribute.Key("http.response.status_code")
	NameKey           = attribute.Key("errorx.name")
	CodeKey           = attribute.Key("errorx.code")
	MessageKey        = attribute.Key("errorx.message")
	TypeKey           = attribute.Key("errorx.type")
	SourceKey         = attribute.Key("errorx.source")
	ChainKey          = attribute.Key("errorx.chain")
	FingerprintKey    = attribute.Key("errorx.fingerprint")
	AggregateCountKey = attribute.Key("errorx.aggregate.count")
	metadataPrefix    = "errorx.metadata."
)

// Attributes converts err into span attributes.
// Scalar metadata values become typed attributes. Other values are
// rendered with errorx.SafeString.
func Attributes(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	e := errorx.ToErrorX(err)

	attrs := []attribute.KeyValue{
		ErrorTypeKey.String(e.Code()),
		NameKey.String(e.Name()),
		CodeKey.String(e.Code()),
		MessageKey.String(e.Message()),
		FingerprintKey.String(fingerprint.Generate(e)),
	}
	if status := e.HTTPStatus(); status != 0 {
		attrs = append(attrs, HTTPStatusKey.Int(status))
	}
	if typ := e.Type(); typ != "" {
		attrs = append(attrs, TypeKey.String(typ))
	}
	if source := e.Source(); source != "" {
		attrs = append(attrs, SourceKey.String(source))
	}
	if chain := e.Chain(); len(chain) > 1 {
		chainCodes := make([]string, len(chain))
		for i, c := range chain {
			chainCodes[i] = c.Code()
		}
		attrs = append(attrs, ChainKey.StringSlice(chainCodes))
	}
	if members := e.Errors(); members != nil {
		attrs = append(attrs, AggregateCountKey.Int(len(members)))
	}
	for k, v := range errorx.SafeMetadata(e.Metadata()) {
		attrs = append(attrs, metadataAttr(metadataPrefix+k, v))
	}
	return attrs
}

// RecordError records err on span as an exception event and marks the span failed.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if err == nil || !span.IsRecording() {
		return
	}
	attrs := Attributes(err)
	opts = append(opts, trace.WithAttributes(attrs...))
	span.RecordError(err, opts...)
	span.SetAttributes(attrs[0])
	span.SetStatus(codes.Error, errorx.ToErrorX(err).Message())
}

func metadataAttr(key string, v any) attribute.KeyValue {
	switch x := v.(type) {
	case string:
		return attribute.String(key, x)
	case bool:
		return attribute.Bool(key, x)
	case int:
		return attribute.Int(key, x)
	case int64:
		return attribute.Int64(key, x)
	case float64:
		return attribute.Float64(key, x)
	}
	return attribute.String(key, errorx.SafeString(v))
}
