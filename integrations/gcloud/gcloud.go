// Package gcloud formats errorx errors for Google Cloud Error Reporting.
package gcloud

import (
	"log/slog"
	"net/http"

	"github.com/shiwano/errorx"
)

const (
	// ReportedErrorEventType marks a log entry as an error event when it has no stack trace.
	ReportedErrorEventType = "type.googleapis.com/google.devtools.clouderrorreporting.v1beta1.ReportedErrorEvent"

	// HTTPRequestKey is the metadata key read for the request context.
	HTTPRequestKey = "gcloud.httpRequest"
	// UserKey is the metadata key read for the affected user.
	UserKey = "gcloud.user"
)

// HTTPRequest returns metadata describing req, to be merged into the error's options.
//
//	errorx.NewWith(errorx.Options{Message: "...", Metadata: gcloud.HTTPRequest(r)})
func HTTPRequest(req *http.Request) map[string]any {
	return map[string]any{HTTPRequestKey: map[string]any{
		"method":    req.Method,
		"url":       req.URL.String(),
		"userAgent": req.UserAgent(),
		"referrer":  req.Referer(),
		"remoteIp":  req.RemoteAddr,
	}}
}

// User returns metadata naming the affected user.
func User(id string) map[string]any {
	return map[string]any{UserKey: id}
}

// Error returns an inline slog attribute that Error Reporting recognizes
// when written by slog.JSONHandler on Cloud Run, Cloud Functions, GKE or
// Compute Engine with the logging agent.
//
// The group contains:
//   - error: the error through slog.LogValuer
//   - stack_trace: Error.Stack, whose "at fn (file:line)" lines Error Reporting parses
//   - context.reportLocation: the first stack frame
//   - context.httpRequest: HTTPRequest metadata and the HTTP status
//   - context.user: User metadata
//
// Errors without a stack get the ReportedErrorEvent @type instead.
//
// See https://cloud.google.com/error-reporting/docs/formatting-error-messages
func Error(err error) slog.Attr {
	var e *errorx.Error
	switch x := err.(type) {
	case *errorx.Error:
		e = x
	case *errorx.AggregateError:
		e = x.AsError()
	default:
		return slog.Group("",
			slog.String("@type", ReportedErrorEventType),
			slog.String("message", err.Error()),
		)
	}

	attrs := []any{slog.Any("error", e)}
	if len(e.Frames()) > 0 {
		attrs = append(attrs, slog.String("stack_trace", e.Stack()))
	} else {
		attrs = append(attrs, slog.String("@type", ReportedErrorEventType), slog.String("message", e.Message()))
	}
	if context, ok := buildContext(e); ok {
		attrs = append(attrs, context)
	}
	return slog.Group("", attrs...)
}

func buildContext(e *errorx.Error) (slog.Attr, bool) {
	var attrs []any

	if frames := e.Frames(); len(frames) > 0 {
		attrs = append(attrs, slog.Group("reportLocation",
			slog.String("filePath", frames[0].File),
			slog.Int("lineNumber", frames[0].Line),
			slog.String("functionName", frames[0].Func),
		))
	}
	if httpRequest, ok := buildHTTPRequest(e); ok {
		attrs = append(attrs, httpRequest)
	}
	if user, ok := e.MetadataValue(UserKey); ok {
		if s, ok := user.(string); ok && s != "" {
			attrs = append(attrs, slog.String("user", s))
		}
	}

	if len(attrs) > 0 {
		return slog.Group("context", attrs...), true
	}
	return slog.Attr{}, false
}

func buildHTTPRequest(e *errorx.Error) (slog.Attr, bool) {
	var attrs []any

	if v, ok := e.MetadataValue(HTTPRequestKey); ok {
		if req, ok := v.(map[string]any); ok {
			for _, k := range []string{"method", "url", "userAgent", "referrer", "remoteIp"} {
				if s, ok := req[k].(string); ok && s != "" {
					attrs = append(attrs, slog.String(k, s))
				}
			}
		}
	}
	if code := e.HTTPStatus(); code != 0 {
		attrs = append(attrs, slog.Int("responseStatusCode", code))
	}

	if len(attrs) > 0 {
		return slog.Group("httpRequest", attrs...), true
	}
	return slog.Attr{}, false
}
