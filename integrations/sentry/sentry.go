// Package sentry reports errorx errors to Sentry.
package sentry

import (
	"context"
	"runtime"
	"slices"
	"strconv"

	"github.com/getsentry/sentry-go"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/fingerprint"
)

// LevelKey is the metadata key that overrides the reported severity level.
const LevelKey = "sentry.level"

// CaptureError reports an error to Sentry with context from errorx data.
//
// This function:
//   - Returns nil if the error is nil
//   - Retrieves the Sentry hub from the context
//   - Converts the error with errorx.ToErrorX
//   - Builds one exception per chain entry, root first, with stack frames
//   - Sets the level from the LevelKey metadata entry, or from the HTTP status
//   - Sets name, code, type and HTTP status as tags
//   - Sets the JSON-safe metadata and chain codes as the "error" context
//   - Groups the event by the fingerprint of the error
func CaptureError(ctx context.Context, err error, opts ...fingerprint.Option) *sentry.EventID {
	if err == nil {
		return nil
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	e := errorx.ToErrorX(err)
	event := sentry.NewEvent()
	event.Level = levelOf(e)
	event.Message = e.Message()
	event.Exception = exceptions(e)

	var id *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error.name", e.Name())
		scope.SetTag("error.code", e.Code())
		if typ := e.Type(); typ != "" {
			scope.SetTag("error.type", typ)
		}
		if status := e.HTTPStatus(); status != 0 {
			scope.SetTag("http.status", strconv.Itoa(status))
		}
		if source := e.Source(); source != "" {
			scope.SetTag("error.source", source)
		}

		data := sentry.Context{}
		if md := errorx.SafeMetadata(e.Metadata()); md != nil {
			data["metadata"] = md
		}
		if chain := e.Chain(); len(chain) > 1 {
			codes := make([]string, 0, len(chain)-1)
			for _, c := range chain[1:] {
				codes = append(codes, c.Code())
			}
			data["chain"] = codes
		}
		if url := e.DocsURL(); url != "" {
			data["docs_url"] = url
		}
		if len(data) > 0 {
			scope.SetContext("error", data)
		}

		scope.SetFingerprint([]string{fingerprint.Generate(e, opts...)})
		id = hub.CaptureEvent(event)
	})
	return id
}

func levelOf(e *errorx.Error) sentry.Level {
	if v, ok := e.MetadataValue(LevelKey); ok {
		switch lv := v.(type) {
		case sentry.Level:
			return lv
		case string:
			return sentry.Level(lv)
		}
	}
	if status := e.HTTPStatus(); status >= 400 && status < 500 {
		return sentry.LevelWarning
	}
	return sentry.LevelError
}

// exceptions lists the chain root first, which is the order Sentry expects.
func exceptions(e *errorx.Error) []sentry.Exception {
	chain := e.Chain()
	out := make([]sentry.Exception, 0, len(chain)+1)
	if o := chain[len(chain)-1].Original(); o != nil {
		typ := o.Name
		if typ == "" {
			typ = "error"
		}
		out = append(out, sentry.Exception{Type: typ, Value: o.Message})
	}
	for _, c := range slices.Backward(chain) {
		out = append(out, sentry.Exception{
			Type:       c.Name(),
			Value:      c.Message(),
			Stacktrace: stacktrace(c.Frames()),
		})
	}
	return out
}

func stacktrace(frames []errorx.Frame) *sentry.Stacktrace {
	if len(frames) == 0 {
		return nil
	}
	out := make([]sentry.Frame, 0, len(frames))
	for _, f := range slices.Backward(frames) {
		out = append(out, sentry.NewFrame(runtime.Frame{Function: f.Func, File: f.File, Line: f.Line}))
	}
	return &sentry.Stacktrace{Frames: out}
}
