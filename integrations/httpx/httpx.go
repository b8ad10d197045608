// Package httpx writes errorx errors as JSON HTTP responses and provides
// request-scoped middleware that feeds request data into new errors.
package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/resolver"
)

const (
	// RequestIDHeader is read from requests and echoed on responses.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the metadata key under which the request ID is attached to errors.
	RequestIDKey = "requestId"
	// InternalMessage replaces the message of 5xx errors that carry no user-facing message.
	InternalMessage = "An internal error occurred"
)

type (
	// Body is the JSON document written for an error.
	Body struct {
		Error BodyError `json:"error"`
	}

	// BodyError is the public part of an error.
	BodyError struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Type      string `json:"type,omitempty"`
		DocsURL   string `json:"docsUrl,omitempty"`
		RequestID string `json:"requestId,omitempty"`
	}

	// Writer turns errors into HTTP responses.
	// The zero value writes the error's own fields and logs with slog.Default.
	Writer struct {
		// Resolver, when set, supplies the user-facing message and docs URL.
		Resolver *resolver.Resolver[resolver.Context]
		// Logger receives one record per written error.
		Logger *slog.Logger
	}

	requestIDKey struct{}
)

// Write converts err with errorx.From and writes it to rw.
//
// The status is the error's HTTP status, or 500 when it has none. For 5xx
// errors the raw message is never exposed: the resolved or error UI message is
// used, falling back to InternalMessage.
func (w Writer) Write(rw http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	e := errorx.From(err)

	status := e.HTTPStatus()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := BodyError{
		Code:      e.Code(),
		Message:   e.Message(),
		Type:      e.Type(),
		DocsURL:   e.DocsURL(),
		RequestID: RequestIDFromContext(r.Context()),
	}
	uiMessage := e.UIMessage()
	if w.Resolver != nil {
		c := w.Resolver.Context(e)
		uiMessage = c.UIMessage
		if c.DocsURL != "" {
			body.DocsURL = c.DocsURL
		}
	}
	switch {
	case uiMessage != "":
		body.Message = uiMessage
	case status >= http.StatusInternalServerError:
		body.Message = InternalMessage
	}

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	w.logger().Log(r.Context(), level, "request failed",
		"error", e,
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	)

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(Body{Error: body}); err != nil {
		w.logger().Error("failed to encode error response", "error", err)
	}
}

func (w Writer) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// RequestID reads the request ID from RequestIDHeader, generating a UUID when
// absent, and echoes it on the response. Errors created with
// errorx.NewContext or Factory.CreateContext from the request context carry it
// in their metadata under RequestIDKey.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = errorx.ContextWithOptions(ctx, errorx.Options{
			Metadata: map[string]any{RequestIDKey: id},
		})

		rw.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the ID stored by RequestID, or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Recovery converts panics in next into PANIC errors written by w.
func (w Writer) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var err error
		func() {
			defer func() {
				errorx.CapturePanic(&err, recover(), errorx.Options{
					Metadata: map[string]any{"method": r.Method, "path": r.URL.Path},
				})
			}()
			next.ServeHTTP(rw, r)
		}()
		if err != nil {
			w.Write(rw, r, err)
		}
	})
}

// Handler adapts a handler that returns an error. A non-nil error is written by w.
func (w Writer) Handler(fn func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if err := fn(rw, r); err != nil {
			w.Write(rw, r, err)
		}
	})
}
