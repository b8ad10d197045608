// Package httperr provides a preset factory for HTTP status errors.
package httperr

import (
	"net/http"
	"strings"

	"github.com/shiwano/errorx"
)

const (
	// Name is the name of every HTTP error.
	Name = "HTTPError"
	// Type is the type of every HTTP error.
	Type = "http"
	// CodePrefix is prepended to every code.
	CodePrefix = "HTTP_"
)

// Factory creates HTTP errors keyed by status, e.g. httperr.Factory.Create(errorx.IntKey(404)).
// Unknown statuses fall back to 500.
var Factory = &errorx.Factory{
	Defaults:      errorx.Options{Name: Name, Type: Type},
	Presets:       presets(),
	DefaultPreset: errorx.IntKey(http.StatusInternalServerError),
	Transform:     prefixCode,
}

// New creates the error for status with overrides.
func New(status int, overrides ...errorx.Options) *errorx.Error {
	return Factory.Create(errorx.IntKey(status), overrides...)
}

// Wrap creates the error for status wrapping cause.
func Wrap(cause error, status int, overrides ...errorx.Options) *errorx.Error {
	return Factory.Wrap(cause, errorx.IntKey(status), overrides...)
}

// Status returns the HTTP status of err, or 500 when err carries none.
func Status(err error) int {
	if e := errorx.From(err); e.HTTPStatus() != 0 {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func prefixCode(opts errorx.Options, _ errorx.TransformContext) errorx.Options {
	if opts.Code != "" && !strings.HasPrefix(opts.Code, CodePrefix) {
		opts.Code = CodePrefix + opts.Code
	}
	return opts
}

var statusTable = []struct {
	status    int
	code      string
	uiMessage string
}{
	{http.StatusBadRequest, "BAD_REQUEST", "The request was invalid. Please check your input and try again."},
	{http.StatusUnauthorized, "UNAUTHORIZED", "Please sign in to continue."},
	{http.StatusPaymentRequired, "PAYMENT_REQUIRED", "Payment is required to access this resource."},
	{http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action."},
	{http.StatusNotFound, "NOT_FOUND", "The requested resource could not be found."},
	{http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "This action is not supported."},
	{http.StatusNotAcceptable, "NOT_ACCEPTABLE", "The requested format is not available."},
	{http.StatusRequestTimeout, "REQUEST_TIMEOUT", "The request took too long. Please try again."},
	{http.StatusConflict, "CONFLICT", "The request conflicts with the current state. Please refresh and try again."},
	{http.StatusGone, "GONE", "This resource is no longer available."},
	{http.StatusPreconditionFailed, "PRECONDITION_FAILED", "The resource has changed. Please refresh and try again."},
	{http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "The request is too large."},
	{http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "This file type is not supported."},
	{http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "The request could not be processed. Please check your input."},
	{http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests. Please wait a moment and try again."},
	{http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Something went wrong on our end. Please try again later."},
	{http.StatusNotImplemented, "NOT_IMPLEMENTED", "This feature is not available yet."},
	{http.StatusBadGateway, "BAD_GATEWAY", "We are having trouble reaching an upstream service. Please try again later."},
	{http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "The service is temporarily unavailable. Please try again later."},
	{http.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "An upstream service took too long to respond. Please try again later."},
}

func presets() map[errorx.PresetKey]errorx.Options {
	m := make(map[errorx.PresetKey]errorx.Options, len(statusTable))
	for _, s := range statusTable {
		m[errorx.IntKey(s.status)] = errorx.Options{
			Code:       s.code,
			Message:    http.StatusText(s.status),
			HTTPStatus: s.status,
			UIMessage:  s.uiMessage,
		}
	}
	return m
}
