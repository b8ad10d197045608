package errorx

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

const (
	// UnknownName is the name given to values that cannot be interpreted.
	UnknownName = "UnknownError"
	// UnknownMessage is the message given to values that cannot be interpreted.
	UnknownMessage = "Unknown error occurred"
	// OriginalMetadataKey holds the converted string or object in the metadata.
	OriginalMetadataKey = "originalError"
)

// fieldRule picks the first candidate key whose value passes accept.
type fieldRule struct {
	keys   []string
	accept func(any) (string, bool)
}

var (
	nameRule = fieldRule{
		keys:   []string{"name", "errorName", "error_name"},
		accept: nonEmptyString,
	}
	messageRule = fieldRule{
		keys:   []string{"message", "msg", "error", "error_description", "errorMessage", "details", "detail", "description", "title", "reason"},
		accept: nonEmptyString,
	}
	codeRule = fieldRule{
		keys:   []string{"code", "errorCode", "error_code", "errno"},
		accept: stringOrInteger,
	}
	uiMessageRule = fieldRule{
		keys:   []string{"uiMessage", "ui_message", "userMessage", "user_message", "displayMessage"},
		accept: nonEmptyString,
	}
	httpStatusRule = fieldRule{
		keys:   []string{"httpStatus", "statusCode", "status_code", "status"},
		accept: stringOrInteger,
	}
)

// From converts any value into an Error. It never fails.
//
//   - An *Error is returned unchanged, an *AggregateError as its underlying *Error.
//   - Other errors become the cause, and their message is copied.
//   - A string becomes the message and is kept in the metadata.
//   - A map or struct is scanned for name, message, code, uiMessage and
//     httpStatus candidates and is kept in the metadata.
//   - nil and anything else yield an UnknownError.
func From(v any) *Error {
	if isNil(v) {
		return unknown()
	}

	switch x := v.(type) {
	case *Error:
		return x
	case *AggregateError:
		return x.base
	case error:
		return fromError(x)
	case string:
		return newError(Options{
			Message:  x,
			Metadata: map[string]any{OriginalMetadataKey: x},
		}, false)
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		obj, ok := SafeValue(v).(map[string]any)
		if !ok {
			return unknown()
		}
		return fromObject(obj)
	}
	return unknown()
}

// ToErrorX is an alias of From.
func ToErrorX(v any) *Error {
	return From(v)
}

func unknown() *Error {
	return newError(Options{Name: UnknownName, Message: UnknownMessage}, false)
}

func fromError(err error) *Error {
	opts := Options{Message: err.Error(), Cause: err}
	if n, ok := err.(interface{ Name() string }); ok {
		opts.Name = n.Name()
	}
	if c, ok := err.(interface{ Code() string }); ok {
		opts.Code = c.Code()
	}
	switch s := err.(type) {
	case interface{ HTTPStatus() int }:
		opts.HTTPStatus = s.HTTPStatus()
	case interface{ StatusCode() int }:
		opts.HTTPStatus = s.StatusCode()
	}
	return newError(opts, false)
}

func fromObject(obj map[string]any) *Error {
	opts := Options{
		Name:      nameRule.first(obj),
		Code:      codeRule.first(obj),
		Message:   messageRule.first(obj),
		UIMessage: uiMessageRule.first(obj),
		Metadata:  map[string]any{OriginalMetadataKey: obj},
	}
	if opts.Message == "" {
		opts.Message = UnknownMessage
	}
	if s, err := strconv.Atoi(httpStatusRule.first(obj)); err == nil && s >= 100 && s <= 599 {
		opts.HTTPStatus = s
	}
	return newError(opts, false)
}

func (r fieldRule) first(obj map[string]any) string {
	for _, k := range r.keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if s, ok := r.accept(v); ok {
			return s
		}
	}
	return ""
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func stringOrInteger(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, strings.TrimSpace(x) != ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), true
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10), true
		}
	}
	return "", false
}
