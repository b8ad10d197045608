package errorx

import (
	"slices"
	"strconv"
	"strings"
)

const (
	// AggregateName is the default name of an aggregate.
	AggregateName = "AggregateError"
	// AggregateCode is the default code of an aggregate.
	AggregateCode = "AGGREGATE_ERROR"
)

// AggregateError is an Error that carries an ordered list of member errors.
//
// Every method of Error is available. Unwrap returns the members followed by
// the cause, so errors.Is and errors.As search every member.
type AggregateError struct {
	*base
}

// base names the embedded *Error so that the field does not hide the Error method.
type base = Error

// Aggregate converts every item with From and collects the results in order.
//
// The message defaults to a count summary, "1 error occurred" or
// "Multiple errors occurred (N errors)". Each non-zero field of overrides
// replaces the corresponding default.
func Aggregate(items []any, overrides ...Options) *AggregateError {
	members := make([]*Error, len(items))
	for i, item := range items {
		members[i] = From(item)
	}

	opts := Options{Name: AggregateName, Code: AggregateCode}
	for _, o := range overrides {
		opts = mergeOptions(opts, o)
	}

	keepMessage := false
	if strings.TrimSpace(opts.Message) == "" {
		opts.Message = countMessage(len(members))
		keepMessage = true
	}

	e := newError(opts, keepMessage)
	e.members = members
	return &AggregateError{base: e}
}

// IsAggregate reports whether v was produced by Aggregate or restored from
// a serialized aggregate.
func IsAggregate(v any) bool {
	switch x := v.(type) {
	case *AggregateError:
		return x != nil && x.base != nil
	case *Error:
		return x != nil && x.members != nil
	}
	return false
}

// AsAggregate returns e as an *AggregateError when it carries members.
func (e *Error) AsAggregate() (*AggregateError, bool) {
	if e == nil || e.members == nil {
		return nil, false
	}
	return &AggregateError{base: e}, true
}

// Errors returns a copy of the members. It is nil for a plain Error.
func (e *Error) Errors() []*Error {
	return slices.Clone(e.members)
}

// Unwrap returns the members followed by the cause.
func (a *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(a.members)+1)
	for _, m := range a.members {
		errs = append(errs, m)
	}
	if a.cause != nil {
		errs = append(errs, a.cause)
	}
	return errs
}

// AsError returns the underlying *Error, members included.
func (a *AggregateError) AsError() *Error {
	return a.base
}

// WithMetadata is Error.WithMetadata keeping the aggregate type.
func (a *AggregateError) WithMetadata(additional map[string]any) *AggregateError {
	return &AggregateError{base: a.base.WithMetadata(additional)}
}

// CleanStack is Error.CleanStack keeping the aggregate type.
func (a *AggregateError) CleanStack(delimiter string) *AggregateError {
	return &AggregateError{base: a.base.CleanStack(delimiter)}
}

func countMessage(n int) string {
	if n == 1 {
		return "1 error occurred"
	}
	return "Multiple errors occurred (" + strconv.Itoa(n) + " errors)"
}
