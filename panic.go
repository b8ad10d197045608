package errorx

import (
	"fmt"
	"io"
)

const (
	// PanicName is the default name of an error built by CapturePanic.
	PanicName = "PanicError"
	// PanicCode is the default code of an error built by CapturePanic.
	PanicCode = "PANIC"
)

type (
	// PanicError is the cause of an error built by CapturePanic.
	PanicError interface {
		error

		// PanicValue returns the value recovered from the panic.
		PanicValue() any
		// Unwrap returns the underlying error if the panic value is an error.
		Unwrap() error
	}

	panicError struct {
		msg        string
		panicValue any
	}
)

var (
	_ PanicError    = (*panicError)(nil)
	_ fmt.Formatter = (*panicError)(nil)
)

// CapturePanic converts a recovered panic value into an *Error stored in *errPtr.
// If errPtr is nil or panicValue is nil, this function does nothing.
//
// The new error's cause implements PanicError, so errors.As recovers the
// original value. opts are merged over the PanicError defaults.
//
//	defer func() {
//		errorx.CapturePanic(&err, recover())
//	}()
func CapturePanic(errPtr *error, panicValue any, opts ...Options) {
	if panicValue == nil || errPtr == nil {
		return
	}
	merged := Options{Name: PanicName, Code: PanicCode, HTTPStatus: 500}
	for _, o := range opts {
		merged = mergeOptions(merged, o)
	}
	pe := newPanicError(panicValue)
	merged.Cause = pe
	if merged.Message == "" {
		merged.Message = pe.msg
	}
	*errPtr = newError(merged, false)
}

func newPanicError(panicValue any) *panicError {
	return &panicError{
		msg:        fmt.Sprintf("%v", panicValue),
		panicValue: panicValue,
	}
}

func (e *panicError) Error() string {
	return e.msg
}

func (e *panicError) Name() string {
	return "panic"
}

func (e *panicError) PanicValue() any {
	return e.panicValue
}

func (e *panicError) Unwrap() error {
	if err, ok := e.panicValue.(error); ok {
		return err
	}
	return nil
}

func (e *panicError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		switch {
		case s.Flag('+'):
			_, _ = io.WriteString(s, e.Error())
			_, _ = io.WriteString(s, "\n---")
			_, _ = io.WriteString(s, "\npanic_value: ")
			_, _ = fmt.Fprintf(s, "%+v", e.panicValue)
		case s.Flag('#'):
			type (
				panicError_ panicError
				panicError  panicError_
			)
			_, _ = fmt.Fprintf(s, "%#v", (*panicError)(e))
		default:
			_, _ = io.WriteString(s, e.Error())
		}
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}
