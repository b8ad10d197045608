package errorx

import (
	"cmp"
	"fmt"
	"maps"
	"reflect"
	"strings"
	"time"
)

// Options configures a new Error. Every field is optional.
type Options struct {
	Name       string         `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Code       string         `json:"code,omitempty" yaml:"code,omitempty" toml:"code,omitempty"`
	Message    string         `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
	HTTPStatus int            `json:"httpStatus,omitempty" yaml:"httpStatus,omitempty" toml:"httpStatus,omitempty"`
	Type       string         `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	UIMessage  string         `json:"uiMessage,omitempty" yaml:"uiMessage,omitempty" toml:"uiMessage,omitempty"`
	DocsURL    string         `json:"docsUrl,omitempty" yaml:"docsUrl,omitempty" toml:"docsUrl,omitempty"`
	Source     string         `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`

	// Cause is the value the new error wraps.
	// An *Error becomes the parent. Anything else is kept as a Snapshot.
	Cause any `json:"-" yaml:"-" toml:"-"`
	// Config replaces the global config store for this construction.
	Config *ConfigStore `json:"-" yaml:"-" toml:"-"`
}

// New creates an error with the given message and default identity.
func New(message string) *Error {
	return newError(Options{Message: message}, false)
}

// Errorf creates an error with a formatted message.
func Errorf(format string, args ...any) *Error {
	return newError(Options{Message: fmt.Sprintf(format, args...)}, false)
}

// NewWith creates an error from opts.
func NewWith(opts Options) *Error {
	return newError(opts, false)
}

// Wrap creates an error whose cause is cause.
// The message defaults to the cause's message. Returns nil if cause is nil.
func Wrap(cause any, opts Options) *Error {
	if isNil(cause) {
		return nil
	}
	opts.Cause = cause
	if strings.TrimSpace(opts.Message) == "" {
		opts.Message = causeMessage(cause)
	}
	return newError(opts, false)
}

// HasCode reports whether any *Error in err's tree carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		switch x := err.(type) {
		case *Error:
			if x.code == code {
				return true
			}
		case *AggregateError:
			if x.code == code {
				return true
			}
		}
		switch x := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				if HasCode(inner, code) {
					return true
				}
			}
			return false
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		default:
			return false
		}
	}
	return false
}

func newError(opts Options, keepMessage bool) *Error {
	cfg := opts.Config.Load()

	e := &Error{
		name:       cmp.Or(opts.Name, DefaultName),
		httpStatus: opts.HTTPStatus,
		typ:        opts.Type,
		uiMessage:  opts.UIMessage,
		timestamp:  time.Now(),
	}
	e.code = cmp.Or(opts.Code, CodeFromName(opts.Name))
	e.message = buildMessage(opts.Message, cfg.FormatMessages && !keepMessage)
	e.source = cmp.Or(opts.Source, cfg.Source)
	e.docsURL = cmp.Or(opts.DocsURL, cfg.DocsURLFor(e.code))
	if len(opts.Metadata) > 0 {
		e.metadata = maps.Clone(opts.Metadata)
	}

	e.setCause(opts.Cause)
	e.stack = e.buildStack()
	if cfg.CleanStackDelimiter != "" {
		e.stack = cleanStackKeepHeader(e.stack, cfg.CleanStackDelimiter)
	}
	return e
}

func buildMessage(msg string, format bool) string {
	if format {
		return FormatMessage(msg)
	}
	if strings.TrimSpace(msg) == "" {
		return DefaultMessage
	}
	return msg
}

func (e *Error) setCause(cause any) {
	if isNil(cause) {
		return
	}
	switch x := cause.(type) {
	case *AggregateError:
		e.parent, e.cause = x.base, x
	case *Error:
		e.parent, e.cause = x, x
	case *Snapshot:
		s := *x
		e.original, e.cause = &s, &s
	case error:
		e.original, e.cause = snapshotOf(x), x
	default:
		s := snapshotOf(x)
		e.original, e.cause = s, s
	}
}

func (e *Error) buildStack() string {
	header := stackHeader(e.name, e.message)

	var inherited string
	switch {
	case e.parent != nil:
		inherited = e.parent.stack
	case e.original != nil:
		inherited = e.original.Stack
	}
	if body := stackBody(inherited); body != "" {
		return header + "\n" + body
	}
	return renderStack(header, captureFrames())
}

func snapshotOf(v any) *Snapshot {
	switch x := v.(type) {
	case error:
		s := &Snapshot{Name: errorName(x), Message: x.Error()}
		switch st := x.(type) {
		case interface{ Stack() string }:
			s.Stack = st.Stack()
		case stackTracer:
			if frames := framesFromPCs(st.StackTrace()); len(frames) > 0 {
				s.Stack = renderStack(stackHeader(s.Name, s.Message), frames)
			}
		}
		return s
	case string:
		return &Snapshot{Message: x}
	case fmt.Stringer:
		return &Snapshot{Name: fmt.Sprintf("%T", v), Message: x.String()}
	}
	return &Snapshot{Name: fmt.Sprintf("%T", v), Message: SafeString(v)}
}

func errorName(err error) string {
	if n, ok := err.(interface{ Name() string }); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", err)
}

func causeMessage(cause any) string {
	switch x := cause.(type) {
	case error:
		return x.Error()
	case string:
		return x
	}
	return snapshotOf(cause).Message
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
