package errorx

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
	"time"
)

type (
	// Error is a structured, serializable error value.
	//
	// An Error is immutable once created. Methods that change it, such as
	// WithMetadata, return a new value.
	Error struct {
		name       string
		code       string
		message    string
		metadata   map[string]any
		httpStatus int
		typ        string
		uiMessage  string
		docsURL    string
		source     string
		timestamp  time.Time
		stack      string

		// parent is set when the cause is itself an *Error.
		parent *Error
		// original is set when the cause is anything else.
		original *Snapshot
		// cause is the live value returned by Unwrap.
		cause error
		// members is non-nil only for aggregates.
		members []*Error
	}

	// Snapshot is a minimal, non-live capture of a cause that is not an *Error.
	Snapshot struct {
		Name    string `json:"name,omitempty"`
		Message string `json:"message"`
		Stack   string `json:"stack,omitempty"`
	}
)

var (
	_ error          = (*Error)(nil)
	_ fmt.Formatter  = (*Error)(nil)
	_ json.Marshaler = (*Error)(nil)
	_ slog.LogValuer = (*Error)(nil)
	_ error          = (*Snapshot)(nil)
)

// Error returns the message.
func (e *Error) Error() string {
	return e.message
}

// Name returns the category label, "Error" by default.
func (e *Error) Name() string {
	return e.name
}

// Code returns the machine identifier.
func (e *Error) Code() string {
	return e.code
}

// Message returns the human-readable technical description.
func (e *Error) Message() string {
	return e.message
}

// Metadata returns a shallow copy of the metadata, or nil if there is none.
func (e *Error) Metadata() map[string]any {
	return maps.Clone(e.metadata)
}

// MetadataValue returns the metadata entry for key.
func (e *Error) MetadataValue(key string) (any, bool) {
	v, ok := e.metadata[key]
	return v, ok
}

// HTTPStatus returns the HTTP status, or 0 when unset.
func (e *Error) HTTPStatus() int {
	return e.httpStatus
}

// Type returns the free-form classification tag.
func (e *Error) Type() string {
	return e.typ
}

// UIMessage returns the precomputed user-facing message.
func (e *Error) UIMessage() string {
	return e.uiMessage
}

// DocsURL returns the documentation URL.
func (e *Error) DocsURL() string {
	return e.docsURL
}

// Source returns the source tag.
func (e *Error) Source() string {
	return e.source
}

// Timestamp returns the construction time.
func (e *Error) Timestamp() time.Time {
	return e.timestamp
}

// Stack returns the rendered stack: a "Name: message" header followed by frame lines.
func (e *Error) Stack() string {
	return e.stack
}

// Frames returns the parsed frames of the stack.
func (e *Error) Frames() []Frame {
	return ParseFrames(e.stack)
}

// Original returns the snapshot of a cause that is not an *Error.
func (e *Error) Original() *Snapshot {
	if e.original == nil {
		return nil
	}
	s := *e.original
	return &s
}

// Parent returns the wrapped *Error, or nil.
func (e *Error) Parent() *Error {
	return e.parent
}

// Root returns the earliest ancestor. It is e itself when there is no parent.
func (e *Error) Root() *Error {
	root := e
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Chain returns e followed by every ancestor, most recent first.
// The returned slice is freshly allocated on each call.
func (e *Error) Chain() []*Error {
	chain := make([]*Error, 0, 4)
	for cur := e; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

// Unwrap returns the live cause so that errors.Is and errors.As see the whole chain.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the same value as Unwrap. It is used by pkg/errors compatible tooling.
func (e *Error) Cause() error {
	return e.cause
}

// WithMetadata returns a copy whose metadata is the existing metadata with
// additional merged over it. Stack and timestamp are preserved.
func (e *Error) WithMetadata(additional map[string]any) *Error {
	cp := *e
	cp.metadata = mergeShallow(e.metadata, additional)
	return &cp
}

// CleanStack returns a copy whose stack is trimmed by CleanStack.
// The header line is kept when a delimiter is given.
func (e *Error) CleanStack(delimiter string) *Error {
	cp := *e
	cp.stack = cleanStackKeepHeader(e.stack, delimiter)
	return &cp
}

// Format implements fmt.Formatter.
//
// %v and %s print the message, %q a quoted message.
// %+v prints name, code, metadata, stack and every ancestor.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		switch {
		case s.Flag('+'):
			e.formatVerbose(s)
		case s.Flag('#'):
			// Avoid infinite recursion in case someone does %#v on Error.
			type Error_ Error
			_, _ = fmt.Fprintf(s, "%#v", (*Error_)(e))
		default:
			_, _ = io.WriteString(s, e.Error())
		}
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

func (e *Error) formatVerbose(w io.Writer) {
	_, _ = fmt.Fprintf(w, "%s: %s [%s]\n", e.name, e.message, e.code)

	if e.httpStatus != 0 {
		_, _ = fmt.Fprintf(w, "HTTP Status:\n\t%d\n", e.httpStatus)
	}
	if e.typ != "" {
		_, _ = fmt.Fprintf(w, "Type:\n\t%s\n", e.typ)
	}
	if len(e.metadata) > 0 {
		_, _ = fmt.Fprintf(w, "Metadata:\n\t%s\n", SafeString(e.metadata))
	}
	if frames := e.Frames(); len(frames) > 0 {
		_, _ = io.WriteString(w, "Stack:\n")
		for _, f := range frames {
			_, _ = fmt.Fprintf(w, "\t%s\n\t\t%s:%d\n", f.Func, f.File, f.Line)
		}
	}

	if e.members != nil {
		_, _ = fmt.Fprintf(w, "Errors (%d):\n", len(e.members))
		for _, m := range e.members {
			writeIndented(w, m)
		}
	}

	switch {
	case e.parent != nil:
		_, _ = io.WriteString(w, "Cause:\n")
		writeIndented(w, e.parent)
	case e.original != nil:
		_, _ = fmt.Fprintf(w, "Original:\n\t%s\n", e.original.Error())
	}
}

func writeIndented(w io.Writer, e *Error) {
	str := strings.Trim(fmt.Sprintf("%+v", e), "\n")
	for line := range strings.SplitSeq(str, "\n") {
		_, _ = fmt.Fprintf(w, "\t%s\n", line)
	}
}

// Error returns "Name: message", or the message alone when there is no name.
func (s *Snapshot) Error() string {
	if s.Name == "" {
		return s.Message
	}
	return s.Name + ": " + s.Message
}

func mergeShallow(base, additional map[string]any) map[string]any {
	if len(base) == 0 && len(additional) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(additional))
	maps.Copy(out, base)
	maps.Copy(out, additional)
	return out
}

func cleanStackKeepHeader(stack, delimiter string) string {
	if delimiter == "" {
		return CleanStack(stack, "")
	}
	header, body, ok := strings.Cut(stack, "\n")
	if !ok {
		return stack
	}
	cleaned := CleanStack(body, delimiter)
	if cleaned == "" {
		return header
	}
	return header + "\n" + cleaned
}
