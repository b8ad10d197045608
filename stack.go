package errorx

import (
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

type (
	// Frame represents a single frame in a stack trace.
	Frame struct {
		Func string `json:"func"`
		File string `json:"file"`
		Line int    `json:"line"`
	}

	// stackTracer is used by Sentry SDK and pkg/errors to expose raw program counters.
	stackTracer interface {
		StackTrace() []uintptr
	}
)

const (
	maxStackDepth = 32
	framePrefix   = "    at "
)

// pkgPrefix matches the functions of this package. Subpackages are not matched.
var pkgPrefix = reflect.TypeFor[Error]().PkgPath() + "."

func captureFrames() []Frame {
	var pcs [maxStackDepth]uintptr
	// 2 frames: runtime.Callers and captureFrames.
	n := runtime.Callers(2, pcs[:])
	return framesFromPCs(pcs[:n])
}

func framesFromPCs(pcs []uintptr) []Frame {
	if len(pcs) == 0 {
		return nil
	}
	fs := runtime.CallersFrames(pcs)
	frames := make([]Frame, 0, len(pcs))
	for {
		f, more := fs.Next()
		if !isInternalFunc(f.Function) {
			frames = append(frames, Frame{Func: f.Function, File: f.File, Line: f.Line})
		}
		if !more {
			break
		}
	}
	return frames
}

func isInternalFunc(fn string) bool {
	return strings.HasPrefix(fn, pkgPrefix)
}

func stackHeader(name, message string) string {
	return name + ": " + message
}

func renderStack(header string, frames []Frame) string {
	var b strings.Builder
	b.WriteString(header)
	for _, f := range frames {
		b.WriteByte('\n')
		b.WriteString(framePrefix)
		b.WriteString(f.Func)
		b.WriteString(" (")
		b.WriteString(f.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Line))
		b.WriteByte(')')
	}
	return b.String()
}

// stackBody drops the header line of a rendered stack.
func stackBody(stack string) string {
	_, body, ok := strings.Cut(stack, "\n")
	if !ok {
		return ""
	}
	return body
}

// ParseFrames parses the frame lines of a rendered stack.
// Lines that are not frames, such as the header, are skipped.
func ParseFrames(stack string) []Frame {
	var frames []Frame
	for line := range strings.SplitSeq(stack, "\n") {
		if f, ok := parseFrame(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

func parseFrame(line string) (Frame, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "at ")
	if !ok {
		return Frame{}, false
	}
	fn, loc, ok := strings.Cut(rest, " (")
	if !ok {
		return Frame{Func: rest}, true
	}
	loc = strings.TrimSuffix(loc, ")")
	f := Frame{Func: fn, File: loc}
	if i := strings.LastIndexByte(loc, ':'); i >= 0 {
		if n, err := strconv.Atoi(loc[i+1:]); err == nil {
			f.File, f.Line = loc[:i], n
		}
	}
	return f, true
}

// CleanStack trims a rendered stack.
//
// With a delimiter, only the lines after the first line containing the delimiter
// are kept. When the delimiter does not occur, the stack is returned unchanged.
// Without a delimiter, frames of this package's construction internals are removed.
func CleanStack(stack, delimiter string) string {
	if stack == "" {
		return ""
	}
	lines := strings.Split(stack, "\n")

	if delimiter != "" {
		for i, line := range lines {
			if strings.Contains(line, delimiter) {
				return strings.Join(lines[i+1:], "\n")
			}
		}
		return stack
	}

	kept := lines[:0:0]
	for _, line := range lines {
		if f, ok := parseFrame(line); ok && isInternalFunc(f.Func) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
