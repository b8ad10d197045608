package errorx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultName is used when no name is given.
	DefaultName = "Error"
	// DefaultCode is used when no code is given and none can be derived from the name.
	DefaultCode = "ERROR"
	// DefaultMessage is used when the message is empty or whitespace-only.
	DefaultMessage = "An error occurred"

	codeSeparator = '_'
)

// FormatMessage normalizes a raw message into display form.
//
// The input is trimmed. An empty result yields DefaultMessage as-is.
// Otherwise the first letter of every sentence (split on ". ") is upper-cased
// and a period is appended unless the message already ends with one of . ! ? ) ]
func FormatMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return DefaultMessage
	}

	sentences := strings.Split(msg, ". ")
	for i, s := range sentences {
		sentences[i] = upperFirst(s)
	}
	msg = strings.Join(sentences, ". ")

	switch msg[len(msg)-1] {
	case '.', '!', '?', ')', ']':
		return msg
	}
	return msg + "."
}

// CodeFromName derives a machine code from a human name,
// e.g. "DatabaseError" becomes "DATABASE_ERROR" and "not found" becomes "NOT_FOUND".
//
// A separator is inserted between an ASCII lowercase and uppercase letter pair,
// every whitespace run becomes one separator (leading and trailing runs included),
// characters other than ASCII letters, digits and the separator are dropped,
// and the result is upper-cased. DefaultCode is returned when no letter or digit
// remains.
func CodeFromName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)

	var prev rune
	inSpace, hasAlnum := false, false
	for _, r := range name {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteRune(codeSeparator)
			}
			inSpace = true
			prev = r
			continue
		}
		inSpace = false
		if isASCIILower(prev) && r >= 'A' && r <= 'Z' {
			b.WriteRune(codeSeparator)
		}
		prev = r

		switch {
		case isASCIIAlnum(r):
			hasAlnum = true
			b.WriteRune(unicode.ToUpper(r))
		case r == codeSeparator:
			b.WriteRune(r)
		}
	}

	if !hasAlnum {
		return DefaultCode
	}
	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func isASCIILower(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
