package errorx

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

const (
	// ValidationName is the name of errors built by FromValidation.
	ValidationName = "ValidationError"
	// ValidationCode is the code of errors built by FromValidation.
	ValidationCode = "VALIDATION_ERROR"
	// ValidationType is the type of errors built by FromValidation.
	ValidationType = "validation"
)

type (
	// ValidationIssue is one failed check reported by a validation library.
	ValidationIssue struct {
		Code    string         `json:"code"`
		Path    []any          `json:"path,omitempty"`
		Message string         `json:"message"`
		Extra   map[string]any `json:"extra,omitempty"`
	}

	// ValidationIssues is the issue list of a failed validation.
	ValidationIssues struct {
		Issues []ValidationIssue `json:"issues"`
	}
)

// PathString joins the path with dots, rendering integral elements as indexes,
// e.g. "items[2].name". Indexes decoded from JSON as float64 or json.Number
// render the same way.
func (i ValidationIssue) PathString() string {
	var b strings.Builder
	for _, p := range i.Path {
		if n, ok := pathIndex(p); ok {
			b.WriteString("[" + strconv.FormatInt(n, 10) + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		if s, ok := p.(string); ok {
			b.WriteString(s)
		} else {
			b.WriteString(SafeString(p))
		}
	}
	return b.String()
}

func pathIndex(p any) (int64, bool) {
	switch v := p.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float32:
		return floatIndex(float64(v))
	case float64:
		return floatIndex(v)
	}
	rv := reflect.ValueOf(p)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), true
		}
	}
	return 0, false
}

func floatIndex(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// FromValidation builds a ValidationError from a list of issues.
//
// The message is the first issue's message, prefixed with its path when there is one.
// Every issue is kept in the metadata under "issues", and the first issue's
// code and path under "issueCode" and "field". opts are merged over these defaults.
func FromValidation(v ValidationIssues, opts ...Options) *Error {
	defaults := Options{
		Name:       ValidationName,
		Code:       ValidationCode,
		Type:       ValidationType,
		HTTPStatus: 400,
		Message:    "Validation failed",
	}

	issues := make([]map[string]any, 0, len(v.Issues))
	for _, issue := range v.Issues {
		entry := map[string]any{
			"code":    issue.Code,
			"path":    issue.PathString(),
			"message": issue.Message,
		}
		for k, val := range issue.Extra {
			if _, ok := entry[k]; !ok {
				entry[k] = val
			}
		}
		issues = append(issues, entry)
	}

	defaults.Metadata = map[string]any{
		"issues":     issues,
		"issueCount": len(v.Issues),
	}
	if len(v.Issues) > 0 {
		first := v.Issues[0]
		defaults.Message = first.Message
		if path := first.PathString(); path != "" {
			defaults.Message = path + ": " + first.Message
			defaults.Metadata["field"] = path
		}
		defaults.Metadata["issueCode"] = first.Code
	}

	for _, o := range opts {
		defaults = mergeOptions(defaults, o)
	}
	return newError(defaults, false)
}
