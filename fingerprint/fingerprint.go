// Package fingerprint derives short, deterministic digests from errors
// so that occurrences of the same logical error can be grouped.
package fingerprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/shiwano/errorx"
)

// Separator joins the parts before hashing.
const Separator = "|"

type (
	// HashFunc turns the joined parts into the fingerprint.
	HashFunc func(s string) string

	// Option configures Generate.
	Option func(*options)

	options struct {
		name, code, message bool
		metadataKeys        []string
		hash                HashFunc
	}
)

// WithoutName excludes the name.
func WithoutName() Option {
	return func(o *options) { o.name = false }
}

// WithoutCode excludes the code.
func WithoutCode() Option {
	return func(o *options) { o.code = false }
}

// WithoutMessage excludes the message.
func WithoutMessage() Option {
	return func(o *options) { o.message = false }
}

// WithMetadataKeys includes the metadata values stored under keys, in the given order.
// Missing keys are skipped.
func WithMetadataKeys(keys ...string) Option {
	return func(o *options) { o.metadataKeys = append(o.metadataKeys, keys...) }
}

// WithHash replaces DefaultHash.
func WithHash(fn HashFunc) Option {
	return func(o *options) { o.hash = fn }
}

// Generate returns the fingerprint of err.
//
// Name, code and message are included unless excluded, followed by the requested
// metadata keys as "meta.key:value". Timestamp, stack and identity never count,
// so equal fields always yield equal fingerprints.
func Generate(err *errorx.Error, opts ...Option) string {
	o := options{name: true, code: true, message: true, hash: DefaultHash}
	for _, opt := range opts {
		opt(&o)
	}
	return o.hash(strings.Join(Parts(err, opts...), Separator))
}

// Parts returns the strings Generate hashes, in order.
func Parts(err *errorx.Error, opts ...Option) []string {
	o := options{name: true, code: true, message: true}
	for _, opt := range opts {
		opt(&o)
	}

	parts := make([]string, 0, 3+len(o.metadataKeys))
	if o.name {
		parts = append(parts, "name:"+err.Name())
	}
	if o.code {
		parts = append(parts, "code:"+err.Code())
	}
	if o.message {
		parts = append(parts, "message:"+err.Message())
	}
	for _, k := range o.metadataKeys {
		v, ok := err.MetadataValue(k)
		if !ok {
			continue
		}
		parts = append(parts, "meta."+k+":"+valueString(v))
	}
	return parts
}

// DefaultHash is a 32-bit string hash rendered as 8 hex digits.
// It multiplies by 31 per UTF-16 code unit, so digests match the common
// hashCode implementations in other languages.
func DefaultHash(s string) string {
	var h int32
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16Pair(r)
			h = h*31 + int32(hi)
			h = h*31 + int32(lo)
			continue
		}
		h = h*31 + int32(r)
	}
	return fmt.Sprintf("%08x", uint32(h))
}

// XXHash is xxHash64 rendered as 16 hex digits.
func XXHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

func utf16Pair(r rune) (rune, rune) {
	r -= 0x10000
	return 0xd800 + (r>>10)&0x3ff, 0xdc00 + r&0x3ff
}

func valueString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return errorx.SafeString(v)
}
