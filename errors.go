package errorx

const (
	// CodeDecodeFailure is the code of errors returned when serialized input cannot be decoded.
	CodeDecodeFailure = "DECODE_FAILURE"
	// CodeUnsupportedFormat is the code of errors returned for an unknown input format.
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// DecodeErrors builds the errors returned by this module's decoders.
var DecodeErrors = &Factory{
	Defaults: Options{Name: "DecodeError", Type: "decode", HTTPStatus: 400},
	Presets: map[PresetKey]Options{
		CodeDecodeFailure: {
			Code:    CodeDecodeFailure,
			Message: "failed to decode serialized error",
		},
		CodeUnsupportedFormat: {
			Code:    CodeUnsupportedFormat,
			Message: "unsupported format",
		},
	},
	DefaultPreset: CodeDecodeFailure,
}
