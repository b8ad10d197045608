// Package fileconfig loads errorx configuration, resolver options and preset
// tables from YAML, TOML or JSON documents.
package fileconfig

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/resolver"
)

// Format is the encoding of a configuration document.
type Format int

const (
	// FormatAuto detects the format from the file extension.
	FormatAuto Format = iota
	FormatYAML
	FormatTOML
	FormatJSON
)

type (
	// File is a configuration document.
	//
	//	config:
	//	  source: billing-api
	//	  docsBaseUrl: https://docs.example.com
	//	resolver:
	//	  defaults:
	//	    uiMessage: Something went wrong.
	//	presets:
	//	  payment:
	//	    defaults: {name: PaymentError, httpStatus: 402}
	//	    defaultPreset: DECLINED
	//	    codePrefix: PAY_
	//	    presets:
	//	      DECLINED: {code: DECLINED, message: Card declined}
	File struct {
		Config   errorx.Config          `json:"config" yaml:"config" toml:"config"`
		Resolver resolver.Options       `json:"resolver" yaml:"resolver" toml:"resolver"`
		Presets  map[string]PresetTable `json:"presets,omitempty" yaml:"presets,omitempty" toml:"presets,omitempty"`
	}

	// PresetTable describes one errorx.Factory.
	PresetTable struct {
		Defaults      errorx.Options            `json:"defaults" yaml:"defaults" toml:"defaults"`
		DefaultPreset string                    `json:"defaultPreset,omitempty" yaml:"defaultPreset,omitempty" toml:"defaultPreset,omitempty"`
		CodePrefix    string                    `json:"codePrefix,omitempty" yaml:"codePrefix,omitempty" toml:"codePrefix,omitempty"` // Prepended to every code that lacks it.
		Presets       map[string]errorx.Options `json:"presets,omitempty" yaml:"presets,omitempty" toml:"presets,omitempty"`
	}
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatFromPath detects the format from the extension of path.
// It returns FormatAuto for unknown extensions.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// Decode reads a File from r.
// Errors are *errorx.Error values with code DECODE_FAILURE or UNSUPPORTED_FORMAT.
func Decode(r io.Reader, format Format) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errorx.DecodeErrors.Wrap(err, errorx.CodeDecodeFailure, errorx.Options{
			Message:  "failed to read config",
			Metadata: map[string]any{"format": format.String()},
		})
	}

	var file File
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &file)
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&file)
	case FormatJSON:
		err = json.Unmarshal(data, &file)
	default:
		return nil, errorx.DecodeErrors.Create(errorx.CodeUnsupportedFormat, errorx.Options{
			Message:  "unsupported config format: " + format.String(),
			Metadata: map[string]any{"format": format.String()},
		})
	}
	if err != nil {
		return nil, errorx.DecodeErrors.Wrap(err, errorx.CodeDecodeFailure, errorx.Options{
			Message:  "failed to parse " + format.String() + " config",
			Metadata: map[string]any{"format": format.String()},
		})
	}
	return &file, nil
}

// Load reads the File at path, detecting the format from its extension.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorx.DecodeErrors.Wrap(err, errorx.CodeDecodeFailure, errorx.Options{
			Message:  "failed to open config",
			Metadata: map[string]any{"path": path},
		})
	}
	defer f.Close()

	file, err := Decode(f, FormatFromPath(path))
	if err != nil {
		if e, ok := err.(*errorx.Error); ok {
			return nil, e.WithMetadata(map[string]any{"path": path})
		}
		return nil, err
	}
	return file, nil
}

// LoadResolverConfig reads only the resolver section.
func LoadResolverConfig(r io.Reader, format Format) (resolver.Options, error) {
	file, err := Decode(r, format)
	if err != nil {
		return resolver.Options{}, err
	}
	return file.Resolver, nil
}

// LoadPresets reads the preset tables and builds a factory for each.
func LoadPresets(r io.Reader, format Format) (map[string]*errorx.Factory, error) {
	file, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	return file.Factories(), nil
}

// Apply stores the config section in the global config store.
func (f *File) Apply() {
	errorx.Configure(f.Config)
}

// Factories builds a factory for each preset table.
func (f *File) Factories() map[string]*errorx.Factory {
	out := make(map[string]*errorx.Factory, len(f.Presets))
	for name, t := range f.Presets {
		out[name] = t.Factory()
	}
	return out
}

// Factory builds the errorx.Factory described by t.
func (t PresetTable) Factory() *errorx.Factory {
	presets := make(map[errorx.PresetKey]errorx.Options, len(t.Presets))
	for k, p := range t.Presets {
		presets[errorx.PresetKey(k)] = p
	}
	factory := &errorx.Factory{
		Defaults:      t.Defaults,
		Presets:       presets,
		DefaultPreset: errorx.PresetKey(t.DefaultPreset),
	}
	if prefix := t.CodePrefix; prefix != "" {
		factory.Transform = func(opts errorx.Options, _ errorx.TransformContext) errorx.Options {
			if opts.Code != "" && !strings.HasPrefix(opts.Code, prefix) {
				opts.Code = prefix + opts.Code
			}
			return opts
		}
	}
	return factory
}
