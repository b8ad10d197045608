package errorx

import (
	"maps"
	"strings"
	"sync/atomic"
)

type (
	// Config holds the process-wide settings read by every new error at construction time.
	Config struct {
		// Source is the default value of Error.Source.
		Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
		// DocsBaseURL is joined with a DocsMap entry to build Error.DocsURL.
		DocsBaseURL string `json:"docsBaseUrl,omitempty" yaml:"docsBaseUrl,omitempty" toml:"docsBaseUrl,omitempty"`
		// DocsMap maps an error code to a documentation path.
		DocsMap map[string]string `json:"docsMap,omitempty" yaml:"docsMap,omitempty" toml:"docsMap,omitempty"`
		// CleanStackDelimiter, when set, trims captured stacks to the frames after
		// the first frame containing it.
		CleanStackDelimiter string `json:"cleanStackDelimiter,omitempty" yaml:"cleanStackDelimiter,omitempty" toml:"cleanStackDelimiter,omitempty"`
		// FormatMessages enables FormatMessage on constructed messages.
		// Messages are kept verbatim when false.
		FormatMessages bool `json:"formatMessages,omitempty" yaml:"formatMessages,omitempty" toml:"formatMessages,omitempty"`
	}

	// ConfigStore holds a Config with last-writer-wins semantics.
	// The zero value is ready to use and holds the zero Config.
	ConfigStore struct {
		p atomic.Pointer[Config]
	}
)

var defaultStore = &ConfigStore{}

// NewConfigStore creates a store holding cfg.
// Pass it through Options.Config to isolate construction from the global store.
func NewConfigStore(cfg Config) *ConfigStore {
	s := &ConfigStore{}
	s.Store(cfg)
	return s
}

// Load returns a copy of the current config.
// A nil store reads the global store.
func (s *ConfigStore) Load() Config {
	if s == nil {
		s = defaultStore
	}
	p := s.p.Load()
	if p == nil {
		return Config{}
	}
	return p.clone()
}

// Store replaces the current config.
func (s *ConfigStore) Store(cfg Config) {
	if s == nil {
		s = defaultStore
	}
	c := cfg.clone()
	s.p.Store(&c)
}

// Reset restores the zero config.
func (s *ConfigStore) Reset() {
	if s == nil {
		s = defaultStore
	}
	s.p.Store(nil)
}

// Configure replaces the global config.
func Configure(cfg Config) {
	defaultStore.Store(cfg)
}

// CurrentConfig returns a copy of the global config.
func CurrentConfig() Config {
	return defaultStore.Load()
}

// ResetConfig restores the zero global config.
func ResetConfig() {
	defaultStore.Reset()
}

// DocsURLFor returns the documentation URL for code, or an empty string
// when either the base URL or the path for code is missing.
func (c Config) DocsURLFor(code string) string {
	path, ok := c.DocsMap[code]
	if !ok || path == "" || c.DocsBaseURL == "" {
		return ""
	}
	return joinURL(c.DocsBaseURL, path)
}

func (c Config) clone() Config {
	c.DocsMap = maps.Clone(c.DocsMap)
	return c
}

func joinURL(base, path string) string {
	switch {
	case base == "":
		return path
	case path == "":
		return base
	case strings.HasPrefix(path, "#"):
		return base + path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
