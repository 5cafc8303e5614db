package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// ErrInvalidLogLevel is returned for a log level outside none, info and debug.
var ErrInvalidLogLevel = errors.New("invalid log level")

// LogLevel controls the diagnostics the pass prints for each processed class.
type LogLevel string

const (
	// LogNone prints nothing.
	LogNone LogLevel = "none"
	// LogInfo prints one line per class with the discovered constructor types.
	LogInfo LogLevel = "info"
	// LogDebug additionally prints the rendered class after the pass.
	LogDebug LogLevel = "debug"
)

// ParseLogLevel parses a level name case-insensitively. The empty string is none.
func ParseLogLevel(s string) (LogLevel, error) {
	// A Caser is stateful, so each call folds with its own.
	switch LogLevel(cases.Fold().String(strings.TrimSpace(s))) {
	case "", LogNone:
		return LogNone, nil
	case LogInfo:
		return LogInfo, nil
	case LogDebug:
		return LogDebug, nil
	}
	return "", fmt.Errorf("%w %q: must be none, info or debug", ErrInvalidLogLevel, s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LogLevel) UnmarshalText(text []byte) error {
	level, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l LogLevel) MarshalText() ([]byte, error) {
	if l == "" {
		return []byte(LogNone), nil
	}
	return []byte(l), nil
}

// Enabled reports whether the level prints anything.
func (l LogLevel) Enabled() bool {
	return l == LogInfo || l == LogDebug
}

// Config is the pass configuration. It is read once and never mutated
// afterwards, so a single value can be shared by every pass.
type Config struct {
	Log LogLevel `json:"log,omitempty" yaml:"log,omitempty"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{Log: LogNone}
}

// Parse decodes a JSON configuration such as `{"log":"info"}`. Unknown keys are
// rejected. Empty input yields the default configuration.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg, json.RejectUnknownMembers(true)); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseYAML decodes a YAML configuration. Unknown keys are rejected. Empty
// input yields the default configuration.
func ParseYAML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a configuration file from disk. The format follows the extension:
// .yaml and .yml are YAML, anything else is JSON.
func Load(path string) (*Config, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS is Load over an arbitrary filesystem.
func LoadFS(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	default:
		cfg, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return &cfg, nil
}

// FileNames lists the configuration files Discover looks for, in priority order.
var FileNames = []string{
	"ctormeta.config.json",
	"ctormeta.config.yaml",
	"ctormeta.config.yml",
}

// Discover returns the first configuration file found in dir, or "".
func Discover(fs afero.Fs, dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if ok, _ := afero.Exists(fs, p); ok {
			return p
		}
	}
	return ""
}

// Validate checks the config for logical errors and normalizes the level
// name; a zero level becomes none.
func (c *Config) Validate() error {
	level, err := ParseLogLevel(string(c.Log))
	if err != nil {
		return err
	}
	c.Log = level
	return nil
}
