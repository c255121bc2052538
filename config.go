package regmerge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// Config is the file form of Options plus tool settings.
//
//	validate: true
//	merge_registers: true
//	merge_arrays: true
//	interleave: false
//	max_ifelse_nesting: 32
//	log_level: debug
type Config struct {
	Options `yaml:",inline"`

	// LogLevel is one of debug, info, warn or error. Empty disables logging.
	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultConfig returns DefaultOptions with logging disabled.
func DefaultConfig() Config {
	return Config{Options: DefaultOptions()}
}

// LoadConfig reads a YAML configuration. Keys missing from the document keep
// their DefaultConfig values; unknown keys are an error.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.MaxIfElseNesting < 0 {
		return Config{}, fmt.Errorf("config: max_ifelse_nesting must not be negative, got %d", cfg.MaxIfElseNesting)
	}
	if _, _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level parses LogLevel. The second result is false when logging is off.
func (c Config) Level() (slog.Level, bool, error) {
	if c.LogLevel == "" {
		return 0, false, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, false, fmt.Errorf("config: log_level: %w", err)
	}
	return level, true, nil
}
