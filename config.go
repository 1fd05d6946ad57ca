package jscore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the declarative form of the runtime options, as read from a
// YAML document:
//
//	lenient_assignment: false
//	gc:
//	  threshold: 4096
//	log:
//	  level: debug
type Config struct {
	LenientAssignment bool      `yaml:"lenient_assignment"`
	GC                GCConfig  `yaml:"gc"`
	Log               LogConfig `yaml:"log"`
}

type GCConfig struct {
	// Threshold is the allocation count that makes MaybeCollect run a
	// cycle. Zero disables it.
	Threshold int `yaml:"threshold"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ParseConfig decodes a YAML config. Unknown fields are an error. An empty
// document yields the zero Config.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and decodes the YAML config at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.GC.Threshold < 0 {
		return fmt.Errorf("config: gc.threshold must not be negative, got %d", c.GC.Threshold)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the configured level, info when unset.
func (c Config) LogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
}

// Options converts the config to runtime options. The logger is not part of
// it; callers build one from LogLevel and pass WithLogger themselves.
func (c Config) Options() []Option {
	return []Option{
		WithLenientAssignment(c.LenientAssignment),
		WithCollectThreshold(c.GC.Threshold),
	}
}
