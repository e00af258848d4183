package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds lexchunk configuration.
// Stored at: ./lexchunk.yaml or $HOME/.lexchunk/lexchunk.yaml
type Config struct {
	// Profile is a structure profile ID, or "auto" to detect one from the input.
	Profile string `mapstructure:"profile" yaml:"profile"`
	// ProfileDir holds user profile YAML files loaded on top of the built-ins.
	ProfileDir string         `mapstructure:"profile_dir" yaml:"profile_dir"`
	Input      InputConfig    `mapstructure:"input" yaml:"input"`
	Output     OutputConfig   `mapstructure:"output" yaml:"output"`
	Chunking   ChunkingConfig `mapstructure:"chunking" yaml:"chunking"`
	Metrics    MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Log        LogConfig      `mapstructure:"log" yaml:"log"`
}

// InputConfig selects the raw text files.
type InputConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	Pattern  string `mapstructure:"pattern" yaml:"pattern"`   // doublestar glob, e.g. "**/*.txt"
	Encoding string `mapstructure:"encoding" yaml:"encoding"` // "utf-8", "euc-kr", "auto"
	// RawOutput, when set, receives the concatenated input text.
	RawOutput string `mapstructure:"raw_output" yaml:"raw_output"`
}

// OutputConfig controls where chunks are written.
type OutputConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Format   string `mapstructure:"format" yaml:"format"` // "json", "jsonl", "yaml"
	Manifest bool   `mapstructure:"manifest" yaml:"manifest"`
	// Passages, when set, is a JSONL file of prefixed passages for an embedder.
	Passages      string `mapstructure:"passages" yaml:"passages"`
	PassagePrefix string `mapstructure:"passage_prefix" yaml:"passage_prefix"`
}

// ChunkingConfig tunes the chunker.
type ChunkingConfig struct {
	KeepPreamble bool `mapstructure:"keep_preamble" yaml:"keep_preamble"`
	Workers      int  `mapstructure:"workers" yaml:"workers"`
}

// MetricsConfig configures the node_exporter textfile dump.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text", "json"
}

// ProfileAuto selects the profile by detection.
const ProfileAuto = "auto"

var (
	outputFormats = []string{"json", "jsonl", "yaml"}
	encodings     = []string{"utf-8", "euc-kr", "auto"}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
)

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Profile: "ko-statute",
		Input: InputConfig{
			Dir:       "data/raw",
			Pattern:   "*.txt",
			Encoding:  "auto",
			RawOutput: "data/intermediate/raw_text.txt",
		},
		Output: OutputConfig{
			Path:          "data/processed/chunks.json",
			Format:        "json",
			Manifest:      true,
			PassagePrefix: "passage: ",
		},
		Chunking: ChunkingConfig{
			Workers: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	var errs []error
	if c.Profile == "" {
		errs = append(errs, fmt.Errorf("profile is required"))
	}
	if c.Input.Dir == "" {
		errs = append(errs, fmt.Errorf("input.dir is required"))
	}
	if !oneOf(c.Input.Encoding, encodings) {
		errs = append(errs, fmt.Errorf("input.encoding must be one of %v, got %q", encodings, c.Input.Encoding))
	}
	if c.Output.Path == "" {
		errs = append(errs, fmt.Errorf("output.path is required"))
	}
	if !oneOf(c.Output.Format, outputFormats) {
		errs = append(errs, fmt.Errorf("output.format must be one of %v, got %q", outputFormats, c.Output.Format))
	}
	if c.Chunking.Workers < 0 {
		errs = append(errs, fmt.Errorf("chunking.workers must not be negative"))
	}
	if !oneOf(c.Log.Level, logLevels) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got %q", logLevels, c.Log.Level))
	}
	if !oneOf(c.Log.Format, logFormats) {
		errs = append(errs, fmt.Errorf("log.format must be one of %v, got %q", logFormats, c.Log.Format))
	}
	return errors.Join(errs...)
}

// AutoProfile reports whether the profile should be detected from input.
func (c *Config) AutoProfile() bool {
	return strings.EqualFold(c.Profile, ProfileAuto)
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return true
		}
	}
	return false
}
