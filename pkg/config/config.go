// Package config loads lexchunk configuration from file, environment and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides: LEXCHUNK_OUTPUT_PATH sets output.path.
const EnvPrefix = "LEXCHUNK"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
	logger    *slog.Logger
}

// NewManager creates a new config manager and loads initial config.
// An empty cfgFile searches ./lexchunk.yaml and $HOME/.lexchunk/.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
		logger:    slog.Default(),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	setDefaults(cm.v, DefaultConfig())

	// Environment variables with LEXCHUNK_ prefix
	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("lexchunk")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.lexchunk")
	}

	// Try to read config file (not required)
	if err := cm.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults registers every leaf key so that AutomaticEnv can see it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("profile", d.Profile)
	v.SetDefault("profile_dir", d.ProfileDir)
	v.SetDefault("input.dir", d.Input.Dir)
	v.SetDefault("input.pattern", d.Input.Pattern)
	v.SetDefault("input.encoding", d.Input.Encoding)
	v.SetDefault("input.raw_output", d.Input.RawOutput)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.manifest", d.Output.Manifest)
	v.SetDefault("output.passages", d.Output.Passages)
	v.SetDefault("output.passage_prefix", d.Output.PassagePrefix)
	v.SetDefault("chunking.keep_preamble", d.Chunking.KeepPreamble)
	v.SetDefault("chunking.workers", d.Chunking.Workers)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SetLogger sets the logger used for reload errors.
func (cm *Manager) SetLogger(logger *slog.Logger) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.logger = logger
}

// BindFlag overrides key with a command-line flag when the flag is set.
func (cm *Manager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for config key %s", key)
	}
	if err := cm.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind flag %s: %w", flag.Name, err)
	}
	return cm.Refresh()
}

// Refresh re-reads the merged viper state into the current config.
func (cm *Manager) Refresh() error {
	cfg, err := cm.load()
	if err != nil {
		return err
	}
	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// ConfigFile returns the path of the config file in use, or "".
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			cm.mu.RLock()
			logger := cm.logger
			cm.mu.RUnlock()
			logger.Error("config reload failed", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# lexchunk configuration
# Every key can be overridden from the environment, e.g. LEXCHUNK_OUTPUT_PATH=out.jsonl
# profile: ko-statute, en-statute, a profile_id from profile_dir, or auto

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
