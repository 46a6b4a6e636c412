package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/loadtime/internal/progress"
	"github.com/psantana5/loadtime/internal/store"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "LOADTIME"

// Progress display modes.
const (
	ProgressAuto   = "auto"
	ProgressAlways = "always"
	ProgressNever  = "never"
)

// Config holds the resolved CLI settings.
type Config struct {
	CacheDirName   string        `mapstructure:"cache_dir_name" yaml:"cache_dir_name"`
	CacheDir       string        `mapstructure:"cache_dir" yaml:"cache_dir,omitempty"`
	ShowPercentage bool          `mapstructure:"show_percentage" yaml:"show_percentage"`
	UpdateInterval time.Duration `mapstructure:"update_interval" yaml:"update_interval"`
	Progress       string        `mapstructure:"progress" yaml:"progress"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogJSON        bool          `mapstructure:"log_json" yaml:"log_json"`
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("cache_dir_name", store.DefaultDirName)
	v.SetDefault("cache_dir", "")
	v.SetDefault("show_percentage", true)
	v.SetDefault("update_interval", progress.DefaultUpdateInterval)
	v.SetDefault("progress", ProgressAuto)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_json", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.CacheDirName == "" && c.CacheDir == "" {
		return fmt.Errorf("cache_dir_name must not be empty")
	}
	if strings.ContainsAny(c.CacheDirName, `/\`) {
		return fmt.Errorf("cache_dir_name %q must be a single directory name", c.CacheDirName)
	}
	if c.UpdateInterval < 10*time.Millisecond {
		return fmt.Errorf("update_interval %s is below 10ms", c.UpdateInterval)
	}
	switch c.Progress {
	case ProgressAuto, ProgressAlways, ProgressNever:
	default:
		return fmt.Errorf("progress must be one of auto, always, never (got %q)", c.Progress)
	}
	return nil
}

// StoreDir returns the directory records are kept in.
func (c *Config) StoreDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return store.DefaultDir(c.CacheDirName)
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
