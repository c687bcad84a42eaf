// Package config loads lexscope settings from defaults, an optional YAML
// file and LEXSCOPE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file looked up in the working directory.
const FileName = ".lexscope.yaml"

// Config is the complete lexscope configuration.
type Config struct {
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Scan        ScanConfig        `yaml:"scan" mapstructure:"scan"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics" mapstructure:"diagnostics"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "json" or "toon"
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// ScanConfig controls multi-file scans.
type ScanConfig struct {
	MaxFileSize int      `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes
	Workers     int      `yaml:"workers" mapstructure:"workers"`             // 0 = GOMAXPROCS
	MaxFiles    int      `yaml:"max_files" mapstructure:"max_files"`         // 0 = all
	Exclude     []string `yaml:"exclude" mapstructure:"exclude"`             // doublestar globs
}

// ServerConfig controls the HTTP transport.
type ServerConfig struct {
	Addr           string `yaml:"addr" mapstructure:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// CacheConfig controls result memoization.
type CacheConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"` // 0 disables
}

// DiagnosticsConfig controls advanced-mode diagnostics.
type DiagnosticsConfig struct {
	TreeSitter bool `yaml:"tree_sitter" mapstructure:"tree_sitter"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Output: OutputConfig{Format: "json"},
		Scan: ScanConfig{
			MaxFileSize: 1_000_000,
			Exclude:     []string{},
		},
		Server: ServerConfig{
			Addr:           ":8000",
			MaxUploadBytes: 5 << 20,
		},
		Cache: CacheConfig{Capacity: 1024},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads configuration with the following priority (highest first):
// LEXSCOPE_* environment variables, the config file, defaults. An empty
// path looks for FileName in dir; a missing default file is not an error.
func Load(dir, path string) (*Config, error) {
	return load(dir, path, true)
}

// ReadFile reads the config file at path over the defaults, ignoring the
// environment. A missing file yields the defaults.
func ReadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return load("", path, false)
}

func load(dir, path string, env bool) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(dir)
	}

	if env {
		v.SetEnvPrefix("LEXSCOPE")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Scan.Exclude == nil {
		cfg.Scan.Exclude = []string{}
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.pretty", d.Output.Pretty)
	v.SetDefault("scan.max_file_size", d.Scan.MaxFileSize)
	v.SetDefault("scan.workers", d.Scan.Workers)
	v.SetDefault("scan.max_files", d.Scan.MaxFiles)
	v.SetDefault("scan.exclude", d.Scan.Exclude)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("cache.capacity", d.Cache.Capacity)
	v.SetDefault("diagnostics.tree_sitter", d.Diagnostics.TreeSitter)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate checks value ranges and enumerations.
func Validate(cfg *Config) error {
	var errs []error
	switch cfg.Output.Format {
	case "json", "toon":
	default:
		errs = append(errs, fmt.Errorf("output.format must be json or toon, got %q", cfg.Output.Format))
	}
	if cfg.Scan.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("scan.max_file_size must be positive, got %d", cfg.Scan.MaxFileSize))
	}
	if cfg.Scan.Workers < 0 {
		errs = append(errs, fmt.Errorf("scan.workers must not be negative, got %d", cfg.Scan.Workers))
	}
	if cfg.Scan.MaxFiles < 0 {
		errs = append(errs, fmt.Errorf("scan.max_files must not be negative, got %d", cfg.Scan.MaxFiles))
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be positive, got %d", cfg.Server.MaxUploadBytes))
	}
	if cfg.Cache.Capacity < 0 {
		errs = append(errs, fmt.Errorf("cache.capacity must not be negative, got %d", cfg.Cache.Capacity))
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", name, err)
	}
	return l, nil
}

// NewLogger builds a text logger writing to w. verbose forces debug level.
func (c *Config) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil || verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
