// Package config loads swallow's settings from defaults, an optional YAML
// file and SWALLOW_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".swallow/config.yaml"

// EnvPrefix prefixes every environment override, e.g. SWALLOW_LOG_LEVEL.
const EnvPrefix = "SWALLOW"

// Config holds all settings.
type Config struct {
	// Workspace is the manifest path opened by commands.
	Workspace string           `mapstructure:"workspace"`
	LogLevel  string           `mapstructure:"log_level"`
	Asyncify  asyncify.Options `mapstructure:"asyncify"`
	Compile   CompileConfig    `mapstructure:"compile"`
	Tracing   TracingConfig    `mapstructure:"tracing"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
	Lock      LockConfig       `mapstructure:"lock"`
	Store     StoreConfig      `mapstructure:"store"`
}

// StoreConfig selects where manifests are read from and documents written to.
type StoreConfig struct {
	// Backend is "file" or "redis". The redis backend shares the lock's
	// connection.
	Backend string `mapstructure:"backend"`
	// SourceDir receives rendered documents for the file backend. Empty
	// means next to the manifest.
	SourceDir string        `mapstructure:"source_dir"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// CompileConfig controls project compilation before propagation.
type CompileConfig struct {
	Mode        string `mapstructure:"mode"`
	MaxParallel int    `mapstructure:"max_parallel"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Exporter is "stdout" or "otlp".
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// MetricsConfig configures the Prometheus push gateway. An empty PushGateway
// disables pushing.
type MetricsConfig struct {
	PushGateway string `mapstructure:"push_gateway"`
	Job         string `mapstructure:"job"`
}

// LockConfig configures the Redis commit lock. An empty Addr keeps the lock
// in process.
type LockConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Workspace: "workspace.yaml",
		LogLevel:  "info",
		Asyncify:  asyncify.DefaultOptions(),
		Compile:   CompileConfig{Mode: "sequential", MaxParallel: 4},
		Tracing:   TracingConfig{Exporter: "stdout"},
		Metrics:   MetricsConfig{Job: "swallow"},
		Lock:      LockConfig{Prefix: "swallow:", TTL: 30 * time.Second},
		Store:     StoreConfig{Backend: "file"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("workspace", d.Workspace)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("asyncify.suffix", d.Asyncify.Suffix)
	v.SetDefault("asyncify.rename", d.Asyncify.Rename)
	v.SetDefault("asyncify.task_type", d.Asyncify.TaskType)
	v.SetDefault("asyncify.awaitable_types", d.Asyncify.AwaitableTypes)
	v.SetDefault("asyncify.cancellation_types", d.Asyncify.CancellationTypes)
	v.SetDefault("compile.mode", d.Compile.Mode)
	v.SetDefault("compile.max_parallel", d.Compile.MaxParallel)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)
	v.SetDefault("metrics.push_gateway", d.Metrics.PushGateway)
	v.SetDefault("metrics.job", d.Metrics.Job)
	v.SetDefault("lock.addr", d.Lock.Addr)
	v.SetDefault("lock.password", d.Lock.Password)
	v.SetDefault("lock.db", d.Lock.DB)
	v.SetDefault("lock.prefix", d.Lock.Prefix)
	v.SetDefault("lock.ttl", d.Lock.TTL)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.source_dir", d.Store.SourceDir)
	v.SetDefault("store.ttl", d.Store.TTL)
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"workspace": "workspace",
	"log-level": "log_level",
	"parallel":  "compile.mode",
	"suffix":    "asyncify.suffix",
}

// Load reads configuration. An explicit file must exist; otherwise
// DefaultPath is used when present. Flags that were set on the command line
// take precedence over everything else.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			file = DefaultPath
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if flags != nil {
		applyFlags(&cfg, flags)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFlags(cfg *Config, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		switch key {
		case "workspace":
			cfg.Workspace = f.Value.String()
		case "log_level":
			cfg.LogLevel = f.Value.String()
		case "compile.mode":
			if f.Value.String() == "true" {
				cfg.Compile.Mode = "parallel"
			}
		case "asyncify.suffix":
			cfg.Asyncify.Suffix = f.Value.String()
		}
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Workspace == "" {
		errs = append(errs, errors.New("workspace is required"))
	}
	switch c.Compile.Mode {
	case "", "sequential", "parallel":
	default:
		errs = append(errs, fmt.Errorf("compile.mode: unknown mode %q", c.Compile.Mode))
	}
	if c.Compile.MaxParallel < 0 {
		errs = append(errs, fmt.Errorf("compile.max_parallel: must not be negative, got %d", c.Compile.MaxParallel))
	}
	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			errs = append(errs, fmt.Errorf("tracing.exporter: unknown exporter %q", c.Tracing.Exporter))
		}
	}
	if c.Lock.Addr != "" && c.Lock.TTL <= 0 {
		errs = append(errs, errors.New("lock.ttl: must be positive when a lock is configured"))
	}
	switch c.Store.Backend {
	case "", "file":
	case "redis":
		if c.Lock.Addr == "" {
			errs = append(errs, errors.New("store.backend: redis requires lock.addr"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	return errors.Join(errs...)
}
