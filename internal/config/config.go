// Package config loads the TOML configuration shared by the server and
// the CLI front ends. Missing keys fall back to the engine defaults, so
// a config file only needs to state what it changes.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/baditaflorin/go_text_compare/internal/adapters/normalizer"
	"github.com/baditaflorin/go_text_compare/internal/core/align"
	"github.com/baditaflorin/go_text_compare/internal/core/report"
	"github.com/baditaflorin/go_text_compare/internal/core/similarity"
	"github.com/baditaflorin/go_text_compare/internal/watch"
)

// Duration wraps time.Duration so config files can use "500ms" strings.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Config is the on-disk configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
	Watch   WatchConfig   `toml:"watch"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr              string   `toml:"addr"`
	RequestTimeout    Duration `toml:"request_timeout"`
	EnableCompression bool     `toml:"enable_compression"`
}

// EngineConfig configures the comparison engine.
type EngineConfig struct {
	Threshold       float64  `toml:"threshold"`
	Precision       int      `toml:"precision"`
	MaxReportChars  int      `toml:"max_report_chars"`
	ExactSizeLimit  int      `toml:"exact_size_limit"`
	FallbackTimeout Duration `toml:"fallback_timeout"`
	AutoJunk        bool     `toml:"auto_junk"`
	Normalizer      string   `toml:"normalizer"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	File       string `toml:"file"`
	JSONFormat bool   `toml:"json_format"`
	AddSource  bool   `toml:"add_source"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			RequestTimeout:    Duration{10 * time.Second},
			EnableCompression: true,
		},
		Engine: EngineConfig{
			Threshold:       similarity.DefaultConfig().Threshold,
			Precision:       similarity.DefaultConfig().Precision,
			MaxReportChars:  report.DefaultMaxChars,
			ExactSizeLimit:  align.DefaultExactSizeLimit,
			FallbackTimeout: Duration{align.DefaultFallbackTimeout},
			AutoJunk:        false,
			Normalizer:      normalizer.NameIdentity,
		},
		Logging: LoggingConfig{
			JSONFormat: false,
			AddSource:  true,
		},
		Watch: WatchConfig{
			Debounce: Duration{watch.DefaultDebounce},
		},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file
// keep their default values, unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration by delegating to the components the
// values are destined for.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server addr must not be empty")
	}
	if c.Server.RequestTimeout.Duration <= 0 {
		return errors.New("request timeout must be greater than 0")
	}

	simCfg := similarity.Config{
		Threshold: c.Engine.Threshold,
		Precision: c.Engine.Precision,
	}
	if err := simCfg.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	alignCfg := align.Config{
		ExactSizeLimit:  c.Engine.ExactSizeLimit,
		FallbackTimeout: c.Engine.FallbackTimeout.Duration,
		AutoJunk:        c.Engine.AutoJunk,
	}
	if err := alignCfg.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	repCfg := report.Config{
		MaxChars: c.Engine.MaxReportChars,
	}
	if err := repCfg.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if _, err := normalizer.ByName(c.Engine.Normalizer); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	watchCfg := watch.Config{
		Debounce: c.Watch.Debounce.Duration,
	}
	if err := watchCfg.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	return nil
}
