// Package config loads treewalk settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file
// (~/.config/treewalk/config.toml unless --config is given), environment
// variables, command-line flags. Flags are applied by the CLI.
//
//	server = "http://localhost:5000"
//
//	[render]
//	width = 600
//	height = 500
//	nil_leaves = false
//
//	[animation]
//	interval = "1s"
//	palette = "default"
//
//	[cache]
//	backend = "file"
//	ttl = "24h"
//
//	[events]
//	nats_url = ""
//
//	[serve]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/treewalk/pkg/errors"
)

// Environment variables.
const (
	EnvServer   = "TREEWALK_SERVER"
	EnvNATSURL  = "TREEWALK_NATS_URL"
	EnvRedisURL = "TREEWALK_REDIS_URL"
)

// Config is the full configuration.
type Config struct {
	Server    string          `toml:"server"`
	Render    RenderConfig    `toml:"render"`
	Animation AnimationConfig `toml:"animation"`
	Cache     CacheConfig     `toml:"cache"`
	Events    EventsConfig    `toml:"events"`
	Serve     ServeConfig     `toml:"serve"`
}

// RenderConfig configures the layout engine.
type RenderConfig struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	Radius    float64 `toml:"radius"`
	NilLeaves bool    `toml:"nil_leaves"`
}

// AnimationConfig configures the path animator.
type AnimationConfig struct {
	Interval Duration `toml:"interval"`
	Palette  string   `toml:"palette"`
}

// CacheConfig selects the tree snapshot cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir,omitempty"`
	RedisURL string   `toml:"redis_url,omitempty"`
	TTL      Duration `toml:"ttl"`
}

// EventsConfig configures event publishing. An empty NATS URL disables it.
type EventsConfig struct {
	NATSURL string `toml:"nats_url"`
}

// ServeConfig configures the HTTP shell.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "1s" or "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: "http://localhost:5000",
		Render: RenderConfig{
			Width:  600,
			Height: 500,
			Radius: 20,
		},
		Animation: AnimationConfig{
			Interval: Duration{time.Second},
			Palette:  "default",
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration{24 * time.Hour},
		},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// DefaultPath returns ~/.config/treewalk/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "treewalk", "config.toml"), nil
}

// Load reads path over the defaults and applies the environment. A missing
// file is not an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !(optional && os.IsNotExist(err)) {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
			}
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvServer); v != "" {
		c.Server = v
	}
	if v := os.Getenv(EnvNATSURL); v != "" {
		c.Events.NATSURL = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		if c.Cache.Backend == "" || c.Cache.Backend == "file" {
			c.Cache.Backend = "redis"
		}
	}
}

// Validate checks the configuration for values the program cannot use.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.Server); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render frame must be positive, got %vx%v", c.Render.Width, c.Render.Height)
	}
	if c.Render.Radius <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render radius must be positive, got %v", c.Render.Radius)
	}
	if c.Animation.Interval.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "animation interval must be positive, got %s", c.Animation.Interval)
	}
	switch c.Animation.Palette {
	case "", "default", "restore":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown palette %q", c.Animation.Palette)
	}
	switch c.Cache.Backend {
	case "", "file", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// Save writes c to path, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
