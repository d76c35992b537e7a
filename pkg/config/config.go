// Package config loads the optional TOML configuration file. Every
// field has a working default, so running without a file is fully
// supported.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/depscout/depscout/pkg/errors"
)

// DefaultPath is where Load looks when no explicit path is given,
// relative to the user config directory.
const DefaultPath = "depscout/config.toml"

// Config is the full application configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Registry Registry `toml:"registry"`
	Cache    Cache    `toml:"cache"`
}

// Server configures the HTTP boundary.
type Server struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// Registry configures the package index client.
type Registry struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
}

// Cache configures the metadata cache backend. Backend selects between
// "file", "redis" and "none".
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: duration(10 * time.Second),
		},
		Registry: Registry{
			BaseURL: "https://pypi.org/pypi",
			Timeout: duration(10 * time.Second),
		},
		Cache: Cache{
			Backend:   "file",
			Dir:       defaultCacheDir(),
			TTL:       duration(24 * time.Hour),
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads the file at path and overlays it on the defaults. An empty
// path means the default location; a missing file at the default
// location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := os.UserConfigDir()
		if err != nil {
			cfg.applyEnv()
			return cfg, nil
		}
		path = filepath.Join(dir, DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment overrides. Only the listen address is
// overridable this way; everything else belongs in the file.
func (c *Config) applyEnv() {
	if addr := os.Getenv("DEPSCOUT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

func (c *Config) validate() error {
	if err := apperrors.ValidateURL(c.Registry.BaseURL); err != nil {
		return fmt.Errorf("registry base_url: %w", err)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".depscout-cache"
	}
	return filepath.Join(dir, "depscout")
}

// duration makes time.Duration usable in TOML as a string like "30s".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d duration) Std() time.Duration { return time.Duration(d) }
