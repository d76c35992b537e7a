// Package cli implements the depscout command-line interface.
//
// This package provides commands for checking requirements files for
// dependency conflicts, rendering dependency graphs, serving the web
// UI, and managing the registry metadata cache. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/pkg/analysis"
	"github.com/depscout/depscout/pkg/buildinfo"
	"github.com/depscout/depscout/pkg/cache"
	"github.com/depscout/depscout/pkg/config"
	"github.com/depscout/depscout/pkg/registry"
)

// appName is the application name used for directories and display.
const appName = "depscout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "depscout",
		Short:        "Depscout checks Python requirements files for dependency conflicts",
		Long:         `Depscout analyzes requirements.txt files against the package index, flags missing packages, unknown versions, duplicate pins and violated dependency bounds, and proposes a corrected requirements list.`,
		Version: buildinfo.Version,
		// main prints errors itself, so cobra stays quiet; the
		// conflicts-found sentinel must not echo as "Error: ...".
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "bypass the metadata cache")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration honoring the --config flag.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// newEngine builds an analysis engine from the configuration: registry
// client, cache backend and in-process memoization.
func (c *CLI) newEngine(ctx context.Context, cfg *config.Config) (*analysis.Engine, error) {
	backend, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := registry.NewClient(backend,
		registry.WithBaseURL(cfg.Registry.BaseURL),
		registry.WithTimeout(cfg.Registry.Timeout.Std()),
		registry.WithCacheTTL(cfg.Cache.TTL.Std()),
	)
	return analysis.NewEngine(registry.NewMemo(client), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/depscout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
