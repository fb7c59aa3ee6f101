// Package cli implements the badgeforge command-line interface.
//
// The main command is generate, which reads the entity and participant
// rosters and writes the two badge PDFs. Supporting commands manage the
// QR raster cache and serve generated sheets for browser preview.
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are built with charmbracelet/log and shared through the CLI struct.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"badgeforge/pkg/buildinfo"
	"badgeforge/pkg/cache"
	"badgeforge/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "badgeforge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Badgeforge generates printable QR badge sheets",
		Long:         `Badgeforge converts entity and participant rosters into printable badge sheets: one PDF packing all private delegates onto continuous pages and one PDF giving each delegation its own pages.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool, redisURL, cacheDirOverride string) (*pipeline.Runner, func(), error) {
	qrCache, err := newCache(ctx, noCache, redisURL, cacheDirOverride)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = qrCache.Close() }
	return pipeline.NewRunner(qrCache, c.Logger), cleanup, nil
}

// newCache picks the QR raster cache backend. File cache setup failures
// are not fatal: generation proceeds uncached.
func newCache(ctx context.Context, noCache bool, redisURL, dirOverride string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		// Redis must be reachable when explicitly configured.
		return cache.NewRedisCache(ctx, redisURL)
	}
	dir := dirOverride
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/badgeforge/).
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
