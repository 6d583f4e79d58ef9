package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bnbsearch/pkg/buildinfo"
	"github.com/matzehuels/bnbsearch/pkg/cache"
	"github.com/matzehuels/bnbsearch/pkg/config"
	"github.com/matzehuels/bnbsearch/pkg/history"
	"github.com/matzehuels/bnbsearch/pkg/runner"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "bnbsearch"

	// configFile is looked up in the config directory when --config is unset.
	configFile = "config.toml"

	// historyFile holds file-backed run history in the data directory.
	historyFile = "history.jsonl"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is set by --config.
	ConfigPath string
	// NoCache is set by --no-cache.
	NoCache bool
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
		Short:        "bnbsearch solves knapsack problems by branch and bound",
		Long:         `bnbsearch runs a configurable branch-and-bound search over 0/1 knapsack instances, compares node orderers, and renders the explored search tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/bnbsearch/config.toml)")
	root.PersistentFlags().BoolVar(&c.NoCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.benchCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig reads --config, else the default config file if present,
// else the built-in defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.ConfigPath != "" {
		return config.Load(c.ConfigPath)
	}
	if dir, err := configDir(); err == nil {
		path := filepath.Join(dir, configFile)
		if _, err := os.Stat(path); err == nil {
			c.Logger.Debug("using config", "path", path)
			return config.Load(path)
		}
	}
	return config.Defaults(), nil
}

// newRunner creates a runner with the cache and history selected by cfg.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*runner.Runner, error) {
	ch, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := newHistory(ctx, cfg)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	r := runner.NewRunner(ch, keyer, store, c.loggerFor(ctx))
	r.TTL, _ = cfg.CacheTTL()
	r.MemoSize = cfg.Solver.MemoSize
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.NoCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   appName + ":",
		})
	case config.CacheNone:
		return cache.NewNullCache(), nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

func newHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case config.HistoryMongo:
		return history.NewMongoStore(ctx, cfg.History.MongoURI, cfg.History.Database)
	case config.HistoryNone:
		return history.NewMemoryStore(), nil
	}
	path := cfg.History.Path
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return history.NewMemoryStore(), nil
		}
		path = filepath.Join(dir, historyFile)
	}
	return history.NewFileStore(path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/bnbsearch/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configDir returns the config directory (~/.config/bnbsearch/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// dataDir returns the data directory (~/.local/share/bnbsearch/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
