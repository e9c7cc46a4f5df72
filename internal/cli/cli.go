package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pidforge/pkg/buildinfo"
	"github.com/matzehuels/pidforge/pkg/cache"
	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/config"
	"github.com/matzehuels/pidforge/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pidforge"

// Log levels used by Execute and the editor.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	refresh    bool
	cfg        *config.Config
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
		Short:        "pidforge builds P&ID diagrams from a component catalog",
		Long:         `pidforge places catalog components on a diagram, wires their ports, groups them and renders the result. It ships an interactive terminal editor, a renderer and the HTTP API used by the web editor.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/pidforge/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "bypass the catalog cache")
	root.PersistentFlags().BoolVar(&c.refresh, "refresh", false, "refetch a remote catalog even when cached")

	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.schematicCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration on first use.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debugf("Loaded config from %s", cfg.Path)
	}
	c.cfg = cfg
	return cfg, nil
}

// configLevel returns the log level named in the configuration, falling back
// to info when the configuration cannot be read.
func (c *CLI) configLevel() log.Level {
	cfg, err := c.loadConfig()
	if err != nil {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// =============================================================================
// Catalog, Cache and Store Factories
// =============================================================================

// catalogSource builds the configured definition source. The returned
// release func closes the cache backing a remote source.
func (c *CLI) catalogSource(ctx context.Context) (catalog.Source, func(), error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	switch {
	case cfg.Catalog.Source == "":
		c.Logger.Debug("Using built-in catalog")
		return catalog.DefaultSource(), func() {}, nil
	case cfg.Catalog.Remote():
		ch, err := c.newCache(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debugf("Using catalog API %s", cfg.Catalog.Source)
		src := catalog.NewHTTPSource(cfg.Catalog.Source, cache.Scoped(ch, appName+":"), nil).
			WithTTL(cfg.Catalog.CacheTTL).
			WithRefresh(c.refresh)
		return src, func() { ch.Close() }, nil
	default:
		c.Logger.Debugf("Using catalog file %s", cfg.Catalog.Source)
		return catalog.FileSource(cfg.Catalog.Source), func() {}, nil
	}
}

// loadCatalog fetches the definitions once.
func (c *CLI) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	src, release, err := c.catalogSource(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	prog := newProgress(c.Logger)
	defs, err := src.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	prog.done(pluralize(defs.Len(), "definition") + " loaded")
	return defs, nil
}

// newCache opens the cache for fetched catalogs.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.DialRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
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

// openStore opens the configured schematic store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	c.Logger.Debugf("Opening %s store", cfg.Store.Backend)
	return store.Open(ctx, cfg.StoreOptions())
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pidforge/).
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
