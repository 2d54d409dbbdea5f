// Package cli implements the docsmith command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/buildinfo"
	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/config"
	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/pipeline"
	"github.com/matzehuels/docsmith/pkg/snapshot"
	"github.com/matzehuels/docsmith/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "docsmith"

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

	// configPath overrides config discovery when set.
	configPath string
	noCache    bool
	refresh    bool
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
		Use:   appName,
		Short: "docsmith resolves documentation tags in doc comments",
		Long: `docsmith is a preprocessor for doc comments. It resolves @include,
@includeFile, @set/{@get}, @comment and @exportAsHtml tags across Go, Java and
Kotlin sources and writes the rewritten comments back to the files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: nearest "+config.FileName+")")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the snapshot cache")
	root.PersistentFlags().BoolVar(&c.refresh, "refresh", false, "ignore cached snapshots")

	// Register all subcommands
	root.AddCommand(c.processCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.highlightCommand())
	root.AddCommand(c.tagsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Workspace
// =============================================================================

// workspace is a loaded source tree with the config, runner and snapshot
// store that process it.
type workspace struct {
	root   string
	cfg    *config.Config
	runner *pipeline.Runner
	store  *snapshot.Store
	docs   []*corpus.Documentable
}

// loadConfig reads --config, or discovers the nearest config for root.
func (c *CLI) loadConfig(root string) (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	return config.Discover(root)
}

// openWorkspace loads the config and the documentables under root and opens
// the cache. Close the returned workspace's runner when done.
func (c *CLI) openWorkspace(ctx context.Context, root string) (*workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg, err := c.loadConfig(abs)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("using config", "path", cfg.Path)
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	ws := &workspace{
		root:   abs,
		cfg:    cfg,
		runner: runner,
		store:  snapshot.New(c.Logger),
	}
	if err := ws.load(ctx, c.Logger); err != nil {
		runner.Close()
		return nil, err
	}
	return ws, nil
}

// load (re)reads the documentables of the workspace.
func (ws *workspace) load(ctx context.Context, logger *log.Logger) error {
	docs, err := ws.read(ctx, logger)
	if err != nil {
		return err
	}
	ws.docs = docs
	return nil
}

// read loads the documentables under the root without keeping them.
func (ws *workspace) read(ctx context.Context, logger *log.Logger) ([]*corpus.Documentable, error) {
	opts := ws.cfg.SourceOptions()
	opts.Logger = logger
	docs, err := source.Load(ctx, ws.root, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ws.root, err)
	}
	return docs, nil
}

// index builds a fresh index over the loaded documentables.
func (ws *workspace) index() (*corpus.Index, error) {
	return corpus.NewIndex(ws.docs)
}

// options returns the run options of the config with CLI overrides.
func (c *CLI) options(ws *workspace) pipeline.Options {
	opts := ws.cfg.PipelineOptions()
	opts.Root = ws.root
	opts.Logger = c.Logger
	opts.Refresh = c.refresh
	return opts
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner on the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = cfg.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		if cfg.Cache.Backend == cache.BackendFile {
			c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}

// rootArg returns the source root argument, defaulting to ".".
func rootArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}
