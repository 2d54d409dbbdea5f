package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the snapshot and graph cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheLocation returns the directory of the file cache configured by cfg,
// or "" when cfg selects another backend.
func cacheLocation(cfg *config.Config) (string, error) {
	opts := cfg.CacheOptions()
	if opts.Backend != cache.BackendFile {
		return "", nil
	}
	if opts.Dir != "" {
		return opts.Dir, nil
	}
	return cache.DefaultDir()
}

// countEntries counts the files below dir.
func countEntries(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached snapshots and graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(".")
			if err != nil {
				return err
			}
			dir, err := cacheLocation(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			switch {
			case cfg.Cache.Backend == cache.BackendNone:
				printInfo("Caching is disabled")
				return nil
			case dir == "":
				printWarning("The %s backend expires entries by TTL and cannot be cleared from here", cfg.Cache.Backend)
				return nil
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count, _ := countEntries(dir)
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(".")
			if err != nil {
				return err
			}
			dir, err := cacheLocation(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if dir == "" {
				return fmt.Errorf("the %s backend has no cache directory", cfg.Cache.Backend)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(".")
			if err != nil {
				return err
			}
			printKeyValue("Backend", cfg.Cache.Backend)
			printKeyValue("TTL", cfg.Cache.TTL.String())
			switch cfg.Cache.Backend {
			case cache.BackendRedis:
				printKeyValue("Redis", cfg.Cache.RedisURL)
			case cache.BackendMongo:
				printKeyValue("MongoDB", cfg.Cache.MongoURI)
				printKeyValue("Database", cfg.Cache.MongoDatabase)
			case cache.BackendFile:
				dir, err := cacheLocation(cfg)
				if err != nil {
					return err
				}
				count, _ := countEntries(dir)
				printKeyValue("Directory", dir)
				printKeyValue("Entries", fmt.Sprint(count))
			}
			if cfg.Path != "" {
				printKeyValue("Config", cfg.Path)
			}
			return nil
		},
	}
}
