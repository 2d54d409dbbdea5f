package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/config"
	"github.com/matzehuels/docsmith/pkg/corpus"
	pkgio "github.com/matzehuels/docsmith/pkg/io"
	"github.com/matzehuels/docsmith/pkg/pipeline"
	"github.com/matzehuels/docsmith/pkg/source/discover"
	"github.com/matzehuels/docsmith/pkg/source/manifest"
)

// watchDebounce coalesces bursts of file events, such as an editor saving
// several files.
const watchDebounce = 200 * time.Millisecond

func (c *CLI) watchCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Reprocess docs whenever source files change",
		Long: `Watch dir and reprocess incrementally on every change. Only the
declarations whose sources changed, and the ones including them, are
reprocessed. Each round lists the docs whose processed text changed.

With --write the changed files are rewritten in place.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), rootArg(args), write)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite changed files in place")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, root string, write bool) error {
	ws, err := c.openWorkspace(ctx, root)
	if err != nil {
		return err
	}
	defer ws.runner.Close()

	opts := c.options(ws)
	opts.Mode = pipeline.ModeInteractive
	ix, res, err := c.process(ctx, ws, opts)
	if err != nil {
		return err
	}
	printStats(res)
	printErrors(res.Errors)
	last := processedDocs(ix.All())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	dirs, err := watchDirs(ws.root, ws.cfg)
	if err != nil {
		return err
	}
	watched := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		watched[dir] = true
	}
	printInfo("Watching %d directories under %s", len(dirs), ws.root)

	// Files embedded with @includeFile may live outside the source
	// directories.
	embedded := map[string]bool{}
	trackEmbedded := func() {
		files := ws.store.Files()
		embedded = make(map[string]bool, len(files))
		for _, f := range files {
			embedded[f] = true
		}
		for _, dir := range unwatchedDirs(files, watched) {
			if err := watcher.Add(dir); err != nil {
				c.Logger.Warn("cannot watch included files", "dir", dir, "err", err)
				continue
			}
			watched[dir] = true
		}
	}
	trackEmbedded()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSourceEvent(evt) && !isEmbeddedEvent(evt, embedded) {
				continue
			}
			c.Logger.Debug("file changed", "path", evt.Name, "op", evt.Op.String())
			if evt.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					_ = watcher.Add(evt.Name)
				}
			}
			debounce = time.After(watchDebounce)
		case <-debounce:
			debounce = nil
			if err := ws.load(ctx, c.Logger); err != nil {
				printError("%s", err)
				continue
			}
			ix, res, err := c.process(ctx, ws, opts)
			if err != nil {
				printError("%s", err)
				continue
			}
			trackEmbedded()
			cur := processedDocs(ix.All())
			changed := changedDocs(last, cur)
			last = cur
			if len(changed) == 0 {
				printDetail("no doc changes")
				continue
			}
			printSuccess("%d docs changed", len(changed))
			for _, id := range changed {
				printFile(id)
			}
			printErrors(res.Errors)
			if write {
				files, err := pkgio.Rewrite(ws.root, ix, pkgio.RewriteOptions{})
				if err != nil {
					printError("%s", err)
					continue
				}
				for _, f := range files {
					printDetail("rewrote %s", f)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printWarning("watch error: %v", err)
		}
	}
}

// watchDirs returns the root and every directory holding a source file.
func watchDirs(root string, cfg *config.Config) ([]string, error) {
	files, err := discover.Files(root, discover.Options{
		Languages: cfg.LanguageList(),
		Exclude:   cfg.Exclude,
	})
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{root: true}
	dirs := []string{root}
	for _, f := range files {
		dir := filepath.Dir(filepath.Join(root, filepath.FromSlash(f.Path)))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}

// isSourceEvent reports whether evt can change the corpus.
func isSourceEvent(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(evt.Name)
	return discover.LanguageOf(name) != "" || manifest.IsManifest(name)
}

// isEmbeddedEvent reports whether evt changes a file embedded by a doc.
func isEmbeddedEvent(evt fsnotify.Event, embedded map[string]bool) bool {
	if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return embedded[filepath.Clean(evt.Name)]
}

// unwatchedDirs returns the sorted directories of files missing from
// watched.
func unwatchedDirs(files []string, watched map[string]bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if watched[dir] || seen[dir] {
			continue
		}
		seen[dir] = true
		out = append(out, dir)
	}
	slices.Sort(out)
	return out
}

// processedDocs maps IDs to processed docs.
func processedDocs(docs []*corpus.Documentable) map[string]string {
	out := make(map[string]string, len(docs))
	for _, d := range docs {
		out[d.ID] = string(d.Doc)
	}
	return out
}

// changedDocs returns the sorted IDs that are new in cur or whose doc
// differs from prev.
func changedDocs(prev, cur map[string]string) []string {
	var out []string
	for id, text := range cur {
		if old, ok := prev[id]; !ok || old != text {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
