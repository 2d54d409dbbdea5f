// Package source loads a corpus of documentables from disk.
//
// A root is either a directory or a manifest file. Directories are walked
// with [discover.Files]; Go files are loaded as packages, Java and Kotlin
// files are parsed with tree-sitter:
//
//	docs, err := source.Load(ctx, "./src", source.Options{})
//	ix, err := corpus.NewIndex(docs)
package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/source/discover"
	"github.com/matzehuels/docsmith/pkg/source/golang"
	"github.com/matzehuels/docsmith/pkg/source/jvm"
	"github.com/matzehuels/docsmith/pkg/source/manifest"
)

// Options configures loading.
type Options struct {
	// Languages keeps only the listed languages. Empty keeps all.
	Languages []corpus.Language

	// Exclude holds gitignore-style patterns relative to the root.
	Exclude []string

	// Workers bounds concurrent tree-sitter parses. Zero uses 4.
	Workers int

	Logger *log.Logger
}

// Load loads the documentables under root, sorted by file then document
// position.
func Load(ctx context.Context, root string, opts Options) ([]*corpus.Documentable, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	start := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "source root %s", root)
		}
		return nil, err
	}
	if !info.IsDir() {
		if !manifest.IsManifest(root) {
			return nil, errors.New(errors.ErrCodeInvalidPath, "%s is neither a directory nor a manifest", root)
		}
		docs, err := manifest.Load(root)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded manifest", "path", root, "documentables", len(docs))
		return docs, nil
	}

	files, err := discover.Files(root, discover.Options{Languages: opts.Languages, Exclude: opts.Exclude})
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered files", "root", root, "files", len(files))

	var (
		goFiles  = make(map[string]bool)
		jvmFiles []discover.FileEntry
	)
	for _, f := range files {
		switch f.Language {
		case corpus.Go:
			abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(f.Path)))
			if err != nil {
				return nil, err
			}
			goFiles[abs] = true
		default:
			jvmFiles = append(jvmFiles, f)
		}
	}

	var (
		mu   sync.Mutex
		docs []*corpus.Documentable
	)
	g, gctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	g.SetLimit(workers)

	if len(goFiles) > 0 {
		g.Go(func() error {
			out, err := golang.Load(gctx, golang.Options{Dir: root, Files: goFiles})
			if err != nil {
				return errors.Wrap(errors.ErrCodeParse, err, "load go packages")
			}
			mu.Lock()
			docs = append(docs, out...)
			mu.Unlock()
			return nil
		})
	}
	for _, f := range jvmFiles {
		g.Go(func() error {
			src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
			if err != nil {
				return err
			}
			out, err := jvm.Parse(gctx, f.Language, f.Path, src)
			if err != nil {
				return errors.Wrap(errors.ErrCodeParse, err, "parse %s", f.Path)
			}
			mu.Lock()
			docs = append(docs, out...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(docs, func(a, b *corpus.Documentable) int {
		if c := strings.Compare(a.File, b.File); c != 0 {
			return c
		}
		return a.DocStart - b.DocStart
	})
	logger.Info("loaded corpus", "root", root, "documentables", len(docs), "duration", time.Since(start))
	return docs, nil
}
