// Package discover finds the source files of a corpus.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/matzehuels/docsmith/pkg/corpus"
)

// FileEntry is a discovered source file.
type FileEntry struct {
	Path     string // Relative to the root
	Language corpus.Language
}

// Options restricts discovery.
type Options struct {
	// Languages keeps only files of the listed languages. Empty keeps all.
	Languages []corpus.Language

	// Exclude holds gitignore-style patterns matched against the
	// slash-separated path relative to the root.
	Exclude []string
}

var extensions = map[string]corpus.Language{
	".go":   corpus.Go,
	".java": corpus.Java,
	".kt":   corpus.Kotlin,
	".kts":  corpus.Kotlin,
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"testdata":     {},
	"build":        {},
	"out":          {},
	"target":       {},
	"dist":         {},
}

// LanguageOf returns the language of a file name, or "" if unsupported.
func LanguageOf(name string) corpus.Language {
	return extensions[filepath.Ext(name)]
}

// Files discovers source files under root, honoring .gitignore and the
// exclude patterns. Results are sorted by path.
func Files(root string, opts Options) ([]FileEntry, error) {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}
	var excluded *ignore.GitIgnore
	if len(opts.Exclude) > 0 {
		excluded = ignore.CompileIgnoreLines(opts.Exclude...)
	}

	var results []FileEntry
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if excluded != nil && excluded.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		lang := LanguageOf(name)
		if lang == "" {
			return nil
		}
		if len(opts.Languages) > 0 && !slices.Contains(opts.Languages, lang) {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if excluded != nil && excluded.MatchesPath(rel) {
			return nil
		}

		results = append(results, FileEntry{Path: rel, Language: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b FileEntry) int { return strings.Compare(a.Path, b.Path) })
	return results, nil
}

// gitLsFiles lists the files git tracks or would track under root. It
// returns nil when root is not a git work tree.
func gitLsFiles(root string) map[string]struct{} {
	info, err := os.Stat(filepath.Join(root, ".git"))
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
