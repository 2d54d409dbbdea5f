package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadJVM(t *testing.T) {
	root := t.TempDir()
	write(t, root, "src/Note.kt", "package p\n\n/** A note. */\nclass Note\n")
	write(t, root, "src/Use.java", "package p;\n\n/**\n * @include Note\n */\nclass Use {}\n")
	write(t, root, "skip/Skipped.kt", "package p\n\n/** skipped */\nclass Skipped\n")

	docs, err := Load(context.Background(), root, Options{Exclude: []string{"skip/"}})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Load() = %d documentables, want 2", len(docs))
	}
	if docs[0].File != "src/Note.kt" || docs[1].File != "src/Use.java" {
		t.Errorf("files = %q, %q", docs[0].File, docs[1].File)
	}
	ix, err := corpus.NewIndex(docs)
	if err != nil {
		t.Fatalf("NewIndex() error: %v", err)
	}
	if got := ix.ByPath("p.Note"); len(got) != 1 || got[0].Doc != "A note." {
		t.Errorf("ByPath(p.Note) = %v", got)
	}
}

func TestLoadLanguages(t *testing.T) {
	root := t.TempDir()
	write(t, root, "A.kt", "package p\n\n/** A. */\nclass A\n")
	write(t, root, "B.java", "package p;\n\n/** B. */\nclass B {}\n")

	docs, err := Load(context.Background(), root, Options{Languages: []corpus.Language{corpus.Java}})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(docs) != 1 || docs[0].Path != "p.B" {
		t.Errorf("Load(java) = %v, want only p.B", docs)
	}
}

func TestLoadManifest(t *testing.T) {
	root := t.TempDir()
	write(t, root, "corpus.yaml", "documentables:\n  - path: p.A\n    doc: docs\n")

	docs, err := Load(context.Background(), filepath.Join(root, "corpus.yaml"), Options{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(docs) != 1 || docs[0].Path != "p.A" {
		t.Errorf("Load(manifest) = %v", docs)
	}
}

func TestLoadErrors(t *testing.T) {
	root := t.TempDir()
	write(t, root, "notes.txt", "x")

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(root, "missing"), errors.ErrCodeFileNotFound},
		{"plain file", filepath.Join(root, "notes.txt"), errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(context.Background(), tt.path, Options{}); !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}
