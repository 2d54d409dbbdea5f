package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/pipeline"
)

const sample = `
process_limit = 500
workers = 2
processors = ["include", "arg", "removeEscapeChars"]
languages = ["kotlin", "java"]
exclude = ["**/generated/"]
unknown_key = "ignored"

[arguments]
"include.PRE_SORT" = false
"arg.LOG_NOT_FOUND" = true

[cache]
backend = "file"
dir = ".cache"
ttl = "72h"

[server]
addr = "0.0.0.0:9000"
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(writeConfig(t, dir, sample))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if c.ProcessLimit != 500 || c.Workers != 2 || c.Mode != pipeline.ModeBatch {
		t.Errorf("Load() = limit %d, workers %d, mode %q", c.ProcessLimit, c.Workers, c.Mode)
	}
	if c.Cache.TTL != 72*time.Hour || c.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Load() = ttl %v, addr %q", c.Cache.TTL, c.Server.Addr)
	}
	if got := c.LanguageList(); len(got) != 2 || got[0] != corpus.Kotlin {
		t.Errorf("LanguageList() = %v", got)
	}

	opts := c.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("PipelineOptions() invalid: %v", err)
	}
	if opts.Limit != 500 || len(opts.Processors) != 3 || opts.Args["include.PRE_SORT"] != false {
		t.Errorf("PipelineOptions() = %+v", opts)
	}

	co := c.CacheOptions()
	if co.Backend != cache.BackendFile || co.Dir != filepath.Join(dir, ".cache") {
		t.Errorf("CacheOptions() = %+v", co)
	}
}

func TestDefaults(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error: %v", err)
	}
	if err := c.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if c.ProcessLimit != pipeline.DefaultLimit || c.Cache.Backend != DefaultCacheBackend || c.Server.Addr != DefaultAddr {
		t.Errorf("defaults = %+v", c)
	}
	if c.Cache.MongoDatabase != DefaultMongoDatabase || c.Cache.TTL != pipeline.DefaultSnapshotTTL {
		t.Errorf("cache defaults = %+v", c.Cache)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative limit", "process_limit = -1", "ProcessLimit"},
		{"bad language", `languages = ["cobol"]`, "Languages"},
		{"bad backend", "[cache]\nbackend = \"s3\"", "Backend"},
		{"redis without url", "[cache]\nbackend = \"redis\"", "RedisURL"},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"", "MongoURI"},
		{"bad addr", "[server]\naddr = \"nowhere\"", "Addr"},
		{"bad mode", `mode = "eventually"`, "Mode"},
		{"unknown processor", `processors = ["include", "bogus"]`, "bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	if _, err := Parse([]byte("process_limit = ")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
	}
}

func TestFindAndDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, root, "workers = 3")

	if got := Find(nested); got != path {
		t.Errorf("Find() = %q, want %q", got, path)
	}
	c, err := Discover(nested)
	if err != nil || c.Workers != 3 {
		t.Errorf("Discover() = %+v, %v", c, err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), FileName)); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}
