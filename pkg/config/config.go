// Package config loads docsmith.toml.
//
// A config file sits at the root of a source tree or above it:
//
//	process_limit = 10000
//	workers = 8
//	processors = ["include", "arg", "removeEscapeChars"]
//	languages = ["kotlin", "java"]
//	exclude = ["**/generated/"]
//
//	[arguments]
//	"include.PRE_SORT" = true
//	"arg.LOG_NOT_FOUND" = false
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[server]
//	addr = "localhost:8484"
//
// Every key is optional; unknown keys are ignored.
package config

import (
	stderrors "errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/pipeline"
	"github.com/matzehuels/docsmith/pkg/source"
)

// FileName is the name of the config file.
const FileName = "docsmith.toml"

const (
	// DefaultAddr is the default listen address of the HTTP server.
	DefaultAddr = "localhost:8484"

	// DefaultCacheBackend is the default cache backend.
	DefaultCacheBackend = cache.BackendFile

	// DefaultMongoDatabase is the default MongoDB database name.
	DefaultMongoDatabase = "docsmith"
)

var validate = validator.New()

// Config is the content of docsmith.toml.
type Config struct {
	ProcessLimit int            `toml:"process_limit" validate:"gte=0"`
	Workers      int            `toml:"workers" validate:"gte=0,lte=1024"`
	Mode         string         `toml:"mode" validate:"omitempty,oneof=batch interactive"`
	Processors   []string       `toml:"processors" validate:"dive,required"`
	Languages    []string       `toml:"languages" validate:"dive,oneof=go java kotlin"`
	Exclude      []string       `toml:"exclude"`
	Arguments    map[string]any `toml:"arguments"`
	Cache        CacheConfig    `toml:"cache"`
	Server       ServerConfig   `toml:"server"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`

	validated bool
}

// CacheConfig selects the snapshot cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend" validate:"omitempty,oneof=file redis mongo none"`
	Dir           string        `toml:"dir"`
	RedisURL      string        `toml:"redis_url" validate:"required_if=Backend redis"`
	MongoURI      string        `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string        `toml:"mongo_database"`
	TTL           time.Duration `toml:"ttl" validate:"gte=0"`
}

// ServerConfig configures `docsmith serve`.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"omitempty,hostname_port"`
}

// Parse decodes a config from TOML.
func Parse(data []byte) (*Config, error) {
	var c Config
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	return &c, nil
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	if err := c.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Find returns the path of the nearest docsmith.toml in dir or one of its
// parents, or "" when there is none.
func Find(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	for {
		p := filepath.Join(abs, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return ""
		}
		abs = parent
	}
}

// Discover loads the nearest config for dir, or the defaults when there is
// none.
func Discover(dir string) (*Config, error) {
	if p := Find(dir); p != "" {
		return Load(p)
	}
	c := &Config{}
	if err := c.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return c, nil
}

// ValidateAndSetDefaults checks the config and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	if err := validate.Struct(c); err != nil {
		return validationError(err)
	}
	if err := pipeline.ValidateProcessors(c.Processors); err != nil {
		return err
	}
	if c.ProcessLimit == 0 {
		c.ProcessLimit = pipeline.DefaultLimit
	}
	if c.Mode == "" {
		c.Mode = pipeline.DefaultMode
	}
	if c.Arguments == nil {
		c.Arguments = map[string]any{}
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.MongoDatabase == "" {
		c.Cache.MongoDatabase = DefaultMongoDatabase
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = pipeline.DefaultSnapshotTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	c.validated = true
	return nil
}

func validationError(err error) error {
	var valErrs validator.ValidationErrors
	if !stderrors.As(err, &valErrs) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	msgs := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msgs = append(msgs, ve.Namespace()+": "+formatValidationError(ve))
	}
	return errors.New(errors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required", "required_if":
		return "required"
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "hostname_port":
		return "must be host:port"
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// LanguageList returns the configured languages.
func (c *Config) LanguageList() []corpus.Language {
	out := make([]corpus.Language, 0, len(c.Languages))
	for _, l := range c.Languages {
		out = append(out, corpus.Language(l))
	}
	return out
}

// PipelineOptions returns the run options described by the config.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Processors: c.Processors,
		Args:       maps.Clone(c.Arguments),
		Limit:      c.ProcessLimit,
		Workers:    c.Workers,
		Mode:       c.Mode,
	}
}

// SourceOptions returns the loader options described by the config.
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		Languages: c.LanguageList(),
		Exclude:   c.Exclude,
		Workers:   c.Workers,
	}
}

// CacheOptions returns the cache backend options described by the config.
// A relative cache dir is resolved against the config file.
func (c *Config) CacheOptions() cache.Options {
	dir := c.Cache.Dir
	if dir != "" && !filepath.IsAbs(dir) && c.Path != "" {
		dir = filepath.Join(filepath.Dir(c.Path), dir)
	}
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           dir,
		RedisURL:      c.Cache.RedisURL,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
		Prefix:        "docsmith:",
	}
}
