// Package manifest loads documentables from a YAML or JSON corpus file.
//
// A manifest describes declarations directly, for corpora that do not come
// from Go, Java or Kotlin sources, or for tests:
//
//	language: kotlin
//	documentables:
//	  - path: com.example.ApiNote
//	    package: com.example
//	    doc: |
//	      NOTE: The {@get operation} operation is part of the public API.
//	  - path: com.example.update
//	    package: com.example
//	    doc: |
//	      Updates a thing.
//	      @include [ApiNote]
//	      @set operation update
//
// JSON manifests use the same keys.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
)

// Extensions lists the file extensions recognized as manifests.
var Extensions = []string{".yaml", ".yml", ".json"}

// IsManifest reports whether path names a manifest file.
func IsManifest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

type file struct {
	Language      string  `yaml:"language"`
	Documentables []entry `yaml:"documentables"`
}

type entry struct {
	ID               string          `yaml:"id"`
	Path             string          `yaml:"path"`
	ExtensionPath    string          `yaml:"extensionPath"`
	Package          string          `yaml:"package"`
	Imports          []corpus.Import `yaml:"imports"`
	Language         string          `yaml:"language"`
	Kind             string          `yaml:"kind"`
	Doc              string          `yaml:"doc"`
	HasDocumentation *bool           `yaml:"hasDocumentation"`
	TypeAlias        bool            `yaml:"typeAlias"`
	Extension        *bool           `yaml:"extension"`
}

// Load reads the manifest at path.
func Load(path string) ([]*corpus.Documentable, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Read(f, path)
}

// Read decodes a manifest. name identifies the manifest in generated IDs and
// error messages.
func Read(r io.Reader, name string) ([]*corpus.Documentable, error) {
	var m file
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode manifest %s", name)
	}

	fallback := corpus.Kotlin
	if m.Language != "" {
		l, err := corpus.ParseLanguage(m.Language)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", name, err)
		}
		fallback = l
	}

	ordinals := make(map[string]int)
	docs := make([]*corpus.Documentable, 0, len(m.Documentables))
	for i, e := range m.Documentables {
		if e.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "manifest %s: documentable %d has no path", name, i)
		}
		d := &corpus.Documentable{
			ID:            e.ID,
			Path:          e.Path,
			ExtensionPath: e.ExtensionPath,
			Package:       e.Package,
			Imports:       e.Imports,
			Language:      fallback,
			Kind:          e.Kind,
			File:          name,
			SourceDoc:     doc.Content(strings.TrimSuffix(e.Doc, "\n")),
			IsTypeAlias:   e.TypeAlias,
		}
		if e.Language != "" {
			l, err := corpus.ParseLanguage(e.Language)
			if err != nil {
				return nil, fmt.Errorf("manifest %s: %s: %w", name, e.Path, err)
			}
			d.Language = l
		}
		if d.ID == "" {
			d.ID = fmt.Sprintf("%s#%s#%d", name, d.Path, ordinals[d.Path])
		}
		ordinals[d.Path]++

		d.Doc = d.SourceDoc
		d.SourceHasDocumentation = !d.SourceDoc.IsBlank()
		if e.HasDocumentation != nil {
			d.SourceHasDocumentation = *e.HasDocumentation
		}
		if e.Extension == nil || *e.Extension {
			d.Extension = &corpus.Extension{}
		}
		docs = append(docs, d)
	}
	return docs, nil
}
