package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
)

// Result is the JSON form of one processed documentable.
type Result struct {
	ID          string            `json:"id"`
	Path        string            `json:"path"`
	File        string            `json:"file,omitempty"`
	Language    corpus.Language   `json:"language"`
	Doc         string            `json:"doc"`
	Changed     bool              `json:"changed"`
	Error       string            `json:"error,omitempty"`
	ExportRange *corpus.LineRange `json:"exportRange,omitempty"`
}

// Results converts the documentables of ix. errs holds the isolated errors
// of the run, keyed by ID, and may be nil.
func Results(ix *corpus.Index, errs map[string]error) []Result {
	docs := ix.All()
	out := make([]Result, 0, len(docs))
	for _, d := range docs {
		r := Result{
			ID:       d.ID,
			Path:     d.Path,
			File:     d.File,
			Language: d.Language,
			Doc:      string(d.Doc),
			Changed:  d.Doc != d.SourceDoc,
		}
		if err := errs[d.ID]; err != nil {
			r.Error = errors.UserMessage(err)
		}
		if d.Extension != nil {
			r.ExportRange = d.Extension.ExportRange
		}
		out = append(out, r)
	}
	return out
}

// WriteResults writes the processed documentables of ix as an indented
// JSON array.
func WriteResults(w io.Writer, ix *corpus.Index, errs map[string]error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Results(ix, errs)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
