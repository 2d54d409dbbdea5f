package io

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
)

func TestWriteResults(t *testing.T) {
	ix := corpus.MustIndex(kotlinDocs("Rewritten.", "Member.\n@comment gone", "")...)
	errs := map[string]error{"c": errors.New(errors.ErrCodeReferenceNotFound, "Reference not found: %q.", "X")}

	var buf bytes.Buffer
	if err := WriteResults(&buf, ix, errs); err != nil {
		t.Fatalf("WriteResults() error: %v", err)
	}
	var got []Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("WriteResults() = %d results, want 3", len(got))
	}
	byID := map[string]Result{}
	for _, r := range got {
		byID[r.ID] = r
	}
	if r := byID["a"]; !r.Changed || r.Doc != "Rewritten." {
		t.Errorf("a = %+v", r)
	}
	if r := byID["b"]; r.Changed {
		t.Errorf("b = %+v, want unchanged", r)
	}
	if r := byID["c"]; r.Error != `Reference not found: "X".` {
		t.Errorf("c.Error = %q", r.Error)
	}
}
