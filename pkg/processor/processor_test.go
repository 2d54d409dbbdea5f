package processor

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/tags"
)

func mkDoc(id, path, content string) *corpus.Documentable {
	return &corpus.Documentable{
		ID:                     id,
		Path:                   path,
		Language:               corpus.Kotlin,
		SourceDoc:              doc.Content(content),
		Doc:                    doc.Content(content),
		SourceHasDocumentation: true,
	}
}

// upper replaces "@up text" with the upper-cased text.
func upper() *TagProcessor {
	return NewTagProcessor(TagHandler{
		Name: "upper",
		Tags: []string{"up"},
		ProcessTag: func(_ context.Context, _ *TagContext, text string) (string, error) {
			args, err := tags.Arguments(text, "up", 1)
			if err != nil {
				return "", err
			}
			return strings.ToUpper(args[0]), nil
		},
	})
}

// looping never converges.
func looping() *TagProcessor {
	return NewTagProcessor(TagHandler{
		Name: "loop",
		Tags: []string{"loop"},
		ProcessTag: func(context.Context, *TagContext, string) (string, error) {
			return "{@loop}", nil
		},
	})
}

// ref copies the doc of the referenced path, deferring while the target
// still holds ref tags.
func ref() *TagProcessor {
	var p *TagProcessor
	p = NewTagProcessor(TagHandler{
		Name:       "ref",
		Tags:       []string{"ref"},
		Sequential: true,
		ProcessTag: func(_ context.Context, tc *TagContext, text string) (string, error) {
			args, err := tags.Arguments(text, "ref", 1)
			if err != nil {
				return "", err
			}
			target := tc.Index.Query(tc.Doc, tags.DecodeTarget(args[0]), nil)
			if target == nil {
				return "", errors.New(errors.ErrCodeReferenceNotFound, "%s", args[0])
			}
			if p.HasTags(target.Doc) {
				return "", ErrDeferred
			}
			tc.Run.Refs.Add(tc.Doc.ID, target.ID)
			return string(target.Doc), nil
		},
	})
	return p
}

func TestTagProcessorFixedPoint(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "nothing here", "nothing here"},
		{"inline", "a {@up b} c", "a B c"},
		{"nested", "{@up x {@up y}}", "X Y"},
		{"block", "text\n@up shout", "text\nSHOUT"},
		{"block with inline", "@up a {@up b}", "A B"},
		{"other tags untouched", "{@other x} {@up y}", "{@other x} Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mkDoc("1", "a.A", tt.in)
			run := NewRun(corpus.MustIndex(d))
			run.Workers = 4
			if err := upper().Process(context.Background(), run); err != nil {
				t.Fatalf("Process() error: %v", err)
			}
			if got := string(d.Doc); got != tt.want {
				t.Errorf("Doc = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTagProcessorInfiniteLoop(t *testing.T) {
	d := mkDoc("1", "a.A", "{@loop}")
	run := NewRun(corpus.MustIndex(d))
	run.Limit = 5

	err := looping().Process(context.Background(), run)
	if !errors.Is(err, errors.ErrCodeInfiniteLoop) {
		t.Fatalf("Process() error = %v, want INFINITE_LOOP", err)
	}
	msg := errors.UserMessage(err)
	if !strings.Contains(msg, "a.A") || !strings.Contains(msg, "@loop") {
		t.Errorf("message %q should name the path and the tag", msg)
	}
}

func TestTagProcessorInteractiveIsolatesErrors(t *testing.T) {
	bad := mkDoc("1", "a.Bad", "{@loop}")
	good := mkDoc("2", "a.Good", "{@up fine}")
	run := NewRun(corpus.MustIndex(bad, good))
	run.Mode = Interactive
	run.Limit = 3

	pipe := NewPipeline(looping(), upper())
	if err := pipe.Run(context.Background(), run); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !run.Failed("1") {
		t.Error("Failed(1) = false, want true")
	}
	if !strings.HasPrefix(string(bad.Doc), "```") {
		t.Errorf("bad doc = %q, want an error block", bad.Doc)
	}
	if good.Doc != "FINE" {
		t.Errorf("good doc = %q, want %q", good.Doc, "FINE")
	}
}

func TestTagProcessorRecover(t *testing.T) {
	d := mkDoc("1", "a.A", "{@pair [unbalanced x}")
	p := NewTagProcessor(TagHandler{
		Name: "pair",
		Tags: []string{"pair"},
		ProcessTag: func(_ context.Context, _ *TagContext, text string) (string, error) {
			args, err := tags.Arguments(text, "pair", 2)
			if err != nil {
				return "", err
			}
			return strings.Join(args, "="), nil
		},
	})
	run := NewRun(corpus.MustIndex(d))
	run.Recover = func(_ *corpus.Documentable, err error) (doc.Content, bool) {
		return doc.Content("recovered"), errors.Is(err, errors.ErrCodeParse)
	}
	if err := p.Process(context.Background(), run); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if d.Doc != "recovered" {
		t.Errorf("Doc = %q, want %q", d.Doc, "recovered")
	}
}

func TestTagProcessorCapabilityIsFatal(t *testing.T) {
	d := mkDoc("1", "a.A", "@need")
	p := NewTagProcessor(TagHandler{
		Name: "need",
		Tags: []string{"need"},
		ProcessTag: func(_ context.Context, tc *TagContext, _ string) (string, error) {
			_, err := tc.Doc.RequireExtension("need")
			return "", err
		},
	})
	run := NewRun(corpus.MustIndex(d))
	run.Mode = Interactive
	err := p.Process(context.Background(), run)
	if !errors.Is(err, errors.ErrCodeCapability) {
		t.Fatalf("Process() error = %v, want CAPABILITY", err)
	}
}

func TestSequentialDeferral(t *testing.T) {
	a := mkDoc("a", "p.A", "{@ref B}")
	b := mkDoc("b", "p.B", "{@ref C}")
	c := mkDoc("c", "p.C", "leaf")
	run := NewRun(corpus.MustIndex(a, b, c))

	if err := ref().Process(context.Background(), run); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	for _, d := range []*corpus.Documentable{a, b} {
		if d.Doc != "leaf" {
			t.Errorf("%s = %q, want %q", d.Path, d.Doc, "leaf")
		}
	}
	if got := run.Refs.Of("a"); len(got) != 1 || got[0] != "b" {
		t.Errorf("Refs.Of(a) = %v, want [b]", got)
	}
	g := run.Refs.Graph(run.Index)
	if g.EdgeCount() != 2 {
		t.Errorf("Graph().EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestSequentialCycle(t *testing.T) {
	a := mkDoc("a", "p.A", "{@ref B}")
	b := mkDoc("b", "p.B", "{@ref A}")
	run := NewRun(corpus.MustIndex(a, b))

	err := ref().Process(context.Background(), run)
	if !errors.Is(err, errors.ErrCodeCircularReference) {
		t.Fatalf("Process() error = %v, want CIRCULAR_REFERENCE", err)
	}
}

func TestSequentialOnProcessError(t *testing.T) {
	a := mkDoc("a", "p.A", "{@ref B}")
	b := mkDoc("b", "p.B", "{@ref A}")
	run := NewRun(corpus.MustIndex(a, b))
	run.Mode = Interactive

	var stuck []string
	base := ref()
	h := base.h
	h.OnProcessError = func(_ *Run, docs []*corpus.Documentable) error {
		for _, d := range docs {
			stuck = append(stuck, d.Path)
		}
		return errors.New(errors.ErrCodeCircularReference, "cycle")
	}
	if err := NewTagProcessor(h).Process(context.Background(), run); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if strings.Join(stuck, ",") != "p.A,p.B" {
		t.Errorf("stuck = %v, want [p.A p.B]", stuck)
	}
	if len(run.Errors()) != 2 {
		t.Errorf("Errors() has %d entries, want 2", len(run.Errors()))
	}
}

func TestRunOnly(t *testing.T) {
	a := mkDoc("a", "p.A", "{@up a}")
	b := mkDoc("b", "p.B", "{@up b}")
	run := NewRun(corpus.MustIndex(a, b))
	run.Only = map[string]bool{"b": true}

	if err := upper().Process(context.Background(), run); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if a.Doc != "{@up a}" || b.Doc != "B" {
		t.Errorf("docs = %q, %q, want only b processed", a.Doc, b.Doc)
	}
}

func TestRunBool(t *testing.T) {
	run := NewRun(corpus.MustIndex())
	run.Args["yes"] = true
	run.Args["str"] = "false"
	run.Args["junk"] = "maybe"

	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"yes", false, true},
		{"str", true, false},
		{"junk", true, true},
		{"missing", false, false},
	}
	for _, tt := range tests {
		if got := run.Bool(tt.key, tt.def); got != tt.want {
			t.Errorf("Bool(%q, %v) = %v, want %v", tt.key, tt.def, got, tt.want)
		}
	}
}

func TestPipelineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run := NewRun(corpus.MustIndex(mkDoc("1", "a.A", "{@up x}")))
	if err := NewPipeline(upper()).Run(ctx, run); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestPipelineMetadata(t *testing.T) {
	up := upper()
	up.h.Completions = []CompletionInfo{Completion("up", "TEXT", "Upper-case TEXT.")}
	pipe := NewPipeline(up, looping())

	if got := strings.Join(pipe.Names(), ","); got != "upper,loop" {
		t.Errorf("Names() = %q, want %q", got, "upper,loop")
	}
	if !pipe.Supports("loop") || pipe.Supports("nope") {
		t.Error("Supports() does not match the declared tags")
	}
	hs := pipe.Highlights(doc.Content("{@up x}"))
	if len(hs) == 0 {
		t.Fatal("Highlights() returned nothing")
	}
	if hs[0].Tag != "up" {
		t.Errorf("Highlights()[0].Tag = %q, want %q", hs[0].Tag, "up")
	}
	cs := pipe.Completions()
	if len(cs) != 1 || cs[0].InlineText != "{@up []}" {
		t.Errorf("Completions() = %+v", cs)
	}
}
