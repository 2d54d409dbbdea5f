// Package processor runs doc processors over a corpus.
//
// A [Processor] rewrites the working docs of a [Run]. Most processors are
// built from a [TagHandler]: a record naming the tags it provides and a
// function that rewrites one tag region. [TagProcessor] drives such a
// handler to a fixed point, either concurrently per doc or, for handlers
// that resolve tags against other docs, one doc at a time in dependency
// order.
//
// A [Pipeline] runs processors in order and exposes the highlight and
// completion metadata editors need.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/observability"
	"github.com/matzehuels/docsmith/pkg/tags"
)

// Processor rewrites the docs of a run.
type Processor interface {
	Name() string
	Process(ctx context.Context, run *Run) error
}

// Highlighter is implemented by processors that can describe their tags.
type Highlighter interface {
	Highlights(c doc.Content) ([]tags.Highlight, error)
}

// Completer is implemented by processors that offer tag completions.
type Completer interface {
	Completions() []CompletionInfo
}

// TagSupporter is implemented by processors that provide tags.
type TagSupporter interface {
	Supports(tag string) bool
}

// Pipeline is an ordered list of processors.
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a pipeline running ps in order.
func NewPipeline(ps ...Processor) *Pipeline {
	return &Pipeline{processors: ps}
}

// Processors returns the processors in order.
func (p *Pipeline) Processors() []Processor { return p.processors }

// Names returns the processor names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// Run executes every processor in order. The first error stops the run.
func (p *Pipeline) Run(ctx context.Context, run *Run) error {
	hooks := observability.Processor()
	for _, proc := range p.processors {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		hooks.OnProcessStart(ctx, proc.Name())
		err := proc.Process(ctx, run)
		hooks.OnProcessComplete(ctx, proc.Name(), time.Since(start), err)
		if err != nil {
			return fmt.Errorf("%s: %w", proc.Name(), err)
		}
		run.Logger.Debug("processor done", "processor", proc.Name(), "duration", time.Since(start))
	}
	return nil
}

// Supports reports whether any processor provides tag.
func (p *Pipeline) Supports(tag string) bool {
	for _, proc := range p.processors {
		if s, ok := proc.(TagSupporter); ok && s.Supports(tag) {
			return true
		}
	}
	return false
}

// Highlights collects the highlights of every processor for c. Processors
// whose tags cannot be parsed in c are skipped.
func (p *Pipeline) Highlights(c doc.Content) []tags.Highlight {
	var out []tags.Highlight
	for _, proc := range p.processors {
		h, ok := proc.(Highlighter)
		if !ok {
			continue
		}
		hs, err := h.Highlights(c)
		if err != nil {
			continue
		}
		out = append(out, hs...)
	}
	return out
}

// Completions collects the completion entries of every processor.
func (p *Pipeline) Completions() []CompletionInfo {
	var out []CompletionInfo
	for _, proc := range p.processors {
		if c, ok := proc.(Completer); ok {
			out = append(out, c.Completions()...)
		}
	}
	return out
}
