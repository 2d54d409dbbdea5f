package processor

import (
	"context"
	stderrors "errors"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/tags"
)

// ErrDeferred is returned by a tag handler that cannot resolve a tag yet.
// The region is kept and retried in the next round.
var ErrDeferred = stderrors.New("deferred")

// TagContext is what a tag handler sees for one region.
type TagContext struct {
	Run *Run
	// Index is the run's index filtered for this handler.
	Index  *corpus.Index
	Doc    *corpus.Documentable
	Tag    string
	Block  bool
	Logger *log.Logger
}

// TagHandler describes a processor that rewrites tag regions.
type TagHandler struct {
	Name string
	Tags []string

	// Sequential handlers resolve tags against other docs and run one doc at
	// a time in Sort order. Others run on a worker pool.
	Sequential bool

	// ProcessTag returns the replacement for one region. text is the region
	// without inline braces, starting at '@'.
	ProcessTag func(ctx context.Context, tc *TagContext, text string) (string, error)

	// FilterProcess selects the docs to process, FilterQuery the docs that
	// may be resolved. Nil accepts all.
	FilterProcess corpus.Filter
	FilterQuery   corpus.Filter

	// Sort orders the docs of a sequential handler.
	Sort func(run *Run, view *corpus.Index, docs []*corpus.Documentable) []*corpus.Documentable

	// OnProcessError builds the error reported when docs stop making
	// progress. stuck holds the docs that still carry supported tags.
	OnProcessError func(run *Run, stuck []*corpus.Documentable) error

	// Highlight overrides the default key highlighting of a region.
	Highlight func(c doc.Content, r tags.Region) []tags.Highlight

	Completions []CompletionInfo
}

// TagProcessor runs a TagHandler to a fixed point over a corpus.
type TagProcessor struct {
	h        TagHandler
	supports func(string) bool
}

// NewTagProcessor wraps h.
func NewTagProcessor(h TagHandler) *TagProcessor {
	return &TagProcessor{h: h, supports: tags.NameSet(h.Tags...)}
}

// Name returns the handler name.
func (p *TagProcessor) Name() string { return p.h.Name }

// Supports reports whether the handler provides tag.
func (p *TagProcessor) Supports(tag string) bool { return p.supports(tag) }

// Tags returns the tag names the handler provides.
func (p *TagProcessor) Tags() []string { return slices.Clone(p.h.Tags) }

// Sequential reports whether the handler runs one doc at a time.
func (p *TagProcessor) Sequential() bool { return p.h.Sequential }

// Completions returns the completion entries of the handler.
func (p *TagProcessor) Completions() []CompletionInfo { return slices.Clone(p.h.Completions) }

// HasTags reports whether c holds a tag of this handler. Parse errors count.
func (p *TagProcessor) HasTags(c doc.Content) bool { return tags.Has(c, p.supports) }

// Highlights describes every supported region of c.
func (p *TagProcessor) Highlights(c doc.Content) ([]tags.Highlight, error) {
	regions, err := tags.Find(c, p.supports)
	if err != nil {
		return nil, err
	}
	var out []tags.Highlight
	for _, r := range regions {
		if p.h.Highlight != nil {
			out = append(out, p.h.Highlight(c, r)...)
		} else {
			out = append(out, tags.Highlights(c, r, true, false)...)
		}
	}
	return out, nil
}

// Process rewrites every selected doc until no supported tag remains.
func (p *TagProcessor) Process(ctx context.Context, run *Run) error {
	view := run.Index.WithFilters(p.h.FilterProcess, p.h.FilterQuery)
	docs := view.ToProcess(func(d *corpus.Documentable) bool {
		return run.Selected(d) && p.HasTags(d.Doc)
	})
	if len(docs) == 0 {
		return nil
	}
	run.Logger.Debug("processing tags", "processor", p.h.Name, "documentables", len(docs), "sequential", p.h.Sequential)

	if p.h.Sequential {
		return p.processSequential(ctx, run, view, docs)
	}
	return p.processParallel(ctx, run, view, docs)
}

func (p *TagProcessor) processParallel(ctx context.Context, run *Run, view *corpus.Index, docs []*corpus.Documentable) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(run.Workers, 1))
	for _, d := range docs {
		g.Go(func() error {
			if err := p.fixedPoint(ctx, run, view, d); err != nil {
				if isCanceled(err) {
					return err
				}
				return run.Fail(d, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// fixedPoint processes one doc until no supported region remains.
func (p *TagProcessor) fixedPoint(ctx context.Context, run *Run, view *corpus.Index, d *corpus.Documentable) error {
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i >= run.Limit {
			return p.infiniteLoop(run, d)
		}
		changed, remaining, err := p.step(ctx, run, view, d)
		if err != nil {
			return err
		}
		if !remaining {
			return nil
		}
		if !changed {
			return p.infiniteLoop(run, d)
		}
	}
}

func (p *TagProcessor) processSequential(ctx context.Context, run *Run, view *corpus.Index, docs []*corpus.Documentable) error {
	if p.h.Sort != nil {
		docs = p.h.Sort(run, view, docs)
	}

	pending := docs
	for round := 0; len(pending) > 0; round++ {
		if round >= run.Limit {
			return p.stuck(run, pending)
		}
		progress := false
		var next []*corpus.Documentable
		for _, d := range pending {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, remaining, err := p.step(ctx, run, view, d)
			if err != nil {
				if isCanceled(err) {
					return err
				}
				if err := run.Fail(d, err); err != nil {
					return err
				}
				progress = true
				continue
			}
			if changed {
				progress = true
			}
			if remaining {
				next = append(next, d)
			}
		}
		if !progress && len(next) > 0 {
			return p.stuck(run, next)
		}
		pending = next
	}
	return nil
}

// stuck reports docs that cannot make progress.
func (p *TagProcessor) stuck(run *Run, docs []*corpus.Documentable) error {
	var err error
	if p.h.OnProcessError != nil {
		err = p.h.OnProcessError(run, docs)
	} else {
		err = errors.New(errors.ErrCodeCircularReference, "%s made no progress on %d documentables", p.h.Name, len(docs))
	}
	for _, d := range docs {
		if ferr := run.Fail(d, err); ferr != nil {
			return ferr
		}
	}
	return nil
}

func (p *TagProcessor) infiniteLoop(run *Run, d *corpus.Documentable) error {
	tag := p.h.Name
	if regions, err := tags.Find(d.Doc, p.supports); err == nil && len(regions) > 0 {
		tag = regions[0].Name
	}
	return errors.New(errors.ErrCodeInfiniteLoop,
		"possible infinite loop in %s while processing @%s (limit %d)", d.Path, tag, run.Limit)
}

// step rewrites the innermost supported inline regions, or the block
// regions once no inline region is left. It reports whether anything was
// replaced and whether supported regions were found.
func (p *TagProcessor) step(ctx context.Context, run *Run, view *corpus.Index, d *corpus.Documentable) (changed, remaining bool, err error) {
	regions, err := tags.Find(d.Doc, p.supports)
	if err != nil {
		return false, true, errors.Wrap(errors.ErrCodeParse, err, "%s", d.Path)
	}
	if len(regions) == 0 {
		return false, false, nil
	}

	targets := leaves(regions)
	if len(targets) == 0 {
		for _, r := range regions {
			if r.Block {
				targets = append(targets, r)
			}
		}
	}

	texts := make([]string, len(targets))
	for i := len(targets) - 1; i >= 0; i-- {
		r := targets[i]
		tc := &TagContext{
			Run:    run,
			Index:  view,
			Doc:    d,
			Tag:    r.Name,
			Block:  r.Block,
			Logger: run.Logger.With("processor", p.h.Name, "path", d.Path),
		}
		out, err := p.h.ProcessTag(ctx, tc, r.Inner(d.Doc))
		switch {
		case stderrors.Is(err, ErrDeferred):
			texts[i] = r.Text(d.Doc)
		case err != nil:
			return false, true, err
		default:
			texts[i] = out
			changed = true
		}
	}
	d.Doc = tags.Replace(d.Doc, targets, texts)
	return changed, true, nil
}

// leaves returns the inline regions that contain no other inline region.
func leaves(regions []tags.Region) []tags.Region {
	var out []tags.Region
	for i, r := range regions {
		if r.Block {
			continue
		}
		leaf := true
		for j, o := range regions {
			if i != j && !o.Block && r.Contains(o) {
				leaf = false
				break
			}
		}
		if leaf {
			out = append(out, r)
		}
	}
	return out
}

func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
