package processors

import (
	"context"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/processor"
	"github.com/matzehuels/docsmith/pkg/tags"
)

const (
	ArgName = "arg"
	SetTag  = "set"
	GetTag  = "get"

	// LogNotFoundKey controls whether unresolved {@get} keys are logged.
	LogNotFoundKey = ArgName + ".LOG_NOT_FOUND"
)

// Arg returns the processor for "@set KEY value" and "{@get KEY default}".
//
// Every @set of a documentable is collected before any {@get} is replaced,
// so a value may be used above the line that sets it. Later @set tags win.
// Values are raw doc text; tags inside them are processed after
// substitution. A missing key is replaced with the default, or with nothing.
func Arg() processor.Processor {
	a := &arg{}
	a.tp = processor.NewTagProcessor(processor.TagHandler{
		Name:       ArgName,
		Tags:       []string{SetTag, GetTag},
		ProcessTag: a.processTag,
		Highlight: func(c doc.Content, r tags.Region) []tags.Highlight {
			return tags.Highlights(c, r, true, true)
		},
		Completions: []processor.CompletionInfo{
			{
				Tag:                  SetTag,
				BlockText:            "@" + SetTag + " ",
				PresentableBlockText: "@" + SetTag + " KEY VALUE",
				TailText:             "Set KEY to VALUE for {@get} in this doc. Accepts 2 arguments.",
			},
			{
				Tag:                   GetTag,
				InlineText:            "{@" + GetTag + " }",
				PresentableInlineText: "{@" + GetTag + " KEY DEFAULT}",
				MoveCaretOffsetInline: -1,
				TailText:              "Insert the value of KEY, or DEFAULT. Accepts 1 or 2 arguments.",
			},
		},
	})
	return a
}

type arg struct {
	tp *processor.TagProcessor
}

func (a *arg) Name() string                                       { return ArgName }
func (a *arg) Supports(tag string) bool                           { return a.tp.Supports(tag) }
func (a *arg) Completions() []processor.CompletionInfo            { return a.tp.Completions() }
func (a *arg) Highlights(c doc.Content) ([]tags.Highlight, error) { return a.tp.Highlights(c) }

// Process collects the @set values of every documentable, then substitutes.
func (a *arg) Process(ctx context.Context, run *processor.Run) error {
	setOnly := tags.NameSet(SetTag)
	for _, d := range run.Index.ToProcess(run.Selected) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := collect(run, d, setOnly); err != nil {
			if err := run.Fail(d, err); err != nil {
				return err
			}
		}
	}
	return a.tp.Process(ctx, run)
}

func collect(run *processor.Run, d *corpus.Documentable, setOnly func(string) bool) error {
	regions, err := tags.Find(d.Doc, setOnly)
	if err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "%s", d.Path)
	}
	for _, r := range regions {
		args, err := tags.Arguments(r.Inner(d.Doc), SetTag, 2)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return errors.New(errors.ErrCodeParse, "@%s in %s needs a key", SetTag, d.Path)
		}
		value := ""
		if len(args) > 1 {
			value = args[1]
		}
		run.SetValue(d.ID, argKey(args[0]), value)
	}
	return nil
}

func (a *arg) processTag(_ context.Context, tc *processor.TagContext, text string) (string, error) {
	if tc.Tag == SetTag {
		return "", nil
	}
	args, err := tags.Arguments(text, GetTag, 2)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", errors.New(errors.ErrCodeParse, "{@%s} needs a key", GetTag)
	}
	key := argKey(args[0])
	if v, ok := tc.Run.Value(tc.Doc.ID, key); ok {
		return v.(string), nil
	}
	if len(args) > 1 {
		return args[1], nil
	}
	if tc.Run.Bool(LogNotFoundKey, true) {
		tc.Logger.Warn("argument not found", "key", key)
	}
	return "", nil
}

// argKey normalizes a key so "[Key]" and "Key" are the same.
func argKey(s string) string { return tags.DecodeTarget(s) }
