// Package processors provides the built-in doc processors.
//
//   - include: "@include [path]" copies the doc of another documentable
//   - includeFile: "@includeFile (file)" copies a file
//   - arg: "@set KEY value" and "{@get KEY}" substitute values
//   - comment: "@comment" text is dropped
//   - exportAsHtml: "@exportAsHtmlStart" and "@exportAsHtmlEnd" mark a range
//   - removeEscapeChars: drops the backslash of escaped brackets and tags
//
// [Default] returns them in the order they are meant to run.
package processors

import (
	"slices"

	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/processor"
)

var registry = map[string]func() processor.Processor{
	IncludeTag:            func() processor.Processor { return Include() },
	IncludeFileTag:        func() processor.Processor { return IncludeFile() },
	ArgName:               Arg,
	CommentTag:            func() processor.Processor { return Comment() },
	ExportAsHtmlName:      func() processor.Processor { return ExportAsHtml() },
	RemoveEscapeCharsName: RemoveEscapeChars,
}

// DefaultNames lists the built-in processors in their default order.
var DefaultNames = []string{
	IncludeTag,
	IncludeFileTag,
	ArgName,
	CommentTag,
	ExportAsHtmlName,
	RemoveEscapeCharsName,
}

// Names returns the names of all built-in processors, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// New creates a fresh built-in processor by name.
func New(name string) (processor.Processor, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown processor %q (available: %v)", name, Names())
	}
	return f(), nil
}

// Pipeline builds a pipeline from processor names. Nil names select
// DefaultNames.
func Pipeline(names []string) (*processor.Pipeline, error) {
	if names == nil {
		names = DefaultNames
	}
	ps := make([]processor.Processor, 0, len(names))
	for _, n := range names {
		p, err := New(n)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return processor.NewPipeline(ps...), nil
}

// Default returns the pipeline of DefaultNames.
func Default() *processor.Pipeline {
	p, _ := Pipeline(nil)
	return p
}
