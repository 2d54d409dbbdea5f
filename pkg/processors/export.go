package processors

import (
	"context"
	"strings"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/processor"
)

const (
	ExportAsHtmlName  = "exportAsHtml"
	ExportAsHtmlStart = "exportAsHtmlStart"
	ExportAsHtmlEnd   = "exportAsHtmlEnd"
)

// ExportAsHtml returns the processor recording the line range of a doc that
// is exported as HTML. Both tags are optional and removed; block tags keep
// the text after the tag name. The range is inclusive and counts lines of
// the doc before the tags are removed. Documentables without the extension
// capability fail with a CAPABILITY error.
func ExportAsHtml() *processor.TagProcessor {
	return processor.NewTagProcessor(processor.TagHandler{
		Name:       ExportAsHtmlName,
		Tags:       []string{ExportAsHtmlStart, ExportAsHtmlEnd},
		ProcessTag: exportRange,
		Completions: []processor.CompletionInfo{
			{
				Tag:                   ExportAsHtmlStart,
				InlineText:            "{@" + ExportAsHtmlStart + "}",
				PresentableInlineText: "{@" + ExportAsHtmlStart + "}",
				TailText:              "Set start of @ExportAsHtml range. Takes no arguments.",
			},
			{
				Tag:                   ExportAsHtmlEnd,
				InlineText:            "{@" + ExportAsHtmlEnd + "}",
				PresentableInlineText: "{@" + ExportAsHtmlEnd + "}",
				TailText:              "Set end of @ExportAsHtml range. Takes no arguments.",
			},
		},
	})
}

func exportRange(_ context.Context, tc *processor.TagContext, text string) (string, error) {
	ext, err := tc.Doc.RequireExtension(ExportAsHtmlName)
	if err != nil {
		return "", err
	}
	line := -1
	for i, l := range tc.Doc.Doc.Lines() {
		if strings.Contains(l, "@"+tc.Tag) {
			line = i
			break
		}
	}
	if ext.ExportRange == nil {
		ext.ExportRange = &corpus.LineRange{Start: -1, End: -1}
	}
	if tc.Tag == ExportAsHtmlStart {
		ext.ExportRange.Start = line
	} else {
		ext.ExportRange.End = line
	}

	if !tc.Block {
		return "", nil
	}
	return strings.TrimPrefix(strings.TrimLeft(text, " \t"), "@"+tc.Tag), nil
}
