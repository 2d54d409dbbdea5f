package processors

import (
	"context"

	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/processor"
	"github.com/matzehuels/docsmith/pkg/tags"
)

// CommentTag marks text that never reaches the output.
const CommentTag = "comment"

// Comment returns the processor removing "@comment" and "{@comment ...}".
func Comment() *processor.TagProcessor {
	return processor.NewTagProcessor(processor.TagHandler{
		Name: CommentTag,
		Tags: []string{CommentTag},
		ProcessTag: func(context.Context, *processor.TagContext, string) (string, error) {
			return "", nil
		},
		Highlight: func(_ doc.Content, r tags.Region) []tags.Highlight {
			return tags.CommentHighlight(r)
		},
		Completions: []processor.CompletionInfo{{
			Tag:                   CommentTag,
			BlockText:             "@" + CommentTag + " ",
			PresentableBlockText:  "@" + CommentTag + " TEXT",
			InlineText:            "{@" + CommentTag + " }",
			PresentableInlineText: "{@" + CommentTag + " TEXT}",
			MoveCaretOffsetInline: -1,
			TailText:              "Leave a comment that is removed from the output.",
		}},
	})
}
