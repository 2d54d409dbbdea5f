package processor

// CompletionInfo describes how an editor offers a tag for completion.
// Caret offsets are relative to the end of the inserted text.
type CompletionInfo struct {
	Tag                   string `json:"tag"`
	BlockText             string `json:"blockText,omitempty"`
	PresentableBlockText  string `json:"presentableBlockText,omitempty"`
	MoveCaretOffsetBlock  int    `json:"moveCaretOffsetBlock,omitempty"`
	InlineText            string `json:"inlineText,omitempty"`
	PresentableInlineText string `json:"presentableInlineText,omitempty"`
	MoveCaretOffsetInline int    `json:"moveCaretOffsetInline,omitempty"`
	TailText              string `json:"tailText,omitempty"`
}

// Completion builds the common completion entry for a tag taking one
// bracketed argument: "@tag []" and "{@tag []}" with the caret inside the
// brackets.
func Completion(tag, placeholder, tail string) CompletionInfo {
	return CompletionInfo{
		Tag:                   tag,
		BlockText:             "@" + tag + " []",
		PresentableBlockText:  "@" + tag + " [" + placeholder + "]",
		MoveCaretOffsetBlock:  -1,
		InlineText:            "{@" + tag + " []}",
		PresentableInlineText: "{@" + tag + " [" + placeholder + "]}",
		MoveCaretOffsetInline: -2,
		TailText:              tail,
	}
}
