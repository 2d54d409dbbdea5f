// Package doc models documentation comments as normalized text.
//
// # Overview
//
// A [Content] is the text of a doc comment with all comment syntax removed:
// no "/**" or "*/" markers, no leading asterisks, no "//" prefixes. Tag
// processors read and rewrite Content; [Render] turns it back into a comment
// in the syntax of the declaration's language.
//
// # Round Trip
//
// For any Content c and syntax s:
//
//	got, _ := doc.Parse(doc.Render(c, s, indent))
//	// got == c
//
// Parsing user-written comments normalizes CRLF line endings and strips the
// single space that conventionally follows a marker. Relative indentation
// inside the comment is preserved, so code samples survive unchanged.
//
// # Structured Tags
//
// [Content.Tags] splits the content into block tags such as "@param name
// desc" or "@return desc". Tags that carry a subject (param, property,
// throws, exception, sample, see, constructor) have it split off; every
// other tag has an empty subject. Tag descriptions are Content themselves,
// so tags nested in a tag body can be parsed again.
//
// # Links
//
// Kotlin and Go docs share the bracket link syntax "[Ref]" and
// "[text][Ref]". [ReplaceLinks] rewrites link targets so that included text
// stays resolvable from its new location. Escaped links ("[Ref\]") and
// markdown links ("[text](url)") are left alone.
package doc
