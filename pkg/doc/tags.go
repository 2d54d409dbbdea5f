package doc

import (
	"strings"
	"unicode"
)

// Tag is a structured block tag such as "@param name The name.".
type Tag struct {
	Name        string
	Subject     string // empty for tags without a subject
	Description Content
}

// subjectTags are the tags whose first token names the documented element.
var subjectTags = map[string]bool{
	"param":       true,
	"property":    true,
	"throws":      true,
	"exception":   true,
	"sample":      true,
	"see":         true,
	"constructor": true,
}

// HasSubject reports whether tag name carries a subject token.
func HasSubject(name string) bool { return subjectTags[name] }

// Tags segments c into block tags in order of appearance. Text before the
// first tag is not part of any tag; see [Content.Description].
func (c Content) Tags() []Tag {
	lines := strings.Split(trimIndent(string(c)), "\n")

	var tags []Tag
	var cur *Tag
	var body []string
	var first string

	flush := func() {
		if cur == nil {
			return
		}
		desc := strings.TrimLeft(first, " \t")
		if rest := trimIndent(strings.Join(body, "\n")); rest != "" {
			if desc != "" {
				desc += "\n"
			}
			desc += rest
		}
		cur.Description = Content(strings.TrimRightFunc(desc, unicode.IsSpace))
		tags = append(tags, *cur)
		cur, body, first = nil, nil, ""
	}

	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		name, rest, ok := "", "", false
		if !inFence {
			name, rest, ok = BlockTagName(trimmed)
		}
		if !ok {
			if cur != nil {
				body = append(body, line)
			}
			continue
		}

		flush()
		cur = &Tag{Name: name}
		if HasSubject(name) {
			rest = strings.TrimLeft(rest, " \t")
			end := strings.IndexFunc(rest, unicode.IsSpace)
			if end < 0 {
				end = len(rest)
			}
			cur.Subject = rest[:end]
			rest = rest[end:]
		}
		first = rest
	}
	flush()
	return tags
}

// Description returns the text before the first block tag.
func (c Content) Description() Content {
	lines := c.Lines()
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if _, _, ok := BlockTagName(trimmed); ok && !inFence {
			return Content(strings.TrimRight(strings.Join(lines[:i], "\n"), "\n"))
		}
	}
	return c
}

// BlockTagName reports whether line starts with "@name" and returns the name
// and the remainder of the line after it.
func BlockTagName(line string) (name, rest string, ok bool) {
	if !strings.HasPrefix(line, "@") {
		return "", "", false
	}
	end := 1
	for end < len(line) && isTagNameByte(line[end], end == 1) {
		end++
	}
	if end == 1 {
		return "", "", false
	}
	return line[1:end], line[end:], true
}

func isTagNameByte(b byte, first bool) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '_':
		return true
	case b >= '0' && b <= '9':
		return !first
	}
	return false
}
