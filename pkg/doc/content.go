package doc

import (
	"strings"
)

// Content is normalized doc comment text without comment markers.
type Content string

// Syntax is the comment syntax a Content is rendered with.
type Syntax int

const (
	// SyntaxNone is plain text without comment markers.
	SyntaxNone Syntax = iota
	// SyntaxBlock is the "/** ... */" syntax used by Kotlin and Java.
	SyntaxBlock
	// SyntaxLine is the "// ..." syntax used by Go.
	SyntaxLine
)

// String returns the content text.
func (c Content) String() string { return string(c) }

// IsBlank reports whether the content holds only whitespace.
func (c Content) IsBlank() bool { return strings.TrimSpace(string(c)) == "" }

// Lines splits the content into lines.
func (c Content) Lines() []string { return strings.Split(string(c), "\n") }

// Parse strips comment syntax from raw comment text and reports which syntax
// was found. Text that is not a comment is returned unchanged with
// SyntaxNone.
func Parse(raw string) (Content, Syntax) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	trimmed := strings.TrimLeft(raw, " \t\n")

	switch {
	case strings.HasPrefix(trimmed, "/*"):
		return parseBlock(strings.TrimRight(trimmed, " \t\n")), SyntaxBlock
	case strings.HasPrefix(trimmed, "//"):
		return parseLines(strings.TrimRight(trimmed, "\n")), SyntaxLine
	default:
		return Content(raw), SyntaxNone
	}
}

func parseBlock(s string) Content {
	body := strings.TrimPrefix(s, "/**")
	if len(body) == len(s) {
		body = strings.TrimPrefix(s, "/*")
	}
	body = strings.TrimSuffix(body, "*/")

	lines := strings.Split(body, "\n")
	if len(lines) == 1 {
		line := strings.TrimPrefix(lines[0], " ")
		line = strings.TrimSuffix(line, " ")
		if strings.TrimSpace(line) == "" {
			return ""
		}
		return Content(line)
	}

	first := lines[0]
	lines = lines[1:]
	var out []string
	if strings.TrimSpace(first) != "" {
		out = append(out, strings.TrimPrefix(first, " "))
	}

	last := lines[len(lines)-1]
	lines = lines[:len(lines)-1]
	for _, l := range lines {
		out = append(out, stripMarker(l, "*"))
	}
	if strings.TrimSpace(last) != "" {
		out = append(out, strings.TrimRight(stripMarker(last, "*"), " \t"))
	}
	return Content(strings.Join(out, "\n"))
}

func parseLines(s string) Content {
	lines := strings.Split(s, "\n")
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = stripMarker(l, "//")
	}
	return Content(strings.Join(out, "\n"))
}

// stripMarker removes leading whitespace, the marker and one following space.
func stripMarker(line, marker string) string {
	l := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(l, marker) {
		return l
	}
	l = strings.TrimPrefix(l, marker)
	return strings.TrimPrefix(l, " ")
}

// Render re-adds comment syntax to c. The first line is not indented;
// every following line is prefixed with indent so the result can be spliced
// at the original comment position.
func Render(c Content, syntax Syntax, indent string) string {
	lines := c.Lines()
	var b strings.Builder

	switch syntax {
	case SyntaxBlock:
		if c == "" {
			return "/** */"
		}
		b.WriteString("/**\n")
		for _, l := range lines {
			b.WriteString(indent)
			b.WriteString(" *")
			if l != "" {
				b.WriteString(" ")
				b.WriteString(l)
			}
			b.WriteString("\n")
		}
		b.WriteString(indent)
		b.WriteString(" */")
	case SyntaxLine:
		for i, l := range lines {
			if i > 0 {
				b.WriteString("\n")
				b.WriteString(indent)
			}
			b.WriteString("//")
			if l != "" {
				b.WriteString(" ")
				b.WriteString(l)
			}
		}
	default:
		return string(c)
	}
	return b.String()
}

// Indent prefixes every line of c with n spaces.
func Indent(c Content, n int) string {
	pad := strings.Repeat(" ", n)
	lines := c.Lines()
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

// TrimBlankEdges removes exactly one leading and one trailing newline, so
// that "/** Hello */" and a multi-line comment holding "Hello" include
// identically.
func TrimBlankEdges(c Content) Content {
	s := strings.TrimPrefix(string(c), "\n")
	return Content(strings.TrimSuffix(s, "\n"))
}

// ErrorBlock renders err as a fenced block that can replace a doc whose
// processing failed in interactive mode.
func ErrorBlock(err error) Content {
	return Content("```\n" + err.Error() + "\n```")
}

// trimIndent removes the common leading indentation of all non-blank lines
// and drops leading and trailing blank lines.
func trimIndent(s string) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	minIndent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = l[minIndent:]
	}
	return strings.Join(lines, "\n")
}
