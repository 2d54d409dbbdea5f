package tags

import (
	"strings"

	"github.com/matzehuels/docsmith/pkg/errors"
)

// Span is a half-open byte range relative to the text it was computed on.
type Span struct {
	Start int
	End   int
}

// Arguments splits the text of a tag into at most n arguments. text may be
// the inner text of an inline tag ("@name ...") or the braced form
// ("{@name ...}").
//
// Every argument but the last ends at the first whitespace outside of
// brackets and quotes. The last argument is the verbatim remainder after
// leading spaces and tabs, so a leading newline is kept and trailing
// content is never reformatted. Missing trailing arguments are omitted.
//
// An unbalanced bracket or quote in a non-final argument is a PARSE_ERROR.
// A tag name mismatch is an INTERNAL_ERROR.
func Arguments(text, tag string, n int) ([]string, error) {
	s, spans, err := argumentSpans(text, tag, n)
	if err != nil {
		return nil, err
	}
	args := make([]string, len(spans))
	for i, sp := range spans {
		args[i] = s[sp.Start:sp.End]
	}
	return args, nil
}

// argumentSpans returns the spans of each argument relative to the returned
// string, which is text without surrounding braces.
func argumentSpans(text, tag string, n int) (string, []Span, error) {
	s := text
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = s[1 : len(s)-1]
	}
	prefix := "@" + tag
	if !strings.HasPrefix(s, prefix) {
		return "", nil, errors.New(errors.ErrCodeInternal, "tag @%s expected in %q", tag, text)
	}
	pos := len(prefix)
	if pos < len(s) && !isSpace(s[pos]) {
		return "", nil, errors.New(errors.ErrCodeInternal, "tag @%s expected in %q", tag, text)
	}

	var spans []Span
	for len(spans) < n-1 {
		for pos < len(s) && isSpace(s[pos]) {
			pos++
		}
		if pos == len(s) {
			return s, spans, nil
		}
		end, err := scanArgument(s, pos)
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrCodeParse, err, "arguments of @%s", tag)
		}
		spans = append(spans, Span{pos, end})
		pos = end
	}

	if n > 0 {
		for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
			pos++
		}
		if pos < len(s) {
			spans = append(spans, Span{pos, len(s)})
		}
	}
	return s, spans, nil
}

var closers = map[byte]byte{'[': ']', '(': ')', '{': '}'}

// scanArgument returns the end offset of the argument starting at pos.
func scanArgument(s string, pos int) (int, error) {
	var stack []byte
	i := pos
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i += 2
			continue
		case c == '"' || c == '`':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return 0, errors.New(errors.ErrCodeParse, "unclosed %c at offset %d", c, i)
			}
			i += end + 2
			continue
		case closers[c] != 0:
			stack = append(stack, closers[c])
		case c == ']' || c == ')' || c == '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, errors.New(errors.ErrCodeParse, "unexpected %c at offset %d", c, i)
			}
			stack = stack[:len(stack)-1]
		case isSpace(c) && len(stack) == 0:
			return i, nil
		}
		i++
	}
	if len(stack) > 0 {
		return 0, errors.New(errors.ErrCodeParse, "missing %c", stack[len(stack)-1])
	}
	return i, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// DecodeTarget turns a reference argument such as "[a.b.Foo]" or
// "a.b.foo()" into a plain query.
func DecodeTarget(arg string) string {
	s := strings.TrimSpace(arg)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return strings.TrimSuffix(s, "()")
}

// DecodeFileTarget turns a file argument such as `("docs/a.md")` into a
// plain path.
func DecodeFileTarget(arg string) string {
	s := strings.TrimSpace(arg)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	for _, q := range []string{`"`, "'", "`"} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[1 : len(s)-1]
		}
	}
	return s
}
