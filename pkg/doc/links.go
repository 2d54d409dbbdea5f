package doc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReplaceLinks rewrites the targets of bracket links in c.
//
// A shortcut link "[Ref]" whose text is a reference becomes "[Ref][New]"
// when resolve returns New != Ref. In a full link "[text][Ref]" only the
// target is rewritten. Escaped links ("[Ref\]"), markdown links
// ("[text](url)") and link texts that are not references are left alone.
// Backtick-quoted segments in a link text may contain any character,
// including brackets.
func ReplaceLinks(c Content, resolve func(ref string) string) Content {
	s := string(c)
	var b strings.Builder
	last := 0

	for i := 0; i < len(s); {
		if s[i] != '[' || isEscaped(s, i) {
			i++
			continue
		}

		end, restart := scanLinkText(s, i+1)
		switch {
		case restart >= 0:
			i = restart
			continue
		case end < 0:
			i++
			continue
		}

		next := end + 1
		if next < len(s) && s[next] == '[' {
			targetEnd := closingBracket(s, next+1)
			if targetEnd < 0 {
				i = next
				continue
			}
			target := s[next+1 : targetEnd]
			if IsReference(target) {
				if repl := resolve(target); repl != target {
					b.WriteString(s[last : next+1])
					b.WriteString(repl)
					last = targetEnd
				}
			}
			i = targetEnd + 1
			continue
		}
		if next < len(s) && s[next] == '(' {
			i = next
			continue
		}

		text := s[i+1 : end]
		if IsReference(text) {
			if repl := resolve(text); repl != text {
				b.WriteString(s[last : end+1])
				b.WriteString("[" + repl + "]")
				last = end + 1
			}
		}
		i = end + 1
	}

	if last == 0 {
		return c
	}
	b.WriteString(s[last:])
	return Content(b.String())
}

// scanLinkText scans a link text starting after its '['. It returns the
// index of the closing ']' or -1 when there is none. When another '[' opens
// before the text closes, restart holds its index and scanning should
// continue from there.
func scanLinkText(s string, start int) (end, restart int) {
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '`':
			k := strings.IndexByte(s[j+1:], '`')
			if k < 0 {
				return -1, -1
			}
			j += k + 1
		case '[':
			if isEscaped(s, j) {
				continue
			}
			return -1, j
		case ']':
			if isEscaped(s, j) {
				return -1, -1
			}
			return j, -1
		case '\n':
			return -1, -1
		}
	}
	return -1, -1
}

func closingBracket(s string, start int) int {
	for j := start; j < len(s); j++ {
		switch s[j] {
		case ']':
			if isEscaped(s, j) {
				return -1
			}
			return j
		case '[', '\n':
			return -1
		}
	}
	return -1
}

func isEscaped(s string, i int) bool { return i > 0 && s[i-1] == '\\' }

// IsReference reports whether s looks like a declaration reference: dot
// separated identifiers, where a segment may be backtick-quoted.
func IsReference(s string) bool {
	if s == "" {
		return false
	}
	for len(s) > 0 {
		if s[0] == '`' {
			k := strings.IndexByte(s[1:], '`')
			if k < 1 {
				return false
			}
			s = s[k+2:]
		} else {
			n := 0
			for n < len(s) {
				r, size := utf8.DecodeRuneInString(s[n:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				n += size
			}
			if n == 0 {
				return false
			}
			s = s[n:]
		}
		if s == "" {
			return true
		}
		if s[0] != '.' || len(s) == 1 {
			return false
		}
		s = s[1:]
	}
	return true
}
