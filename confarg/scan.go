package confarg

import "strings"

// Scanner primitives. Everything above the escape codec (the tokenizer, the
// word/keyword extractors, the matcher's keyword-shape test) leans on these
// boundary skippers, so they all share the same definition of "inside a
// quote" and "inside a comment".

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func xvalue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	}
	return -1
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return xvalue(ch) >= 0
}

func isAlnum(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// commentStart reports whether a // or /* comment opens at pos.
func commentStart(s string, pos int) bool {
	return s[pos] == '/' && pos < len(s)-1 && (s[pos+1] == '/' || s[pos+1] == '*')
}

// skipComment returns the index just past the comment opening at pos.
// An unterminated comment consumes the rest of the input; the returned index
// may exceed len(s) and must only be used for comparisons.
func skipComment(s string, pos int) int {
	if s[pos+1] == '/' {
		for pos += 2; pos < len(s)-1 && s[pos] != '\n' && s[pos] != '\r'; pos++ {
		}
		if pos < len(s)-1 && s[pos] == '\r' && s[pos+1] == '\n' {
			pos++
		}
		return pos + 1
	}
	// block comment
	for pos += 2; pos < len(s)-2 && (s[pos] != '*' || s[pos+1] != '/'); pos++ {
	}
	return pos + 2
}

// skipBackslashAngle returns the index just past the \<...> block opening at
// pos. The block is comment-aware: comments inside it are skipped wholesale,
// so a '>' inside a comment does not terminate it.
func skipBackslashAngle(s string, pos int) int {
	for pos += 2; pos < len(s); {
		if s[pos] == '>' {
			return pos + 1
		} else if commentStart(s, pos) {
			pos = skipComment(s, pos)
		} else {
			pos++
		}
	}
	return len(s)
}

// skipDoubleQuote returns the index just past the double-quoted run opening
// at pos. Backslash escapes are honored; \<...> blocks may span the quote.
func skipDoubleQuote(s string, pos int) int {
	for pos++; pos < len(s); {
		if pos < len(s)-1 && s[pos] == '\\' {
			if s[pos+1] == '<' {
				pos = skipBackslashAngle(s, pos)
			} else {
				pos += 2
			}
		} else if s[pos] == '"' {
			return pos + 1
		} else {
			pos++
		}
	}
	return len(s)
}

// skipSingleQuote returns the index just past the single-quoted run opening
// at pos. Single quotes protect everything verbatim.
func skipSingleQuote(s string, pos int) int {
	for pos++; pos < len(s); pos++ {
		if s[pos] == '\'' {
			return pos + 1
		}
	}
	return len(s)
}

// partialUncomment strips comments from s starting at index i, collapsing
// comment-separated fragments with a single space and trimming surrounding
// whitespace. Quoted runs and \<...> blocks pass through untouched. If
// stopComma is true, scanning stops at the first top-level comma; the second
// return value is its index (or where scanning ended).
func partialUncomment(s string, i int, stopComma bool) (string, int) {
	// skip leading spaces and comments
	for ; i < len(s); i++ {
		if commentStart(s, i) {
			i = skipComment(s, i) - 1
		} else if !isSpace(s[i]) {
			break
		}
	}
	if i > len(s) {
		i = len(s)
	}

	var sb strings.Builder
	left, right := i, i
	closed := false

	for i < len(s) {
		if isSpace(s[i]) {
			i++
		} else if commentStart(s, i) {
			i = skipComment(s, i)
			closed = true
		} else if s[i] == ',' && stopComma {
			break
		} else {
			if closed {
				sb.WriteString(s[left:right])
				sb.WriteByte(' ')
				left = i
				closed = false
			}
			switch s[i] {
			case '\'':
				i = skipSingleQuote(s, i)
			case '"':
				i = skipDoubleQuote(s, i)
			case '\\':
				if i < len(s)-1 && s[i+1] == '<' {
					i = skipBackslashAngle(s, i)
				} else {
					i++
				}
			default:
				i++
			}
			if i > len(s) {
				i = len(s)
			}
			right = i
		}
	}

	if sb.Len() == 0 {
		return s[left:right], i
	}
	sb.WriteString(s[left:right])
	return sb.String(), i
}

// Uncomment removes comments from a configuration string, preserving quoted
// text and joining comment-separated fragments with a single space.
func Uncomment(s string) string {
	out, _ := partialUncomment(s, 0, false)
	return out
}

// IsSpace reports whether s is empty or all whitespace.
func IsSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			return false
		}
	}
	return true
}

// IsWord reports whether s is a nonempty run of printable characters with no
// embedded whitespace, quotes, or commas.
func IsWord(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' || ch == '\'' || ch == ',' || ch <= 32 || ch >= 127 {
			return false
		}
	}
	return len(s) > 0
}

// EatSpace returns s with leading whitespace removed.
func EatSpace(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:]
}
