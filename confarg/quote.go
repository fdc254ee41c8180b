package confarg

import "strings"

// processBackslash decodes the backslash escape at s[i] into sb and returns
// the index just past it. Callers guarantee i < len(s)-1.
func processBackslash(s string, i int, sb *strings.Builder) int {
	switch s[i+1] {

	case '\r':
		// line continuation, optionally \r\n
		if i < len(s)-2 && s[i+2] == '\n' {
			return i + 3
		}
		return i + 2

	case '\n':
		return i + 2

	case 'a':
		sb.WriteByte('\a')
		return i + 2
	case 'b':
		sb.WriteByte('\b')
		return i + 2
	case 'f':
		sb.WriteByte('\f')
		return i + 2
	case 'n':
		sb.WriteByte('\n')
		return i + 2
	case 'r':
		sb.WriteByte('\r')
		return i + 2
	case 't':
		sb.WriteByte('\t')
		return i + 2
	case 'v':
		sb.WriteByte('\v')
		return i + 2

	case '0', '1', '2', '3', '4', '5', '6', '7':
		c, d := 0, 0
		for i++; i < len(s) && s[i] >= '0' && s[i] <= '7' && d < 3; i, d = i+1, d+1 {
			c = c*8 + int(s[i]-'0')
		}
		sb.WriteByte(byte(c))
		return i

	case 'x':
		c := 0
		i += 2
		for ; i < len(s) && isHexDigit(s[i]); i++ {
			c = c*16 + xvalue(s[i])
		}
		sb.WriteByte(byte(c))
		return i

	case '<':
		// \<...> encodes raw bytes as hex digit pairs; comments inside the
		// block are skipped and stray characters ignored
		c, d := 0, 0
		for i += 2; i < len(s); i++ {
			if s[i] == '>' {
				return i + 1
			} else if isHexDigit(s[i]) {
				c = c*16 + xvalue(s[i])
			} else if commentStart(s, i) {
				i = skipComment(s, i) - 1
				continue
			} else {
				continue
			}
			if d++; d == 2 {
				sb.WriteByte(byte(c))
				c, d = 0, 0
			}
		}
		return len(s)

	default:
		// covers \\ \' \" $ and any unrecognized escape
		sb.WriteByte(s[i+1])
		return i + 2
	}
}

// Unquote removes comments and quote markers from s and decodes backslash
// escapes. Single-quoted runs pass through verbatim; double-quoted runs have
// their escapes decoded; outside quotes only \<...> blocks are special.
func Unquote(in string) string {
	s, _ := partialUncomment(in, 0, false)

	var sb strings.Builder
	start := 0
	quote := byte(0)

	i := 0
	for ; i < len(s); i++ {
		switch s[i] {

		case '"', '\'':
			if quote == 0 {
				sb.WriteString(s[start:i])
				start = i + 1
				quote = s[i]
			} else if quote == s[i] {
				sb.WriteString(s[start:i])
				start = i + 1
				quote = 0
			}

		case '\\':
			if i < len(s)-1 && (quote == '"' || (quote == 0 && s[i+1] == '<')) {
				sb.WriteString(s[start:i])
				start = processBackslash(s, i, &sb)
				i = start - 1
			}
		}
	}

	if start == 0 {
		return s
	}
	sb.WriteString(s[start:i])
	return sb.String()
}

// Quote wraps s in double quotes, escaping so that Unquote(Quote(s)) == s
// for any byte string. Newlines become \n; see QuoteMultiline to keep them.
func Quote(s string) string {
	return quote(s, false)
}

// QuoteMultiline is Quote but leaves newline bytes unescaped.
func QuoteMultiline(s string) string {
	return quote(s, true)
}

func quote(s string, allowNewlines bool) string {
	if len(s) == 0 {
		return `""`
	}

	var sb strings.Builder
	start := 0
	sb.WriteByte('"')

	i := 0
	for ; i < len(s); i++ {
		switch s[i] {

		case '\\', '"', '$':
			sb.WriteString(s[start:i])
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
			start = i + 1

		case '\t':
			sb.WriteString(s[start:i])
			sb.WriteString(`\t`)
			start = i + 1

		case '\r':
			sb.WriteString(s[start:i])
			sb.WriteString(`\r`)
			start = i + 1

		case '\n':
			if !allowNewlines {
				sb.WriteString(s[start:i])
				sb.WriteString(`\n`)
				start = i + 1
			}

		default:
			if s[i] < 32 || s[i] >= 127 {
				u := s[i]
				sb.WriteString(s[start:i])
				sb.WriteByte('\\')
				sb.WriteByte('0' + (u >> 6))
				sb.WriteByte('0' + ((u >> 3) & 7))
				sb.WriteByte('0' + (u & 7))
				start = i + 1
			}
		}
	}

	sb.WriteString(s[start:i])
	sb.WriteByte('"')
	return sb.String()
}
