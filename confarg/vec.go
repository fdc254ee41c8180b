package confarg

import "strings"

// SplitCommas splits a configuration string into its comma-separated
// arguments. Each argument comes back uncommented and whitespace-trimmed;
// quoted commas do not split. A trailing comma yields one extra empty
// argument; an empty (or all-comment) input yields zero arguments.
func SplitCommas(conf string) []string {
	if len(conf) == 0 {
		return nil
	}

	var args []string
	first := true
	// <= so a trailing comma contributes its empty argument
	for i := 0; i <= len(conf); {
		arg, next := partialUncomment(conf, i, true)
		i = next
		if arg != "" || i < len(conf) || !first {
			args = append(args, arg)
		}
		i++ // past the comma
		first = false
	}
	return args
}

// SplitSpaces splits a configuration string on whitespace. Quoted runs,
// \<...> blocks, and comments are opaque; commas have no meaning here.
func SplitSpaces(conf string) []string {
	var vec []string
	start := -1

	for i := 0; i < len(conf); i++ {
		switch conf[i] {
		case '/':
			if !commentStart(conf, i) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				vec = append(vec, conf[start:i])
			}
			i = skipComment(conf, i) - 1
			start = -1
		case '"':
			if start < 0 {
				start = i
			}
			i = skipDoubleQuote(conf, i) - 1
		case '\'':
			if start < 0 {
				start = i
			}
			i = skipSingleQuote(conf, i) - 1
		case '\\':
			if start < 0 {
				start = i
			}
			if i < len(conf)-1 && conf[i+1] == '<' {
				i = skipBackslashAngle(conf, i) - 1
			}
		case ' ', '\f', '\n', '\r', '\t', '\v':
			if start >= 0 {
				vec = append(vec, conf[start:i])
			}
			start = -1
		default:
			if start < 0 {
				start = i
			}
		}
	}

	if start >= 0 && start < len(conf) {
		vec = append(vec, conf[start:])
	}
	return vec
}

// JoinCommas concatenates arguments with ", ". This is plain concatenation,
// not a quoting-safe inverse of SplitCommas.
func JoinCommas(args []string) string {
	return strings.Join(args, ", ")
}

// JoinSpaces concatenates arguments with " "; same caveat as JoinCommas.
func JoinSpaces(args []string) string {
	return strings.Join(args, " ")
}

// stringToken returns the length of the leading string token of s: the run
// up to the first top-level whitespace, with quoted runs and \<...> blocks
// treated as opaque.
func stringToken(s string) int {
	i := 0
	for i < len(s) {
		switch s[i] {
		case ' ', '\f', '\n', '\r', '\t', '\v':
			return i
		case '"':
			i = skipDoubleQuote(s, i)
		case '\'':
			i = skipSingleQuote(s, i)
		case '\\':
			if i < len(s)-1 && s[i+1] == '<' {
				i = skipBackslashAngle(s, i)
			} else {
				i++
			}
		default:
			i++
		}
	}
	return len(s)
}

// ParseString parses s as a single (possibly quoted) string token covering
// the whole input and returns its unquoted value.
func ParseString(s string) (string, bool) {
	i := stringToken(s)
	if i == 0 || i != len(s) {
		return "", false
	}
	return Unquote(s), true
}

// ParseWord parses s as a single unquoted word: a string token whose value
// has no embedded whitespace, quotes, or commas.
func ParseWord(s string) (string, bool) {
	word, ok := ParseString(s)
	if !ok || !IsWord(word) {
		return "", false
	}
	return word, true
}

// keywordToken splits s into a leading keyword name and the remainder after
// it. Keyword names are runs of alphanumerics plus '_', '.' and ':'. ok is
// false if s does not begin with a keyword-shaped run.
func keywordToken(s string) (keyword, rest string, ok bool) {
	i := 0
loop:
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\f', '\n', '\r', '\t', '\v':
			break loop
		case '_', '.', ':':
			// allowed unquoted in keywords
		default:
			if !isAlnum(s[i]) {
				return "", "", false
			}
		}
	}
	if i == 0 {
		return "", "", false
	}
	keyword = s[:i]
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return keyword, s[i:], true
}
