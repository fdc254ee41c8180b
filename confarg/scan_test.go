package confarg

import "testing"

// ============================================================
// Comment Removal Tests
// ============================================================

func TestUncomment(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "RoundRobinSched", "RoundRobinSched"},
		{"interior_space_kept", "a b", "a b"},
		{"leading_trailing_trimmed", "  spaced  ", "spaced"},
		{"line_comment", "a // comment", "a"},
		{"line_comment_then_text", "a // x\nb", "a b"},
		{"block_comment_leading", "/* c */ x", "x"},
		{"block_comment_interior", "a /* c */ b", "a b"},
		{"block_comment_unterminated", "a /* never closes", "a"},
		{"only_comment", "/* c */", ""},
		{"single_quote_protects", "'// not comment'", "'// not comment'"},
		{"double_quote_protects", `"/* no */"`, `"/* no */"`},
		{"backslash_angle_protects", `\<2f 2f>`, `\<2f 2f>`},
		{"adjacent_fragments_one_space", "a/*x*/b", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Uncomment(tt.in); got != tt.expected {
				t.Errorf("Uncomment(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

// ============================================================
// Classification Tests
// ============================================================

func TestIsSpace(t *testing.T) {
	tests := []struct {
		in       string
		expected bool
	}{
		{"", true},
		{"   ", true},
		{" \t\r\n\v\f", true},
		{" x ", false},
		{"x", false},
	}

	for _, tt := range tests {
		if got := IsSpace(tt.in); got != tt.expected {
			t.Errorf("IsSpace(%q) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestIsWord(t *testing.T) {
	tests := []struct {
		in       string
		expected bool
	}{
		{"", false},
		{"hello", true},
		{"a-b_c.d", true},
		{"a b", false},
		{"a,b", false},
		{`a"b`, false},
		{"a'b", false},
		{"caf\xc3\xa9", false}, // bytes >= 127
	}

	for _, tt := range tests {
		if got := IsWord(tt.in); got != tt.expected {
			t.Errorf("IsWord(%q) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestEatSpace(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"", ""},
		{"  x", "x"},
		{"\t\n x y ", "x y "},
		{"x  ", "x  "},
	}

	for _, tt := range tests {
		if got := EatSpace(tt.in); got != tt.expected {
			t.Errorf("EatSpace(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}
