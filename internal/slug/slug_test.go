package slug

import (
	"regexp"
	"strings"
	"testing"
)

// TestGenerate exercises the slug generator with typical titles, special
// characters and edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Hello World 2026", want: "hello-world-2026"},
		{name: "punctuation marks", input: "Hello, World! How's it going?", want: "hello-world-hows-it-going"},
		{name: "ampersand and at sign", input: "Rock & Roll @ the Arena", want: "rock-roll-the-arena"},
		{name: "tabs and newlines", input: "Tree\tof\nComments", want: "tree-of-comments"},
		{name: "leading and trailing hyphens", input: "--Go Tips--", want: "go-tips"},
		{name: "existing hyphens collapse", input: "pre---order  walk", want: "pre-order-walk"},
		{name: "accents folded", input: "Crème Brûlée, 2026!", want: "creme-brulee-2026"},
		{name: "ligature decomposed", input: "ﬁle Systems", want: "file-systems"},
		{name: "underscores kept inside", input: "snake_case tips", want: "snake_case-tips"},
		{name: "underscores trimmed at ends", input: "_private_", want: "private"},
		{name: "non-latin only", input: "Категории", want: ""},
		{name: "mixed scripts", input: "Go для всех", want: "go"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that slugging a slug returns it unchanged.
func TestGenerate_Idempotent(t *testing.T) {
	for _, in := range []string{"Hello World", "Nested Categories & Threads", "2026 roundup", "Ça va, Zoë?"} {
		once := Generate(in)
		if twice := Generate(once); twice != once {
			t.Errorf("Generate not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFrom(t *testing.T) {
	if got := From("Hello World"); got != "hello-world" {
		t.Errorf("From: got %q, want %q", got, "hello-world")
	}

	got := From("Привет")
	if !regexp.MustCompile(`^[0-9a-f]{8}$`).MatchString(got) {
		t.Errorf("From(non-latin) = %q, want 8 hex chars", got)
	}
}

func TestDisambiguate(t *testing.T) {
	a := Disambiguate("my-post")
	b := Disambiguate("my-post")

	if !strings.HasPrefix(a, "my-post-") || len(a) != len("my-post-")+suffixLen {
		t.Errorf("Disambiguate: unexpected shape %q", a)
	}
	if a == b {
		t.Errorf("two suffixes should differ, both %q", a)
	}
}
