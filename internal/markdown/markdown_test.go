// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"heading with id", "# Hello World", []string{"<h1", `id="hello-world"`, "Hello World</h1>"}},
		{"emphasis", "some **bold** text", []string{"<strong>bold</strong>"}},
		{"gfm table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
		{"strikethrough", "~~gone~~", []string{"<del>gone</del>"}},
		{"raw html", "<div class=\"note\">hi</div>", []string{`<div class="note">hi</div>`}},
		{"fenced code", "```go\nfunc main() {}\n```", []string{"<pre", "main"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestToHTMLEmpty(t *testing.T) {
	got, err := ToHTML("")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"blocks on lines", "# Title\n\nSome **bold** text.", "Title\nSome bold text."},
		{"link keeps label", "read [the docs](https://docs.example.test/guide) first", "read the docs first"},
		{"image dropped", "![diagram](arch.png) below", "below"},
		{"raw html dropped", "<div class=\"note\">hidden</div>\n\nshown", "shown"},
		{"code kept", "```go\nfunc main() {}\n```", "func main() {}"},
		{"list items", "- one\n- two", "one\ntwo"},
		{"soft break joins", "line one\nline two", "line one line two"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.source); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
