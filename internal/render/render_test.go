package render

import (
	"strings"
	"testing"
)

func TestHighlight(t *testing.T) {
	out := string(Highlight(`const x = "<b>";`, "javascript"))

	if !strings.Contains(out, "<pre") {
		t.Errorf("expected a <pre> block, got %q", out)
	}
	if strings.Contains(out, "<b>") {
		t.Errorf("snippet text was not escaped: %q", out)
	}
	if !strings.Contains(out, "style=") {
		t.Errorf("expected inline styles, got %q", out)
	}
}

func TestHighlight_Empty(t *testing.T) {
	if out := Highlight("   ", ""); out != "" {
		t.Errorf("Highlight(blank) = %q, want empty", out)
	}
}

func TestHighlight_UnknownLanguageFallsBack(t *testing.T) {
	out := string(Highlight("print(1)", "no-such-language"))
	if !strings.Contains(out, "print") {
		t.Errorf("code missing from output: %q", out)
	}
}

func TestHighlightTerminal(t *testing.T) {
	out := HighlightTerminal("let a = 1", "javascript")
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", out)
	}
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		notWant string
	}{
		{"heading", "# Title", "<h1", ""},
		{"emphasis", "some *stress*", "<em>stress</em>", ""},
		{"raw html escaped", "<script>alert(1)</script>", "", "<script>"},
		{"javascript link stripped", "[x](javascript:alert(1))", "", "javascript:"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(Markdown(tt.input))
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("Markdown(%q) = %q, want it to contain %q", tt.input, out, tt.want)
			}
			if tt.notWant != "" && strings.Contains(out, tt.notWant) {
				t.Errorf("Markdown(%q) = %q, must not contain %q", tt.input, out, tt.notWant)
			}
		})
	}
}

func TestMarkdown_Empty(t *testing.T) {
	if out := Markdown("\n \n"); out != "" {
		t.Errorf("Markdown(blank) = %q, want empty", out)
	}
}
