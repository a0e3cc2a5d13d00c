package highlight

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"main.go":             "go",
		"internal/split/x.go": "go",
		"notes.zzunknown":     "text",
	}
	for path, want := range tests {
		if got := DetectLanguage(path); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestHighlightKeepsText(t *testing.T) {
	src := "package main\n\nfunc main() {}\n"
	out := Highlight(src, "go", "vulcan", "#101010")
	if got := ansi.Strip(out); got != strings.TrimRight(src, "\n") {
		t.Errorf("stripped output = %q", got)
	}
	if !strings.HasPrefix(out, "\x1b[48;2;16;16;16m") {
		t.Errorf("missing background prefix: %q", out[:min(len(out), 20)])
	}
}

func TestHighlightUnknownLanguage(t *testing.T) {
	if got := Highlight("plain", "no-such-language", "vulcan", ""); got != "plain" {
		t.Errorf("got %q", got)
	}
}

func TestSplitLinesCarriesOpenStyles(t *testing.T) {
	block := "\x1b[31mred\nstill red\x1b[0m\nplain"
	lines := SplitLines(block)
	want := []string{"\x1b[31mred", "\x1b[31mstill red\x1b[0m", "plain"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines", len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRendererCaches(t *testing.T) {
	r, err := NewRenderer("vulcan", 2)
	if err != nil {
		t.Fatal(err)
	}
	a := r.Lines("a.go", "package a\n")
	b := r.Lines("a.go", "package a\n")
	if len(a) == 0 || &a[0] != &b[0] {
		t.Error("second call should hit the cache")
	}
	r.Lines("b.go", "package b\n")
	r.Lines("c.go", "package c\n")
	if r.Len() != 2 {
		t.Errorf("cache len = %d, want 2", r.Len())
	}
}

func TestThemePalette(t *testing.T) {
	p := ThemePalette("vulcan")
	if p != ThemePalette("vulcan") {
		t.Error("palette is not deterministic")
	}
	for name, c := range map[string]string{"bg": p.Bg, "fg": p.Fg, "border": p.Border, "accent": p.Accent} {
		if _, _, _, ok := parseHex(c); !ok {
			t.Errorf("%s = %q is not #rrggbb", name, c)
		}
	}
}

func TestLerp(t *testing.T) {
	if got := lerp("#000000", "#ffffff", 0.5); got != "#808080" {
		t.Errorf("lerp = %q", got)
	}
	if got := lerp("#102030", "#102030", 0.7); got != "#102030" {
		t.Errorf("lerp = %q", got)
	}
}
