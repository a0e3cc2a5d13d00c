package highlight

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// ThemeBg returns the background of a Chroma theme as "#rrggbb", or "".
func ThemeBg(theme string) string {
	sty := styles.Get(theme)
	if sty == nil {
		return ""
	}
	bg := sty.Get(chroma.Background).Background
	if !bg.IsSet() {
		return ""
	}
	return bg.String()
}

// Palette is the UI chrome derived from a Chroma theme: a grey ramp from
// background to foreground plus the theme's most saturated colour.
type Palette struct {
	Bg     string
	Fg     string
	Border string // dividers at rest
	Dim    string // status bar text
	Muted  string // secondary text
	Accent string // live divider, selection
	Error  string
}

var fallbackPalette = Palette{
	Bg: "#000000", Fg: "#c8c8c8",
	Border: "#3a3a3a", Dim: "#505050", Muted: "#5a5a5a",
	Accent: "#00dfff", Error: "#932e2e",
}

// ThemePalette derives the palette for theme. The same theme always gives
// the same palette.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return fallbackPalette
	}
	base := sty.Get(chroma.Background)
	bg, fg := fallbackPalette.Bg, fallbackPalette.Fg
	if base.Background.IsSet() {
		bg = base.Background.String()
	}
	if base.Colour.IsSet() {
		fg = base.Colour.String()
	}

	errColour := lerp(bg, fg, 0.45)
	if e := sty.Get(chroma.Error); e.Colour.IsSet() {
		errColour = lerp(bg, e.Colour.String(), 0.45)
	}

	return Palette{
		Bg:     bg,
		Fg:     fg,
		Border: lerp(bg, fg, 0.25),
		Dim:    lerp(bg, fg, 0.35),
		Muted:  lerp(bg, fg, 0.45),
		Accent: accent(sty, fg),
		Error:  errColour,
	}
}

// accent picks the most saturated token colour.
func accent(sty *chroma.Style, fallback string) string {
	best, bestSat := fallback, 0.0
	for _, tt := range sty.Types() {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		hex := e.Colour.String()
		r, g, b, _ := parseHex(hex)
		hi, lo := max(r, g, b), min(r, g, b)
		if hi == 0 {
			continue
		}
		if sat := float64(hi-lo) / float64(hi); sat > bestSat {
			best, bestSat = hex, sat
		}
	}
	return best
}

func lerp(a, b string, t float64) string {
	ar, ag, ab, _ := parseHex(a)
	br, bg, bb, _ := parseHex(b)
	mix := func(x, y int) int {
		return max(0, min(255, int(float64(x)+float64(y-x)*t+0.5)))
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

func parseHex(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}
