// Package highlight renders source text as ANSI-highlighted lines via Chroma.
package highlight

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// DetectLanguage returns the Chroma lexer name for path, lower-cased, or
// "text" when no lexer claims the file.
func DetectLanguage(path string) string {
	lex := lexers.Match(filepath.Base(path))
	if lex == nil {
		return "text"
	}
	return strings.ToLower(lex.Config().Name)
}

// Highlight returns text with ANSI colours for language in theme. bgHex
// ("#rrggbb") is re-applied after every reset so the pane background holds.
// Unknown languages come back unchanged.
func Highlight(text, language, theme, bgHex string) string {
	lex := lexers.Get(language)
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		log.Debug().Err(err).Str("language", language).Msg("tokenise failed")
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, styles.Get(theme), it); err != nil {
		return text
	}
	raw := strings.TrimRight(buf.String(), "\n")

	bg := bgSeq(bgHex)
	return bg + strings.ReplaceAll(raw, "\x1b[0m", "\x1b[0m"+bg)
}

func bgSeq(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return ""
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

// SplitLines splits a highlighted block into lines that each carry the SGR
// state left open by the lines before them.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	var open []string
	for i, line := range lines {
		if i > 0 && len(open) > 0 {
			lines[i] = strings.Join(open, "") + line
		}
		open = trackSGR(line, open)
	}
	return lines
}

// trackSGR appends the SGR sequences in line to open; a reset clears it.
func trackSGR(line string, open []string) []string {
	for i := 0; i < len(line); i++ {
		if line[i] != '\x1b' || i+1 >= len(line) || line[i+1] != '[' {
			continue
		}
		end := strings.IndexAny(line[i+2:], "m\x1b")
		if end < 0 || line[i+2+end] != 'm' {
			continue
		}
		end += i + 2
		switch line[i+2 : end] {
		case "", "0":
			open = open[:0]
		default:
			open = append(open, line[i:end+1])
		}
		i = end
	}
	return open
}

// Renderer highlights whole files for one theme and keeps recent results.
type Renderer struct {
	theme string
	bg    string
	cache *lru.Cache[uint64, []string]
}

// NewRenderer returns a renderer for theme keeping up to size files.
func NewRenderer(theme string, size int) (*Renderer, error) {
	cache, err := lru.New[uint64, []string](size)
	if err != nil {
		return nil, fmt.Errorf("highlight cache: %w", err)
	}
	return &Renderer{theme: theme, bg: ThemeBg(theme), cache: cache}, nil
}

// Theme returns the renderer's Chroma theme name.
func (r *Renderer) Theme() string { return r.theme }

// Lines highlights src as the language of path and splits it into lines.
func (r *Renderer) Lines(path, src string) []string {
	h := fnv.New64a()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(src))
	key := h.Sum64()

	if lines, ok := r.cache.Get(key); ok {
		return lines
	}
	lines := SplitLines(Highlight(src, DetectLanguage(path), r.theme, r.bg))
	r.cache.Add(key, lines)
	return lines
}

// Len returns the number of cached files.
func (r *Renderer) Len() int { return r.cache.Len() }
