package tui

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// unifiedDiff returns the unified diff of a file between two contents, or
// "" when they are equal.
func unifiedDiff(name, before, after string) string {
	if before == after {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(name), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+name, "b/"+name, before, edits))
}

// diffLines colours a unified diff line by line.
func diffLines(st *Styles, diff string) []string {
	if diff == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			out[i] = st.Muted.Render(line)
		case strings.HasPrefix(line, "@@"):
			out[i] = st.DiffHunk.Render(line)
		case strings.HasPrefix(line, "+"):
			out[i] = st.DiffAdd.Render(line)
		case strings.HasPrefix(line, "-"):
			out[i] = st.DiffDel.Render(line)
		default:
			out[i] = st.Text.Render(line)
		}
	}
	return out
}
