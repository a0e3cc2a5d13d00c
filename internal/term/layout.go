package term

import (
	"image"
	"slices"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// flatten splices fragment children into a single list.
func flatten(children []*Node) []*Node {
	var out []*Node
	for _, c := range children {
		switch {
		case c == nil:
		case c.fragment:
			out = append(out, flatten(c.Children)...)
		default:
			out = append(out, c)
		}
	}
	return out
}

// distribute assigns main-axis sizes. Fixed and extent-pinned children take
// their size, flexible children share what is left, and anything that does
// not fit is clipped from the end.
func distribute(kids []*Node, total int) []int {
	sizes := make([]int, len(kids))
	used, flex := 0, 0
	for i, k := range kids {
		switch {
		case k.Fixed > 0:
			sizes[i] = k.Fixed
		case k.Extent != nil:
			sizes[i] = max(0, k.Extent.size())
		default:
			sizes[i] = -1
			flex++
			continue
		}
		used += sizes[i]
	}

	free := max(0, total-used)
	if flex > 0 {
		share, extra := free/flex, free%flex
		for i := range sizes {
			if sizes[i] >= 0 {
				continue
			}
			sizes[i] = share
			if extra > 0 {
				sizes[i]++
				extra--
			}
		}
	}

	pos := 0
	for i := range sizes {
		sizes[i] = max(0, min(sizes[i], total-pos))
		pos += sizes[i]
	}
	return sizes
}

func childKey(k *Node, i int) string {
	if k.Key != "" {
		return k.Key
	}
	return strconv.Itoa(i)
}

func (n *Node) mainSize() int {
	if n.Axis == AxisVertical {
		return n.bounds.Dy()
	}
	return n.bounds.Dx()
}

// layout assigns bounds to n and its subtree and records every node in index
// under its key path.
func layout(n *Node, r image.Rectangle, path string, gen uint64, index map[string]*Node) {
	n.bounds = r
	n.path = path
	n.gen = gen
	n.parent = nil
	n.mounted = true
	index[path] = n
	if n.Ref != nil {
		n.Ref.node = n
	}

	n.kids = flatten(n.Children)
	if len(n.kids) == 0 {
		return
	}

	total := n.mainSize()
	sizes := distribute(n.kids, total)

	pos := 0
	for i, k := range n.kids {
		lo, hi := pos, pos+sizes[i]
		if n.Reverse {
			lo, hi = total-hi, total-lo
		}
		var cr image.Rectangle
		if n.Axis == AxisVertical {
			cr = image.Rect(r.Min.X, r.Min.Y+lo, r.Max.X, r.Min.Y+hi)
		} else {
			cr = image.Rect(r.Min.X+lo, r.Min.Y, r.Min.X+hi, r.Max.Y)
		}
		layout(k, cr, path+"/"+childKey(k, i), gen, index)
		k.parent = n
		pos += sizes[i]
	}
}

// paint renders n into a block of exactly Dy() lines of Dx() cells.
func paint(n *Node) string {
	w, h := n.bounds.Dx(), n.bounds.Dy()
	if w <= 0 || h <= 0 {
		return ""
	}
	if len(n.kids) == 0 {
		if n.Content == nil {
			return strings.Join(blank(w, h), "\n")
		}
		return strings.Join(fit(n.Content.View(w, h), w, h), "\n")
	}

	// Children are joined in screen order so reversed boxes come out right.
	blocks := make([]string, 0, len(n.kids))
	covered := 0
	for _, k := range n.kids {
		if k.bounds.Empty() {
			continue
		}
		blocks = append(blocks, paint(k))
		if n.Axis == AxisVertical {
			covered += k.bounds.Dy()
		} else {
			covered += k.bounds.Dx()
		}
	}
	if n.Reverse {
		slices.Reverse(blocks)
		// Reversed boxes leave their slack at the near end.
		if gap := max(0, n.mainSize()-covered); gap > 0 && len(blocks) > 0 {
			if n.Axis == AxisVertical {
				blocks = append([]string{strings.Join(blank(w, gap), "\n")}, blocks...)
			} else {
				blocks = append([]string{strings.Join(blank(gap, h), "\n")}, blocks...)
			}
		}
	}

	var out string
	if n.Axis == AxisVertical {
		out = lipgloss.JoinVertical(lipgloss.Left, blocks...)
	} else {
		out = lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	}
	if len(blocks) == 0 || covered == 0 {
		out = ""
	}
	return strings.Join(fit(out, w, h), "\n")
}

// fit truncates and pads s to a w×h block.
func fit(s string, w, h int) []string {
	src := strings.Split(s, "\n")
	if len(src) > h {
		src = src[:h]
	}
	lines := make([]string, 0, h)
	for _, line := range src {
		lines = append(lines, padCells(line, w))
	}
	return fill(lines, w, h)
}

func padCells(line string, w int) string {
	if ansi.StringWidth(line) > w {
		line = ansi.Truncate(line, w, "")
	}
	if pad := w - ansi.StringWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

func fill(lines []string, w, h int) []string {
	for len(lines) < h {
		lines = append(lines, strings.Repeat(" ", w))
	}
	return lines[:h]
}

func blank(w, h int) []string {
	return fill(nil, w, h)
}
