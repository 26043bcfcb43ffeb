package sink

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/treewalk/pkg/diagram"
)

// fillColors maps the named fills used by trees and palettes to terminal
// colors. Hex fills are passed through.
var fillColors = map[string]lipgloss.Color{
	"black":     lipgloss.Color("236"),
	"red":       lipgloss.Color("160"),
	"gray":      lipgloss.Color("244"),
	"grey":      lipgloss.Color("244"),
	"orange":    lipgloss.Color("208"),
	"lightblue": lipgloss.Color("117"),
	"white":     lipgloss.Color("255"),
}

// TerminalOption configures [RenderTerminal].
type TerminalOption func(*terminalRenderer)

type terminalRenderer struct {
	renderer *lipgloss.Renderer
	plain    bool
}

// WithRenderer uses r to detect the color profile of the output.
func WithRenderer(r *lipgloss.Renderer) TerminalOption {
	return func(t *terminalRenderer) { t.renderer = r }
}

// WithPlain disables styling, leaving only the text layout.
func WithPlain() TerminalOption { return func(t *terminalRenderer) { t.plain = true } }

type cell struct {
	col  int
	text string
	fill string
	act  bool
}

// RenderTerminal draws the scene as text: one line per depth with node
// labels in columns proportional to their x position, and a connector line
// between depths. Active nodes are underlined.
func RenderTerminal(sc *diagram.Scene, opts ...TerminalOption) string {
	t := terminalRenderer{renderer: lipgloss.DefaultRenderer()}
	for _, opt := range opts {
		opt(&t)
	}
	if sc == nil || len(sc.Circles) == 0 {
		return ""
	}

	labels := make(map[string]string, len(sc.Labels))
	for _, l := range sc.Labels {
		labels[string(l.Node)] = l.Text
	}

	width := 1
	minX := math.Inf(1)
	for _, c := range sc.Circles {
		width = max(width, len(labels[string(c.Node)]))
		minX = min(minX, c.CX)
	}
	cellW := width + 1
	unit := minGap(sc.Circles)

	col := func(x float64) int {
		return int(math.Round((x - minX) / unit * float64(cellW)))
	}

	depth := 0
	rows := map[int][]cell{}
	for _, c := range sc.Circles {
		depth = max(depth, c.Depth)
		rows[c.Depth] = append(rows[c.Depth], cell{
			col:  col(c.CX),
			text: labels[string(c.Node)],
			fill: c.Fill,
			act:  c.State == diagram.StateActive,
		})
	}

	childDepth := map[string]int{}
	for _, c := range sc.Circles {
		childDepth[string(c.Node)] = c.Depth
	}
	connectors := map[int][]cell{}
	for _, e := range sc.Edges {
		d := childDepth[string(e.To)]
		from, to := col(e.X1)+width/2, col(e.X2)+width/2
		glyph := "|"
		switch {
		case to < from:
			glyph = "/"
		case to > from:
			glyph = "\\"
		}
		connectors[d] = append(connectors[d], cell{col: (from + to) / 2, text: glyph})
	}

	var lines []string
	for d := 0; d <= depth; d++ {
		if d > 0 {
			lines = append(lines, t.line(connectors[d], false))
		}
		lines = append(lines, t.line(rows[d], true))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (t terminalRenderer) line(cells []cell, styled bool) string {
	slices.SortFunc(cells, func(a, b cell) int { return a.col - b.col })

	var b strings.Builder
	cursor := 0
	for _, c := range cells {
		if c.col > cursor {
			b.WriteString(strings.Repeat(" ", c.col-cursor))
			cursor = c.col
		} else if c.col < cursor && cursor > 0 {
			// Crowded: keep at least one space between neighbours.
			b.WriteString(" ")
			cursor++
		}
		if styled && !t.plain {
			b.WriteString(t.style(c).Render(c.text))
		} else {
			b.WriteString(c.text)
		}
		cursor += len(c.text)
	}
	return strings.TrimRight(b.String(), " ")
}

func (t terminalRenderer) style(c cell) lipgloss.Style {
	s := t.renderer.NewStyle().Bold(true).Foreground(fillColors["white"])
	if color, ok := fillColors[c.fill]; ok {
		s = s.Background(color)
	} else if strings.HasPrefix(c.fill, "#") {
		s = s.Background(lipgloss.Color(c.fill))
	}
	if c.act {
		s = s.Underline(true)
	}
	return s
}

// minGap returns the smallest horizontal distance between two circles at
// the same depth, or 1 when no depth has more than one circle.
func minGap(circles []diagram.Circle) float64 {
	byDepth := map[int][]float64{}
	for _, c := range circles {
		byDepth[c.Depth] = append(byDepth[c.Depth], c.CX)
	}
	gap := math.Inf(1)
	for _, xs := range byDepth {
		slices.Sort(xs)
		for i := 1; i < len(xs); i++ {
			if d := xs[i] - xs[i-1]; d > 0 {
				gap = min(gap, d)
			}
		}
	}
	if math.IsInf(gap, 1) {
		return 1
	}
	return gap
}
