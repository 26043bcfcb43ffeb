package render

import (
	"strconv"
	"strings"

	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/layout"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// labelBaseline shifts label text down so it sits visually centred in the
// circle.
const labelBaseline = 5

// Build validates nodes and computes the scene without touching any
// surface. Options are used as given; call [Options.ValidateAndSetDefaults]
// first when building from partial options.
func Build(nodes tree.NodeList, opts Options) (*diagram.Scene, error) {
	if opts.NilLeaves {
		expanded, err := tree.AddNilLeaves(nodes)
		if err != nil {
			return nil, err
		}
		nodes = expanded
	}

	h, err := tree.Stratify(nodes)
	if err != nil {
		return nil, err
	}

	res := layout.Tidy(h, opts.layoutOptions())
	pos := func(i int) layout.Point {
		p := res.Points[i]
		return layout.Point{X: p.X + opts.MarginX, Y: p.Y + opts.MarginTop}
	}

	sc := &diagram.Scene{
		Width:   res.Width + 2*opts.MarginX,
		Height:  res.Height + opts.MarginTop + opts.MarginBottom,
		Edges:   make([]diagram.Edge, 0, h.Len()-1),
		Circles: make([]diagram.Circle, 0, h.Len()),
		Labels:  make([]diagram.Label, 0, h.Len()),
	}

	for _, l := range h.Links() {
		from, to := h.Entry(l.Parent).Node.Value, h.Entry(l.Child).Node.Value
		p, c := pos(l.Parent), pos(l.Child)
		sc.Edges = append(sc.Edges, diagram.Edge{
			ID:     diagram.LinkElementID(to),
			From:   from,
			To:     to,
			X1:     p.X,
			Y1:     p.Y,
			X2:     c.X,
			Y2:     c.Y,
			Path:   VerticalLink(p, c),
			Stroke: opts.EdgeStroke,
		})
	}

	for _, i := range h.PreOrder() {
		e := h.Entry(i)
		p := pos(i)
		sc.Circles = append(sc.Circles, diagram.Circle{
			ID:       diagram.NodeElementID(e.Node.Value),
			Node:     e.Node.Value,
			CX:       p.X,
			CY:       p.Y,
			R:        opts.Radius,
			Depth:    e.Depth,
			BaseFill: e.Node.Color,
			Fill:     e.Node.Color,
			State:    diagram.StateDefault,
		})
	}

	for _, i := range h.PreOrder() {
		e := h.Entry(i)
		p := pos(i)
		sc.Labels = append(sc.Labels, diagram.Label{
			ID:   diagram.LabelElementID(e.Node.Value),
			Node: e.Node.Value,
			X:    p.X,
			Y:    p.Y + labelBaseline,
			Text: e.Node.Label(),
			Fill: opts.LabelFill,
		})
	}

	return sc, nil
}

// VerticalLink returns an SVG path from a parent to a child: a cubic curve
// leaving and entering vertically, with both control points on the
// horizontal midline.
func VerticalLink(from, to layout.Point) string {
	mid := (from.Y + to.Y) / 2
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, from.X, from.Y)
	b.WriteString("C")
	writePoint(&b, from.X, mid)
	b.WriteString(" ")
	writePoint(&b, to.X, mid)
	b.WriteString(" ")
	writePoint(&b, to.X, to.Y)
	return b.String()
}

func writePoint(b *strings.Builder, x, y float64) {
	b.WriteString(fmtNum(x))
	b.WriteString(",")
	b.WriteString(fmtNum(y))
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
