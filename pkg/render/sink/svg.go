package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/treewalk/pkg/diagram"
)

const (
	labelFontSize   = "14px"
	labelFontWeight = "bold"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	states     bool
}

// WithBackground fills the frame with the given color.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithStateClasses tags every circle with its visual state as a CSS class
// and data attribute.
func WithStateClasses() SVGOption { return func(r *svgRenderer) { r.states = true } }

// RenderSVG draws the scene. A nil scene yields an empty frame.
func RenderSVG(sc *diagram.Scene, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}
	if sc == nil {
		sc = &diagram.Scene{}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		sc.Width, sc.Height, sc.Width, sc.Height)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	buf.WriteString(`  <g class="links">` + "\n")
	for _, e := range sc.Edges {
		fmt.Fprintf(&buf, `    <path id="%s" d="%s" stroke="%s" fill="none"/>`+"\n",
			escapeXML(e.ID), e.Path, escapeXML(e.Stroke))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, c := range sc.Circles {
		r.renderCircle(&buf, c)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="labels">` + "\n")
	for _, l := range sc.Labels {
		fmt.Fprintf(&buf, `    <text id="%s" x="%.2f" y="%.2f" text-anchor="middle" fill="%s" font-size="%s" font-weight="%s">%s</text>`+"\n",
			escapeXML(l.ID), l.X, l.Y, escapeXML(l.Fill), labelFontSize, labelFontWeight, escapeXML(l.Text))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderCircle(buf *bytes.Buffer, c diagram.Circle) {
	if !r.states {
		fmt.Fprintf(buf, `    <circle id="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
			escapeXML(c.ID), c.CX, c.CY, c.R, escapeXML(c.Fill))
		return
	}
	state := c.State
	if state == "" {
		state = diagram.StateDefault
	}
	fmt.Fprintf(buf, `    <circle id="%s" class="node state-%s" data-state="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
		escapeXML(c.ID), state, state, c.CX, c.CY, c.R, escapeXML(c.Fill))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
