package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treewalk/pkg/diagram"
)

// Format is a Graphviz output format.
type Format string

// Supported Graphviz formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// pointsPerInch converts scene pixels to Graphviz inches.
const pointsPerInch = 72.0

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Pinned fixes every node at its scene position instead of letting
	// Graphviz lay the tree out again. Render pinned graphs with the neato
	// engine, which [RenderGraphviz] selects automatically.
	Pinned bool
}

// ToDOT converts a scene to Graphviz DOT. Node fills follow the scene, so
// a snapshot taken during an animation keeps its highlights.
func ToDOT(sc *diagram.Scene, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontcolor=white, fontname=\"Helvetica-Bold\", fontsize=14];\n")
	buf.WriteString("  edge [arrowhead=none, color=black];\n")
	buf.WriteString("\n")

	if sc == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	labels := make(map[string]string, len(sc.Labels))
	for _, l := range sc.Labels {
		labels[string(l.Node)] = l.Text
	}

	for _, c := range sc.Circles {
		attrs := []string{
			fmt.Sprintf("label=%q", labels[string(c.Node)]),
			fmt.Sprintf("fillcolor=%q", c.Fill),
			fmt.Sprintf("width=%s", fmtInches(2*c.R)),
		}
		if opts.Pinned {
			// Graphviz y grows upward.
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"",
				fmtPoints(c.CX), fmtPoints(sc.Height-c.CY)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", string(c.Node), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range sc.Edges {
		stroke := ""
		if e.Stroke != "" && e.Stroke != "black" {
			stroke = fmt.Sprintf(" [color=%q]", e.Stroke)
		}
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", string(e.From), string(e.To), stroke)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// fmtInches formats a pixel length in inches, the unit of node sizes.
func fmtInches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 3, 64)
}

// fmtPoints formats a pixel coordinate in points, the unit of pos.
func fmtPoints(px float64) string {
	return strconv.FormatFloat(px, 'f', 2, 64)
}

var pinnedRe = regexp.MustCompile(`pos="[^"]*!"`)

// RenderGraphviz renders DOT source with Graphviz.
func RenderGraphviz(ctx context.Context, dot string, format Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	if pinnedRe.MatchString(dot) {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, fmt.Errorf("unsupported graphviz format %q", format)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz root element so the drawing scales
// like the hand-written SVG output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
