// Package sink serialises a diagram scene into output formats.
//
// # Overview
//
// A sink takes a [diagram.Scene], usually a [diagram.Surface.Snapshot],
// and writes it out. Fills are taken from the scene as-is, so a snapshot
// taken mid-animation shows the highlighted path.
//
//   - SVG: hand-written SVG with stable element ids ([RenderSVG])
//   - JSON: the scene itself for external tools ([RenderJSON])
//   - DOT: Graphviz source ([ToDOT]), rendered to SVG or PNG by Graphviz
//     ([RenderGraphviz])
//   - Terminal: a coloured character drawing for the CLI ([RenderTerminal])
//
// SVG output keeps the draw order of the scene: every edge, then every
// circle, then every label.
//
//	svg := sink.RenderSVG(surface.Snapshot())
//	png, err := sink.RenderGraphviz(ctx, sink.ToDOT(scene, sink.DOTOptions{}), sink.FormatPNG)
//
// [diagram.Scene]: github.com/matzehuels/treewalk/pkg/diagram.Scene
// [diagram.Surface.Snapshot]: github.com/matzehuels/treewalk/pkg/diagram.Surface.Snapshot
package sink
