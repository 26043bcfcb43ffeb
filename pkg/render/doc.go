// Package render is the layout engine: it turns a flat, parent-linked node
// list into a positioned node-link diagram on a [diagram.Surface].
//
// # Overview
//
// [Engine.Render] runs three stages:
//
//  1. Validate: [tree.Stratify] checks single-rootedness, unique values and
//     parent references. Any violation returns a MALFORMED_TREE error.
//  2. Lay out: [layout.Tidy] positions nodes top-down, scaled to the frame.
//  3. Draw: [Build] produces the scene (edges, then circles, then labels)
//     and the engine swaps it into the surface in one step.
//
// Nothing touches the surface until the new scene is complete, so a failed
// render leaves the previous diagram exactly as it was.
//
//	surface := diagram.NewSurface()
//	engine := render.New(surface, render.WithNilLeaves())
//	if err := engine.Render(ctx, nodes); err != nil {
//	    // surface still shows the previous tree
//	}
//
// Output formats live in the [sink] subpackage.
//
// [sink]: github.com/matzehuels/treewalk/pkg/render/sink
package render
