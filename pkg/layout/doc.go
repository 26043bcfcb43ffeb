// Package layout positions the nodes of a rooted tree for drawing.
//
// [Tidy] implements the Reingold-Tilford tidy tree algorithm in the linear
// time formulation of Buchheim, Jünger and Leipert, the same algorithm behind
// d3.tree. It guarantees that:
//
//   - nodes at the same depth share a y coordinate and depth grows downward
//   - adjacent subtrees never overlap: their contours are pushed apart by
//     at least the separation between the two facing nodes
//   - a parent sits midway between its first and last child, not at the
//     median child
//   - small interior subtrees are spaced out evenly between larger ones
//
// Positions are computed in separation units and then fitted to a frame,
// like d3.tree().size([w, h]). [Options.MinSpacing] widens the frame when
// the fitted spacing would make node glyphs overlap.
package layout
