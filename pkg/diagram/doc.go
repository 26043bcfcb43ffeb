// Package diagram holds the rendering surface shared by the layout engine
// and the path animator.
//
// A [Surface] owns one [Scene] at a time. The layout engine swaps in a
// whole new scene with [Surface.Replace]; the animator repaints node
// circles in place with [Surface.Paint]. Both go through the surface lock,
// so readers always see a consistent scene and writers never interleave
// within one mutation.
//
// # Element Identifiers
//
// Every element carries an identifier derived from the node value:
//
//	node-<value>   circle
//	label-<value>  value label
//	link-<value>   edge into the node from its parent
//
// Values are unique within a tree, so identifiers are collision-free for
// the lifetime of one scene.
//
// # Visual State
//
// Each circle carries a [State] tag (default, visited, active) next to its
// fill. The fill for the default state is the node's own color, kept in
// [Circle.BaseFill], so restoring a node never requires reading back
// presentation state.
//
// # Subscriptions
//
// [Surface.Subscribe] returns a channel of [Event] values describing each
// mutation. Sends never block: a subscriber that falls behind loses events
// and should resynchronise from [Surface.Snapshot].
package diagram
