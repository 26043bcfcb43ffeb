// Package animate drives a timed highlight along a search path on a
// diagram surface.
//
// An [Animator] owns at most one running [Session]. Each tick of the
// session's ticker advances one step: the node painted active on the
// previous tick is repainted as visited and the next node in the path is
// painted active. The tick after the last step completes the session
// without painting, so the final node stays highlighted.
//
//	a := animate.New(surface, animate.WithInterval(time.Second))
//	s := a.Animate([]tree.NodeID{"50", "30"})
//	if err := s.Wait(ctx); err != nil {
//	    // a path node was missing from the diagram
//	}
//
// Starting a new animation cancels the running one first and waits for its
// goroutine to exit, so two sessions never write to the surface at once.
// Cancelling leaves the diagram as it is; nothing is rolled back.
package animate
