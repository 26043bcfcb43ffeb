package animate

import "github.com/matzehuels/treewalk/pkg/diagram"

// Palette maps visual states to fills.
type Palette struct {
	// Active is the fill of the node being visited.
	Active string
	// Visited is the fill of nodes already passed. Empty restores the
	// node's own color.
	Visited string
	// Final, when set, replaces Active for the last node of the path.
	Final string
}

// DefaultPalette paints the current node red and passed nodes black.
func DefaultPalette() Palette {
	return Palette{Active: "red", Visited: "black"}
}

// RestorePalette paints the current node orange, restores passed nodes to
// their own color and marks the last node light blue.
func RestorePalette() Palette {
	return Palette{Active: "orange", Final: "lightblue"}
}

// PaletteByName returns a named palette: "default" or "restore".
func PaletteByName(name string) (Palette, bool) {
	switch name {
	case "", "default":
		return DefaultPalette(), true
	case "restore":
		return RestorePalette(), true
	}
	return Palette{}, false
}

// Fill returns the fill for a node in state st whose own color is base.
// last marks the final node of the path.
func (p Palette) Fill(st diagram.State, base string, last bool) string {
	switch st {
	case diagram.StateActive:
		if last && p.Final != "" {
			return p.Final
		}
		return p.Active
	case diagram.StateVisited:
		if p.Visited != "" {
			return p.Visited
		}
	}
	return base
}
