package diagram

import (
	"github.com/matzehuels/treewalk/pkg/tree"
)

// State is the visual state tag of a node.
type State string

// Visual states.
const (
	StateDefault State = "default"
	StateVisited State = "visited"
	StateActive  State = "active"
)

// Element identifier prefixes.
const (
	prefixNode  = "node-"
	prefixLabel = "label-"
	prefixLink  = "link-"
)

// NodeElementID returns the identifier of the circle drawn for id.
func NodeElementID(id tree.NodeID) string { return prefixNode + string(id) }

// LabelElementID returns the identifier of the label drawn for id.
func LabelElementID(id tree.NodeID) string { return prefixLabel + string(id) }

// LinkElementID returns the identifier of the edge into id. Each node has at
// most one parent, so the child alone identifies the edge.
func LinkElementID(child tree.NodeID) string { return prefixLink + string(child) }

// Edge is a connector from a parent to a child.
type Edge struct {
	ID     string      `json:"id"`
	From   tree.NodeID `json:"from"`
	To     tree.NodeID `json:"to"`
	X1, Y1 float64     `json:"-"`
	X2, Y2 float64     `json:"-"`
	Path   string      `json:"d"`
	Stroke string      `json:"stroke"`
}

// Circle is the filled glyph of one node.
type Circle struct {
	ID       string      `json:"id"`
	Node     tree.NodeID `json:"node"`
	CX       float64     `json:"cx"`
	CY       float64     `json:"cy"`
	R        float64     `json:"r"`
	Depth    int         `json:"depth"`
	BaseFill string      `json:"baseFill"`
	Fill     string      `json:"fill"`
	State    State       `json:"state"`
}

// Label is the value text drawn over a circle.
type Label struct {
	ID   string      `json:"id"`
	Node tree.NodeID `json:"node"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
	Text string      `json:"text"`
	Fill string      `json:"fill"`
}

// Scene is one complete diagram. Sinks draw Edges, then Circles, then
// Labels, so connectors never cover node glyphs.
type Scene struct {
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Edges   []Edge   `json:"edges"`
	Circles []Circle `json:"circles"`
	Labels  []Label  `json:"labels"`
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	if s == nil {
		return nil
	}
	c := *s
	c.Edges = append([]Edge(nil), s.Edges...)
	c.Circles = append([]Circle(nil), s.Circles...)
	c.Labels = append([]Label(nil), s.Labels...)
	return &c
}

// Circle returns the circle drawn for id.
func (s *Scene) Circle(id tree.NodeID) (Circle, bool) {
	for _, c := range s.Circles {
		if c.Node == id {
			return c, true
		}
	}
	return Circle{}, false
}

// States returns the visual state of every node.
func (s *Scene) States() map[tree.NodeID]State {
	out := make(map[tree.NodeID]State, len(s.Circles))
	for _, c := range s.Circles {
		out[c.Node] = c.State
	}
	return out
}
