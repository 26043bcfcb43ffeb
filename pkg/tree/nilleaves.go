package tree

import "fmt"

// NilLabel is the display label of sentinel leaves.
const NilLabel = "nil"

// IsNil reports whether the node is a sentinel leaf added by [AddNilLeaves].
func (n Node) IsNil() bool { return n.Sentinel }

// Label returns the text drawn inside the node.
func (n Node) Label() string {
	if n.IsNil() {
		return NilLabel
	}
	return string(n.Value)
}

// AddNilLeaves returns a copy of nodes in which every real node has exactly
// two children: its existing left and right children, with grey sentinel
// leaves standing in for the missing ones. Sentinels are identified as
// N<value>L and N<value>R; when a real node already uses that identifier a
// "~" is appended until it is free.
//
// A child is the left one when its value compares below the parent's. The
// result is emitted in pre-order with left children ahead of right ones, so
// a layout that keeps input order draws the tree as a binary search tree.
func AddNilLeaves(nodes NodeList) (NodeList, error) {
	h, err := Stratify(nodes)
	if err != nil {
		return nil, err
	}

	taken := make(map[NodeID]bool, 2*len(nodes)+1)
	for _, n := range nodes {
		taken[n.Value] = true
	}
	sentinelID := func(parent NodeID, suffix string) NodeID {
		id := NodeID(fmt.Sprintf("N%s%s", parent, suffix))
		for taken[id] {
			id += "~"
		}
		taken[id] = true
		return id
	}

	out := make(NodeList, 0, 2*len(nodes)+1)
	var visit func(i int)
	visit = func(i int) {
		e := h.Entry(i)
		out = append(out, e.Node)

		left, right := -1, -1
		var extra []int
		for _, c := range e.Children {
			cmp := h.Entry(c).Node.Value.Compare(e.Node.Value)
			switch {
			case cmp < 0 && left < 0:
				left = c
			case cmp > 0 && right < 0:
				right = c
			default:
				extra = append(extra, c)
			}
		}

		for side, c := range []int{left, right} {
			if c >= 0 {
				visit(c)
				continue
			}
			suffix := "L"
			if side == 1 {
				suffix = "R"
			}
			leaf := Child(sentinelID(e.Node.Value, suffix), ColorNil, e.Node.Value)
			leaf.Sentinel = true
			out = append(out, leaf)
		}
		for _, c := range extra {
			visit(c)
		}
	}
	visit(h.Root())

	return out, nil
}
