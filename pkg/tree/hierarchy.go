package tree

import (
	"github.com/matzehuels/treewalk/pkg/errors"
)

// Entry is one arena slot of a [Hierarchy].
type Entry struct {
	Node     Node
	Parent   int   // index of the parent entry, -1 for the root
	Children []int // indices of child entries, in input order
	Depth    int   // 0 for the root
}

// Hierarchy is a validated, single-rooted tree stored as an arena.
// Entries keep the order of the input list.
//
// The zero value is not usable - build one with [Stratify].
type Hierarchy struct {
	entries []Entry
	index   map[NodeID]int
	root    int
	height  int
}

// Link is a parent to child connection, expressed as arena indices.
type Link struct {
	Parent int
	Child  int
}

// Stratify builds a [Hierarchy] from a flat node list.
//
// Children are ordered as they appear in nodes. Any structural violation
// returns an error with code MALFORMED_TREE and no hierarchy.
func Stratify(nodes NodeList) (*Hierarchy, error) {
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedTree, "tree has no nodes")
	}

	h := &Hierarchy{
		entries: make([]Entry, len(nodes)),
		index:   make(map[NodeID]int, len(nodes)),
		root:    -1,
	}

	for i, n := range nodes {
		if n.Value == "" {
			return nil, errors.New(errors.ErrCodeMalformedTree, "node %d has an empty value", i)
		}
		if _, dup := h.index[n.Value]; dup {
			return nil, errors.New(errors.ErrCodeMalformedTree, "duplicate node value %q", n.Value)
		}
		h.index[n.Value] = i
		h.entries[i] = Entry{Node: n, Parent: -1}
	}

	roots := 0
	for i, n := range nodes {
		if n.IsRoot() {
			roots++
			h.root = i
			continue
		}
		p, ok := h.index[*n.Parent]
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedTree, "node %q references missing parent %q", n.Value, *n.Parent)
		}
		if p == i {
			return nil, errors.New(errors.ErrCodeMalformedTree, "node %q is its own parent", n.Value)
		}
		h.entries[i].Parent = p
		h.entries[p].Children = append(h.entries[p].Children, i)
	}

	switch {
	case roots == 0:
		return nil, errors.New(errors.ErrCodeMalformedTree, "tree has no root")
	case roots > 1:
		return nil, errors.New(errors.ErrCodeMalformedTree, "tree has %d roots, want exactly 1", roots)
	}

	// Every node must hang off the root. Anything else sits on a cycle or
	// below one.
	visited := 0
	queue := []int{h.root}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		visited++
		e := &h.entries[i]
		if i != h.root {
			e.Depth = h.entries[e.Parent].Depth + 1
			h.height = max(h.height, e.Depth)
		}
		queue = append(queue, e.Children...)
	}
	if visited != len(nodes) {
		for i := range h.entries {
			if h.entries[i].Depth == 0 && i != h.root {
				return nil, errors.New(errors.ErrCodeMalformedTree, "node %q is not reachable from root (cycle)", h.entries[i].Node.Value)
			}
		}
		return nil, errors.New(errors.ErrCodeMalformedTree, "%d nodes not reachable from root", len(nodes)-visited)
	}

	return h, nil
}

// Len returns the number of nodes.
func (h *Hierarchy) Len() int { return len(h.entries) }

// Root returns the index of the root entry.
func (h *Hierarchy) Root() int { return h.root }

// Height returns the depth of the deepest node.
func (h *Hierarchy) Height() int { return h.height }

// Entry returns the entry at index i.
func (h *Hierarchy) Entry(i int) *Entry { return &h.entries[i] }

// Lookup returns the index of the node with the given identifier.
func (h *Hierarchy) Lookup(id NodeID) (int, bool) {
	i, ok := h.index[id]
	return i, ok
}

// Children returns the child indices of entry i.
func (h *Hierarchy) Children(i int) []int { return h.entries[i].Children }

// IsLeaf reports whether entry i has no children.
func (h *Hierarchy) IsLeaf(i int) bool { return len(h.entries[i].Children) == 0 }

// PreOrder returns entry indices in depth-first pre-order starting at the root.
func (h *Hierarchy) PreOrder() []int {
	out := make([]int, 0, len(h.entries))
	stack := []int{h.root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, i)
		ch := h.entries[i].Children
		for j := len(ch) - 1; j >= 0; j-- {
			stack = append(stack, ch[j])
		}
	}
	return out
}

// PostOrder returns entry indices with every child before its parent.
func (h *Hierarchy) PostOrder() []int {
	out := make([]int, 0, len(h.entries))
	type frame struct {
		idx  int
		next int
	}
	stack := []frame{{idx: h.root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		ch := h.entries[top.idx].Children
		if top.next < len(ch) {
			c := ch[top.next]
			top.next++
			stack = append(stack, frame{idx: c})
			continue
		}
		out = append(out, top.idx)
		stack = stack[:len(stack)-1]
	}
	return out
}

// Links returns every parent to child connection in pre-order.
func (h *Hierarchy) Links() []Link {
	links := make([]Link, 0, len(h.entries)-1)
	for _, i := range h.PreOrder() {
		for _, c := range h.entries[i].Children {
			links = append(links, Link{Parent: i, Child: c})
		}
	}
	return links
}
