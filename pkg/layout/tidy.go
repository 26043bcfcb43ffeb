package layout

import (
	"github.com/matzehuels/treewalk/pkg/tree"
)

// Point is a position in frame coordinates.
type Point struct {
	X, Y float64
}

// SeparationFunc returns the desired horizontal distance, in units, between
// two nodes that end up next to each other at the same depth.
type SeparationFunc func(h *tree.Hierarchy, a, b int) float64

// DefaultSeparation keeps siblings one unit apart and cousins two units.
func DefaultSeparation(h *tree.Hierarchy, a, b int) float64 {
	if h.Entry(a).Parent == h.Entry(b).Parent {
		return 1
	}
	return 2
}

// Options configures [Tidy].
type Options struct {
	// Width and Height are the frame the tree is fitted into. The root
	// lands at y=0 and the deepest level at y=Height.
	Width, Height float64

	// MinSpacing is the smallest allowed distance between two nodes one
	// separation unit apart. Zero disables the check. When the fitted
	// spacing would be smaller, the frame grows instead.
	MinSpacing float64

	// MinLevelGap is the smallest allowed vertical distance between depths.
	MinLevelGap float64

	// Separation overrides [DefaultSeparation].
	Separation SeparationFunc
}

// Result holds positions indexed like the hierarchy entries.
type Result struct {
	Points []Point
	// Width and Height of the frame actually used. They exceed the
	// requested frame when MinSpacing or MinLevelGap forced it to grow.
	Width, Height float64
}

// Tidy computes a tidy tree layout for h.
func Tidy(h *tree.Hierarchy, opts Options) Result {
	sep := opts.Separation
	if sep == nil {
		sep = DefaultSeparation
	}

	root := buildTree(h)
	w := &walker{h: h, sep: sep}
	w.eachAfter(root, w.firstWalk)
	root.parent.m = -root.z
	w.eachBefore(root, w.secondWalk)

	units := make([]float64, h.Len())
	w.eachBefore(root, func(v *tnode) { units[v.idx] = v.x })

	return fit(h, units, sep, opts)
}

// fit scales unit positions into the frame. The extreme nodes are picked in
// pre-order, first one wins on ties.
func fit(h *tree.Hierarchy, units []float64, sep SeparationFunc, opts Options) Result {
	left, right := h.Root(), h.Root()
	for _, i := range h.PreOrder() {
		if units[i] < units[left] {
			left = i
		}
		if units[i] > units[right] {
			right = i
		}
	}

	s := 1.0
	if left != right {
		s = sep(h, left, right) / 2
	}
	tx := s - units[left]
	span := units[right] + s + tx

	width := opts.Width
	kx := width / span
	if opts.MinSpacing > 0 && kx < opts.MinSpacing {
		kx = opts.MinSpacing
		width = span * kx
	}

	height := opts.Height
	levels := float64(max(h.Height(), 1))
	ky := height / levels
	if opts.MinLevelGap > 0 && ky < opts.MinLevelGap {
		ky = opts.MinLevelGap
		height = levels * ky
	}

	points := make([]Point, len(units))
	for i, x := range units {
		points[i] = Point{
			X: (x + tx) * kx,
			Y: float64(h.Entry(i).Depth) * ky,
		}
	}
	return Result{Points: points, Width: width, Height: height}
}

// tnode is the working state of one node during the walk.
type tnode struct {
	idx      int // hierarchy index, -1 for the virtual parent of the root
	parent   *tnode
	children []*tnode
	i        int // position among siblings

	anc    *tnode // default ancestor, set on parents
	a      *tnode // ancestor
	thread *tnode
	z      float64 // prelim
	m      float64 // mod
	c      float64 // change
	s      float64 // shift
	x      float64
}

func buildTree(h *tree.Hierarchy) *tnode {
	nodes := make([]*tnode, h.Len())
	for i := range nodes {
		nodes[i] = &tnode{idx: i}
		nodes[i].a = nodes[i]
	}
	for i, v := range nodes {
		for j, c := range h.Children(i) {
			child := nodes[c]
			child.parent = v
			child.i = j
			v.children = append(v.children, child)
		}
	}

	root := nodes[h.Root()]
	virtual := &tnode{idx: -1, children: []*tnode{root}}
	virtual.a = virtual
	root.parent = virtual
	return root
}

type walker struct {
	h   *tree.Hierarchy
	sep SeparationFunc
}

func (w *walker) separation(a, b *tnode) float64 { return w.sep(w.h, a.idx, b.idx) }

func (w *walker) eachAfter(v *tnode, fn func(*tnode)) {
	for _, c := range v.children {
		w.eachAfter(c, fn)
	}
	fn(v)
}

func (w *walker) eachBefore(v *tnode, fn func(*tnode)) {
	fn(v)
	for _, c := range v.children {
		w.eachBefore(c, fn)
	}
}

func nextLeft(v *tnode) *tnode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *tnode) *tnode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *tnode, shift float64) {
	change := shift / float64(wp.i-wm.i)
	wp.c -= change
	wp.s += shift
	wm.c += change
	wp.z += shift
	wp.m += shift
}

func executeShifts(v *tnode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		c := v.children[i]
		c.z += shift
		c.m += shift
		change += c.c
		shift += c.s + change
	}
}

func nextAncestor(vim, v, ancestor *tnode) *tnode {
	if vim.a.parent == v.parent {
		return vim.a
	}
	return ancestor
}

func (w *walker) firstWalk(v *tnode) {
	siblings := v.parent.children
	var left *tnode
	if v.i > 0 {
		left = siblings[v.i-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		mid := (v.children[0].z + v.children[len(v.children)-1].z) / 2
		if left != nil {
			v.z = left.z + w.separation(v, left)
			v.m = v.z - mid
		} else {
			v.z = mid
		}
	} else if left != nil {
		v.z = left.z + w.separation(v, left)
	}

	anc := v.parent.anc
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.anc = w.apportion(v, left, anc)
}

func (w *walker) secondWalk(v *tnode) {
	v.x = v.z + v.parent.m
	v.m += v.parent.m
}

func (w *walker) apportion(v, left, ancestor *tnode) *tnode {
	if left == nil {
		return ancestor
	}

	vip, vop := v, v
	vim := left
	vom := v.parent.children[0]
	sip, sop := vip.m, vop.m
	sim, som := vim.m, vom.m

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.a = v
		shift := vim.z + sim - vip.z - sip + w.separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.m
		sip += vip.m
		som += vom.m
		sop += vop.m
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.m += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.m += sip - som
		ancestor = v
	}
	return ancestor
}
