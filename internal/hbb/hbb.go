// Package hbb implements the hierarchical bounding-circle tree used as
// the dynamic spatial index for moving agents: a binary tree whose
// every node stores a bounding circle enclosing all its descendants,
// with leaves carrying an opaque agent handle. It answers
// collision, point, and ray queries by pruning subtrees whose bounding
// circle fails the predicate, and self-heals on removal so the tree
// never accumulates single-child chains.
package hbb

import (
	"math"

	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// index is a slot in the tree's node arena. noIndex marks an absent
// child or parent.
type index int32

const noIndex index = -1

// node is one slot of the arena: either an internal node (data == nil,
// bounding its two children) or a leaf (data != nil, left/right unset).
type node struct {
	left, right, parent index
	center              vec2.Vec2
	r                   float64
	data                interface{}
}

// Tree is a pool-allocated hierarchical bounding-circle index. The zero
// value is not usable; construct with New. A single Tree is not safe
// for concurrent mutation or query.
type Tree struct {
	nodes []node
	free  []index // freed arena slots, reused on the next alloc (the pool)
	root  index
}

// New constructs an empty index.
func New() *Tree {
	t := &Tree{}
	t.root = t.alloc()
	return t
}

// Handle is the caller's back-reference to a registered leaf. It stays
// valid across Move calls; it is invalidated by Remove.
type Handle struct {
	tree *Tree
	idx  index
}

// Len reports the number of live leaves (agents) currently indexed.
func (t *Tree) Len() int {
	n := 0
	for _, nd := range t.nodes {
		if nd.data != nil {
			n++
		}
	}
	return n
}

func (t *Tree) alloc() index {
	if n := len(t.free); n > 0 {
		i := t.free[n-1]
		t.free = t.free[:n-1]
		t.nodes[i] = node{left: noIndex, right: noIndex, parent: noIndex}
		return i
	}
	t.nodes = append(t.nodes, node{left: noIndex, right: noIndex, parent: noIndex})
	return index(len(t.nodes) - 1)
}

func (t *Tree) release(i index) {
	t.nodes[i] = node{}
	t.free = append(t.free, i)
}

func (t *Tree) setLeft(parent, child index) {
	p := t.nodes[parent]
	p.left = child
	t.nodes[parent] = p
	c := t.nodes[child]
	c.parent = parent
	t.nodes[child] = c
}

func (t *Tree) setRight(parent, child index) {
	p := t.nodes[parent]
	p.right = child
	t.nodes[parent] = p
	c := t.nodes[child]
	c.parent = parent
	t.nodes[child] = c
}

func isDataNode(n node) bool {
	return n.data != nil
}

// inBox reports whether outer's circle fully contains inner's circle.
func inBox(outer, inner node) bool {
	d := outer.center.Dist(inner.center)
	return d+inner.r < outer.r
}

// mergeCost estimates the radius of the circle that would bound both:
// the distance between centers plus both radii, halved.
func mergeCost(a, b node) float64 {
	return (a.center.Dist(b.center) + a.r + b.r) / 2
}

// mergeCircle computes the tight bounding circle of two circles: if
// the centers coincide, keep the larger radius; if one circle already
// contains the other, return the outer one;
// otherwise the outer chord runs from a-r beyond a's center to b+r
// beyond b's center, and the merged circle is that chord's midpoint and
// half-length.
func mergeCircle(a, b node) (center vec2.Vec2, r float64) {
	delta := b.center.Sub(a.center)
	d := delta.Norm()
	if d <= 0 {
		return a.center, math.Max(a.r, b.r)
	}
	if d+b.r <= a.r {
		return a.center, a.r
	}
	if d+a.r <= b.r {
		return b.center, b.r
	}
	dir := delta.Scale(1 / d)
	p1 := a.center.Sub(dir.Scale(a.r))
	p2 := b.center.Add(dir.Scale(b.r))
	center = p1.Add(p2).Scale(0.5)
	r = p1.Dist(p2) / 2
	return center, r
}

// Add inserts a new leaf at center with radius r carrying data, and
// returns the handle the caller should retain to Move or Remove it
// later.
func (t *Tree) Add(center vec2.Vec2, r float64, data interface{}) *Handle {
	leaf := t.alloc()
	ln := t.nodes[leaf]
	ln.center, ln.r, ln.data = center, r, data
	t.nodes[leaf] = ln
	t.insert(t.root, leaf)
	return &Handle{tree: t, idx: leaf}
}

// insert descends from cur looking for a child slot the incoming leaf
// fits inside, an empty slot, or (failing both) merges with whichever
// child is cheaper to merge with.
func (t *Tree) insert(cur, in index) {
	n := t.nodes[cur]

	if n.left != noIndex {
		left := t.nodes[n.left]
		if !isDataNode(left) && inBox(left, t.nodes[in]) {
			t.insert(n.left, in)
			return
		} else if n.right == noIndex {
			t.setRight(cur, in)
			return
		}
	}
	if n.right != noIndex {
		right := t.nodes[n.right]
		if !isDataNode(right) && inBox(right, t.nodes[in]) {
			t.insert(n.right, in)
			return
		} else if n.left == noIndex {
			t.setLeft(cur, in)
			return
		}
	}
	if n.left == noIndex && n.right == noIndex {
		t.setLeft(cur, in)
		return
	}

	ls := mergeCost(t.nodes[n.left], t.nodes[in])
	rs := mergeCost(t.nodes[n.right], t.nodes[in])
	nn := t.alloc()
	n = t.nodes[cur] // re-read: alloc may have grown the arena
	if ls < rs {
		center, r := mergeCircle(t.nodes[n.left], t.nodes[in])
		mn := t.nodes[nn]
		mn.center, mn.r = center, r
		t.nodes[nn] = mn
		t.setLeft(nn, n.left)
		t.setRight(nn, in)
		t.setLeft(cur, nn)
	} else {
		center, r := mergeCircle(t.nodes[n.right], t.nodes[in])
		mn := t.nodes[nn]
		mn.center, mn.r = center, r
		t.nodes[nn] = mn
		t.setLeft(nn, n.right)
		t.setRight(nn, in)
		t.setRight(cur, nn)
	}
	// The merged circle can reach past cur's own circle; grow cur and
	// every ancestor below the root header so each still encloses it.
	for a := cur; a != t.root; a = t.nodes[a].parent {
		an := t.nodes[a]
		an.center, an.r = mergeCircle(an, t.nodes[nn])
		t.nodes[a] = an
	}
}

// Remove detaches h's leaf from the tree and self-heals the chain of
// now-single-child ancestors back toward the root. h must not be used
// again afterward.
func (t *Tree) Remove(h *Handle) {
	n := h.idx
	nn := t.nodes[n]
	p := nn.parent
	if p != noIndex {
		pn := t.nodes[p]
		if pn.left == n {
			pn.left = noIndex
		}
		if pn.right == n {
			pn.right = noIndex
		}
		t.nodes[p] = pn
	}
	t.release(n)
	if p != noIndex {
		t.autoclean(p)
	}
}

// autoclean collapses n if it has become an empty internal node (no
// children, no data), propagating the collapse to its parent; otherwise,
// if n is its parent's sole remaining child, n is spliced up to occupy
// the grandparent's slot directly and the now-redundant parent is
// freed. A root left with a single child is kept as-is: the root slot
// is a fixed header and never collapses.
func (t *Tree) autoclean(n index) {
	nn := t.nodes[n]

	if nn.left == noIndex && nn.right == noIndex && nn.data == nil {
		if nn.parent == noIndex {
			return
		}
		p := nn.parent
		pn := t.nodes[p]
		if pn.left == n {
			pn.left = noIndex
		}
		if pn.right == n {
			pn.right = noIndex
		}
		t.nodes[p] = pn
		t.autoclean(p)
		t.release(n)
		return
	}

	if nn.parent == noIndex {
		return
	}
	p := nn.parent
	pn := t.nodes[p]
	if pn.parent == noIndex {
		return
	}

	switch {
	case pn.left != noIndex && pn.right == noIndex:
		pn.left = noIndex
	case pn.left == noIndex && pn.right != noIndex:
		pn.right = noIndex
	default:
		return
	}
	t.nodes[p] = pn

	gp := pn.parent
	gpn := t.nodes[gp]
	if gpn.left == p {
		gpn.left = n
	} else {
		gpn.right = n
	}
	t.nodes[gp] = gpn

	nn.parent = gp
	t.nodes[n] = nn

	t.release(p)
	t.autoclean(gp)
}

// Move relocates h's leaf to a new center, keeping its radius and data.
// Implemented as drop-then-reinsert rather than an in-place refit: the
// tree's shape after Move is identical to what a fresh Add at the new
// position would produce, so circles never go stale.
func (t *Tree) Move(h *Handle, center vec2.Vec2) {
	r := t.nodes[h.idx].r
	data := t.nodes[h.idx].data
	t.Remove(h)
	nh := t.Add(center, r, data)
	h.idx = nh.idx
}

// Data returns the opaque handle passed to Add.
func (t *Tree) Data(h *Handle) interface{} {
	return t.nodes[h.idx].data
}

// Circle returns h's current center and radius.
func (t *Tree) Circle(h *Handle) (center vec2.Vec2, r float64) {
	n := t.nodes[h.idx]
	return n.center, n.r
}

// RootContains reports whether every internal circle contains all of
// its descendant leaves' circles. The root slot itself is a header
// with no circle of its own (its children are the topmost real
// circles), so containment is checked from the root's children down.
// Exposed for tests.
func (t *Tree) RootContains() bool {
	root := t.nodes[t.root]
	return t.subtreeContained(root.left) && t.subtreeContained(root.right)
}

func (t *Tree) subtreeContained(i index) bool {
	if i == noIndex {
		return true
	}
	nn := t.nodes[i]
	if nn.data != nil {
		return true
	}
	ok := true
	t.walkLeaves(i, func(l node) {
		if nn.center.Dist(l.center)+l.r > nn.r+1e-9 {
			ok = false
		}
	})
	return ok && t.subtreeContained(nn.left) && t.subtreeContained(nn.right)
}

func (t *Tree) walkLeaves(n index, fn func(node)) {
	if n == noIndex {
		return
	}
	nn := t.nodes[n]
	if nn.data != nil {
		fn(nn)
		return
	}
	t.walkLeaves(nn.left, fn)
	t.walkLeaves(nn.right, fn)
}
