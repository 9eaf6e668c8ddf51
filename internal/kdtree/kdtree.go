// Package kdtree implements a static, 2D-specialized k-d tree over an
// obstacle point cloud, used by the SDF builder to answer nearest-point
// queries in O(log n).
package kdtree

import (
	"fmt"
	"sort"

	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// node is one split of the tree. Axis is 0 for an X-split, 1 for a
// Y-split; children are built alternating axis with depth.
type node struct {
	parent      *node
	left, right *node
	point       vec2.Vec2
	index       int
	axis        int
}

// Tree is an immutable nearest-neighbor index over a fixed point set.
// Build the tree once; queries are read-only and safe for concurrent use.
type Tree struct {
	root  *node
	nodes []*node
}

// Build constructs a balanced tree over points by recursive median-split,
// alternating the split axis between X and Y with depth. Panics if points
// is empty; callers must handle the zero-obstacle case before building,
// since an empty tree has no valid root to query.
func Build(points []vec2.Vec2) *Tree {
	if len(points) == 0 {
		panic("kdtree: Build called with no points")
	}
	items := make([]item, len(points))
	for i, p := range points {
		items[i] = item{point: p, index: i}
	}
	t := &Tree{}
	t.root = t.build(items, 0, len(items)-1, 0)
	return t
}

type item struct {
	point vec2.Vec2
	index int
}

func axisValue(p vec2.Vec2, axis int) float64 {
	if axis == 0 {
		return p.X
	}
	return p.Y
}

func (t *Tree) build(items []item, left, right, axis int) *node {
	if right < left {
		return nil
	}
	sub := items[left : right+1]
	sort.Slice(sub, func(i, j int) bool {
		return axisValue(sub[i].point, axis) < axisValue(sub[j].point, axis)
	})
	mid := left + (right-left)/2
	n := &node{point: items[mid].point, index: items[mid].index, axis: axis}
	t.nodes = append(t.nodes, n)
	nextAxis := (axis + 1) % 2
	n.left = t.build(items, left, mid-1, nextAxis)
	if n.left != nil {
		n.left.parent = n
	}
	n.right = t.build(items, mid+1, right, nextAxis)
	if n.right != nil {
		n.right.parent = n
	}
	return n
}

// Len returns the number of points in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Result is a nearest-neighbor match: the matched point, its original
// index in the slice passed to Build, and the squared distance to the
// query point.
type Result struct {
	Point vec2.Vec2
	Index int
	Dist2 float64
}

// Nearest returns the point in the tree closest to q. Panics if the tree
// is empty.
func (t *Tree) Nearest(q vec2.Vec2) Result {
	if t.root == nil {
		panic("kdtree: Nearest called on empty tree")
	}

	// Descend to the leaf region containing q.
	cur := t.root
	var leaf *node
	for cur != nil {
		leaf = cur
		if axisValue(q, cur.axis) < axisValue(cur.point, cur.axis) {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}

	best := leaf
	bestDist := q.Dist2(leaf.point)

	// The descent stops at the first node whose child on q's side is
	// empty; its other child may still hold a closer point.
	if d := axisValue(leaf.point, leaf.axis) - axisValue(q, leaf.axis); d*d < bestDist {
		searchSubtree(q, leaf.left, &bestDist, &best)
		searchSubtree(q, leaf.right, &bestDist, &best)
	}

	// Walk back up to the root, checking ancestors and, where the
	// splitting plane is within bestDist of q, the far subtree too.
	tmp := leaf
	for tmp.parent != nil {
		tmp = tmp.parent
		if d := q.Dist2(tmp.point); d < bestDist {
			bestDist = d
			best = tmp
		}
		axisDist := axisValue(tmp.point, tmp.axis) - axisValue(q, tmp.axis)
		if axisDist*axisDist < bestDist {
			var far *node
			if axisValue(tmp.point, tmp.axis) > axisValue(q, tmp.axis) {
				far = tmp.right
			} else {
				far = tmp.left
			}
			searchSubtree(q, far, &bestDist, &best)
		}
	}

	return Result{Point: best.point, Index: best.index, Dist2: bestDist}
}

func searchSubtree(q vec2.Vec2, n *node, bestDist *float64, best **node) {
	if n == nil {
		return
	}
	if d := q.Dist2(n.point); d < *bestDist {
		*bestDist = d
		*best = n
	}
	axisDist := axisValue(n.point, n.axis) - axisValue(q, n.axis)
	if axisDist*axisDist < *bestDist {
		searchSubtree(q, n.left, bestDist, best)
		searchSubtree(q, n.right, bestDist, best)
		return
	}
	if axisValue(n.point, n.axis) > axisValue(q, n.axis) {
		searchSubtree(q, n.left, bestDist, best)
	} else {
		searchSubtree(q, n.right, bestDist, best)
	}
}

// String renders the tree's size for diagnostics.
func (t *Tree) String() string {
	return fmt.Sprintf("kdtree.Tree{n=%d}", len(t.nodes))
}
