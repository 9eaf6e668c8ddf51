package hbb

import "github.com/elektrokombinacija/sdpf-go/internal/vec2"

// Leaf is the information a query callback receives about a matched
// leaf: its stored data, current center, and radius.
type Leaf struct {
	Data   interface{}
	Center vec2.Vec2
	R      float64
}

func circlesIntersect(ac vec2.Vec2, ar float64, bc vec2.Vec2, br float64) bool {
	theta := ar + br
	return theta*theta > ac.Dist2(bc)
}

func inBoxPoint(c vec2.Vec2, r float64, p vec2.Vec2) bool {
	return p.Dist(c) < r
}

// CollisionTest visits every leaf whose circle intersects the query
// circle (center, r), pruning subtrees whose bounding circle misses it.
func (t *Tree) CollisionTest(center vec2.Vec2, r float64, visit func(Leaf)) {
	t.collisionTest(t.root, center, r, visit)
}

func (t *Tree) collisionTest(n index, center vec2.Vec2, r float64, visit func(Leaf)) {
	nn := t.nodes[n]
	if nn.left != noIndex {
		l := t.nodes[nn.left]
		if circlesIntersect(l.center, l.r, center, r) {
			if l.data != nil {
				visit(Leaf{l.data, l.center, l.r})
			} else {
				t.collisionTest(nn.left, center, r, visit)
			}
		}
	}
	if nn.right != noIndex {
		rr := t.nodes[nn.right]
		if circlesIntersect(rr.center, rr.r, center, r) {
			if rr.data != nil {
				visit(Leaf{rr.data, rr.center, rr.r})
			} else {
				t.collisionTest(nn.right, center, r, visit)
			}
		}
	}
}

// FetchByPoint visits every leaf whose circle contains p.
func (t *Tree) FetchByPoint(p vec2.Vec2, visit func(Leaf)) {
	t.fetchByPoint(t.root, p, visit)
}

func (t *Tree) fetchByPoint(n index, p vec2.Vec2, visit func(Leaf)) {
	nn := t.nodes[n]
	if nn.left != noIndex {
		l := t.nodes[nn.left]
		if inBoxPoint(l.center, l.r, p) {
			if l.data != nil {
				visit(Leaf{l.data, l.center, l.r})
			} else {
				t.fetchByPoint(nn.left, p, visit)
			}
		}
	}
	if nn.right != noIndex {
		rr := t.nodes[nn.right]
		if inBoxPoint(rr.center, rr.r, p) {
			if rr.data != nil {
				visit(Leaf{rr.data, rr.center, rr.r})
			} else {
				t.fetchByPoint(nn.right, p, visit)
			}
		}
	}
}

// RayDist is the distance from center to the closed segment p1-p2.
// behind reports that center's projection onto the segment's line falls
// before p1: a circle behind the segment's start is "passed around",
// not collided with, during steering. The endpoint regions are detected
// by projection rather than the signed area of the endpoint triangles,
// which degenerates to zero for collinear points no matter how far
// behind p1 they lie.
func RayDist(center, p1, p2 vec2.Vec2) (dist float64, behind bool) {
	if p1 == p2 {
		return center.Dist(p1), false
	}
	seg := p2.Sub(p1)
	if seg.Dot(center.Sub(p1)) < 0 {
		return center.Dist(p1), true
	}
	if seg.Dot(center.Sub(p2)) > 0 {
		return center.Dist(p2), false
	}
	s := (center.X-p1.X)*seg.Y - (center.Y-p1.Y)*seg.X
	return abs(s) / seg.Norm(), false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func segmentIntersects(l node, p1, p2 vec2.Vec2) (dist float64, behind bool, hit bool) {
	dist, behind = RayDist(l.center, p1, p2)
	return dist, behind, dist < l.r
}

// FetchByRay visits every leaf whose circle is within its radius of the
// finite segment p1-p2. visit also receives the segment distance and
// whether the leaf lies behind p1, which steering uses to let an agent
// pass obstacles it has already gone by.
func (t *Tree) FetchByRay(p1, p2 vec2.Vec2, visit func(Leaf, float64, bool)) {
	t.fetchByRay(t.root, p1, p2, visit)
}

func (t *Tree) fetchByRay(n index, p1, p2 vec2.Vec2, visit func(Leaf, float64, bool)) {
	nn := t.nodes[n]
	if nn.left != noIndex {
		l := t.nodes[nn.left]
		if dist, behind, hit := segmentIntersects(l, p1, p2); hit {
			if l.data != nil {
				visit(Leaf{l.data, l.center, l.r}, dist, behind)
			} else {
				t.fetchByRay(nn.left, p1, p2, visit)
			}
		}
	}
	if nn.right != noIndex {
		rr := t.nodes[nn.right]
		if dist, behind, hit := segmentIntersects(rr, p1, p2); hit {
			if rr.data != nil {
				visit(Leaf{rr.data, rr.center, rr.r}, dist, behind)
			} else {
				t.fetchByRay(nn.right, p1, p2, visit)
			}
		}
	}
}

// RayBlocked implements pathopt.RayTester against this index: it walks
// FetchByRay from begin over rangeLen units of dir's direction and
// reports a hit for any leaf found within range that is not self and
// not behind the agent.
func (t *Tree) RayBlocked(begin, dir vec2.Vec2, rangeLen float64, self interface{}) bool {
	unit := dir.Unit()
	if unit.IsZero() {
		return false
	}
	end := begin.Add(unit.Scale(rangeLen))
	blocked := false
	t.FetchByRay(begin, end, func(l Leaf, _ float64, behind bool) {
		if l.Data == self {
			return
		}
		if !behind {
			blocked = true
		}
	})
	return blocked
}
