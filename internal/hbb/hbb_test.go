package hbb

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

func TestAddRemoveSingleLeaf(t *testing.T) {
	tree := New()
	h := tree.Add(vec2.Vec2{X: 5, Y: 5}, 2, "agent-a")
	require.Equal(t, 1, tree.Len())
	require.Equal(t, "agent-a", tree.Data(h))

	tree.Remove(h)
	require.Equal(t, 0, tree.Len())
}

// TestHBBInvariants inserts 1000 random leaves in sequence, checking
// bounding-circle containment after every insertion; removes them in
// reverse order, checking the tree shrinks by exactly one leaf each
// time; and expects the root to end with no children.
func TestHBBInvariants(t *testing.T) {
	tree := New()
	rng := rand.New(rand.NewSource(1))

	var handles []*Handle
	for i := 0; i < 1000; i++ {
		c := vec2.Vec2{X: rng.Float64() * 128, Y: rng.Float64() * 128}
		r := 0.5 + rng.Float64()*3
		h := tree.Add(c, r, i)
		handles = append(handles, h)
		require.Truef(t, tree.RootContains(), "a bounding circle fails to contain its leaves after inserting leaf %d", i)
		require.Equal(t, i+1, tree.Len())
	}

	for i := len(handles) - 1; i >= 0; i-- {
		before := tree.Len()
		tree.Remove(handles[i])
		require.Equal(t, before-1, tree.Len())
		if tree.Len() > 0 {
			require.True(t, tree.RootContains())
		}
	}

	root := tree.nodes[tree.root]
	require.Equal(t, noIndex, root.left)
	require.Equal(t, noIndex, root.right)
}

func TestMovePreservesHandle(t *testing.T) {
	tree := New()
	h := tree.Add(vec2.Vec2{X: 0, Y: 0}, 1, "mover")
	tree.Move(h, vec2.Vec2{X: 10, Y: 10})
	c, _ := tree.Circle(h)
	require.Equal(t, vec2.Vec2{X: 10, Y: 10}, c)
	require.Equal(t, "mover", tree.Data(h))
	require.Equal(t, 1, tree.Len())
}

// TestRayDistMatchesSegmentDistance checks that
// rayDist equals the distance from the query point to the closed
// segment, covering the perpendicular-foot-inside-segment case, the
// beyond-p2 case, and the behind-p1 case.
func TestRayDistMatchesSegmentDistance(t *testing.T) {
	p1 := vec2.Vec2{X: 0, Y: 0}
	p2 := vec2.Vec2{X: 10, Y: 0}

	cases := []struct {
		name   string
		c      vec2.Vec2
		want   float64
		behind bool
	}{
		{"perpendicular foot on segment", vec2.Vec2{X: 5, Y: 3}, 3, false},
		{"beyond p2", vec2.Vec2{X: 15, Y: 0}, 5, false},
		{"behind p1", vec2.Vec2{X: -5, Y: 0}, 5, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dist, behind := RayDist(c.c, p1, p2)
			require.InDelta(t, c.want, dist, 1e-9)
			require.Equal(t, c.behind, behind)
		})
	}
}

func TestFetchByRaySelfFilterAndBehind(t *testing.T) {
	tree := New()
	self := "me"
	selfHandle := tree.Add(vec2.Vec2{X: 0, Y: 0}, 1, self)
	_ = selfHandle
	tree.Add(vec2.Vec2{X: 5, Y: 0}, 1, "ahead")
	tree.Add(vec2.Vec2{X: -0.5, Y: 0}, 1, "behind")

	blockedAhead := tree.RayBlocked(vec2.Vec2{X: 0, Y: 0}, vec2.Vec2{X: 1, Y: 0}, 10, self)
	require.True(t, blockedAhead, "an obstacle ahead in range should block")

	blockedShort := tree.RayBlocked(vec2.Vec2{X: 0, Y: 0}, vec2.Vec2{X: 1, Y: 0}, 2, self)
	require.False(t, blockedShort, "an obstacle past the travel range should not block")
}

func TestCollisionTestFindsOverlap(t *testing.T) {
	tree := New()
	tree.Add(vec2.Vec2{X: 0, Y: 0}, 2, "a")
	tree.Add(vec2.Vec2{X: 20, Y: 20}, 2, "b")

	var hits []interface{}
	tree.CollisionTest(vec2.Vec2{X: 1, Y: 0}, 2, func(l Leaf) {
		hits = append(hits, l.Data)
	})
	require.Equal(t, []interface{}{"a"}, hits)
}

func TestFetchByPoint(t *testing.T) {
	tree := New()
	tree.Add(vec2.Vec2{X: 3, Y: 3}, 2, "near")
	tree.Add(vec2.Vec2{X: 50, Y: 50}, 2, "far")

	var found interface{}
	tree.FetchByPoint(vec2.Vec2{X: 3, Y: 4}, func(l Leaf) {
		found = l.Data
	})
	require.Equal(t, "near", found)
}
