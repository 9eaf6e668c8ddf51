package kdtree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

func TestNearestExactMatch(t *testing.T) {
	points := []vec2.Vec2{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 5, Y: 5},
	}
	tree := Build(points)
	res := tree.Nearest(vec2.Vec2{X: 5, Y: 5})
	if res.Point != (vec2.Vec2{X: 5, Y: 5}) {
		t.Errorf("Nearest exact = %v, want (5,5)", res.Point)
	}
	if res.Dist2 != 0 {
		t.Errorf("Dist2 = %v, want 0", res.Dist2)
	}
}

func TestNearestAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	points := make([]vec2.Vec2, 200)
	for i := range points {
		points[i] = vec2.Vec2{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}
	tree := Build(points)

	for q := 0; q < 50; q++ {
		query := vec2.Vec2{X: rng.Float64() * 100, Y: rng.Float64() * 100}
		got := tree.Nearest(query)

		bestIdx := -1
		bestDist := math.Inf(1)
		for i, p := range points {
			if d := query.Dist2(p); d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		if got.Index != bestIdx {
			t.Errorf("query %v: kdtree picked index %d (dist2=%v), brute force picked %d (dist2=%v)",
				query, got.Index, got.Dist2, bestIdx, bestDist)
		}
	}
}

func TestNearestSinglePoint(t *testing.T) {
	tree := Build([]vec2.Vec2{{X: 3, Y: 4}})
	res := tree.Nearest(vec2.Vec2{X: 0, Y: 0})
	if res.Point != (vec2.Vec2{X: 3, Y: 4}) {
		t.Errorf("Nearest = %v, want (3,4)", res.Point)
	}
}

func TestBuildPanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Build([]) did not panic")
		}
	}()
	Build(nil)
}

func TestLen(t *testing.T) {
	points := []vec2.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}
	tree := Build(points)
	if tree.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tree.Len())
	}
}
