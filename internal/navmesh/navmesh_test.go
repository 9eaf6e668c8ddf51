package navmesh

import (
	"math"
	"testing"

	"github.com/elektrokombinacija/sdpf-go/internal/field"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

func TestBuildMeshEmptyWorld(t *testing.T) {
	m := BuildMesh(nil, 32, 32, 2, 3)

	if got := m.SDF.At(16, 16); math.Abs(got-16) > 1e-9 {
		t.Errorf("SDFMap[16,16] = %v, want 16", got)
	}
	if len(m.Nodes) != 0 {
		t.Errorf("len(Nodes) = %d, want 0", len(m.Nodes))
	}
	if len(m.Ways) != 0 {
		t.Errorf("len(Ways) = %d, want 0", len(m.Ways))
	}
	if _, _, ok := ToRoad(m, vec2.IVec2{X: 5, Y: 5}); ok {
		t.Errorf("ToRoad succeeded in an empty world, want failure")
	}
}

func TestBuildMeshTwoChambers(t *testing.T) {
	// A vertical wall at x=32 with a one-cell gap at y=12 splits a
	// 64x24 grid into two rectangular chambers. Each chamber's medial
	// axis is a horizontal spine with a V-junction at both ends, so the
	// build must produce junction nodes and at least one way.
	var points []vec2.Vec2
	for y := 0; y < 24; y++ {
		if y == 12 {
			continue
		}
		points = append(points, vec2.Vec2{X: 32, Y: float64(y)})
	}
	m := BuildMesh(points, 64, 24, 2, 3)

	if len(m.Nodes) == 0 {
		t.Fatalf("expected junction nodes in a walled chamber, got none")
	}
	if len(m.Ways) == 0 {
		t.Errorf("expected at least one way along the chamber spine, got none")
	}
	for _, n := range m.Nodes {
		if math.Abs(float64(n.Pos.Y)-12) > 4 {
			t.Errorf("node %d at %v sits far off the chamber spine y=12", n.ID, n.Pos)
		}
	}
}

func TestBuildMeshCorridorInteriorHasNoNodes(t *testing.T) {
	// A straight corridor along y=8, walled above and below. The ridge
	// through the middle is a straight line with two arms, so no
	// junction may appear there; map edges close off the corridor ends,
	// where the medial axis is allowed to fork toward the corners.
	var points []vec2.Vec2
	for x := 0; x < 64; x++ {
		points = append(points, vec2.Vec2{X: float64(x), Y: float64(0)})
		points = append(points, vec2.Vec2{X: float64(x), Y: float64(15)})
	}
	m := BuildMesh(points, 64, 16, 2, 3)

	for _, n := range m.Nodes {
		if n.Pos.X > 16 && n.Pos.X < 48 {
			t.Errorf("straight corridor interior produced node %d at %v, want junctions only near the ends", n.ID, n.Pos)
		}
	}
	for y := 0; y < 16; y++ {
		for x := 20; x < 44; x++ {
			if m.IdMap.At(x, y) == IDRoad && y != 7 && y != 8 {
				t.Errorf("corridor ridge strayed off the centerline at (%d,%d)", x, y)
			}
		}
	}
}

func TestIsNodeStraightCorridorNeverFires(t *testing.T) {
	m := &NavMesh{Width: 20, Height: 20}
	m.IdMap = field.New[int32](20, 20)
	for x := 0; x < 20; x++ {
		m.IdMap.Set(x, 10, IDRoad)
	}
	if isNode(m, vec2.IVec2{X: 10, Y: 10}, 2) {
		t.Errorf("isNode fired on a straight corridor cell, want false")
	}
}

func TestIsNodeCrossFires(t *testing.T) {
	m := &NavMesh{Width: 20, Height: 20}
	m.IdMap = field.New[int32](20, 20)
	for x := 0; x < 20; x++ {
		m.IdMap.Set(x, 10, IDRoad)
	}
	for y := 0; y < 20; y++ {
		m.IdMap.Set(10, y, IDRoad)
	}
	if !isNode(m, vec2.IVec2{X: 10, Y: 10}, 2) {
		t.Errorf("isNode did not fire at a four-way cross, want true")
	}
}

func TestPathDisMapAgreesWithPathNavMapOnRoad(t *testing.T) {
	var points []vec2.Vec2
	for x := 0; x < 64; x++ {
		points = append(points, vec2.Vec2{X: float64(x), Y: float64(0)})
		points = append(points, vec2.Vec2{X: float64(x), Y: float64(15)})
	}
	m := BuildMesh(points, 64, 16, 2, 3)

	for x := 20; x < 44; x++ {
		if m.IdMap.At(x, 8) == IDRoad {
			if cost := m.PathNavMap.At(x, 8).Cost; cost != 0 {
				t.Errorf("on-road cell (%d,8): PathNavMap.cost = %v, want 0 on a road cell", x, cost)
			}
		}
	}
}
