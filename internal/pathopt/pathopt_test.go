package pathopt

import (
	"testing"

	"github.com/elektrokombinacija/sdpf-go/internal/field"
	"github.com/elektrokombinacija/sdpf-go/internal/sdf"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// openRoom builds an SDF map whose value is the distance to the
// nearest wall of a w x h box, free everywhere, matching an empty
// world's edge-distance field.
func openRoom(w, h int) *sdf.Map {
	m := field.New[float64](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := float64(x)
			if v := float64(w - 1 - x); v < d {
				d = v
			}
			if v := float64(y); v < d {
				d = v
			}
			if v := float64(h - 1 - y); v < d {
				d = v
			}
			m.Set(x, y, d)
		}
	}
	return m
}

func TestRayMarchClearStraightLine(t *testing.T) {
	m := openRoom(64, 64)
	hit, _ := RayMarch(m, vec2.Vec2{X: 10, Y: 32}, vec2.Vec2{X: 50, Y: 32}, 2)
	if hit {
		t.Errorf("RayMarch reported a collision down the open middle of a 64x64 room")
	}
}

func TestRayMarchHitsNearWall(t *testing.T) {
	m := openRoom(64, 64)
	hit, _ := RayMarch(m, vec2.Vec2{X: 1, Y: 32}, vec2.Vec2{X: 40, Y: 32}, 4)
	if !hit {
		t.Errorf("RayMarch should report a collision starting 1 unit from a wall at width 4")
	}
}

func TestOptPathShortInputUnchanged(t *testing.T) {
	m := openRoom(64, 64)
	in := []vec2.Vec2{{X: 5, Y: 5}, {X: 10, Y: 10}}
	out := OptPath(in, m, 2)
	if len(out) != len(in) {
		t.Fatalf("OptPath shortened a 2-point path, want it returned unchanged")
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("OptPath[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestOptPathStraightensOpenRoom(t *testing.T) {
	m := openRoom(64, 64)
	var in []vec2.Vec2
	for x := 5; x <= 55; x++ {
		in = append(in, vec2.Vec2{X: float64(x), Y: 32})
	}
	out := OptPath(in, m, 2)
	if len(out) >= len(in) {
		t.Errorf("OptPath(%d points) = %d points, want fewer over open ground", len(in), len(out))
	}
	if out[0] != in[0] {
		t.Errorf("OptPath first point = %v, want %v", out[0], in[0])
	}
	if out[len(out)-1] != in[len(in)-1] {
		t.Errorf("OptPath last point = %v, want %v", out[len(out)-1], in[len(in)-1])
	}
}

func TestOptPathEmptyInput(t *testing.T) {
	if out := OptPath(nil, openRoom(8, 8), 1); out != nil {
		t.Errorf("OptPath(nil) = %v, want nil", out)
	}
}

type alwaysClear struct{}

func (alwaysClear) RayBlocked(begin, dir vec2.Vec2, rangeLen float64, self interface{}) bool {
	return false
}

type blockedOnce struct {
	blocked bool
}

func (b *blockedOnce) RayBlocked(begin, dir vec2.Vec2, rangeLen float64, self interface{}) bool {
	return b.blocked
}

func TestNextPosGoesDirectWhenClear(t *testing.T) {
	poly := []vec2.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}}
	candidate, moved := NextPos(poly, vec2.Vec2{X: 0, Y: 0}, 3, alwaysClear{}, nil)
	if !moved {
		t.Fatalf("NextPos reported no move with a clear straight line")
	}
	if got := candidate.Dist(vec2.Vec2{X: 3, Y: 0}); got > 1e-6 {
		t.Errorf("NextPos candidate = %v, want close to (3,0)", candidate)
	}
}

func TestNextPosReachesGoalWithinVel(t *testing.T) {
	poly := []vec2.Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}}
	candidate, moved := NextPos(poly, vec2.Vec2{X: 0, Y: 0}, 10, alwaysClear{}, nil)
	if !moved {
		t.Fatalf("NextPos reported no move toward a reachable goal")
	}
	if candidate != (vec2.Vec2{X: 2, Y: 0}) {
		t.Errorf("NextPos candidate = %v, want the goal (2,0)", candidate)
	}
}

func TestNextPosNoMoveAtGoal(t *testing.T) {
	poly := []vec2.Vec2{{X: 0, Y: 0}}
	_, moved := NextPos(poly, vec2.Vec2{X: 0, Y: 0}, 3, alwaysClear{}, nil)
	if moved {
		t.Errorf("NextPos reported movement when already at the only polyline point")
	}
}

func TestAvoidReportsBlockedWhenEverythingFails(t *testing.T) {
	candidate, ok := avoid(vec2.Vec2{X: 0, Y: 0}, vec2.Vec2{X: 5, Y: 0}, &blockedOnce{blocked: true}, nil)
	if ok {
		t.Errorf("avoid succeeded with a tester that blocks every ray, got %v", candidate)
	}
}
