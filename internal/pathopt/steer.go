package pathopt

import (
	"math"

	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// steeringRotateDeg is the widest avoidance rotation tried to either
// side before a move is reported blocked.
const steeringRotateDeg = 60.0

// steeringRefineSteps is the number of binary-search halvings used to
// find the smallest clearing rotation angle.
const steeringRefineSteps = 8

// RayTester reports whether the straight segment from begin in dir's
// direction, rangeLen distance units long, is blocked for the
// requesting agent. Implementations (internal/hbb's bounding-circle
// tree) self-filter any obstacle that is the requester itself via self.
type RayTester interface {
	RayBlocked(begin, dir vec2.Vec2, rangeLen float64, self interface{}) bool
}

// NextPos resolves one tick's candidate move for an agent at current
// following polyline at speed vel, steering around anything tester
// reports blocked. moved is false if the agent is already at the end of
// polyline, or if every avoidance attempt failed.
func NextPos(polyline []vec2.Vec2, current vec2.Vec2, vel float64, tester RayTester, self interface{}) (candidate vec2.Vec2, moved bool) {
	target, ok := firstBeyond(polyline, current, vel)
	if !ok {
		return current, false
	}
	return avoid(current, target, tester, self)
}

// firstBeyond finds the first polyline point farther than vel from
// current and steps vel toward it; if every point lies within vel, the
// last point (typically the goal) is the candidate directly.
func firstBeyond(polyline []vec2.Vec2, current vec2.Vec2, vel float64) (vec2.Vec2, bool) {
	if len(polyline) == 0 {
		return vec2.Vec2{}, false
	}
	for _, p := range polyline {
		if current.Dist(p) > vel {
			return current.Add(p.Sub(current).Unit().Scale(vel)), true
		}
	}
	last := polyline[len(polyline)-1]
	if last.Dist(current) <= 1e-9 {
		return current, false
	}
	return last, true
}

// avoid ray-tests the straight move from current to candidate, and on
// collision tries rotating the displacement by +60° then -60°,
// binary-searching each rotation toward the smallest clearing angle.
func avoid(current, candidate vec2.Vec2, tester RayTester, self interface{}) (vec2.Vec2, bool) {
	dir := candidate.Sub(current)
	rangeLen := dir.Norm()
	if rangeLen <= 0 {
		return current, false
	}
	if tester == nil || !tester.RayBlocked(current, dir, rangeLen, self) {
		return candidate, true
	}

	if c, ok := searchRotation(current, dir, rangeLen, tester, self, 1); ok {
		return c, true
	}
	if c, ok := searchRotation(current, dir, rangeLen, tester, self, -1); ok {
		return c, true
	}
	return current, false
}

// searchRotation tries rotating dir by sign*60°; if that clears, it
// binary-searches [0, sign*60°] for the smallest-magnitude clearing
// angle over steeringRefineSteps iterations.
func searchRotation(current, dir vec2.Vec2, rangeLen float64, tester RayTester, self interface{}, sign float64) (vec2.Vec2, bool) {
	maxAngle := sign * steeringRotateDeg * math.Pi / 180
	rotated := dir.Rotate(maxAngle)
	if tester.RayBlocked(current, rotated, rangeLen, self) {
		return vec2.Vec2{}, false
	}

	lo, hi := 0.0, maxAngle
	best := rotated
	for i := 0; i < steeringRefineSteps; i++ {
		mid := (lo + hi) / 2
		cand := dir.Rotate(mid)
		if tester.RayBlocked(current, cand, rangeLen, self) {
			lo = mid
		} else {
			hi = mid
			best = cand
		}
	}
	return current.Add(best), true
}
