// Package pathopt straightens a cell-indexed navmesh/pathfind polyline
// into a shorter real-valued one by ray-marching against the SDF, and
// resolves a single tick's next move for an agent following that
// polyline, steering around dynamic obstacles.
package pathopt

import (
	"math"

	"github.com/elektrokombinacija/sdpf-go/internal/sdf"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// rayMarchStepCap bounds the marching loop below; a pathologically
// narrow corridor (area_r near zero) could otherwise step forever.
const rayMarchStepCap = 100000

// RayMarch walks from begin toward end in steps no longer than the
// local SDF value, reporting a collision the instant the local
// clearance drops below pathWidth. nearestPoint is the point along the
// walk with the smallest SDF value seen, whether or not a collision
// occurred.
func RayMarch(m *sdf.Map, begin, end vec2.Vec2, pathWidth float64) (hit bool, nearestPoint vec2.Vec2) {
	beginLen := math.Min(sdf.Sample(m, begin.X, begin.Y), begin.Dist(end))
	dir := end.Sub(begin)
	dirNorm := dir.Unit()

	pos := begin.Add(dirNorm.Scale(beginLen))
	nearestDist := sdf.Sample(m, pos.X, pos.Y)
	nearestPoint = pos

	steps := 0
	for pos.Dist2(end) > pathWidth*pathWidth {
		steps++
		if steps > rayMarchStepCap {
			break
		}

		areaR := sdf.Sample(m, pos.X, pos.Y)
		if areaR < nearestDist {
			nearestDist = areaR
			nearestPoint = pos
		}
		if pathWidth > areaR {
			return true, nearestPoint
		}

		remaining := pos.Dist(end)
		step := math.Min(areaR, remaining)
		if step <= 0 {
			break
		}
		pos = pos.Add(dirNorm.Scale(step))
	}
	return false, nearestPoint
}

// optPathIterationCap bounds OptPath's advancement loop; hitting it
// truncates the output rather than looping forever.
const optPathIterationCap = 100000

// fractionalRefineSteps is the number of binary-search halvings OptPath
// performs within a single segment when no forward vertex is visible at
// all.
const fractionalRefineSteps = 8

// OptPath straightens path greedily: from the current point it finds the
// farthest later vertex a ray-march at pathWidth clearance reaches
// without collision and appends the narrowest-clearance point along that
// ray (see getFarPoint), not the vertex itself; the first kept point and
// path's last vertex are copied as they are. Paths of three or fewer
// points are returned unchanged. If path's start sits inside an obstacle (SDF <=
// pathWidth), the walk skips ahead to the first clear point and
// prepends the raw start verbatim so the agent can still "escape".
// Every advancement step consumes at least one input vertex, so the
// output is never longer than the input.
func OptPath(path []vec2.Vec2, m *sdf.Map, pathWidth float64) []vec2.Vec2 {
	if len(path) == 0 {
		return nil
	}
	if len(path) <= 3 {
		out := make([]vec2.Vec2, len(path))
		copy(out, path)
		return out
	}

	n := len(path)
	k := 0
	for k < n-1 && sdf.Sample(m, path[k].X, path[k].Y) <= pathWidth {
		k++
	}

	out := make([]vec2.Vec2, 0, n)
	if k > 0 {
		out = append(out, path[0])
	}

	cur := path[k]
	out = append(out, cur)

	idx := k + 1
	iterations := 0
	for idx < n-1 {
		iterations++
		if iterations > optPathIterationCap {
			break
		}
		farIdx, nextPoint := getFarPoint(path, m, pathWidth, idx, cur)
		idx = farIdx + 1
		cur = nextPoint
		out = append(out, cur)
	}

	out = append(out, path[n-1])
	return out
}

// getFarPoint binary-searches [idx, len(path)-1] for the farthest
// vertex reachable from cur by an uninterrupted ray-march, returning
// that vertex's index and the nearest-clearance point RayMarch tracked
// along the winning ray; advancing to the tightest point of the ray,
// rather than the vertex itself, keeps the output hugging the widest
// part of each passage. The caller advances past the returned index,
// so every call consumes at least one input vertex.
func getFarPoint(path []vec2.Vec2, m *sdf.Map, pathWidth float64, idx int, cur vec2.Vec2) (int, vec2.Vec2) {
	n := len(path)
	left, right := idx, n-1
	newIdx := -1
	var newPoint vec2.Vec2

	for left <= right {
		mid := (left + right) / 2
		hit, nearest := RayMarch(m, cur, path[mid], pathWidth)
		if hit {
			right = mid - 1
		} else {
			left = mid + 1
			newPoint = nearest
			newIdx = mid
		}
	}

	if newIdx != -1 {
		return newIdx, newPoint
	}

	// No forward vertex at all is visible from cur: refine within the
	// segment toward path[idx] via fractional binary search and advance
	// to the farthest clear partial step instead.
	target := path[idx]
	lo, hi := 0.0, 1.0
	found := false
	var best vec2.Vec2
	for i := 0; i < fractionalRefineSteps; i++ {
		mid := (lo + hi) / 2
		candidate := lerp(cur, target, mid)
		hit, _ := RayMarch(m, cur, candidate, pathWidth)
		if !hit {
			lo = mid
			best = candidate
			found = true
		} else {
			hi = mid
		}
	}
	if found {
		return idx, best
	}
	// Even a vanishingly short step collides; hand back the blocked
	// vertex verbatim and let the walk carry on past it.
	return idx, target
}

func lerp(a, b vec2.Vec2, t float64) vec2.Vec2 {
	return a.Add(b.Sub(a).Scale(t))
}
