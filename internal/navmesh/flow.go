package navmesh

import "github.com/elektrokombinacija/sdpf-go/internal/vec2"

// narrowPenalty, divided by a cell's clearance, discourages the flow
// field from routing through narrow passages.
const narrowPenalty = 1000.0

// buildNavFlowField computes PathNavMap: every road-labeled cell seeds
// cost 0, and a breadth-first flood fill assigns every reachable cell a
// step back toward the nearest seed, penalized for passing through
// cells narrower than MinPathWidth. Seeding covers every road cell, not
// just way polylines and node centroids: a road component that never
// produced a way (a straight corridor has a ridge but no junctions)
// must still attract ToRoad. "Visited this pass" is the mesh's
// SearchMap generation counter, so the field is never cleared between
// builds.
func buildNavFlowField(m *NavMesh) {
	m.PathNavMap.Fill(PathNav{Target: offRoad, Cost: -1})
	gen := m.NextGeneration()

	finalized := func(p vec2.IVec2) bool {
		return m.SearchMap.At(int(p.X), int(p.Y)) == gen
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.IdMap.At(x, y) == IDFree {
				continue
			}
			m.SearchMap.Set(x, y, gen)
			m.PathNavMap.Set(x, y, PathNav{Target: offRoad, Cost: 0})
		}
	}

	var queue []vec2.IVec2
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.IdMap.At(x, y) == IDFree {
				continue
			}
			for _, d := range eightNeighbors() {
				q := vec2.IVec2{X: int32(x) + d.X, Y: int32(y) + d.Y}
				if m.InBounds(q) && !finalized(q) {
					queue = append(queue, q)
				}
			}
		}
	}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		if finalized(pos) {
			continue
		}

		bestCost := -1.0
		var bestNeighbor vec2.IVec2
		for _, d := range eightNeighbors() {
			n := vec2.IVec2{X: pos.X + d.X, Y: pos.Y + d.Y}
			if !m.InBounds(n) || !finalized(n) {
				continue
			}
			stepLen := d.ToVec2().Norm()
			cost := m.PathNavMap.At(int(n.X), int(n.Y)).Cost + stepLen + pathPenalty(m, pos)
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				bestNeighbor = n
			}
		}

		if bestCost < 0 {
			continue
		}

		m.SearchMap.Set(int(pos.X), int(pos.Y), gen)
		m.PathNavMap.Set(int(pos.X), int(pos.Y), PathNav{Target: bestNeighbor, Cost: bestCost})
		for _, d := range eightNeighbors() {
			q := vec2.IVec2{X: pos.X + d.X, Y: pos.Y + d.Y}
			if m.InBounds(q) && !finalized(q) {
				queue = append(queue, q)
			}
		}
	}
}

func pathPenalty(m *NavMesh, pos vec2.IVec2) float64 {
	width := m.SDF.At(int(pos.X), int(pos.Y))
	if width > m.MinPathWidth {
		return 0
	}
	if width <= 0 {
		width = 1e-6
	}
	return narrowPenalty / width
}

// ToRoad follows PathNavMap.Target from start until reaching a road
// cell, returning the traversed cell sequence and the on-road foothold
// cell. ok is false if start is unreachable.
func ToRoad(m *NavMesh, start vec2.IVec2) (path []vec2.IVec2, foothold vec2.IVec2, ok bool) {
	if !m.InBounds(start) {
		panic("navmesh: ToRoad called with out-of-bounds cell")
	}

	cur := start
	for {
		path = append(path, cur)
		nav := m.PathNavMap.At(int(cur.X), int(cur.Y))
		if nav.Cost < 0 {
			return nil, vec2.IVec2{}, false
		}
		if nav.Target == offRoad {
			break
		}
		cur = nav.Target
	}

	tail := path[len(path)-1]
	if m.IdMap.At(int(tail.X), int(tail.Y)) == IDFree {
		return nil, vec2.IVec2{}, false
	}
	return path, tail, true
}
