package navmesh

import "github.com/elektrokombinacija/sdpf-go/internal/vec2"

// defaultArmArea is the probe radius for isNode's arm rays and the
// half-width of a node's absorption block.
const defaultArmArea = 2

// armDirections walks the 8 compass directions in angular order (N, NE,
// E, SE, S, SW, W, NW), so that adjacent entries are adjacent arms;
// isNode counts rising edges around this cycle.
var armDirections = [8]vec2.IVec2{
	{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
	{X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1},
}

// isNode reports whether road cell p has three or more arms: directional
// sectors whose next `area` cells are all road cells. The 8 sectors are
// walked as a closed loop; a rising (false->true) edge, including the
// wraparound from the last sector back to the first, counts as one arm.
// A straight corridor has exactly two arms (both ends of the ridge) and
// is never a node.
func isNode(m *NavMesh, p vec2.IVec2, area int) bool {
	var arms [8]bool
	for i, d := range armDirections {
		arms[i] = rayIsRoad(m, p, d, area)
	}

	transitions := 0
	for i := 0; i < 8; i++ {
		prev := arms[(i+7)%8]
		if !prev && arms[i] {
			transitions++
		}
	}
	return transitions >= 3
}

func rayIsRoad(m *NavMesh, p, dir vec2.IVec2, area int) bool {
	for k := 1; k <= area; k++ {
		q := vec2.IVec2{X: p.X + dir.X*int32(k), Y: p.Y + dir.Y*int32(k)}
		if !m.InBounds(q) || m.IdMap.At(int(q.X), int(q.Y)) != IDRoad {
			return false
		}
	}
	return true
}

// buildNodeBlocks scans roadCells for node candidates, absorbs each
// qualifying cell's (2*area+1)^2 neighborhood of road cells
// into a single pool, groups that pool into 8-connected islands, and
// turns each island into a Node at its cell-centroid (or nearest island
// cell, if the centroid itself isn't part of the island). Returns the
// subset of roadCells not absorbed into any node block, which is what
// remains to become Way polylines.
func buildNodeBlocks(m *NavMesh, roadCells []vec2.IVec2, area int) []vec2.IVec2 {
	absorbed := make(map[vec2.IVec2]bool)

	for _, p := range roadCells {
		if !isNode(m, p, area) {
			continue
		}
		for dy := -area; dy <= area; dy++ {
			for dx := -area; dx <= area; dx++ {
				q := vec2.IVec2{X: p.X + int32(dx), Y: p.Y + int32(dy)}
				if m.InBounds(q) && m.IdMap.At(int(q.X), int(q.Y)) == IDRoad {
					absorbed[q] = true
				}
			}
		}
	}

	if len(absorbed) == 0 {
		return roadCells
	}

	blockCells := make([]vec2.IVec2, 0, len(absorbed))
	for p := range absorbed {
		blockCells = append(blockCells, p)
	}

	islands := getIslands(blockCells, func(p vec2.IVec2) bool { return absorbed[p] })

	for _, island := range islands {
		id := int32(len(m.Nodes) + 1)
		centroid := cellCentroid(island)
		pos := nearestInIsland(island, centroid)

		n := &Node{ID: id, Pos: pos}
		m.Nodes = append(m.Nodes, n)

		for _, p := range island {
			m.IdMap.Set(int(p.X), int(p.Y), id)
		}
		m.PathDisMap.Set(int(pos.X), int(pos.Y), PathDis{FarID: id, NearID: 0, Distance: 0, Index: 0})
	}

	remaining := roadCells[:0]
	for _, p := range roadCells {
		if !absorbed[p] {
			remaining = append(remaining, p)
		}
	}
	return remaining
}

func cellCentroid(cells []vec2.IVec2) vec2.IVec2 {
	var sx, sy int64
	for _, c := range cells {
		sx += int64(c.X)
		sy += int64(c.Y)
	}
	n := int64(len(cells))
	return vec2.IVec2{X: int32(sx / n), Y: int32(sy / n)}
}

func nearestInIsland(island []vec2.IVec2, target vec2.IVec2) vec2.IVec2 {
	best := island[0]
	bestDist := target.ToVec2().Dist2(best.ToVec2())
	for _, p := range island[1:] {
		if d := target.ToVec2().Dist2(p.ToVec2()); d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}
