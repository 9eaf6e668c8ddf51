package navmesh

import "github.com/elektrokombinacija/sdpf-go/internal/vec2"

// buildWays partitions the road cells left over after node-block
// absorption into 8-connected components, and for every component that
// borders exactly two nodes, runs a grid A* between their centroids and
// records the result as a Way. Components touching any other number of
// nodes are left unconnected: T-junctions are expected to already have
// been absorbed into a node block by isNode.
func buildWays(m *NavMesh, roadCells []vec2.IVec2) {
	islands := getIslands(roadCells, func(p vec2.IVec2) bool {
		return m.InBounds(p) && m.IdMap.At(int(p.X), int(p.Y)) == IDRoad
	})

	for _, island := range islands {
		a, b, ok := borderingNodeIDs(m, island)
		if !ok {
			continue
		}
		buildWay(m, a, b)
	}
}

// borderingNodeIDs scans the 8-neighborhood of every cell in island and
// reports the two distinct node ids it touches, if exactly two exist.
func borderingNodeIDs(m *NavMesh, island []vec2.IVec2) (a, b int32, ok bool) {
	touching := map[int32]bool{}
	for _, p := range island {
		for _, d := range eightNeighbors() {
			q := vec2.IVec2{X: p.X + d.X, Y: p.Y + d.Y}
			if !m.InBounds(q) {
				continue
			}
			if id := m.IdMap.At(int(q.X), int(q.Y)); id > 0 {
				touching[id] = true
			}
		}
	}
	if len(touching) != 2 {
		return 0, 0, false
	}
	ids := make([]int32, 0, 2)
	for id := range touching {
		ids = append(ids, id)
	}
	if ids[0] > ids[1] {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return ids[0], ids[1], true
}

// buildWay runs grid A* between node a's and node b's centroids over
// cells labeled IDRoad or belonging to a or b, and records the result.
func buildWay(m *NavMesh, aID, bID int32) {
	if _, exists := m.Way(aID, bID); exists {
		return
	}

	nodeA, nodeB := m.Node(aID), m.Node(bID)
	allowed := func(p vec2.IVec2) bool {
		v := m.IdMap.At(int(p.X), int(p.Y))
		return v == IDRoad || v == aID || v == bID
	}

	full := gridAStar(m, nodeA.Pos, nodeB.Pos, allowed)
	if full == nil {
		return
	}

	length := 0.0
	distFromA := make([]float64, len(full))
	for i := 1; i < len(full); i++ {
		length += full[i-1].ToVec2().Dist(full[i].ToVec2())
		distFromA[i] = length
	}

	maxPath := append([]vec2.IVec2(nil), full[1:len(full)-1]...)

	minWidth := m.Width
	if m.Height < minWidth {
		minWidth = m.Height
	}
	minWidthF := float64(minWidth)
	for _, p := range maxPath {
		if v := m.SDF.At(int(p.X), int(p.Y)); v < minWidthF {
			minWidthF = v
		}
	}

	way := &Way{P1: nodeA, P2: nodeB, MaxPath: maxPath, Length: length, MinWidth: minWidthF}
	m.Ways[WayKey{A: aID, B: bID}] = way
	nodeA.addWay(way)
	nodeB.addWay(way)

	for i, p := range maxPath {
		fullIdx := i + 1
		distA := distFromA[fullIdx]
		distB := length - distA
		var pd PathDis
		if distA <= distB {
			pd = PathDis{FarID: bID, NearID: aID, Distance: distA, Index: i}
		} else {
			pd = PathDis{FarID: aID, NearID: bID, Distance: distB, Index: i}
		}
		m.PathDisMap.Set(int(p.X), int(p.Y), pd)
	}
}
