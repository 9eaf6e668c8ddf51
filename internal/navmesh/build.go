package navmesh

import (
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/sdpf-go/internal/field"
	"github.com/elektrokombinacija/sdpf-go/internal/kdtree"
	"github.com/elektrokombinacija/sdpf-go/internal/sdf"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// BuildMesh runs the full build pipeline: SDF -> ridge mask -> largest
// connected component -> node blocks -> ways -> road-attraction flow
// field. points may be empty: the resulting mesh has no nodes or ways
// and SDFMap equals distance-to-edge everywhere.
func BuildMesh(points []vec2.Vec2, w, h int, minItemSize, minPathWidth float64) *NavMesh {
	sdfMap, vMap := buildSDF(points, w, h)

	m := &NavMesh{
		Width:        w,
		Height:       h,
		MinItemSize:  minItemSize,
		MinPathWidth: minPathWidth,
		SDF:          sdfMap,
		VSDF:         vMap,
		Ways:         make(map[WayKey]*Way),
		IdMap:        field.New[int32](w, h),
		SearchMap:    field.New[int32](w, h),
		PathDisMap:   field.New[PathDis](w, h),
		PathNavMap:   field.New[PathNav](w, h),
	}

	// A point-free world degrades to a well-defined "no result" (IdMap
	// all zero, no nodes or ways, ToRoad fails everywhere) rather than
	// extracting a medial axis out of the box edges alone.
	if len(points) == 0 {
		m.PathNavMap.Fill(PathNav{Target: offRoad, Cost: -1})
		return m
	}

	startPoints := buildIdMap(m)
	roadCells := retainLargestIsland(m, startPoints)
	roadCells = buildNodeBlocks(m, roadCells, defaultArmArea)
	buildWays(m, roadCells)
	buildNavFlowField(m)

	return m
}

func buildSDF(points []vec2.Vec2, w, h int) (*sdf.Map, *sdf.VMap) {
	if len(points) == 0 {
		return sdf.Build(nil, w, h)
	}
	return sdf.Build(kdtree.Build(points), w, h)
}

// buildIdMap labels every interior cell as a ridge candidate (-1) or free
// (0) and returns the ridge cells in row-major order. Cells are
// independent, so rows are farmed out across goroutines; each goroutine
// writes only the rows it owns and accumulates its own ridge cells,
// concatenated after Wait so no shared accumulator needs a lock.
func buildIdMap(m *NavMesh) []vec2.IVec2 {
	rowResults := make([][]vec2.IVec2, m.Height)

	var g errgroup.Group
	for y := 0; y < m.Height; y++ {
		y := y
		g.Go(func() error {
			var row []vec2.IVec2
			for x := 0; x < m.Width; x++ {
				p := vec2.IVec2{X: int32(x), Y: int32(y)}
				if sdf.IsRidge(m.SDF, m.VSDF, p, m.MinItemSize, sdf.DefaultRidgeCos) &&
					m.SDF.At(x, y) > m.MinPathWidth {
					m.IdMap.Set(x, y, IDRidge)
					row = append(row, p)
				} else {
					m.IdMap.Set(x, y, IDFree)
				}
			}
			rowResults[y] = row
			return nil
		})
	}
	_ = g.Wait()

	var startPoints []vec2.IVec2
	for _, row := range rowResults {
		startPoints = append(startPoints, row...)
	}
	return startPoints
}

// retainLargestIsland partitions startPoints into 8-connected
// components, keeps the largest, relabels its cells IDRoad, and
// discards the rest back to IDFree, eliminating isolated ridge
// fragments around stray obstacles. Returns the surviving cells.
func retainLargestIsland(m *NavMesh, startPoints []vec2.IVec2) []vec2.IVec2 {
	islands := getIslands(startPoints, func(p vec2.IVec2) bool {
		return m.InBounds(p) && m.IdMap.At(int(p.X), int(p.Y)) == IDRidge
	})

	var largest []vec2.IVec2
	for _, island := range islands {
		if len(island) > len(largest) {
			largest = island
		}
	}

	keep := make(map[vec2.IVec2]bool, len(largest))
	for _, p := range largest {
		keep[p] = true
	}
	for _, p := range startPoints {
		if keep[p] {
			m.IdMap.Set(int(p.X), int(p.Y), IDRoad)
		} else {
			m.IdMap.Set(int(p.X), int(p.Y), IDFree)
		}
	}
	return largest
}

// InBounds reports whether p is a valid cell of the mesh.
func (m *NavMesh) InBounds(p vec2.IVec2) bool {
	return m.IdMap.InBounds(int(p.X), int(p.Y))
}

// getIslands partitions cells into 8-connected components using only
// the cells in the input slice (not a full flood over the grid), used
// for ridge-component retention and for grouping node blocks and way
// components into islands. belongs reports whether a candidate cell is
// part of the same component-eligible set.
func getIslands(cells []vec2.IVec2, belongs func(vec2.IVec2) bool) [][]vec2.IVec2 {
	set := make(map[vec2.IVec2]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}
	visited := make(map[vec2.IVec2]bool, len(cells))
	neighbors := eightNeighbors()

	var islands [][]vec2.IVec2
	for _, start := range cells {
		if visited[start] {
			continue
		}
		var island []vec2.IVec2
		queue := []vec2.IVec2{start}
		visited[start] = true
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			island = append(island, p)
			for _, d := range neighbors {
				q := vec2.IVec2{X: p.X + d.X, Y: p.Y + d.Y}
				if !set[q] || visited[q] || !belongs(q) {
					continue
				}
				visited[q] = true
				queue = append(queue, q)
			}
		}
		islands = append(islands, island)
	}
	return islands
}

func eightNeighbors() []vec2.IVec2 {
	return []vec2.IVec2{
		{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
		{X: -1, Y: 0}, {X: 1, Y: 0},
		{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
	}
}
