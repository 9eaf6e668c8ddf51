// Package sdf builds and samples the signed distance field over a
// bounded grid: SDFMap (scalar distance to nearest obstacle or map edge)
// and VSDFMap (direction and position of that nearest feature).
package sdf

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/sdpf-go/internal/field"
	"github.com/elektrokombinacija/sdpf-go/internal/kdtree"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// Cell is one entry of a VSDFMap: the direction from the grid cell to
// the nearest obstacle or map-edge point, and that point's position.
type Cell struct {
	Dir vec2.Vec2
	Pos vec2.Vec2
}

// Map is the scalar distance field: SDFMap[x,y] = distance to the
// nearest obstacle or map edge, whichever is smaller.
type Map = field.Field[float64]

// VMap is the vector companion field: VMap[x,y].Dir has length equal to
// Map[x,y] up to rounding.
type VMap = field.Field[Cell]

// Build constructs the SDF and its vector companion over a W x H grid:
// for every cell, compare the nearest obstacle point (from tree)
// against the nearest map-edge projection and keep whichever is
// closer. Cells are independent, so rows are farmed out across
// goroutines via errgroup, each writing only the rows it owns.
//
// tree may be nil (a world with no obstacles); every cell's nearest
// feature is then the map edge.
func Build(tree *kdtree.Tree, w, h int) (*Map, *VMap) {
	sdfMap := field.New[float64](w, h)
	vMap := field.New[Cell](w, h)

	var g errgroup.Group
	for y := 0; y < h; y++ {
		y := y
		g.Go(func() error {
			buildRow(tree, sdfMap, vMap, w, h, y)
			return nil
		})
	}
	_ = g.Wait() // buildRow never errors; Wait only synchronizes completion.

	return sdfMap, vMap
}

func buildRow(tree *kdtree.Tree, sdfMap *Map, vMap *VMap, w, h, y int) {
	for x := 0; x < w; x++ {
		p := vec2.Vec2{X: float64(x), Y: float64(y)}

		edgePos, edgeDist2 := nearestEdge(p, w, h)
		dir := edgePos.Sub(p)
		pos := edgePos

		if tree != nil {
			res := tree.Nearest(p)
			if res.Dist2 < edgeDist2 {
				dir = res.Point.Sub(p)
				pos = res.Point
			}
		}

		sdfMap.Set(x, y, dir.Norm())
		vMap.Set(x, y, Cell{Dir: dir, Pos: pos})
	}
}

// nearestEdge returns the closest of the four map-edge projections of p
// and its squared distance.
func nearestEdge(p vec2.Vec2, w, h int) (vec2.Vec2, float64) {
	candidates := [4]vec2.Vec2{
		{X: p.X, Y: 0},
		{X: p.X, Y: float64(h)},
		{X: 0, Y: p.Y},
		{X: float64(w), Y: p.Y},
	}
	best := candidates[0]
	bestDist := p.Dist2(best)
	for _, c := range candidates[1:] {
		if d := p.Dist2(c); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best, bestDist
}

// Sample bilinearly interpolates m at the continuous position (x,y).
// Positions outside [0,W-1] x [0,H-1] yield 0, and positions exactly
// on the high edge fall back to a 1D interpolation along the available
// neighbor.
func Sample(m *Map, x, y float64) float64 {
	const epsilon = 0.0001

	if x < 0 || x > float64(m.Width-1) || y < 0 || y > float64(m.Height-1) {
		return 0
	}

	x1 := int(x)
	y1 := int(y)
	x2 := x1 + 1
	y2 := y1 + 1

	onRightEdge := math.Abs(x-float64(m.Width-1)) <= epsilon
	onBottomEdge := math.Abs(y-float64(m.Height-1)) <= epsilon

	switch {
	case onRightEdge && onBottomEdge:
		return m.At(x1, y1)
	case onRightEdge:
		f1 := m.At(x1, y1)
		f3 := m.At(x1, y2)
		return f1 + (y-float64(y1))*(f3-f1)
	case onBottomEdge:
		f1 := m.At(x1, y1)
		f2 := m.At(x2, y1)
		return f1 + (x-float64(x1))*(f2-f1)
	default:
		f1 := m.At(x1, y1)
		f2 := m.At(x2, y1)
		f3 := m.At(x1, y2)
		f4 := m.At(x2, y2)
		f12 := f1 + (x-float64(x1))*(f2-f1)
		f34 := f3 + (x-float64(x1))*(f4-f3)
		return f12 + (y-float64(y1))*(f34-f12)
	}
}

// SampleVec2 is Sample with a vec2.Vec2 argument.
func SampleVec2(m *Map, p vec2.Vec2) float64 {
	return Sample(m, p.X, p.Y)
}

// DefaultRidgeCos is the default "low directional coherence" threshold
// (cos 30 degrees): an opposite-neighbor pair whose direction vectors
// subtend an angle wider than 30 degrees marks a ridge.
const DefaultRidgeCos = 0.866025403784438

// IsRidge reports whether cell p sits on the medial axis: not on the
// map border, SDFMap[p] above minItemSize, and at least one of the four
// opposite-direction stencils around p has directional coherence below
// cosThreshold.
func IsRidge(sdfMap *Map, vMap *VMap, p vec2.IVec2, minItemSize, cosThreshold float64) bool {
	x, y := int(p.X), int(p.Y)
	if x <= 0 || y <= 0 || x >= sdfMap.Width-1 || y >= sdfMap.Height-1 {
		return false
	}
	if sdfMap.At(x, y) <= minItemSize {
		return false
	}

	dir := func(dx, dy int) vec2.Vec2 {
		return vMap.At(x+dx, y+dy).Dir
	}

	// Four opposite pairs around the 8-neighborhood: N/S, NE/SW, E/W, SE/NW.
	n, s := dir(0, -1), dir(0, 1)
	ne, sw := dir(1, -1), dir(-1, 1)
	e, w := dir(1, 0), dir(-1, 0)
	se, nw := dir(1, 1), dir(-1, -1)

	coherent := func(a, b vec2.Vec2) bool {
		na, nb := a.Norm(), b.Norm()
		if na <= 0 || nb <= 0 {
			return true
		}
		// Opposite nearest-feature directions (cos near -1) are the ridge
		// signal: the two cells straddle the medial axis.
		cos := a.Dot(b) / (na * nb)
		return cos >= cosThreshold
	}

	return !coherent(n, s) || !coherent(ne, sw) || !coherent(e, w) || !coherent(se, nw)
}
