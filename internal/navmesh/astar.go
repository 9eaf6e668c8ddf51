package navmesh

import (
	"container/heap"

	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// astarIterationCap bounds grid A* search; hitting it degrades to an
// empty result rather than aborting.
const astarIterationCap = 200000

// gridAStar finds a shortest 8-connected path from start to goal, moving
// only through cells accepted by allowed. Returns nil if goal is
// unreachable or the iteration cap is hit.
func gridAStar(m *NavMesh, start, goal vec2.IVec2, allowed func(vec2.IVec2) bool) []vec2.IVec2 {
	open := &astarHeap{}
	heap.Init(open)
	heap.Push(open, &astarItem{pos: start, g: 0, f: heuristic(start, goal)})

	cameFrom := map[vec2.IVec2]vec2.IVec2{}
	gScore := map[vec2.IVec2]float64{start: 0}
	closed := map[vec2.IVec2]bool{}

	neighbors := eightNeighbors()

	iterations := 0
	for open.Len() > 0 {
		iterations++
		if iterations > astarIterationCap {
			return nil
		}

		cur := heap.Pop(open).(*astarItem)
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true

		if cur.pos == goal {
			return reconstructAStarPath(cameFrom, start, goal)
		}

		for _, d := range neighbors {
			next := vec2.IVec2{X: cur.pos.X + d.X, Y: cur.pos.Y + d.Y}
			if !m.InBounds(next) || closed[next] {
				continue
			}
			if next != goal && !allowed(next) {
				continue
			}
			step := d.ToVec2().Norm()
			tentativeG := gScore[cur.pos] + step
			if existing, ok := gScore[next]; ok && tentativeG >= existing {
				continue
			}
			cameFrom[next] = cur.pos
			gScore[next] = tentativeG
			heap.Push(open, &astarItem{pos: next, g: tentativeG, f: tentativeG + heuristic(next, goal)})
		}
	}
	return nil
}

func heuristic(a, b vec2.IVec2) float64 {
	return a.ToVec2().Dist(b.ToVec2())
}

func reconstructAStarPath(cameFrom map[vec2.IVec2]vec2.IVec2, start, goal vec2.IVec2) []vec2.IVec2 {
	path := []vec2.IVec2{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	// Reverse in place so path runs start -> goal.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// RoadPath runs grid A* between two road cells, moving only along road
// and node-block cells. It is the pathfinder's fallback for road
// components that carry no node/way graph at all: a straight corridor
// has a ridge but no junctions, so the only route between two footholds
// on it is the road itself.
func RoadPath(m *NavMesh, start, goal vec2.IVec2) []vec2.IVec2 {
	return gridAStar(m, start, goal, func(p vec2.IVec2) bool {
		return m.IdMap.At(int(p.X), int(p.Y)) != IDFree
	})
}

type astarItem struct {
	pos  vec2.IVec2
	g, f float64
}

// astarHeap is a min-heap on f-score.
type astarHeap []*astarItem

func (h astarHeap) Len() int            { return len(h) }
func (h astarHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h astarHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *astarHeap) Push(x interface{}) { *h = append(*h, x.(*astarItem)) }
func (h *astarHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
