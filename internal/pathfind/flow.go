package pathfind

import "github.com/elektrokombinacija/sdpf-go/internal/navmesh"

// flowIterationCap bounds the relaxation loop below; hitting it leaves
// a partial flow field rather than aborting the query.
const flowIterationCap = 1_000_000

// runFlowField computes, for every node reachable from root over
// permanent Ways and any currently-registered TmpWays, the shortest
// distance back to root and the Way to take to get one step closer.
// Nodes are relaxed via a FIFO worklist; a node is re-enqueued whenever
// a shorter distance to it is found, so the result is exact despite the
// non-heap queue, since the node graph this runs over is small. Returns
// the generation stamped on every node this pass reached.
func runFlowField(mesh *navmesh.NavMesh, root *navmesh.Node) int32 {
	gen := mesh.NextGeneration()

	root.FlowValue = 0
	root.FlowFieldFlag = gen
	root.FlowDir = nil

	queue := []*navmesh.Node{root}
	iterations := 0

	for len(queue) > 0 {
		iterations++
		if iterations > flowIterationCap {
			break
		}

		cur := queue[0]
		queue = queue[1:]

		for _, way := range allWays(cur) {
			other := way.OtherEnd(cur)
			if other == nil || other.ID == cur.ID {
				continue
			}
			candidate := cur.FlowValue + way.Length
			if other.FlowFieldFlag != gen || candidate < other.FlowValue {
				other.FlowValue = candidate
				other.FlowFieldFlag = gen
				other.FlowDir = way
				queue = append(queue, other)
			}
		}
	}

	return gen
}

func allWays(n *navmesh.Node) []*navmesh.Way {
	if len(n.TmpWays) == 0 {
		return n.Ways
	}
	combined := make([]*navmesh.Way, 0, len(n.Ways)+len(n.TmpWays))
	combined = append(combined, n.Ways...)
	combined = append(combined, n.TmpWays...)
	return combined
}
