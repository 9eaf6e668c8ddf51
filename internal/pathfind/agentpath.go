package pathfind

import (
	"github.com/elektrokombinacija/sdpf-go/internal/navmesh"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// AgentPath resolves start's road foothold and, against an already
// computed TargetFlow, splices only the start side: it compares the
// pre-computed flow values of the start way's two endpoints in O(1)
// and never re-runs the flow field, so one TargetFlow serves every
// agent in a tick. Footholds with no node/way graph to search (a
// wayless road component on either end) fall back to a grid A* along
// the road cells themselves. Returns nil, false if start cannot reach
// the road or the road components are disjoint.
func AgentPath(mesh *navmesh.NavMesh, tf *TargetFlow, start vec2.IVec2) ([]vec2.IVec2, bool) {
	if tf == nil {
		return nil, false
	}

	startTail, startFoot, ok := navmesh.ToRoad(mesh, start)
	if !ok {
		return nil, false
	}

	if tf.footNode == nil {
		return roadFallback(mesh, tf, startTail, startFoot)
	}

	pd := mesh.PathDisMap.At(int(startFoot.X), int(startFoot.Y))

	var firstNode *navmesh.Node
	var prefix []vec2.IVec2

	if pd.NearID == 0 {
		if pd.FarID > 0 {
			firstNode = mesh.Node(pd.FarID)
		} else if id := mesh.IdMap.At(int(startFoot.X), int(startFoot.Y)); id > 0 {
			firstNode = mesh.Node(id)
		} else {
			// Wayless road component; the road itself is the only route.
			return roadFallback(mesh, tf, startTail, startFoot)
		}
	} else {
		way, ok := mesh.Way(pd.FarID, pd.NearID)
		if !ok {
			return nil, false
		}
		near := mesh.Node(pd.NearID)
		far := mesh.Node(pd.FarID)

		costNear, nearOK := reachCost(near, tf.gen, pd.Distance)
		costFar, farOK := reachCost(far, tf.gen, way.Length-pd.Distance)

		switch {
		case nearOK && (!farOK || costNear <= costFar):
			firstNode = near
			prefix = sliceToward(way, pd.Index, near)
		case farOK:
			firstNode = far
			prefix = sliceToward(way, pd.Index, far)
		default:
			return nil, false
		}
	}

	if firstNode == nil || firstNode.FlowFieldFlag != tf.gen {
		return nil, false
	}
	prefix = append(prefix, firstNode.Pos)

	chain, ok := followFlow(firstNode, tf)
	if !ok {
		return nil, false
	}

	path := make([]vec2.IVec2, 0, len(startTail)+len(prefix)+len(chain)+len(tf.footTail))
	path = append(path, startTail...)
	path = append(path, prefix...)
	path = append(path, chain...)
	if n := len(tf.footTail); n > 1 {
		for i := n - 2; i >= 0; i-- {
			path = append(path, tf.footTail[i])
		}
	}
	return path, true
}

// roadFallback stitches startTail, a grid A* along road cells between
// the two footholds, and the reversed target tail into one path. This
// is how a world whose ridge has no junctions (hence no graph) still
// pathfinds: both footholds land on the same road component and the
// road is the route.
func roadFallback(mesh *navmesh.NavMesh, tf *TargetFlow, startTail []vec2.IVec2, startFoot vec2.IVec2) ([]vec2.IVec2, bool) {
	road := navmesh.RoadPath(mesh, startFoot, tf.foot)
	if road == nil {
		return nil, false
	}
	path := make([]vec2.IVec2, 0, len(startTail)+len(road)+len(tf.footTail))
	path = append(path, startTail...)
	path = append(path, road[1:]...)
	if n := len(tf.footTail); n > 1 {
		for i := n - 2; i >= 0; i-- {
			path = append(path, tf.footTail[i])
		}
	}
	return path, true
}

// reachCost reports the cost to reach the target through node, given
// the extra distance along the agent's own way to reach node.
func reachCost(node *navmesh.Node, gen int32, wayDistance float64) (float64, bool) {
	if node == nil || node.FlowFieldFlag != gen {
		return 0, false
	}
	return wayDistance + node.FlowValue, true
}

// followFlow walks from as FlowDir chain until reaching tf.footNode,
// concatenating each traversed Way's cells oriented toward the target.
func followFlow(from *navmesh.Node, tf *TargetFlow) ([]vec2.IVec2, bool) {
	var chain []vec2.IVec2
	cur := from
	edges := 0
	for cur != tf.footNode {
		if cur.FlowFieldFlag != tf.gen || cur.FlowDir == nil {
			return nil, false
		}
		edges++
		if edges > edgeCap {
			return nil, false
		}
		way := cur.FlowDir
		next := way.OtherEnd(cur)
		if way.P1 == cur {
			chain = append(chain, way.MaxPath...)
		} else {
			seg := append([]vec2.IVec2(nil), way.MaxPath...)
			reverse(seg)
			chain = append(chain, seg...)
		}
		chain = append(chain, next.Pos)
		cur = next
	}
	return chain, true
}

// BuildNodePath is the single-query convenience entry point: it
// composes ComputeTargetFlow and AgentPath back-to-back, so it is
// observably identical to running both splices for one query at once,
// and releases the target splice before returning.
func BuildNodePath(mesh *navmesh.NavMesh, start, target vec2.IVec2) ([]vec2.IVec2, bool) {
	tf := ComputeTargetFlow(mesh, target)
	if tf == nil {
		return nil, false
	}
	defer tf.Release()
	return AgentPath(mesh, tf, start)
}
