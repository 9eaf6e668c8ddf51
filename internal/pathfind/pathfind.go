// Package pathfind answers graph-level shortest-path queries over a
// navmesh.NavMesh: splicing transient way segments at a query's start
// and target positions and running a generation-counter flow field
// rooted at the target across both permanent and transient ways.
package pathfind

import (
	"github.com/elektrokombinacija/sdpf-go/internal/navmesh"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// edgeCap bounds the number of edges a query will traverse while
// following flow directions; a chain longer than this is a graph cycle.
const edgeCap = 512

// virtualStartID and virtualTargetID mark a query's transient splice
// endpoints; real node ids are always positive.
const (
	virtualStartID  int32 = -1
	virtualTargetID int32 = -2
)

// TargetFlow is the result of ComputeTargetFlow: the mesh's node flow
// values/directions are valid for this generation, rooted at a virtual
// node spliced onto the target's road foothold. It is reused across
// every agent sharing the same target in a tick; only the start-side
// splice differs per agent.
type TargetFlow struct {
	mesh *navmesh.NavMesh
	gen  int32

	// footNode is the node the target's flow is rooted at: the node the
	// foothold sits on directly, or a virtual node spliced onto the way
	// the foothold sits on. nil means the foothold lies on a road
	// component with no graph at all (a wayless corridor); AgentPath
	// then falls back to navmesh.RoadPath instead of the flow field.
	footNode  *navmesh.Node
	footTail  []vec2.IVec2 // cells from the raw target position to its foothold
	foot      vec2.IVec2
	splicedAt []*navmesh.Node // real nodes whose TmpWays must be cleared
}

// ComputeTargetFlow resolves target to its road foothold, splices at
// most one virtual node onto the foothold's way (or none, if the
// foothold is already a node), and runs a generation-counter flow field
// over the mesh's permanent ways plus that single splice. Returns nil
// if target cannot reach the road.
//
// Release must be called once the returned TargetFlow is no longer
// needed, to clear the transient splice from the mesh's nodes.
func ComputeTargetFlow(mesh *navmesh.NavMesh, target vec2.IVec2) *TargetFlow {
	tail, foot, ok := navmesh.ToRoad(mesh, target)
	if !ok {
		return nil
	}

	tf := &TargetFlow{mesh: mesh, foot: foot, footTail: tail}

	pd := mesh.PathDisMap.At(int(foot.X), int(foot.Y))
	switch {
	case pd.NearID == 0 && pd.FarID > 0:
		// The foothold is a node centroid: root the flow there directly,
		// no splice needed.
		tf.footNode = mesh.Node(pd.FarID)
	case pd.NearID > 0:
		vn := &navmesh.Node{ID: virtualTargetID, Pos: foot}
		spliceWays(mesh, vn, pd)
		tf.footNode = vn
		tf.splicedAt = append(tf.splicedAt, mesh.Node(pd.FarID), mesh.Node(pd.NearID))
	default:
		// No PathDisMap entry: either a node-block cell away from the
		// centroid (IdMap still names the node) or a road component that
		// never produced a way. The latter leaves footNode nil, which
		// AgentPath resolves via RoadPath.
		if id := mesh.IdMap.At(int(foot.X), int(foot.Y)); id > 0 {
			tf.footNode = mesh.Node(id)
		}
	}

	if tf.footNode != nil {
		tf.gen = runFlowField(mesh, tf.footNode)
	}
	return tf
}

// Release clears the transient splice this TargetFlow registered.
func (tf *TargetFlow) Release() {
	for _, n := range tf.splicedAt {
		if n != nil {
			n.TmpWays = nil
		}
	}
}

// spliceWays attaches up to two transient Ways from vn toward the two
// real nodes bordering the way the foothold sits on, slicing the real
// way's MaxPath from the foothold's index. If the
// foothold sits at a node cell, pd.NearID is 0 and this is never called
// (ComputeTargetFlow roots the flow at the node directly instead).
func spliceWays(mesh *navmesh.NavMesh, vn *navmesh.Node, pd navmesh.PathDis) {
	realWay, ok := mesh.Way(pd.FarID, pd.NearID)
	if !ok {
		return
	}
	near := mesh.Node(pd.NearID)
	far := mesh.Node(pd.FarID)

	nearSlice := sliceToward(realWay, pd.Index, near)
	nearWay := &navmesh.Way{P1: vn, P2: near, MaxPath: nearSlice, Length: pd.Distance, MinWidth: sliceMinWidth(mesh, nearSlice)}
	vn.Ways = append(vn.Ways, nearWay)
	near.TmpWays = append(near.TmpWays, nearWay)

	farSlice := sliceToward(realWay, pd.Index, far)
	farWay := &navmesh.Way{P1: vn, P2: far, MaxPath: farSlice, Length: realWay.Length - pd.Distance, MinWidth: sliceMinWidth(mesh, farSlice)}
	vn.Ways = append(vn.Ways, farWay)
	far.TmpWays = append(far.TmpWays, farWay)
}

// sliceToward returns the cells of way.MaxPath strictly between the
// foothold at idx and node, oriented so index 0 is nearest the
// foothold.
func sliceToward(way *navmesh.Way, idx int, node *navmesh.Node) []vec2.IVec2 {
	var cells []vec2.IVec2
	if way.P1 == node {
		cells = append(cells, way.MaxPath[:idx]...)
		reverse(cells)
	} else {
		cells = append(cells, way.MaxPath[idx+1:]...)
	}
	return cells
}

// sliceMinWidth recomputes the minimum SDF value over a spliced
// sub-polyline directly from the mesh's SDF. Deriving it from the full
// way's minWidth would be wrong: the narrowest cell may lie outside
// the slice.
func sliceMinWidth(mesh *navmesh.NavMesh, cells []vec2.IVec2) float64 {
	min := float64(mesh.Width + mesh.Height)
	for _, c := range cells {
		if v := mesh.SDF.At(int(c.X), int(c.Y)); v < min {
			min = v
		}
	}
	return min
}

func reverse(cells []vec2.IVec2) {
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
}
