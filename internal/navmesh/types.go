// Package navmesh builds the sparse road network (nodes + ways) along
// the medial axis of free space from a signed distance field, and
// answers the "how do I get back on the road" flow-field query. The
// build is a strict pipeline: SDF -> ridge mask -> largest connected
// component -> node detection -> way construction -> road-attraction
// flow field.
package navmesh

import (
	"github.com/elektrokombinacija/sdpf-go/internal/field"
	"github.com/elektrokombinacija/sdpf-go/internal/sdf"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// IdMap cell labels.
const (
	IDFree      int32 = 0  // free, not on the road
	IDRidge     int32 = -1 // candidate ridge cell (transient during build)
	IDRoad      int32 = -2 // confirmed road cell (post-cleanup)
	// id >= 1 means the cell belongs to node id.
)

// PathDis is one PathDisMap cell: for a road cell on a way between
// nodes a and b, FarID is the farther endpoint, NearID the closer one,
// Distance the geodesic distance from the closer endpoint along the way,
// and Index the cell's position in that way's polyline. Node cells hold
// (nodeID, 0, 0, 0).
type PathDis struct {
	FarID, NearID int32
	Distance      float64
	Index         int
}

// PathNav is one PathNavMap cell: Target is the next cell one step
// toward the road along the flood frontier, Cost the accumulated cost.
// Road cells hold (IVec2{-1,-1}, 0); unreachable cells hold
// (IVec2{-1,-1}, -1).
type PathNav struct {
	Target vec2.IVec2
	Cost   float64
}

// offRoad is the PathNavMap target sentinel meaning "this cell is
// itself on the road" (cost 0) or "unreachable" (cost -1).
var offRoad = vec2.IVec2{X: -1, Y: -1}

// Node is a junction (a ridge cell with three or more arms) in the road
// graph.
type Node struct {
	ID  int32
	Pos vec2.IVec2

	// Ways are the permanent Ways touching this node, in the order they
	// were discovered. Cost ties during graph search break toward the
	// first way encountered in this order, keeping queries deterministic.
	Ways []*Way

	// TmpWays holds transient splice Ways registered for the query
	// currently in flight (internal/pathfind); cleared on completion.
	TmpWays []*Way

	// Mesh flow field scratch state (internal/pathfind), valid only
	// when FlowFieldFlag equals the mesh's current generation counter.
	FlowValue     float64
	FlowFieldFlag int32
	FlowDir       *Way
}

// hasWay reports whether w is already registered on this node, so
// callers don't need a full set type for what is at most a handful of
// entries per node.
func (n *Node) hasWay(w *Way) bool {
	for _, existing := range n.Ways {
		if existing == w {
			return true
		}
	}
	return false
}

func (n *Node) addWay(w *Way) {
	if !n.hasWay(w) {
		n.Ways = append(n.Ways, w)
	}
}

// Way is a polyline edge of the road graph between two nodes. By
// invariant P1.ID <= P2.ID, except for transient splice Ways built
// during a pathfind query, which may attach to a virtual endpoint with a
// negative id.
type Way struct {
	P1, P2   *Node
	MaxPath  []vec2.IVec2 // cells strictly between P1.Pos and P2.Pos
	Length   float64
	MinWidth float64
}

// OtherEnd returns the endpoint of w that is not from. Used to walk a
// Node's FlowDir chain one step at a time (internal/pathfind).
func (w *Way) OtherEnd(from *Node) *Node {
	if w.P1 == from {
		return w.P2
	}
	return w.P1
}

// WayKey identifies a permanent Way by its ordered endpoint ids.
type WayKey struct {
	A, B int32
}

// NavMesh owns the road graph and every grid-indexed map built over it.
type NavMesh struct {
	Width, Height int
	MinItemSize   float64
	MinPathWidth  float64

	SDF  *sdf.Map
	VSDF *sdf.VMap

	Nodes []*Node           // dense, 1-based: Nodes[i].ID == i+1
	Ways  map[WayKey]*Way

	IdMap      *field.Field[int32]
	SearchMap  *field.Field[int32]
	PathDisMap *field.Field[PathDis]
	PathNavMap *field.Field[PathNav]

	searchMapID int32 // current generation counter
}

// NextGeneration bumps the mesh's generation counter and returns it, for
// passes (the mesh flow field in internal/pathfind) that need a fresh
// "visited this pass" marker without a field-wide reset.
func (m *NavMesh) NextGeneration() int32 {
	m.searchMapID++
	return m.searchMapID
}

// Node returns the node with the given id, or nil if id is out of range.
func (m *NavMesh) Node(id int32) *Node {
	if id < 1 || int(id) > len(m.Nodes) {
		return nil
	}
	return m.Nodes[id-1]
}

// Way looks up the permanent way between nodes a and b (either order).
func (m *NavMesh) Way(a, b int32) (*Way, bool) {
	if a > b {
		a, b = b, a
	}
	w, ok := m.Ways[WayKey{A: a, B: b}]
	return w, ok
}
