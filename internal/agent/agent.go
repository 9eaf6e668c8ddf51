// Package agent holds the moving-agent record shared by pathfind,
// pathopt, hbb and sim, so each consumer doesn't carry its own copy of
// the same state.
package agent

import (
	"github.com/elektrokombinacija/sdpf-go/internal/hbb"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// Agent is one moving agent: its start and current continuous
// position, its radius (half its path width for pathopt, and its
// collision radius in the HBB), the cell-indexed path the last graph
// search produced, and the straightened polyline pathopt derived from
// it. box is the agent's back-handle into the dynamic index, present
// only once the agent has registered with one.
type Agent struct {
	ID int

	StartPos   vec2.Vec2
	CurrentPos vec2.Vec2
	Radius     float64

	// Path is the cell-indexed sequence the last graph search produced
	// (internal/pathfind.AgentPath); PathOpt is pathopt.OptPath's
	// straightened polyline derived from it. Both are cached on the
	// agent so repeated steering ticks within a replan cycle don't
	// recompute them.
	Path    []vec2.IVec2
	PathOpt []vec2.Vec2

	// Trail is the simulation's recorded history of committed positions.
	Trail []vec2.Vec2

	box   *hbb.Handle
	index *hbb.Tree
}

// New constructs an agent at start with the given collision/path
// radius. It does not register with any index; call Register for that.
func New(id int, start vec2.Vec2, radius float64) *Agent {
	return &Agent{ID: id, StartPos: start, CurrentPos: start, Radius: radius}
}

// Register inserts the agent into index at its current position and
// stores the back-handle. A previously registered agent is first
// removed from its old index.
func (a *Agent) Register(index *hbb.Tree) {
	a.Disconnect()
	a.box = index.Add(a.CurrentPos, a.Radius, a)
	a.index = index
}

// Disconnect removes the agent from its current index, if any. Safe to
// call on an already-disconnected agent.
func (a *Agent) Disconnect() {
	if a.box != nil && a.index != nil {
		a.index.Remove(a.box)
	}
	a.box = nil
	a.index = nil
}

// SyncBox moves the agent's index leaf to match CurrentPos. Called
// once per tick after a position is committed.
func (a *Agent) SyncBox() {
	if a.box != nil && a.index != nil {
		a.index.Move(a.box, a.CurrentPos)
	}
}

// Reset restores the agent to its start position and clears its
// simulation trail and cached paths, for starting a fresh run.
func (a *Agent) Reset() {
	a.CurrentPos = a.StartPos
	a.Trail = a.Trail[:0]
	a.Path = nil
	a.PathOpt = nil
	if a.box != nil {
		a.SyncBox()
	}
}

// Cell returns the agent's current position rounded to its containing
// grid cell.
func (a *Agent) Cell() vec2.IVec2 {
	return a.CurrentPos.Floor()
}
