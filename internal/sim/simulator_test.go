package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/sdpf-go/internal/agent"
	"github.com/elektrokombinacija/sdpf-go/internal/navmesh"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// straightCorridor builds a free corridor over rows 1..14 (centreline
// y=7.5) in a 64x16 grid, walled at y=0 and y=15.
func straightCorridor(t *testing.T) *navmesh.NavMesh {
	t.Helper()
	var points []vec2.Vec2
	for x := 0; x < 64; x++ {
		points = append(points, vec2.Vec2{X: float64(x), Y: 0})
		points = append(points, vec2.Vec2{X: float64(x), Y: 15})
	}
	return navmesh.BuildMesh(points, 64, 16, 2, 3)
}

// TestSimulatorTwoAgentsOppositeCorridor drives two agents sharing one
// corridor toward a common target and checks that the run terminates
// and neither agent ends up inside an obstacle.
func TestSimulatorTwoAgentsOppositeCorridor(t *testing.T) {
	mesh := straightCorridor(t)

	a1 := agent.New(1, vec2.Vec2{X: 8, Y: 8}, 3)
	a2 := agent.New(2, vec2.Vec2{X: 56, Y: 8}, 3)

	s := New(Config{
		Mesh:      mesh,
		Agents:    []*agent.Agent{a1, a2},
		Target:    vec2.Vec2{X: 8, Y: 8}, // a1 starts on the target and holds; a2 must cross the corridor toward it
		Vel:       2,
		PathWidth: 6,
	})

	ticks, err := s.Run(context.Background())
	require.NoError(t, err)
	require.LessOrEqual(t, ticks, TickCap)

	for _, a := range []*agent.Agent{a1, a2} {
		clearance := mesh.SDF.At(int(a.CurrentPos.X), int(a.CurrentPos.Y))
		require.Greaterf(t, clearance, a.Radius-1e-6, "agent %d ended inside an obstacle: pos=%v clearance=%v", a.ID, a.CurrentPos, clearance)
	}
}

func TestSimulatorConvergesWithinTickCap(t *testing.T) {
	mesh := straightCorridor(t)
	a1 := agent.New(1, vec2.Vec2{X: 8, Y: 8}, 2)

	s := New(Config{
		Mesh:      mesh,
		Agents:    []*agent.Agent{a1},
		Target:    vec2.Vec2{X: 56, Y: 8},
		Vel:       3,
		PathWidth: 4,
	})

	ticks, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Less(t, ticks, TickCap, "single agent down an open corridor should converge well before the tick cap")
	require.InDelta(t, 56, a1.CurrentPos.X, 6)
}
