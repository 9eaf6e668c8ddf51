// Package sim is the per-tick simulation driver: each tick it
// recomputes the shared target flow once, advances every agent one
// velocity step along its straightened path while steering around
// dynamic obstacles, and updates each agent's spatial index entry.
package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elektrokombinacija/sdpf-go/internal/agent"
	"github.com/elektrokombinacija/sdpf-go/internal/hbb"
	"github.com/elektrokombinacija/sdpf-go/internal/metrics"
	"github.com/elektrokombinacija/sdpf-go/internal/navmesh"
	"github.com/elektrokombinacija/sdpf-go/internal/pathfind"
	"github.com/elektrokombinacija/sdpf-go/internal/pathopt"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// TickCap bounds the simulation loop when agents never settle.
const TickCap = 4096

// Config configures a Simulator.
type Config struct {
	Mesh   *navmesh.NavMesh
	Agents []*agent.Agent
	Target vec2.Vec2

	// Vel is the maximum per-tick step length.
	Vel float64
	// PathWidth is the clearance OptPath and the ray tests require
	// (agent radius x2, or a caller-chosen value).
	PathWidth float64

	Metrics *metrics.Sim
	Log     *slog.Logger
}

// Simulator drives Config.Agents toward Config.Target one tick at a
// time over a shared dynamic index.
type Simulator struct {
	cfg   Config
	index *hbb.Tree
	log   *slog.Logger
	m     *metrics.Sim
}

// New constructs a Simulator and registers every agent in a fresh HBB
// index at its start position.
func New(cfg Config) *Simulator {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewSim()
	}
	s := &Simulator{cfg: cfg, index: hbb.New(), log: cfg.Log, m: cfg.Metrics}
	for _, a := range cfg.Agents {
		a.Reset()
		a.Register(s.index)
	}
	return s
}

// Run executes the per-tick loop until no agent moves on a tick, the
// tick cap is hit, or ctx is cancelled. Returns the number of ticks
// executed.
func (s *Simulator) Run(ctx context.Context) (int, error) {
	tick := 0
	for ; tick < TickCap; tick++ {
		if err := ctx.Err(); err != nil {
			return tick, fmt.Errorf("sim: cancelled at tick %d: %w", tick, err)
		}

		moved := s.step()
		s.m.Ticks.Inc()
		s.m.HBBLeaves.Set(float64(s.index.Len()))

		if moved == 0 {
			s.log.Debug("simulation converged", "tick", tick)
			return tick + 1, nil
		}
	}
	s.log.Warn("simulation hit tick cap without converging", "cap", TickCap)
	return tick, nil
}

// step runs one tick: a shared target flow, then each agent's own
// graph search, path straightening, and steering move. Returns the
// number of agents that moved this tick.
func (s *Simulator) step() int {
	mesh := s.cfg.Mesh
	tf := pathfind.ComputeTargetFlow(mesh, s.cfg.Target.Floor())
	s.m.Replans.Inc()
	if tf != nil {
		defer tf.Release()
	}

	blocked := 0
	moved := 0
	for _, a := range s.cfg.Agents {
		cellPath, ok := pathfind.AgentPath(mesh, tf, a.Cell())
		if !ok {
			a.Path = nil
			a.PathOpt = nil
			blocked++
			continue
		}
		a.Path = cellPath

		realPath := make([]vec2.Vec2, len(cellPath))
		for i, c := range cellPath {
			realPath[i] = c.ToVec2()
		}
		a.PathOpt = pathopt.OptPath(realPath, mesh.SDF, s.cfg.PathWidth)

		tester := combinedTester{sdfMap: mesh.SDF, pathWidth: s.cfg.PathWidth, dynamic: s.index}
		candidate, didMove := pathopt.NextPos(a.PathOpt, a.CurrentPos, s.cfg.Vel, tester, a)
		a.CurrentPos = candidate
		a.Trail = append(a.Trail, a.CurrentPos)
		if didMove {
			moved++
		} else {
			blocked++
		}
	}

	for _, a := range s.cfg.Agents {
		a.SyncBox()
	}
	s.m.AgentsBlocked.Set(float64(blocked))

	return moved
}
