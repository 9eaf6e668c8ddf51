// Command sdpf builds a navigation mesh from an obstacle point cloud,
// runs the per-tick agent simulation toward a shared target, and
// prints each agent's arrival summary.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/elektrokombinacija/sdpf-go/internal/agent"
	"github.com/elektrokombinacija/sdpf-go/internal/navmesh"
	"github.com/elektrokombinacija/sdpf-go/internal/persist"
	"github.com/elektrokombinacija/sdpf-go/internal/sim"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

func main() {
	pointsPath := flag.String("points", "", "path to a points.txt obstacle cloud (required)")
	width := flag.Int("width", 64, "mesh width in cells")
	height := flag.Int("height", 32, "mesh height in cells")
	minItemSize := flag.Float64("min-item-size", 2, "minimum obstacle feature size (SDF cell scale)")
	minPathWidth := flag.Float64("min-path-width", 3, "minimum clearance required to build a way")
	targetX := flag.Float64("target-x", 0, "shared target x")
	targetY := flag.Float64("target-y", 0, "shared target y")
	vel := flag.Float64("vel", 2, "per-tick agent step length")
	agentRadius := flag.Float64("agent-radius", 1, "agent collision radius")
	saveDir := flag.String("save", "", "if set, persist the built mesh to this directory before simulating")
	logLevel := flag.String("log-level", "info", "slog level: debug, info, warn, error")

	flag.Parse()

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "sdpf: invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *pointsPath == "" {
		fmt.Fprintln(os.Stderr, "sdpf: -points is required")
		os.Exit(1)
	}

	points, err := loadPoints(*pointsPath)
	if err != nil {
		logger.Error("failed to load points", "path", *pointsPath, "err", err)
		os.Exit(1)
	}

	logger.Info("building mesh", "points", len(points), "width", *width, "height", *height)
	mesh := navmesh.BuildMesh(points, *width, *height, *minItemSize, *minPathWidth)
	logger.Info("mesh built", "nodes", len(mesh.Nodes), "ways", len(mesh.Ways))

	if *saveDir != "" {
		if err := persist.Save(*saveDir, mesh, points); err != nil {
			logger.Error("failed to persist mesh", "dir", *saveDir, "err", err)
			os.Exit(1)
		}
		logger.Info("mesh persisted", "dir", *saveDir)
	}

	agents := demoAgents(mesh, *agentRadius)
	if len(agents) == 0 {
		logger.Warn("no agent starting positions found with clearance above the agent radius; nothing to simulate")
		return
	}

	s := sim.New(sim.Config{
		Mesh:      mesh,
		Agents:    agents,
		Target:    vec2.Vec2{X: *targetX, Y: *targetY},
		Vel:       *vel,
		PathWidth: 2 * (*agentRadius),
		Log:       logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ticks, err := s.Run(ctx)
	if err != nil {
		logger.Error("simulation ended early", "err", err, "ticks", ticks)
		os.Exit(1)
	}

	fmt.Printf("Converged after %d ticks\n", ticks)
	for _, a := range agents {
		fmt.Printf("  agent %d: start=%v end=%v clearance=%.3f\n",
			a.ID, a.StartPos, a.CurrentPos, mesh.SDF.At(int(a.CurrentPos.X), int(a.CurrentPos.Y)))
	}
}

// demoAgents places a small fleet at evenly spaced cells along the
// mesh's horizontal midline, skipping any cell whose clearance does not
// exceed radius.
func demoAgents(mesh *navmesh.NavMesh, radius float64) []*agent.Agent {
	var agents []*agent.Agent
	id := 1
	for i := 0; i < 4; i++ {
		x := (i + 1) * mesh.Width / 5
		y := mesh.Height / 2
		if x <= 0 || x >= mesh.Width || y <= 0 || y >= mesh.Height {
			continue
		}
		if mesh.SDF.At(x, y) <= radius {
			continue
		}
		agents = append(agents, agent.New(id, vec2.Vec2{X: float64(x), Y: float64(y)}, radius))
		id++
	}
	return agents
}

func loadPoints(path string) ([]vec2.Vec2, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []vec2.Vec2
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var x, y float64
		if _, err := fmt.Sscanf(scanner.Text(), "%g %g", &x, &y); err != nil {
			return nil, fmt.Errorf("malformed point line %q: %w", scanner.Text(), err)
		}
		points = append(points, vec2.Vec2{X: x, Y: y})
	}
	return points, scanner.Err()
}
