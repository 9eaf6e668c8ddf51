// Command bench runs mesh construction, pathfinding, and path
// optimization over a directory of point-cloud scenes, and writes
// per-run timing and path-quality rows to a CSV file.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/elektrokombinacija/sdpf-go/internal/navmesh"
	"github.com/elektrokombinacija/sdpf-go/internal/pathfind"
	"github.com/elektrokombinacija/sdpf-go/internal/pathopt"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// Result holds one scene's build/pathfind/optimize measurements.
type Result struct {
	GoVersion    string
	OS           string
	Arch         string
	Scene        string
	NumPoints    int
	Width        int
	Height       int
	BuildMs      float64
	PathfindMs   float64
	OptimizeMs   float64
	Nodes        int
	Ways         int
	PathFound    bool
	PathLength   float64
	OptPathVerts int
}

func loadPointsFile(path string) ([]vec2.Vec2, error) {
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

// runScene builds a mesh from the scene's points and times one
// representative pathfind + optimize pass between the grid's two
// farthest corners.
func runScene(path string, width, height int, minItemSize, minPathWidth, pathWidth float64) (*Result, error) {
	points, err := loadPointsFile(path)
	if err != nil {
		return nil, err
	}

	r := &Result{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Scene:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		NumPoints: len(points),
		Width:     width,
		Height:    height,
	}

	start := time.Now()
	mesh := navmesh.BuildMesh(points, width, height, minItemSize, minPathWidth)
	r.BuildMs = msSince(start)
	r.Nodes = len(mesh.Nodes)
	r.Ways = len(mesh.Ways)

	from := vec2.IVec2{X: 1, Y: 1}
	to := vec2.IVec2{X: int32(width - 2), Y: int32(height - 2)}

	start = time.Now()
	tf := pathfind.ComputeTargetFlow(mesh, to)
	var cellPath []vec2.IVec2
	if tf != nil {
		cellPath, r.PathFound = pathfind.AgentPath(mesh, tf, from)
		tf.Release()
	}
	r.PathfindMs = msSince(start)

	if r.PathFound {
		for i := 1; i < len(cellPath); i++ {
			r.PathLength += cellPath[i-1].ToVec2().Dist(cellPath[i].ToVec2())
		}

		realPath := make([]vec2.Vec2, len(cellPath))
		for i, c := range cellPath {
			realPath[i] = c.ToVec2()
		}
		start = time.Now()
		opt := pathopt.OptPath(realPath, mesh.SDF, pathWidth)
		r.OptimizeMs = msSince(start)
		r.OptPathVerts = len(opt)
	}

	return r, nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func writeCSV(results []*Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"go_version", "os", "arch", "scene", "num_points", "width", "height",
		"build_ms", "pathfind_ms", "optimize_ms", "nodes", "ways",
		"path_found", "path_length", "opt_path_verts",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.GoVersion, r.OS, r.Arch, r.Scene,
			fmt.Sprintf("%d", r.NumPoints), fmt.Sprintf("%d", r.Width), fmt.Sprintf("%d", r.Height),
			fmt.Sprintf("%.3f", r.BuildMs), fmt.Sprintf("%.3f", r.PathfindMs), fmt.Sprintf("%.3f", r.OptimizeMs),
			fmt.Sprintf("%d", r.Nodes), fmt.Sprintf("%d", r.Ways),
			fmt.Sprintf("%t", r.PathFound), fmt.Sprintf("%.3f", r.PathLength), fmt.Sprintf("%d", r.OptPathVerts),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []*Result) {
	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-28s %10s %10s %10s %8s %6s %6s\n",
		"Scene", "Build(ms)", "Find(ms)", "Opt(ms)", "Found", "Nodes", "Ways")
	fmt.Println(strings.Repeat("-", 84))

	names := make([]string, len(results))
	byName := make(map[string]*Result, len(results))
	for i, r := range results {
		names[i] = r.Scene
		byName[r.Scene] = r
	}
	sort.Strings(names)

	for _, name := range names {
		r := byName[name]
		fmt.Printf("%-28s %10.3f %10.3f %10.3f %8t %6d %6d\n",
			r.Scene, r.BuildMs, r.PathfindMs, r.OptimizeMs, r.PathFound, r.Nodes, r.Ways)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "directory containing *.points.txt scenes")
	outputFile := flag.String("output", "evidence/bench_results.csv", "output CSV file")
	width := flag.Int("width", 64, "mesh width in cells")
	height := flag.Int("height", 32, "mesh height in cells")
	minItemSize := flag.Float64("min-item-size", 2, "minimum obstacle feature size")
	minPathWidth := flag.Float64("min-path-width", 3, "minimum clearance required to build a way")
	pathWidth := flag.Float64("path-width", 4, "clearance required by the path optimizer")

	flag.Parse()

	pattern := filepath.Join(*inputDir, "*.points.txt")
	files, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench: globbing %s: %v\n", pattern, err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "bench: no scenes found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "bench: generate some first with cmd/genpoints\n")
		os.Exit(1)
	}

	var results []*Result
	for _, f := range files {
		r, err := runScene(f, *width, *height, *minItemSize, *minPathWidth, *pathWidth)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bench: %s: %v\n", f, err)
			continue
		}
		results = append(results, r)
	}

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "bench: writing %s: %v\n", *outputFile, err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)

	printSummary(results)
}
