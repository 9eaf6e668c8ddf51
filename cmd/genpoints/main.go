// Command genpoints generates deterministic obstacle point clouds for
// the navigation engine's scenario tests and benchmarks.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// SceneParams defines parameters for point-cloud generation.
type SceneParams struct {
	Seed        int64   `json:"seed"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Layout      string  `json:"layout"` // "empty", "corridor", "rooms", "scatter"
	GapWidth    int     `json:"gap_width"`
	WallX       int     `json:"wall_x"`
	NumClusters int     `json:"num_clusters"`
	Density     float64 `json:"density"` // scatter layout: probability that each cell gets a point
}

// Scene is a generated point cloud plus the parameters that produced
// it, serialized to a manifest alongside a points.txt in the format
// persist writes and reads.
type Scene struct {
	Name      string      `json:"name"`
	Params    SceneParams `json:"params"`
	NumPoints int         `json:"num_points"`
	Generated string      `json:"generated"`
}

// generatePoints builds an obstacle point cloud from params.
func generatePoints(params SceneParams) []vec2.Vec2 {
	rng := rand.New(rand.NewSource(params.Seed))

	switch params.Layout {
	case "corridor":
		return corridorPoints(params)
	case "rooms":
		return roomsPoints(params, rng)
	case "scatter":
		return scatterPoints(params, rng)
	default:
		return nil
	}
}

// corridorPoints places a single vertical wall with a gap, matching
// the S2/S3 scenario shapes: a wall at WallX spanning the grid height
// except for a GapWidth-wide opening centered vertically.
func corridorPoints(params SceneParams) []vec2.Vec2 {
	var points []vec2.Vec2
	gapLo := params.Height/2 - params.GapWidth/2
	gapHi := gapLo + params.GapWidth
	for y := 0; y < params.Height; y++ {
		if y >= gapLo && y < gapHi {
			continue
		}
		points = append(points, vec2.Vec2{X: float64(params.WallX), Y: float64(y)})
	}
	return points
}

// roomsPoints scatters NumClusters rectangular obstacle blocks, each a
// hollow box outline, across the grid.
func roomsPoints(params SceneParams, rng *rand.Rand) []vec2.Vec2 {
	var points []vec2.Vec2
	for c := 0; c < params.NumClusters; c++ {
		cx := rng.Intn(params.Width)
		cy := rng.Intn(params.Height)
		w := 3 + rng.Intn(6)
		h := 3 + rng.Intn(6)
		for dx := -w / 2; dx <= w/2; dx++ {
			for dy := -h / 2; dy <= h/2; dy++ {
				onBorder := dx == -w/2 || dx == w/2 || dy == -h/2 || dy == h/2
				if !onBorder {
					continue
				}
				x, y := cx+dx, cy+dy
				if x < 0 || x >= params.Width || y < 0 || y >= params.Height {
					continue
				}
				points = append(points, vec2.Vec2{X: float64(x), Y: float64(y)})
			}
		}
	}
	return points
}

// scatterPoints seeds isolated point obstacles at the requested
// density, one independent Bernoulli draw per free cell.
func scatterPoints(params SceneParams, rng *rand.Rand) []vec2.Vec2 {
	var points []vec2.Vec2
	for y := 0; y < params.Height; y++ {
		for x := 0; x < params.Width; x++ {
			if rng.Float64() < params.Density {
				points = append(points, vec2.Vec2{X: float64(x), Y: float64(y)})
			}
		}
	}
	return points
}

func writePointsFile(path string, points []vec2.Vec2) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, p := range points {
		if _, err := fmt.Fprintf(f, "%g %g\n", p.X, p.Y); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	seed := flag.Int64("seed", 42, "random seed for deterministic generation")
	width := flag.Int("width", 64, "grid width")
	height := flag.Int("height", 32, "grid height")
	layout := flag.String("layout", "corridor", "layout: empty, corridor, rooms, scatter")
	gapWidth := flag.Int("gap", 4, "corridor layout: gap width in the wall")
	wallX := flag.Int("wall-x", -1, "corridor layout: wall x position (-1 = center)")
	numClusters := flag.Int("clusters", 6, "rooms layout: number of obstacle blocks")
	density := flag.Float64("density", 0.02, "scatter layout: per-cell obstacle probability")
	outputDir := flag.String("output", "testdata", "output directory")
	name := flag.String("name", "", "scene name (default derived from parameters)")

	flag.Parse()

	if *wallX < 0 {
		*wallX = *width / 2
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "genpoints: creating output directory: %v\n", err)
		os.Exit(1)
	}

	params := SceneParams{
		Seed:        *seed,
		Width:       *width,
		Height:      *height,
		Layout:      *layout,
		GapWidth:    *gapWidth,
		WallX:       *wallX,
		NumClusters: *numClusters,
		Density:     math.Max(0, math.Min(1, *density)),
	}

	sceneName := *name
	if sceneName == "" {
		sceneName = fmt.Sprintf("%s_%dx%d_%d", params.Layout, params.Width, params.Height, params.Seed)
	}

	points := generatePoints(params)

	pointsPath := filepath.Join(*outputDir, sceneName+".points.txt")
	if err := writePointsFile(pointsPath, points); err != nil {
		fmt.Fprintf(os.Stderr, "genpoints: writing %s: %v\n", pointsPath, err)
		os.Exit(1)
	}

	scene := Scene{
		Name:      sceneName,
		Params:    params,
		NumPoints: len(points),
		Generated: time.Now().UTC().Format(time.RFC3339),
	}
	manifestPath := filepath.Join(*outputDir, sceneName+".json")
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "genpoints: marshaling manifest: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "genpoints: writing %s: %v\n", manifestPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated: %s (%d points, %dx%d grid, layout=%s)\n",
		pointsPath, len(points), params.Width, params.Height, params.Layout)
}
