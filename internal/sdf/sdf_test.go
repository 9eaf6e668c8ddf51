package sdf

import (
	"math"
	"testing"

	"github.com/elektrokombinacija/sdpf-go/internal/field"
	"github.com/elektrokombinacija/sdpf-go/internal/kdtree"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

func TestBuildEmptyWorldMatchesEdgeDistance(t *testing.T) {
	w, h := 32, 32
	sdfMap, vMap := Build(nil, w, h)

	x, y := 16, 16
	got := sdfMap.At(x, y)
	want := 16.0 // distance to nearest edge at the center of a 32x32 grid.
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("SDFMap[16,16] = %v, want %v", got, want)
	}

	if d := vMap.At(x, y).Dir.Norm(); math.Abs(d-got) > 1e-9 {
		t.Errorf("VSDFMap[16,16].Dir norm = %v, want %v to match SDFMap", d, got)
	}
}

func TestBuildDirMatchesSDFEverywhere(t *testing.T) {
	points := []vec2.Vec2{{X: 10, Y: 10}, {X: 20, Y: 5}}
	tree := kdtree.Build(points)
	w, h := 32, 32
	sdfMap, vMap := Build(tree, w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := sdfMap.At(x, y)
			want := vMap.At(x, y).Dir.Norm()
			if math.Abs(got-want) > 1e-6 {
				t.Fatalf("cell (%d,%d): SDFMap=%v, |VSDFMap.Dir|=%v", x, y, got, want)
			}
		}
	}
}

func TestSampleBilinearMidpoint(t *testing.T) {
	m := fieldOf(2, 2, []float64{0, 10, 20, 30})
	got := Sample(m, 0.5, 0.5)
	want := 15.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Sample(0.5,0.5) = %v, want %v", got, want)
	}
}

func TestSampleOutOfBoundsReturnsZero(t *testing.T) {
	m := fieldOf(2, 2, []float64{0, 10, 20, 30})
	if got := Sample(m, -1, 0); got != 0 {
		t.Errorf("Sample(-1,0) = %v, want 0", got)
	}
	if got := Sample(m, 5, 5); got != 0 {
		t.Errorf("Sample(5,5) = %v, want 0", got)
	}
}

func TestIsRidgeBorderCellsNeverRidge(t *testing.T) {
	_, vMap := Build(nil, 16, 16)
	sdfMap, _ := Build(nil, 16, 16)
	if IsRidge(sdfMap, vMap, vec2.IVec2{X: 0, Y: 5}, 0, DefaultRidgeCos) {
		t.Errorf("border cell reported as ridge")
	}
}

func TestIsRidgeCorridorCenterline(t *testing.T) {
	// A straight horizontal corridor: obstacles above and below a
	// centerline at y=8. The ridge should follow y=8.
	var points []vec2.Vec2
	for x := 0; x < 64; x++ {
		points = append(points, vec2.Vec2{X: float64(x), Y: 0})
		points = append(points, vec2.Vec2{X: float64(x), Y: 16})
	}
	tree := kdtree.Build(points)
	sdfMap, vMap := Build(tree, 64, 17)

	if !IsRidge(sdfMap, vMap, vec2.IVec2{X: 32, Y: 8}, 0, DefaultRidgeCos) {
		t.Errorf("expected ridge at corridor centerline (32,8)")
	}
}

// fieldOf builds a *Map directly from row-major data for table tests
// that need to control exact cell values.
func fieldOf(w, h int, data []float64) *Map {
	m := field.New[float64](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, data[y*w+x])
		}
	}
	return m
}
