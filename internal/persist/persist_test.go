package persist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/sdpf-go/internal/navmesh"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// corridorPoints builds a vertical wall at x=32 with a one-cell gap
// at y=12, splitting a 64x24 grid into two rectangular chambers whose
// build yields junction nodes and a spine way.
func corridorPoints() []vec2.Vec2 {
	var points []vec2.Vec2
	for y := 0; y < 24; y++ {
		if y == 12 {
			continue
		}
		points = append(points, vec2.Vec2{X: 32, Y: float64(y)})
	}
	return points
}

// TestSaveLoadRoundTrip checks the round-trip property: a mesh
// written to disk and read back must equal the original field-for-field.
func TestSaveLoadRoundTrip(t *testing.T) {
	points := corridorPoints()
	mesh := navmesh.BuildMesh(points, 64, 24, 2, 3)
	require.NotEmpty(t, mesh.Nodes, "scenario should produce at least one node")
	require.NotEmpty(t, mesh.Ways, "scenario should produce at least one way")

	dir := t.TempDir()
	require.NoError(t, Save(dir, mesh, points))

	got, gotPoints, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, mesh.Width, got.Width)
	require.Equal(t, mesh.Height, got.Height)
	require.InDelta(t, mesh.MinItemSize, got.MinItemSize, 1e-9)

	require.Equal(t, len(mesh.Nodes), len(got.Nodes))
	for i, n := range mesh.Nodes {
		require.Equal(t, n.ID, got.Nodes[i].ID)
		require.Equal(t, n.Pos, got.Nodes[i].Pos)
	}

	require.Equal(t, len(mesh.Ways), len(got.Ways))
	for key, way := range mesh.Ways {
		gotWay, ok := got.Ways[key]
		require.Truef(t, ok, "way %v missing after round trip", key)
		require.Equal(t, way.P1.ID, gotWay.P1.ID)
		require.Equal(t, way.P2.ID, gotWay.P2.ID)
		require.InDelta(t, way.Length, gotWay.Length, 1e-9)
		require.InDelta(t, way.MinWidth, gotWay.MinWidth, 1e-9)
		require.Equal(t, way.MaxPath, gotWay.MaxPath)
	}

	for y := 0; y < mesh.Height; y++ {
		for x := 0; x < mesh.Width; x++ {
			require.InDeltaf(t, mesh.SDF.At(x, y), got.SDF.At(x, y), 1e-9, "SDF mismatch at (%d,%d)", x, y)
			require.Equal(t, mesh.IdMap.At(x, y), got.IdMap.At(x, y), "IdMap mismatch at (%d,%d)", x, y)

			wantV, gotV := mesh.VSDF.At(x, y), got.VSDF.At(x, y)
			require.InDelta(t, wantV.Dir.X, gotV.Dir.X, 1e-9)
			require.InDelta(t, wantV.Dir.Y, gotV.Dir.Y, 1e-9)
			require.InDelta(t, wantV.Pos.X, gotV.Pos.X, 1e-9)
			require.InDelta(t, wantV.Pos.Y, gotV.Pos.Y, 1e-9)

			wantPD, gotPD := mesh.PathDisMap.At(x, y), got.PathDisMap.At(x, y)
			require.Equal(t, wantPD.FarID, gotPD.FarID)
			require.Equal(t, wantPD.NearID, gotPD.NearID)
			require.Equal(t, wantPD.Index, gotPD.Index)
			require.InDelta(t, wantPD.Distance, gotPD.Distance, 1e-9)

			wantPN, gotPN := mesh.PathNavMap.At(x, y), got.PathNavMap.At(x, y)
			require.Equal(t, wantPN.Target, gotPN.Target)
			require.InDelta(t, wantPN.Cost, gotPN.Cost, 1e-9)
		}
	}

	require.Equal(t, len(points), len(gotPoints))
	for i, p := range points {
		require.InDelta(t, p.X, gotPoints[i].X, 1e-9)
		require.InDelta(t, p.Y, gotPoints[i].Y, 1e-9)
	}
}

// TestLoadEmptyMesh checks that an empty world still
// round-trips a valid, empty mesh.
func TestLoadEmptyMesh(t *testing.T) {
	mesh := navmesh.BuildMesh(nil, 16, 16, 2, 3)
	dir := t.TempDir()
	require.NoError(t, Save(dir, mesh, nil))

	got, points, err := Load(dir)
	require.NoError(t, err)
	require.Empty(t, got.Nodes)
	require.Empty(t, got.Ways)
	require.Nil(t, points)
	require.InDelta(t, 8, got.SDF.At(8, 8), 1e-9)
}
