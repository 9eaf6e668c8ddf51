// Package persist implements the on-disk navmesh layout: config.txt,
// nodes.txt, ways.txt (text), and five raw row-major .chunk dumps
// (sdfMap, vsdfMap, pathDisMap, pathNavMap, idMap), plus a points.txt
// writer/reader for the obstacle cloud that built the mesh. A saved
// mesh loads back field-for-field equal except MinPathWidth, which
// config.txt does not record and which loads as zero, so a built mesh
// never needs rebuilding to be reused.
package persist

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/sdpf-go/internal/field"
	"github.com/elektrokombinacija/sdpf-go/internal/navmesh"
	"github.com/elektrokombinacija/sdpf-go/internal/sdf"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

const (
	configFile  = "config.txt"
	nodesFile   = "nodes.txt"
	waysFile    = "ways.txt"
	vsdfChunk   = "vsdfMap.chunk"
	sdfChunk    = "sdfMap.chunk"
	disChunk    = "pathDisMap.chunk"
	navChunk    = "pathNavMap.chunk"
	idChunk     = "idMap.chunk"
	pointsFile  = "points.txt"
)

// Save writes mesh and the obstacle point cloud that built it to dir,
// creating dir if necessary.
func Save(dir string, mesh *navmesh.NavMesh, points []vec2.Vec2) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: mkdir %s: %w", dir, err)
	}
	if err := writeConfig(dir, mesh); err != nil {
		return err
	}
	if err := writeNodes(dir, mesh); err != nil {
		return err
	}
	if err := writeWays(dir, mesh); err != nil {
		return err
	}
	if err := writeChunks(dir, mesh); err != nil {
		return err
	}
	if err := writePoints(dir, points); err != nil {
		return err
	}
	return nil
}

// Load reads a mesh and its obstacle points back from dir. points.txt
// is optional; if absent, points is returned nil (the mesh's own fields
// are still fully restored from the chunk files).
func Load(dir string) (*navmesh.NavMesh, []vec2.Vec2, error) {
	w, h, minItemSize, err := readConfig(dir)
	if err != nil {
		return nil, nil, err
	}

	m := &navmesh.NavMesh{
		Width:       w,
		Height:      h,
		MinItemSize: minItemSize,
		Ways:        make(map[navmesh.WayKey]*navmesh.Way),
	}

	if err := readChunks(dir, m); err != nil {
		return nil, nil, err
	}
	if err := readNodes(dir, m); err != nil {
		return nil, nil, err
	}
	if err := readWays(dir, m); err != nil {
		return nil, nil, err
	}

	points, err := readPoints(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, err
	}

	return m, points, nil
}

func writeConfig(dir string, mesh *navmesh.NavMesh) error {
	f, err := os.Create(filepath.Join(dir, configFile))
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d %d %g\n", mesh.Width, mesh.Height, mesh.MinItemSize)
	return err
}

func readConfig(dir string) (w, h int, minItemSize float64, err error) {
	f, err := os.Open(filepath.Join(dir, configFile))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("persist: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fscanf(f, "%d %d %g\n", &w, &h, &minItemSize)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("persist: malformed config.txt: %w", err)
	}
	return w, h, minItemSize, nil
}

func writeNodes(dir string, mesh *navmesh.NavMesh) error {
	f, err := os.Create(filepath.Join(dir, nodesFile))
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, n := range mesh.Nodes {
		if _, err := fmt.Fprintf(w, "%d %d\n", n.Pos.X, n.Pos.Y); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readNodes(dir string, mesh *navmesh.NavMesh) error {
	f, err := os.Open(filepath.Join(dir, nodesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("persist: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	id := int32(0)
	for scanner.Scan() {
		id++
		var x, y int32
		if _, err := fmt.Sscanf(scanner.Text(), "%d %d", &x, &y); err != nil {
			return fmt.Errorf("persist: malformed nodes.txt line %d: %w", id, err)
		}
		mesh.Nodes = append(mesh.Nodes, &navmesh.Node{ID: id, Pos: vec2.IVec2{X: x, Y: y}})
	}
	return scanner.Err()
}

func writeWays(dir string, mesh *navmesh.NavMesh) error {
	f, err := os.Create(filepath.Join(dir, waysFile))
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for key, way := range mesh.Ways {
		if _, err := fmt.Fprintf(w, "c%d %d %g %g\n", key.A, key.B, way.Length, way.MinWidth); err != nil {
			return err
		}
		for _, p := range way.MaxPath {
			if _, err := fmt.Fprintf(w, "p%d %d\n", p.X, p.Y); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "e\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readWays(dir string, mesh *navmesh.NavMesh) error {
	f, err := os.Open(filepath.Join(dir, waysFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("persist: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var cur *navmesh.Way
	var curKey navmesh.WayKey
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case 'c':
			var a, b int32
			var length, minWidth float64
			if _, err := fmt.Sscanf(line[1:], "%d %d %g %g", &a, &b, &length, &minWidth); err != nil {
				return fmt.Errorf("persist: malformed ways.txt record: %w", err)
			}
			curKey = navmesh.WayKey{A: a, B: b}
			cur = &navmesh.Way{P1: mesh.Node(a), P2: mesh.Node(b), Length: length, MinWidth: minWidth}
		case 'p':
			if cur == nil {
				return fmt.Errorf("persist: ways.txt 'p' record with no open 'c' record")
			}
			var x, y int32
			if _, err := fmt.Sscanf(line[1:], "%d %d", &x, &y); err != nil {
				return fmt.Errorf("persist: malformed ways.txt point: %w", err)
			}
			cur.MaxPath = append(cur.MaxPath, vec2.IVec2{X: x, Y: y})
		case 'e':
			if cur == nil {
				return fmt.Errorf("persist: ways.txt 'e' record with no open 'c' record")
			}
			mesh.Ways[curKey] = cur
			if cur.P1 != nil {
				cur.P1.Ways = append(cur.P1.Ways, cur)
			}
			if cur.P2 != nil && cur.P2 != cur.P1 {
				cur.P2.Ways = append(cur.P2.Ways, cur)
			}
			cur = nil
		default:
			return fmt.Errorf("persist: malformed ways.txt line %q", line)
		}
	}
	return scanner.Err()
}

func writePoints(dir string, points []vec2.Vec2) error {
	f, err := os.Create(filepath.Join(dir, pointsFile))
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, p := range points {
		if _, err := fmt.Fprintf(w, "%g %g\n", p.X, p.Y); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readPoints(dir string) ([]vec2.Vec2, error) {
	f, err := os.Open(filepath.Join(dir, pointsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []vec2.Vec2
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var x, y float64
		if _, err := fmt.Sscanf(scanner.Text(), "%g %g", &x, &y); err != nil {
			return nil, fmt.Errorf("persist: malformed points.txt line: %w", err)
		}
		points = append(points, vec2.Vec2{X: x, Y: y})
	}
	return points, scanner.Err()
}

// writeChunks dumps SDFMap, VSDFMap, PathDisMap, PathNavMap and IdMap
// as raw row-major cell arrays.
func writeChunks(dir string, mesh *navmesh.NavMesh) error {
	if err := writeChunk(filepath.Join(dir, sdfChunk), mesh.Width, mesh.Height, func(w *bufio.Writer, x, y int) error {
		return binary.Write(w, binary.LittleEndian, mesh.SDF.At(x, y))
	}); err != nil {
		return err
	}
	if err := writeChunk(filepath.Join(dir, vsdfChunk), mesh.Width, mesh.Height, func(w *bufio.Writer, x, y int) error {
		c := mesh.VSDF.At(x, y)
		if err := binary.Write(w, binary.LittleEndian, c.Dir); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, c.Pos)
	}); err != nil {
		return err
	}
	if err := writeChunk(filepath.Join(dir, idChunk), mesh.Width, mesh.Height, func(w *bufio.Writer, x, y int) error {
		return binary.Write(w, binary.LittleEndian, mesh.IdMap.At(x, y))
	}); err != nil {
		return err
	}
	if err := writeChunk(filepath.Join(dir, disChunk), mesh.Width, mesh.Height, func(w *bufio.Writer, x, y int) error {
		pd := mesh.PathDisMap.At(x, y)
		return writePathDis(w, pd)
	}); err != nil {
		return err
	}
	if err := writeChunk(filepath.Join(dir, navChunk), mesh.Width, mesh.Height, func(w *bufio.Writer, x, y int) error {
		pn := mesh.PathNavMap.At(x, y)
		return writePathNav(w, pn)
	}); err != nil {
		return err
	}
	return nil
}

func writeChunk(path string, w, h int, cell func(*bufio.Writer, int, int) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if err := cell(bw, x, y); err != nil {
				return fmt.Errorf("persist: writing %s: %w", path, err)
			}
		}
	}
	return bw.Flush()
}

// writePathDis/writePathNav encode their struct's fields in a fixed
// order with fixed-width types (Index as int32, not Go's
// platform-width int), so a written chunk's byte layout does not
// depend on the writer's architecture.
func writePathDis(w *bufio.Writer, pd navmesh.PathDis) error {
	for _, v := range []interface{}{pd.FarID, pd.NearID, pd.Distance, int32(pd.Index)} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func writePathNav(w *bufio.Writer, pn navmesh.PathNav) error {
	if err := binary.Write(w, binary.LittleEndian, pn.Target); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, pn.Cost)
}

func readChunks(dir string, mesh *navmesh.NavMesh) error {
	w, h := mesh.Width, mesh.Height
	mesh.SDF = field.New[float64](w, h)
	mesh.VSDF = field.New[sdf.Cell](w, h)
	mesh.IdMap = field.New[int32](w, h)
	mesh.SearchMap = field.New[int32](w, h)
	mesh.PathDisMap = field.New[navmesh.PathDis](w, h)
	mesh.PathNavMap = field.New[navmesh.PathNav](w, h)

	if err := readChunk(filepath.Join(dir, sdfChunk), w, h, func(r readerPeeker, x, y int) error {
		var v float64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return err
		}
		mesh.SDF.Set(x, y, v)
		return nil
	}); err != nil {
		return err
	}
	if err := readChunk(filepath.Join(dir, vsdfChunk), w, h, func(r readerPeeker, x, y int) error {
		var c sdf.Cell
		if err := binary.Read(r, binary.LittleEndian, &c.Dir); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &c.Pos); err != nil {
			return err
		}
		mesh.VSDF.Set(x, y, c)
		return nil
	}); err != nil {
		return err
	}
	if err := readChunk(filepath.Join(dir, idChunk), w, h, func(r readerPeeker, x, y int) error {
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return err
		}
		mesh.IdMap.Set(x, y, v)
		return nil
	}); err != nil {
		return err
	}
	if err := readChunk(filepath.Join(dir, disChunk), w, h, func(r readerPeeker, x, y int) error {
		pd, err := readPathDis(r)
		if err != nil {
			return err
		}
		mesh.PathDisMap.Set(x, y, pd)
		return nil
	}); err != nil {
		return err
	}
	if err := readChunk(filepath.Join(dir, navChunk), w, h, func(r readerPeeker, x, y int) error {
		pn, err := readPathNav(r)
		if err != nil {
			return err
		}
		mesh.PathNavMap.Set(x, y, pn)
		return nil
	}); err != nil {
		return err
	}
	return nil
}

type readerPeeker interface {
	Read(p []byte) (int, error)
}

func readChunk(path string, w, h int, cell func(readerPeeker, int, int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if err := cell(r, x, y); err != nil {
				return fmt.Errorf("persist: reading %s: %w", path, err)
			}
		}
	}
	return nil
}

func readPathDis(r readerPeeker) (navmesh.PathDis, error) {
	var pd navmesh.PathDis
	var idx int32
	if err := binary.Read(r, binary.LittleEndian, &pd.FarID); err != nil {
		return pd, err
	}
	if err := binary.Read(r, binary.LittleEndian, &pd.NearID); err != nil {
		return pd, err
	}
	if err := binary.Read(r, binary.LittleEndian, &pd.Distance); err != nil {
		return pd, err
	}
	if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
		return pd, err
	}
	pd.Index = int(idx)
	return pd, nil
}

func readPathNav(r readerPeeker) (navmesh.PathNav, error) {
	var pn navmesh.PathNav
	if err := binary.Read(r, binary.LittleEndian, &pn.Target); err != nil {
		return pn, err
	}
	if err := binary.Read(r, binary.LittleEndian, &pn.Cost); err != nil {
		return pn, err
	}
	return pn, nil
}
