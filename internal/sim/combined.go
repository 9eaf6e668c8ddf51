package sim

import (
	"github.com/elektrokombinacija/sdpf-go/internal/pathopt"
	"github.com/elektrokombinacija/sdpf-go/internal/sdf"
	"github.com/elektrokombinacija/sdpf-go/internal/vec2"
)

// combinedTester implements pathopt.RayTester by testing both the
// static SDF and the dynamic agent index, reporting a hit if either
// does.
type combinedTester struct {
	sdfMap    *sdf.Map
	pathWidth float64
	dynamic   pathopt.RayTester
}

func (c combinedTester) RayBlocked(begin, dir vec2.Vec2, rangeLen float64, self interface{}) bool {
	unit := dir.Unit()
	if unit.IsZero() {
		return false
	}
	end := begin.Add(unit.Scale(rangeLen))
	if hit, _ := pathopt.RayMarch(c.sdfMap, begin, end, c.pathWidth); hit {
		return true
	}
	if c.dynamic != nil {
		return c.dynamic.RayBlocked(begin, dir, rangeLen, self)
	}
	return false
}
