package processor

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ClipMask marks the grid cells whose centres fall inside an AOI that has
// already been projected into the grid CRS.
type ClipMask struct {
	grid  GridSpec
	polys []orb.Polygon
	bound orb.Bound
}

func NewClipMask(grid GridSpec, projectedAOI orb.Geometry) *ClipMask {
	return &ClipMask{
		grid:  grid,
		polys: footprintPolygons(projectedAOI),
		bound: projectedAOI.Bound(),
	}
}

func (m *ClipMask) Inside(row, col int) bool {
	pt := m.grid.CellCentre(row, col)
	if !m.bound.Contains(pt) {
		return false
	}
	for _, p := range m.polys {
		if planar.PolygonContains(p, pt) {
			return true
		}
	}
	return false
}

// Apply sets every cell of the row-major window data outside the AOI to NaN.
func (m *ClipMask) Apply(w Window, data []float64) {
	for r := 0; r < w.Rows; r++ {
		for c := 0; c < w.Cols; c++ {
			if !m.Inside(w.Row+r, w.Col+c) {
				data[r*w.Cols+c] = math.NaN()
			}
		}
	}
}
