package processor

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ValidateAOI checks that g is a non-empty, well-formed polygon or
// multipolygon in lon/lat.
func ValidateAOI(g orb.Geometry) error {
	polys, err := polygons(g)
	if err != nil {
		return err
	}

	b := g.Bound()
	if b.Min[1] < -90 || b.Max[1] > 90 || b.Min[0] < -180 || b.Max[0] > 180 {
		return invalidGeometry("coordinates outside lon/lat range: %v", b)
	}
	if b.Max[0]-b.Min[0] > 180 {
		return invalidGeometry("geometry spans the anti-meridian")
	}

	for pi, p := range polys {
		if reason := polygonProblem(p); reason != "" {
			return invalidGeometry("polygon %d: %s", pi, reason)
		}
	}
	return nil
}

func polygons(g orb.Geometry) ([]orb.Polygon, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return nil, invalidGeometry("empty polygon")
		}
		return []orb.Polygon{geom}, nil
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return nil, invalidGeometry("empty multipolygon")
		}
		return []orb.Polygon(geom), nil
	case nil:
		return nil, invalidGeometry("missing geometry")
	default:
		return nil, invalidGeometry("expected Polygon or MultiPolygon, got %s", g.GeoJSONType())
	}
}

func polygonProblem(p orb.Polygon) string {
	if len(p) == 0 {
		return "empty polygon"
	}
	for ri, r := range p {
		if len(r) < 4 {
			return fmt.Sprintf("ring %d has %d points, need at least 4", ri, len(r))
		}
		if !r.Closed() {
			return fmt.Sprintf("ring %d is not closed", ri)
		}
		for _, pt := range r {
			if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) || math.IsInf(pt[0], 0) || math.IsInf(pt[1], 0) {
				return fmt.Sprintf("ring %d has non-finite coordinates", ri)
			}
		}
		if selfIntersects(r) {
			return fmt.Sprintf("ring %d self-intersects", ri)
		}
	}
	return ""
}

// selfIntersects reports whether any two non-adjacent edges of a closed
// ring touch or cross.
func selfIntersects(r orb.Ring) bool {
	n := len(r) - 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsIntersect(r[i], r[i+1], r[j], r[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

// AOIFromGeometries merges the polygonal members of gs into a single AOI.
// One polygon is returned as-is; several are combined into a multipolygon.
func AOIFromGeometries(gs []orb.Geometry) (orb.Geometry, error) {
	var polys orb.MultiPolygon
	for _, g := range gs {
		switch geom := g.(type) {
		case orb.Polygon:
			polys = append(polys, geom)
		case orb.MultiPolygon:
			polys = append(polys, geom...)
		case orb.Collection:
			for _, sub := range geom {
				if p, ok := sub.(orb.Polygon); ok {
					polys = append(polys, p)
				} else if mp, ok := sub.(orb.MultiPolygon); ok {
					polys = append(polys, mp...)
				}
			}
		}
	}

	switch len(polys) {
	case 0:
		return nil, invalidGeometry("no polygonal geometry found")
	case 1:
		return polys[0], nil
	default:
		return polys, nil
	}
}
