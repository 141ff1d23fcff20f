package processor

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// EASE-Grid 2.0 global (EPSG:6933): Lambert cylindrical equal-area on the
// WGS84 ellipsoid with a standard parallel of 30°.
const (
	wgs84A          = 6378137.0
	wgs84F          = 1 / 298.257223563
	easeStdParallel = 30.0
)

var (
	wgs84E2 = wgs84F * (2 - wgs84F)
	wgs84E  = math.Sqrt(wgs84E2)
	easeK0  = math.Cos(deg2rad(easeStdParallel)) / math.Sqrt(1-wgs84E2*math.Pow(math.Sin(deg2rad(easeStdParallel)), 2))
	easeQP  = authalicQ(1)
)

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

func authalicQ(sinPhi float64) float64 {
	esin := wgs84E * sinPhi
	return (1 - wgs84E2) * (sinPhi/(1-esin*esin) - (1/(2*wgs84E))*math.Log((1-esin)/(1+esin)))
}

// EASEGridForward projects a lon/lat point into EPSG:6933 metres.
func EASEGridForward(p orb.Point) orb.Point {
	lambda := deg2rad(p[0])
	q := authalicQ(math.Sin(deg2rad(p[1])))
	return orb.Point{wgs84A * easeK0 * lambda, wgs84A * q / (2 * easeK0)}
}

// EASEGridInverse maps EPSG:6933 metres back to lon/lat.
func EASEGridInverse(p orb.Point) orb.Point {
	lambda := p[0] / (wgs84A * easeK0)
	s := 2 * p[1] * easeK0 / (wgs84A * easeQP)
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	beta := math.Asin(s)

	e4 := wgs84E2 * wgs84E2
	e6 := e4 * wgs84E2
	phi := beta +
		(wgs84E2/3+31*e4/180+517*e6/5040)*math.Sin(2*beta) +
		(23*e4/360+251*e6/3780)*math.Sin(4*beta) +
		(761*e6/45360)*math.Sin(6*beta)

	return orb.Point{rad2deg(lambda), rad2deg(phi)}
}

// ProjectGeometry returns a copy of g projected from lon/lat into the
// grid CRS identified by epsg. Only EPSG:6933 is supported.
func ProjectGeometry(g orb.Geometry, epsg int) (orb.Geometry, error) {
	if epsg != DefaultEPSG {
		return nil, fmt.Errorf("unsupported target CRS EPSG:%d", epsg)
	}
	return project.Geometry(orb.Clone(g), EASEGridForward), nil
}
