package processor

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ValidateArea returns the AOI area in km² measured in EPSG:6933 and
// fails with AreaExceededError when it is larger than maxKm2.
func ValidateArea(aoi orb.Geometry, maxKm2 float64) (float64, error) {
	area, err := AreaKm2(aoi)
	if err != nil {
		return 0, err
	}
	if area > maxKm2 {
		return area, &AreaExceededError{Area: area, Limit: maxKm2}
	}
	return area, nil
}

func AreaKm2(aoi orb.Geometry) (float64, error) {
	if err := ValidateAOI(aoi); err != nil {
		return 0, err
	}

	projected, err := ProjectGeometry(aoi, DefaultEPSG)
	if err != nil {
		return 0, err
	}

	area := planar.Area(projected) / 1e6
	if area <= 0 {
		return 0, invalidGeometry("geometry has zero area")
	}
	return area, nil
}
