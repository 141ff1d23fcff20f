package utils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	proc "github.com/nci/gsky-ndvi/processor"
)

// ParseAOI decodes a GeoJSON geometry, feature or feature collection and
// returns its polygonal part as the area of interest.
func ParseAOI(data []byte) (orb.Geometry, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, &proc.InvalidGeometryError{Reason: fmt.Sprintf("invalid GeoJSON: %v", err)}
	}

	var geoms []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, &proc.InvalidGeometryError{Reason: fmt.Sprintf("invalid feature collection: %v", err)}
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, &proc.InvalidGeometryError{Reason: fmt.Sprintf("invalid feature: %v", err)}
		}
		geoms = append(geoms, f.Geometry)
	case "":
		return nil, &proc.InvalidGeometryError{Reason: "GeoJSON object has no type"}
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, &proc.InvalidGeometryError{Reason: fmt.Sprintf("invalid geometry: %v", err)}
		}
		geoms = append(geoms, g.Geometry())
	}

	return proc.AOIFromGeometries(geoms)
}

// NDVIRequestBody is the JSON body accepted by the NDVI endpoint.
type NDVIRequestBody struct {
	AOI           json.RawMessage `json:"aoi"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	MaxCloudCover *float64        `json:"max_cloud_cover"`
	Composite     *bool           `json:"include_composite"`
}

// Default search window used when a request omits its dates.
var (
	DefaultStartDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	DefaultEndDate   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
)

// ParseNDVIRequest decodes a request body into a pipeline request, filling
// unset fields from defaultCloud and the default dates.
func ParseNDVIRequest(data []byte, defaultCloud float64) (*proc.NDVIRequest, bool, error) {
	var body NDVIRequestBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, false, fmt.Errorf("invalid request body: %v", err)
	}
	if len(body.AOI) == 0 {
		return nil, false, &proc.InvalidGeometryError{Reason: "aoi is required"}
	}

	aoi, err := ParseAOI(body.AOI)
	if err != nil {
		return nil, false, err
	}

	req := &proc.NDVIRequest{
		AOI:           aoi,
		StartTime:     DefaultStartDate,
		EndTime:       DefaultEndDate,
		MaxCloudCover: proc.CloudLimit(defaultCloud),
	}
	if body.StartDate != "" {
		if req.StartTime, err = ParseISODate(body.StartDate); err != nil {
			return nil, false, err
		}
	}
	if body.EndDate != "" {
		if req.EndTime, err = ParseISODate(body.EndDate); err != nil {
			return nil, false, err
		}
	}
	if req.EndTime.Before(req.StartTime) {
		return nil, false, fmt.Errorf("end_date %s precedes start_date %s", body.EndDate, body.StartDate)
	}
	if body.MaxCloudCover != nil {
		if err := checkCloudCover(*body.MaxCloudCover); err != nil {
			return nil, false, err
		}
		req.MaxCloudCover = proc.CloudLimit(*body.MaxCloudCover)
	}

	includeComposite := true
	if body.Composite != nil {
		includeComposite = *body.Composite
	}
	return req, includeComposite, nil
}

func checkCloudCover(v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("max_cloud_cover must be within [0, 100]: %v", v)
	}
	return nil
}

// CloudLimitFlag turns a command line cloud cover value into a search
// limit. Negative values mean no limit.
func CloudLimitFlag(v float64) (*float64, error) {
	if v < 0 {
		return nil, nil
	}
	if err := checkCloudCover(v); err != nil {
		return nil, err
	}
	return proc.CloudLimit(v), nil
}
