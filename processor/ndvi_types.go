package processor

import (
	"context"
	"time"

	"github.com/paulmach/orb"
)

const ISOFormat = "2006-01-02T15:04:05.000Z"

const (
	DefaultEPSG          = 6933
	DefaultResolution    = 10.0
	DefaultCoarsenFactor = 4
	DefaultMaxAreaKm2    = 500.0
	DefaultChunkSize     = 512
	DefaultNIRBand       = "B08"
	DefaultRedBand       = "B04"
)

type Asset struct {
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// CatalogItem is a single scene as returned by a catalogue search.
// A nil CloudCover means the catalogue did not report one.
type CatalogItem struct {
	ID         string                 `json:"id"`
	Collection string                 `json:"collection"`
	Platform   string                 `json:"platform,omitempty"`
	Datetime   time.Time              `json:"datetime"`
	CloudCover *float64               `json:"cloud_cover,omitempty"`
	Footprint  orb.Geometry           `json:"-"`
	Assets     map[string]Asset       `json:"assets"`
	Properties map[string]interface{} `json:"-"`
}

func (it CatalogItem) cloudCover() float64 {
	if it.CloudCover == nil {
		return 100
	}
	return *it.CloudCover
}

type SearchRequest struct {
	Collection    string
	BBox          orb.Bound
	Intersects    orb.Geometry
	StartTime     time.Time
	EndTime       time.Time
	MaxCloudCover *float64
	Limit         int
}

// DateRange renders the search interval in the ISO-8601 interval form
// understood by STAC APIs.
func (r SearchRequest) DateRange() string {
	return r.StartTime.UTC().Format(time.RFC3339) + "/" + r.EndTime.UTC().Format(time.RFC3339)
}

type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]CatalogItem, error)
}

type AssetSigner interface {
	Sign(ctx context.Context, item CatalogItem) (CatalogItem, error)
}

// BandSource identifies one band of one scene ready for retrieval.
type BandSource struct {
	ItemID   string
	Band     string
	Href     string
	Datetime time.Time
}

// BandReader retrieves a window of a band reprojected onto the target grid.
// The returned slice is row-major with w.Rows*w.Cols values and NaN where
// the source has no data.
type BandReader interface {
	ReadBand(ctx context.Context, src BandSource, grid GridSpec, w Window) ([]float64, error)
}

type BandNames struct {
	NIR string
	Red string
}

func (b BandNames) withDefaults() BandNames {
	if b.NIR == "" {
		b.NIR = DefaultNIRBand
	}
	if b.Red == "" {
		b.Red = DefaultRedBand
	}
	return b
}

type Statistics struct {
	Mean       float64 `json:"mean"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	ValidCount int     `json:"-"`
}

type ResultStatus string

const (
	StatusOK          ResultStatus = "ok"
	StatusNoScenes    ResultStatus = "no_scenes"
	StatusNoValidData ResultStatus = "no_valid_data"
)

// NDVIRequest is one composite request. A nil MaxCloudCover searches
// without a cloud cover limit; a limit of 0 only accepts cloud free scenes.
type NDVIRequest struct {
	AOI           orb.Geometry
	StartTime     time.Time
	EndTime       time.Time
	MaxCloudCover *float64
}

// CloudLimit returns a cloud cover limit of v percent.
func CloudLimit(v float64) *float64 {
	return &v
}

type AOIInfo struct {
	WKT  string     `json:"wkt"`
	BBox [4]float64 `json:"bbox"`
	Area float64    `json:"area_km2"`
}

type NDVIResult struct {
	Status        ResultStatus `json:"status"`
	AOI           AOIInfo      `json:"aoi"`
	ScenesFound   int          `json:"scenes_found"`
	ScenesUsed    int          `json:"scenes_selected"`
	SceneIDs      []string     `json:"scene_ids,omitempty"`
	Statistics    *Statistics  `json:"statistics,omitempty"`
	Composite     *Raster      `json:"composite,omitempty"`
	Preview       *Raster      `json:"preview,omitempty"`
	ComputeMillis int64        `json:"compute_ms"`
}
