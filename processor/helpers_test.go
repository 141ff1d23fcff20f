package processor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/paulmach/orb"
)

// squareAOI returns a lon/lat polygon that projects to an axis-aligned
// square of side metres in EPSG:6933, with its lower-left corner at the
// projected position of (lon, lat).
func squareAOI(lon, lat, side float64) orb.Polygon {
	ll := EASEGridForward(orb.Point{lon, lat})
	corners := []orb.Point{
		ll,
		{ll[0] + side, ll[1]},
		{ll[0] + side, ll[1] + side},
		{ll[0], ll[1] + side},
		ll,
	}
	ring := orb.Ring{}
	for _, c := range corners {
		ring = append(ring, EASEGridInverse(c))
	}
	return orb.Polygon{ring}
}

func footprint(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

func cloud(v float64) *float64 {
	return &v
}

func testItem(id string, fp orb.Geometry, cc *float64, when time.Time) CatalogItem {
	return CatalogItem{
		ID:         id,
		Collection: "sentinel-2-l2a",
		Datetime:   when,
		CloudCover: cc,
		Footprint:  fp,
		Assets: map[string]Asset{
			DefaultNIRBand: {Href: "https://example.com/" + id + "/B08.tif"},
			DefaultRedBand: {Href: "https://example.com/" + id + "/B04.tif"},
		},
	}
}

// constReader serves a constant value per band and counts reads.
type constReader struct {
	values map[string]float64
	fail   error
	mu     sync.Mutex
	reads  int
}

func (r *constReader) ReadBand(ctx context.Context, src BandSource, grid GridSpec, w Window) ([]float64, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()

	if r.fail != nil {
		return nil, r.fail
	}
	v, found := r.values[src.Band]
	if !found {
		return nil, fmt.Errorf("unknown band %s", src.Band)
	}
	out := make([]float64, w.Size())
	for i := range out {
		out[i] = v
	}
	return out, nil
}

func (r *constReader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

// funcGrid is a Grid whose cells are computed from their coordinates.
type funcGrid struct {
	spec GridSpec
	fn   func(row, col int) float64
	fail func(w Window) error
}

func (g *funcGrid) Spec() GridSpec {
	return g.spec
}

func (g *funcGrid) Block(ctx context.Context, w Window) ([]float64, error) {
	if g.fail != nil {
		if err := g.fail(w); err != nil {
			return nil, err
		}
	}
	out := make([]float64, w.Size())
	for r := 0; r < w.Rows; r++ {
		for c := 0; c < w.Cols; c++ {
			out[r*w.Cols+c] = g.fn(w.Row+r, w.Col+c)
		}
	}
	return out, nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rasterFrom(width, height int, values []float64) *Raster {
	return &Raster{GridSpec: GridSpec{EPSG: DefaultEPSG, Resolution: DefaultResolution, Width: width, Height: height}, Data: values}
}
