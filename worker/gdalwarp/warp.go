package gdalwarp

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"

	proc "github.com/nci/gsky-ndvi/processor"
)

var registerOnce sync.Once

// Register loads the GDAL drivers. It is safe to call more than once.
func Register() {
	registerOnce.Do(godal.RegisterAll)
}

// WarpReader reads a window of a remote band by warping it onto the
// target grid with an in-memory GDAL dataset.
type WarpReader struct {
	Resampling string
	ConfigOpts []string
	// MaskZero reads 0 as nodata for sources that leave it undeclared.
	MaskZero bool
	Verbose  bool
}

func NewWarpReader() *WarpReader {
	Register()
	return &WarpReader{Resampling: "near"}
}

// DatasetPath maps an asset href to a path GDAL can open.
func DatasetPath(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return "/vsicurl/" + href
	}
	if strings.HasPrefix(href, "s3://") {
		return "/vsis3/" + strings.TrimPrefix(href, "s3://")
	}
	return href
}

// WarpSwitches builds the gdalwarp arguments that render window w of grid.
func WarpSwitches(grid proc.GridSpec, w proc.Window, resampling string) []string {
	b := grid.Bound(w)
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	if resampling == "" {
		resampling = "near"
	}
	return []string{
		"-of", "MEM",
		"-t_srs", fmt.Sprintf("EPSG:%d", grid.EPSG),
		"-te", f(b.Min[0]), f(b.Min[1]), f(b.Max[0]), f(b.Max[1]),
		"-ts", strconv.Itoa(w.Cols), strconv.Itoa(w.Rows),
		"-r", resampling,
		"-ot", "Float64",
		"-dstnodata", "nan",
	}
}

func (r *WarpReader) ReadBand(ctx context.Context, src proc.BandSource, grid proc.GridSpec, w proc.Window) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := DatasetPath(src.Href)
	ds, err := godal.Open(path, godal.ConfigOption(r.ConfigOpts...), godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("GDAL error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", src.Href, err)
	}
	defer ds.Close()

	var nodata float64
	hasNoData := false
	if bands := ds.Bands(); len(bands) > 0 {
		nodata, hasNoData = bands[0].NoData()
	}

	warped, err := ds.Warp("", WarpSwitches(grid, w, r.Resampling))
	if err != nil {
		return nil, fmt.Errorf("warp %s: %v", src.Href, err)
	}
	defer warped.Close()

	bands := warped.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("warp %s: no output bands", src.Href)
	}

	data := make([]float64, w.Size())
	if err := bands[0].Read(0, 0, data, w.Cols, w.Rows); err != nil {
		return nil, fmt.Errorf("read %s: %v", src.Href, err)
	}

	for i, v := range data {
		if (hasNoData && v == nodata) || (r.MaskZero && v == 0) {
			data[i] = math.NaN()
		}
	}

	if r.Verbose {
		log.Printf("warped %s %s %s", src.ItemID, src.Band, w)
	}
	return data, nil
}
