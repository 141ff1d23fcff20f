package processor

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// GridSpec describes a north-up grid. OriginX/OriginY is the top-left corner.
type GridSpec struct {
	EPSG       int     `json:"epsg"`
	Resolution float64 `json:"resolution"`
	OriginX    float64 `json:"origin_x"`
	OriginY    float64 `json:"origin_y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

func (g GridSpec) GeoTransform() [6]float64 {
	return [6]float64{g.OriginX, g.Resolution, 0, g.OriginY, 0, -g.Resolution}
}

func (g GridSpec) Size() int {
	return g.Width * g.Height
}

func (g GridSpec) Full() Window {
	return Window{Row: 0, Col: 0, Rows: g.Height, Cols: g.Width}
}

// Bound returns the extent of window w in grid coordinates.
func (g GridSpec) Bound(w Window) orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.OriginX + float64(w.Col)*g.Resolution, g.OriginY - float64(w.Row+w.Rows)*g.Resolution},
		Max: orb.Point{g.OriginX + float64(w.Col+w.Cols)*g.Resolution, g.OriginY - float64(w.Row)*g.Resolution},
	}
}

func (g GridSpec) CellCentre(row, col int) orb.Point {
	return orb.Point{
		g.OriginX + (float64(col)+0.5)*g.Resolution,
		g.OriginY - (float64(row)+0.5)*g.Resolution,
	}
}

func (g GridSpec) Contains(w Window) bool {
	return w.Row >= 0 && w.Col >= 0 && w.Rows >= 0 && w.Cols >= 0 &&
		w.Row+w.Rows <= g.Height && w.Col+w.Cols <= g.Width
}

// GridFromBound snaps b outward to multiples of res and returns the
// enclosing grid.
func GridFromBound(b orb.Bound, epsg int, res float64) GridSpec {
	minX := math.Floor(b.Min[0]/res) * res
	minY := math.Floor(b.Min[1]/res) * res
	maxX := math.Ceil(b.Max[0]/res) * res
	maxY := math.Ceil(b.Max[1]/res) * res

	width := int(math.Round((maxX - minX) / res))
	height := int(math.Round((maxY - minY) / res))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	return GridSpec{EPSG: epsg, Resolution: res, OriginX: minX, OriginY: maxY, Width: width, Height: height}
}

type Window struct {
	Row, Col   int
	Rows, Cols int
}

func (w Window) Size() int {
	return w.Rows * w.Cols
}

func (w Window) String() string {
	return fmt.Sprintf("[row=%d col=%d %dx%d]", w.Row, w.Col, w.Rows, w.Cols)
}

// Grid is a lazily evaluated 2-D node. Block returns the row-major values
// of window w; nothing is computed before Block is called.
type Grid interface {
	Spec() GridSpec
	Block(ctx context.Context, w Window) ([]float64, error)
}

// Raster is a materialized 2-D grid. It is itself a Grid so that derived
// nodes can be built on top of realized values.
type Raster struct {
	GridSpec GridSpec
	Data     []float64
}

func NewRaster(spec GridSpec) *Raster {
	data := make([]float64, spec.Size())
	for i := range data {
		data[i] = math.NaN()
	}
	return &Raster{GridSpec: spec, Data: data}
}

func (r *Raster) Spec() GridSpec {
	return r.GridSpec
}

func (r *Raster) At(row, col int) float64 {
	return r.Data[row*r.GridSpec.Width+col]
}

func (r *Raster) Block(ctx context.Context, w Window) ([]float64, error) {
	if !r.GridSpec.Contains(w) {
		return nil, fmt.Errorf("window %v outside raster %dx%d", w, r.GridSpec.Width, r.GridSpec.Height)
	}
	out := make([]float64, w.Size())
	for i := 0; i < w.Rows; i++ {
		start := (w.Row+i)*r.GridSpec.Width + w.Col
		copy(out[i*w.Cols:(i+1)*w.Cols], r.Data[start:start+w.Cols])
	}
	return out, nil
}

func (r *Raster) setBlock(w Window, data []float64) {
	for i := 0; i < w.Rows; i++ {
		start := (w.Row+i)*r.GridSpec.Width + w.Col
		copy(r.Data[start:start+w.Cols], data[i*w.Cols:(i+1)*w.Cols])
	}
}

// Rows returns the raster as a 2-D array.
func (r *Raster) Rows() [][]float64 {
	rows := make([][]float64, r.GridSpec.Height)
	for i := range rows {
		rows[i] = r.Data[i*r.GridSpec.Width : (i+1)*r.GridSpec.Width]
	}
	return rows
}

// MarshalJSON encodes the raster as its grid spec plus a 2-D array in
// which NaN cells are null.
func (r *Raster) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString(`{"grid":{`)
	fmt.Fprintf(buf, `"epsg":%d,"resolution":%s,"origin_x":%s,"origin_y":%s,"width":%d,"height":%d},"data":[`,
		r.GridSpec.EPSG, fmtFloat(r.GridSpec.Resolution), fmtFloat(r.GridSpec.OriginX), fmtFloat(r.GridSpec.OriginY),
		r.GridSpec.Width, r.GridSpec.Height)
	for i, row := range r.Rows() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				buf.WriteString("null")
			} else {
				buf.WriteString(fmtFloat(v))
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
