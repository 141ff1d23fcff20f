package utils

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/gocarina/gocsv"

	proc "github.com/nci/gsky-ndvi/processor"
)

type Palette struct {
	Interpolate bool         `yaml:"interpolate"`
	Colours     []color.RGBA `yaml:"colours"`
}

// YlGn is the ColorBrewer yellow to green ramp used for NDVI quicklooks.
var YlGn = &Palette{
	Interpolate: true,
	Colours: []color.RGBA{
		{255, 255, 229, 255},
		{247, 252, 185, 255},
		{217, 240, 163, 255},
		{173, 221, 142, 255},
		{120, 198, 121, 255},
		{65, 171, 93, 255},
		{35, 132, 67, 255},
		{0, 104, 55, 255},
		{0, 69, 41, 255},
	},
}

// InterpolateUint8 interpolates the value of a
// byte between two numbers 'a' and 'b' by
// especifying a length and a position 'i'
// along that length.
func InterpolateUint8(a, b uint8, i, sectionLength int) uint8 {
	return uint8(int(a) + i*(int(b)-int(a))/sectionLength)
}

// InterpolateColor returns an RGBA color where
// the R, G, B, and A components have been
// interpolated from the 'a' and 'b' colors
func InterpolateColor(a, b color.RGBA, i, sectionLength int) color.RGBA {
	return color.RGBA{InterpolateUint8(a.R, b.R, i, sectionLength),
		InterpolateUint8(a.G, b.G, i, sectionLength),
		InterpolateUint8(a.B, b.B, i, sectionLength),
		255}
}

// GradientRGBAPalette returns a palette of 256 colors
// creating an interpolation that goes though
// a list of provided colours.
func GradientRGBAPalette(palette *Palette) ([]color.RGBA, error) {
	if palette == nil {
		return nil, nil
	}
	if len(palette.Colours) < 2 {
		return nil, fmt.Errorf("The colour palette must contain at least 2 colours.")
	}

	ramp := make([]color.RGBA, 256)

	bins := len(palette.Colours)
	if palette.Interpolate {
		bins--
	}
	sectionLength := 256 / bins
	bonus := 256 - (sectionLength * bins)
	bonusArr := make([]int, bins)
	for i := 0; i < bonus; i++ {
		bonusArr[i] = 1
	}

	index := 0
	for section := 0; section < bins; section++ {
		for i := 0; i < sectionLength+bonusArr[section]; i++ {
			if palette.Interpolate {
				ramp[index] = InterpolateColor(palette.Colours[section], palette.Colours[section+1], i, sectionLength)
			} else {
				ramp[index] = palette.Colours[section]
			}
			index++
		}
	}

	return ramp, nil
}

// EncodePNG renders r with ramp, stretching [min, max] across the
// palette. NaN cells are transparent.
func EncodePNG(w io.Writer, r *proc.Raster, ramp []color.RGBA, min, max float64) error {
	if r == nil || r.GridSpec.Width == 0 || r.GridSpec.Height == 0 {
		return fmt.Errorf("empty raster")
	}
	if len(ramp) == 0 {
		return fmt.Errorf("empty colour ramp")
	}
	if max <= min {
		return fmt.Errorf("invalid stretch range [%v, %v]", min, max)
	}

	dc := gg.NewContext(r.GridSpec.Width, r.GridSpec.Height)
	scale := float64(len(ramp)-1) / (max - min)
	for row := 0; row < r.GridSpec.Height; row++ {
		for col := 0; col < r.GridSpec.Width; col++ {
			v := r.At(row, col)
			if math.IsNaN(v) {
				continue
			}
			idx := int(math.Round((v - min) * scale))
			if idx < 0 {
				idx = 0
			} else if idx >= len(ramp) {
				idx = len(ramp) - 1
			}
			c := ramp[idx]
			dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
			dc.SetPixel(col, row)
		}
	}
	return dc.EncodePNG(w)
}

// CellRecord is one valid composite cell in the CSV export.
type CellRecord struct {
	Row  int     `csv:"row"`
	Col  int     `csv:"col"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
	NDVI float64 `csv:"ndvi"`
}

// RasterRecords lists the valid cells of r with their centre coordinates
// in the raster's projection.
func RasterRecords(r *proc.Raster) []*CellRecord {
	var records []*CellRecord
	for row := 0; row < r.GridSpec.Height; row++ {
		for col := 0; col < r.GridSpec.Width; col++ {
			v := r.At(row, col)
			if math.IsNaN(v) {
				continue
			}
			p := r.GridSpec.CellCentre(row, col)
			records = append(records, &CellRecord{Row: row, Col: col, X: p[0], Y: p[1], NDVI: v})
		}
	}
	return records
}

func EncodeCSV(w io.Writer, r *proc.Raster) error {
	if r == nil {
		return fmt.Errorf("empty raster")
	}
	records := RasterRecords(r)
	return gocsv.Marshal(&records, w)
}
