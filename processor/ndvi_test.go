package processor

import (
	"context"
	"math"
	"testing"
)

func TestNormalizedDifference(t *testing.T) {
	got := NormalizedDifference([]float64{100, 0, 200, math.NaN(), 50}, []float64{50, 0, 100, 10, 150})

	if !almostEqual(got[0], 1.0/3) {
		t.Errorf("nir=100 red=50: expected 1/3, got %v", got[0])
	}
	if !math.IsNaN(got[1]) {
		t.Errorf("nir=0 red=0: expected NaN, got %v", got[1])
	}
	if !almostEqual(got[2], 1.0/3) {
		t.Errorf("nir=200 red=100: expected 1/3, got %v", got[2])
	}
	if !math.IsNaN(got[3]) {
		t.Errorf("NaN input: expected NaN, got %v", got[3])
	}
	if !almostEqual(got[4], -0.5) {
		t.Errorf("nir=50 red=150: expected -0.5, got %v", got[4])
	}
}

func TestMaxInto(t *testing.T) {
	nan := math.NaN()
	series := [][]float64{
		{nan, nan, 0.1},
		{0.2, nan, nan},
		{0.5, nan, -0.3},
		{nan, nan, nan},
	}

	acc := []float64{nan, nan, nan}
	for _, s := range series {
		MaxInto(acc, s)
	}

	if acc[0] != 0.5 {
		t.Errorf("series [NaN 0.2 0.5 NaN]: expected 0.5, got %v", acc[0])
	}
	if !math.IsNaN(acc[1]) {
		t.Errorf("all-NaN series: expected NaN, got %v", acc[1])
	}
	if acc[2] != 0.1 {
		t.Errorf("series [0.1 NaN -0.3 NaN]: expected 0.1, got %v", acc[2])
	}
}

func TestComputeStatistics(t *testing.T) {
	nan := math.NaN()

	stats, ok := ComputeStatistics(rasterFrom(2, 2, []float64{0.1, 0.2, 0.3, nan}))
	if !ok {
		t.Fatalf("expected statistics for partially valid raster")
	}
	if !almostEqual(stats.Mean, 0.2) || stats.Min != 0.1 || stats.Max != 0.3 || stats.ValidCount != 3 {
		t.Errorf("unexpected statistics %+v", stats)
	}

	if _, ok := ComputeStatistics(rasterFrom(2, 2, []float64{nan, nan, nan, nan})); ok {
		t.Errorf("expected no valid data for all-NaN raster")
	}
}

func TestCoarsen(t *testing.T) {
	ctx := context.Background()
	spec := GridSpec{EPSG: DefaultEPSG, Resolution: 10, OriginX: 0, OriginY: 80, Width: 8, Height: 8}
	constant := &funcGrid{spec: spec, fn: func(r, c int) float64 { return 0.4 }}

	p := Coarsen(constant, 4)
	ps := p.Spec()
	if ps.Width != 2 || ps.Height != 2 || ps.Resolution != 40 {
		t.Fatalf("expected 2x2 preview at 40m, got %dx%d at %v", ps.Width, ps.Height, ps.Resolution)
	}
	data, err := p.Block(ctx, ps.Full())
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	for i, v := range data {
		if !almostEqual(v, 0.4) {
			t.Errorf("cell %d: expected 0.4, got %v", i, v)
		}
	}
}

func TestCoarsenPadsEdges(t *testing.T) {
	ctx := context.Background()
	nan := math.NaN()
	spec := GridSpec{EPSG: DefaultEPSG, Resolution: 10, Width: 5, Height: 5}
	g := &funcGrid{spec: spec, fn: func(r, c int) float64 {
		switch {
		case r < 4 && c < 4 && (r+c)%2 == 0:
			return nan
		case r < 4 && c < 4:
			return 1
		case r == 4 && c == 4:
			return nan
		default:
			return float64(r + c)
		}
	}}

	p := Coarsen(g, 4)
	ps := p.Spec()
	if ps.Width != 2 || ps.Height != 2 {
		t.Fatalf("expected padded 2x2 preview, got %dx%d", ps.Width, ps.Height)
	}
	data, err := p.Block(ctx, ps.Full())
	if err != nil {
		t.Fatalf("Block: %v", err)
	}

	// top-left: half NaN, rest 1
	if data[0] != 1 {
		t.Errorf("top-left: expected 1, got %v", data[0])
	}
	// top-right: column 4, rows 0..3 -> 4,5,6,7
	if !almostEqual(data[1], 5.5) {
		t.Errorf("top-right: expected 5.5, got %v", data[1])
	}
	// bottom-left: row 4, cols 0..3 -> 4,5,6,7
	if !almostEqual(data[2], 5.5) {
		t.Errorf("bottom-left: expected 5.5, got %v", data[2])
	}
	// bottom-right: single NaN cell
	if !math.IsNaN(data[3]) {
		t.Errorf("bottom-right: expected NaN, got %v", data[3])
	}
}
