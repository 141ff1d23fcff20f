package processor

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestSplitWindows(t *testing.T) {
	spec := GridSpec{Width: 1000, Height: 700}
	windows := SplitWindows(spec, 512)
	if len(windows) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(windows))
	}

	covered := 0
	for _, w := range windows {
		if !spec.Contains(w) {
			t.Errorf("window %v outside grid", w)
		}
		covered += w.Size()
	}
	if covered != spec.Size() {
		t.Errorf("windows cover %d cells, grid has %d", covered, spec.Size())
	}

	last := windows[3]
	if last.Row != 512 || last.Col != 512 || last.Rows != 188 || last.Cols != 488 {
		t.Errorf("unexpected last window %v", last)
	}
}

func TestMaterializeChunkIndependent(t *testing.T) {
	ctx := context.Background()
	spec := GridSpec{EPSG: DefaultEPSG, Resolution: 10, Width: 37, Height: 23}
	g := &funcGrid{spec: spec, fn: func(r, c int) float64 {
		if (r*c)%7 == 3 {
			return math.NaN()
		}
		return math.Sin(float64(r)) * math.Cos(float64(c))
	}}

	ref, err := NewComputeScheduler(1000, 1).Materialize(ctx, g, "reference")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	for _, chunk := range []int{1, 3, 8, 16, 64} {
		for _, par := range []int{1, 4, 16} {
			got, err := NewComputeScheduler(chunk, par).Materialize(ctx, g, "chunked")
			if err != nil {
				t.Fatalf("chunk=%d parallelism=%d: %v", chunk, par, err)
			}
			for i := range ref.Data {
				a, b := ref.Data[i], got.Data[i]
				if math.Float64bits(a) != math.Float64bits(b) && !(math.IsNaN(a) && math.IsNaN(b)) {
					t.Fatalf("chunk=%d parallelism=%d: cell %d differs: %v != %v", chunk, par, i, a, b)
				}
			}
		}
	}
}

func TestMaterializeFailsAsAWhole(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	spec := GridSpec{Width: 64, Height: 64}
	g := &funcGrid{
		spec: spec,
		fn:   func(r, c int) float64 { return 1 },
		fail: func(w Window) error {
			if w.Row == 32 && w.Col == 32 {
				return boom
			}
			return nil
		},
	}

	r, err := NewComputeScheduler(16, 4).Materialize(ctx, g, "failing")
	if !errors.Is(err, boom) {
		t.Errorf("expected chunk error, got %v", err)
	}
	if r != nil {
		t.Errorf("expected no raster on failure")
	}
}
