package processor

import (
	"context"
	"fmt"
)

// IndexGrid is the lazy time × row × col NDVI grid of a stack.
type IndexGrid struct {
	stack *RasterStack
	nir   int
	red   int
}

func ComputeNDVI(stack *RasterStack) *IndexGrid {
	return &IndexGrid{stack: stack, nir: 0, red: 1}
}

func (g *IndexGrid) Spec() GridSpec {
	return g.stack.Spec()
}

func (g *IndexGrid) Times() int {
	return len(g.stack.Slices)
}

func (g *IndexGrid) TimeBlock(ctx context.Context, t int, w Window) ([]float64, error) {
	nir, err := g.stack.Block(ctx, t, g.nir, w)
	if err != nil {
		return nil, err
	}
	red, err := g.stack.Block(ctx, t, g.red, w)
	if err != nil {
		return nil, err
	}
	return NormalizedDifference(nir, red), nil
}

// Slice exposes time slice t as a 2-D grid.
func (g *IndexGrid) Slice(t int) Grid {
	return &indexSlice{index: g, t: t}
}

// NormalizedDifference computes (a-b)/(a+b) element-wise. Cells where both
// inputs are zero come out as NaN.
func NormalizedDifference(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = (a[i] - b[i]) / (a[i] + b[i])
	}
	return out
}

type indexSlice struct {
	index *IndexGrid
	t     int
}

func (s *indexSlice) Spec() GridSpec {
	return s.index.Spec()
}

func (s *indexSlice) Block(ctx context.Context, w Window) ([]float64, error) {
	if s.t < 0 || s.t >= s.index.Times() {
		return nil, fmt.Errorf("time slice %d out of range", s.t)
	}
	return s.index.TimeBlock(ctx, s.t, w)
}
