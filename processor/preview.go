package processor

import (
	"context"
	"fmt"
	"math"
)

// PreviewGrid coarsens a source grid by an integer factor. Partial blocks
// along the right and bottom edges are kept.
type PreviewGrid struct {
	src    Grid
	factor int
	spec   GridSpec
}

func Coarsen(src Grid, factor int) *PreviewGrid {
	if factor < 1 {
		factor = 1
	}
	s := src.Spec()
	spec := GridSpec{
		EPSG:       s.EPSG,
		Resolution: s.Resolution * float64(factor),
		OriginX:    s.OriginX,
		OriginY:    s.OriginY,
		Width:      (s.Width + factor - 1) / factor,
		Height:     (s.Height + factor - 1) / factor,
	}
	return &PreviewGrid{src: src, factor: factor, spec: spec}
}

func (p *PreviewGrid) Spec() GridSpec {
	return p.spec
}

func (p *PreviewGrid) Block(ctx context.Context, w Window) ([]float64, error) {
	if !p.spec.Contains(w) {
		return nil, fmt.Errorf("window %v outside preview %dx%d", w, p.spec.Width, p.spec.Height)
	}

	srcSpec := p.src.Spec()
	srcWin := Window{Row: w.Row * p.factor, Col: w.Col * p.factor}
	srcWin.Rows = minInt((w.Row+w.Rows)*p.factor, srcSpec.Height) - srcWin.Row
	srcWin.Cols = minInt((w.Col+w.Cols)*p.factor, srcSpec.Width) - srcWin.Col

	data, err := p.src.Block(ctx, srcWin)
	if err != nil {
		return nil, err
	}

	sums := make([]float64, w.Size())
	counts := make([]int, w.Size())
	for r := 0; r < srcWin.Rows; r++ {
		orow := r / p.factor
		for c := 0; c < srcWin.Cols; c++ {
			v := data[r*srcWin.Cols+c]
			if math.IsNaN(v) {
				continue
			}
			idx := orow*w.Cols + c/p.factor
			sums[idx] += v
			counts[idx]++
		}
	}

	out := make([]float64, w.Size())
	for i := range out {
		if counts[i] == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sums[i] / float64(counts[i])
		}
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
