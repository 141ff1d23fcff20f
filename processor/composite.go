package processor

import (
	"context"
	"math"
)

// CompositeGrid is the lazy NaN-skipping maximum of an IndexGrid over time.
type CompositeGrid struct {
	index *IndexGrid
}

func MaxComposite(index *IndexGrid) *CompositeGrid {
	return &CompositeGrid{index: index}
}

func (c *CompositeGrid) Spec() GridSpec {
	return c.index.Spec()
}

func (c *CompositeGrid) Block(ctx context.Context, w Window) ([]float64, error) {
	out := make([]float64, w.Size())
	for i := range out {
		out[i] = math.NaN()
	}

	for t := 0; t < c.index.Times(); t++ {
		ndvi, err := c.index.TimeBlock(ctx, t, w)
		if err != nil {
			return nil, err
		}
		MaxInto(out, ndvi)
	}
	return out, nil
}

// MaxInto folds vals into acc keeping the larger non-NaN value per cell.
func MaxInto(acc, vals []float64) {
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(acc[i]) || v > acc[i] {
			acc[i] = v
		}
	}
}
