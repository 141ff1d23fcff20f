package processor

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// ComputeScheduler is the single entry point that forces evaluation of a
// lazy Grid. Chunks are evaluated in parallel and written into disjoint
// regions of the output raster, so the result does not depend on chunk
// size or completion order.
type ComputeScheduler struct {
	ChunkSize      int
	Parallelism    int
	Progress       bool
	ProgressWriter io.Writer
	Verbose        bool
}

func NewComputeScheduler(chunkSize, parallelism int) *ComputeScheduler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &ComputeScheduler{ChunkSize: chunkSize, Parallelism: parallelism}
}

// Materialize evaluates every chunk of g. If any chunk fails the first
// error is returned and no raster is produced.
func (s *ComputeScheduler) Materialize(ctx context.Context, g Grid, description string) (*Raster, error) {
	start := time.Now()
	spec := g.Spec()
	out := NewRaster(spec)
	windows := SplitWindows(spec, s.ChunkSize)

	var bar *progressbar.ProgressBar
	if s.Progress {
		w := s.ProgressWriter
		if w == nil {
			w = os.Stderr
		}
		bar = progressbar.NewOptions(len(windows),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	parallelism := s.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)
	for _, win := range windows {
		win := win
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			data, err := g.Block(egCtx, win)
			if err != nil {
				return err
			}
			if len(data) != win.Size() {
				return fmt.Errorf("chunk %v: expected %d values, got %d", win, win.Size(), len(data))
			}
			out.setBlock(win, data)
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		if bar != nil {
			bar.Exit()
		}
		return nil, err
	}
	if bar != nil {
		bar.Finish()
	}

	if s.Verbose {
		log.Printf("%s: materialized %dx%d in %d chunks, parallelism %d, %v",
			description, spec.Width, spec.Height, len(windows), parallelism, time.Since(start))
	}
	return out, nil
}
