package processor

// SplitWindows tiles the grid into chunkSize × chunkSize windows in
// row-major order. Windows on the right and bottom edges are trimmed to
// the grid.
func SplitWindows(spec GridSpec, chunkSize int) []Window {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	out := []Window{}
	for y := 0; y < spec.Height; y += chunkSize {
		for x := 0; x < spec.Width; x += chunkSize {
			out = append(out, Window{
				Row:  y,
				Col:  x,
				Rows: minInt(chunkSize, spec.Height-y),
				Cols: minInt(chunkSize, spec.Width-x),
			})
		}
	}
	return out
}
