package processor

import "math"

// ComputeStatistics summarises the valid cells of r. The boolean is false
// when every cell is NaN.
func ComputeStatistics(r *Raster) (Statistics, bool) {
	var sum float64
	stats := Statistics{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range r.Data {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		stats.ValidCount++
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}

	if stats.ValidCount == 0 {
		return Statistics{}, false
	}
	stats.Mean = sum / float64(stats.ValidCount)
	return stats, true
}
