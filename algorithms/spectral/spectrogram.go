package spectral

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// NormalizeSpectrogram maps raw magnitude values to display intensities in
// [0, 255]: logarithmic compression, a dynamic-range clamp anchored at the
// 99th percentile, gamma correction, then scaling. The input is a flattened
// time-frequency matrix; only elementwise and global-percentile operations
// are applied, so the layout does not matter.
func NormalizeSpectrogram(values []float64, dynamicRangeDb, gamma float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}

	processed := make([]float64, len(values))
	for i, v := range values {
		processed[i] = math.Log10(v + 1e-10)
	}

	sorted := make([]float64, len(processed))
	copy(sorted, processed)
	sort.Float64s(sorted)
	p99 := stat.Quantile(0.99, stat.Empirical, sorted, nil)

	// Clamp to dynamicRangeDb/10 decades below the 99th percentile
	rangeMin := p99 - dynamicRangeDb/10
	rangeMax := p99
	span := rangeMax - rangeMin
	if span < 1e-6 {
		span = 1e-6
	}

	for i, v := range processed {
		clipped := math.Max(rangeMin, math.Min(v, rangeMax))
		normalized := (clipped - rangeMin) / span
		scaled := math.Pow(normalized, gamma) * 255
		processed[i] = math.Max(0, math.Min(255, scaled))
	}

	return processed
}
