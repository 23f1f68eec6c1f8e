package temporal

import (
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultThresholdFactor scales the local standard deviation when
	// building the adaptive peak-picking threshold.
	DefaultThresholdFactor = 1.3

	// peakNeighborhood is the half-width of the local-maximum test; a margin
	// of the same width is excluded at each boundary so the full
	// neighborhood is always available.
	peakNeighborhood = 9

	// statsWindow is the span of the local mean/stddev used for the
	// adaptive threshold.
	statsWindow = 30
)

// FindBeats picks beat candidates from an onset envelope. A position
// qualifies when its value exceeds an adaptive threshold (local mean plus
// thresholdFactor times the local standard deviation) and no neighbor
// within peakNeighborhood frames is strictly greater. The result is an
// ascending list of envelope frame indices.
func FindBeats(envelope []float64, thresholdFactor float64) []int {
	length := len(envelope)
	if length == 0 {
		return []int{}
	}

	threshold := make([]float64, length)
	for i := range envelope {
		lo := 0
		if i > statsWindow/2 {
			lo = i - statsWindow/2
		}
		hi := i + statsWindow/2
		if hi > length {
			hi = length
		}

		local := envelope[lo:hi]
		mean := stat.Mean(local, nil)
		stddev := stat.PopStdDev(local, nil)
		threshold[i] = mean + thresholdFactor*stddev
	}

	peaks := []int{}
	for i := peakNeighborhood; i < length-peakNeighborhood; i++ {
		if envelope[i] <= threshold[i] {
			continue
		}

		isPeak := true
		for j := -peakNeighborhood; j <= peakNeighborhood; j++ {
			if j == 0 {
				continue
			}
			if envelope[i+j] > envelope[i] {
				isPeak = false
				break
			}
		}

		if isPeak {
			peaks = append(peaks, i)
		}
	}

	return peaks
}
