package temporal

import (
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/beatgrid/beatgrid/algorithms/spectral"
	"github.com/beatgrid/beatgrid/algorithms/windowing"
)

// OnsetDetector converts a raw sample sequence into an onset strength
// envelope using multi-resolution spectral flux. Each window size trades
// time resolution against frequency resolution; their normalized flux
// sequences are averaged into one envelope.
type OnsetDetector struct {
	WindowSizes []int   // analysis window sizes, smallest first
	HopSize     int     // stride between frames, shared by all window sizes
	LowFreq     float64 // rhythm-salient band lower edge in Hz
	HighFreq    float64 // rhythm-salient band upper edge in Hz
	MedianSize  int     // baseline median filter length
}

// NewOnsetDetector creates a detector with the standard multi-resolution setup
func NewOnsetDetector() *OnsetDetector {
	return &OnsetDetector{
		WindowSizes: []int{1024, 2048},
		HopSize:     512,
		LowFreq:     100,
		HighFreq:    8000,
		MedianSize:  11,
	}
}

// DetectOnsets computes the onset strength envelope, one value per hop-sized
// frame. The frame count is defined by the first window size so that every
// resolution produces comparable sequences for the averaging step. Signals
// shorter than one window yield an empty envelope.
func (od *OnsetDetector) DetectOnsets(samples []float64, sampleRate int) []float64 {
	if sampleRate <= 0 || len(samples) < od.WindowSizes[0] {
		return []float64{}
	}

	numFrames := (len(samples)-od.WindowSizes[0])/od.HopSize + 1
	onsetStrength := make([]float64, numFrames)

	for _, windowSize := range od.WindowSizes {
		flux := od.spectralFlux(samples, sampleRate, windowSize, numFrames)

		if maxFlux := floats.Max(flux); maxFlux > 0 {
			for i := range onsetStrength {
				onsetStrength[i] += flux[i] / maxFlux
			}
		}
	}

	floats.Scale(1/float64(len(od.WindowSizes)), onsetStrength)

	return od.removeBaseline(onsetStrength)
}

// spectralFlux computes one flux value per frame for a single window size:
// the frequency-weighted sum of positive per-bin magnitude increases since
// the previous frame. Decays contribute nothing; onsets, not offsets.
func (od *OnsetDetector) spectralFlux(samples []float64, sampleRate, windowSize, numFrames int) []float64 {
	flux := make([]float64, numFrames)
	buffer := make([]float64, windowSize)
	fftBuffer := make([]complex128, windowSize)
	prevMagnitudes := make([]float64, windowSize/2+1)

	window, err := windowing.HanningWindow(windowSize)
	if err != nil {
		return flux
	}

	for frame := 0; frame < numFrames; frame++ {
		start := frame * od.HopSize

		// Window the frame, zero-padding past the end of the signal
		for i := 0; i < windowSize; i++ {
			if idx := start + i; idx < len(samples) {
				buffer[i] = samples[idx] * window[i]
			} else {
				buffer[i] = 0
			}
		}

		for i, s := range buffer {
			fftBuffer[i] = complex(s, 0)
		}

		if err := spectral.FFT(fftBuffer); err != nil {
			return flux
		}

		sum := 0.0
		for i := 1; i <= windowSize/2; i++ { // skip DC
			freq := float64(i) * float64(sampleRate) / float64(windowSize)
			weight := 0.5
			if freq > od.LowFreq && freq < od.HighFreq {
				weight = 1.0
			}

			mag := cmplx.Abs(fftBuffer[i])
			if diff := mag - prevMagnitudes[i]; diff > 0 {
				sum += diff * weight
			}
			prevMagnitudes[i] = mag
		}

		flux[frame] = sum
	}

	return flux
}

// removeBaseline subtracts a local median from each envelope value and
// clamps to non-negative, leaving only the onset peaks. The filter window
// is zero-padded at the boundaries.
func (od *OnsetDetector) removeBaseline(envelope []float64) []float64 {
	filtered := make([]float64, len(envelope))
	window := make([]float64, od.MedianSize)
	half := od.MedianSize / 2

	for i := range envelope {
		for j := 0; j < od.MedianSize; j++ {
			idx := i + j - half
			if idx < 0 || idx >= len(envelope) {
				window[j] = 0
			} else {
				window[j] = envelope[idx]
			}
		}

		sort.Float64s(window)
		median := window[half]

		if diff := envelope[i] - median; diff > 0 {
			filtered[i] = diff
		}
	}

	return filtered
}
