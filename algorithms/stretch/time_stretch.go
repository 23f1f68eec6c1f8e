package stretch

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/beatgrid/beatgrid/algorithms/spectral"
	"github.com/beatgrid/beatgrid/algorithms/windowing"
)

const (
	// MinFactor and MaxFactor bound the usable stretch range; requests
	// outside it pass the input through untouched so a live UI sending
	// transient slider values never faults.
	MinFactor = 0.25
	MaxFactor = 4.0

	// ReferenceSampleRate is the phase-advance clock assumed when no actual
	// rate is configured, matching the 44.1 kHz material this pipeline was
	// tuned on.
	ReferenceSampleRate = 44100

	// stretchWindowSize is pinned regardless of the requested window size;
	// smaller windows audibly degrade the vocoder output.
	stretchWindowSize = 4096

	safetyClip = 0.95
	maxGain    = 3.0
)

// Stretcher performs pitch-preserving time stretching with a phase vocoder
// and weighted overlap-add resynthesis. A Stretcher holds no state between
// calls; concurrent Process calls on the same value are safe.
type Stretcher struct {
	// SampleRate drives the phase-advance computation. Zero or negative
	// falls back to ReferenceSampleRate.
	SampleRate int
}

// NewStretcher creates a stretcher using the reference 44.1 kHz clock.
func NewStretcher() *Stretcher {
	return &Stretcher{SampleRate: ReferenceSampleRate}
}

// TimeStretch stretches input by stretchFactor using the reference clock.
// The window size is accepted for interface compatibility but pinned
// internally; see Stretcher.Process.
func TimeStretch(input []float64, stretchFactor float64, windowSize int) []float64 {
	_ = windowSize
	return NewStretcher().Process(input, stretchFactor)
}

// Process returns a time-stretched copy of input. Factors above 1 lengthen
// (slow down), below 1 shorten (speed up). Degenerate requests return the
// input unchanged: empty input, non-positive factor, a factor within 0.001
// of 1.0, or a factor outside [MinFactor, MaxFactor].
func (s *Stretcher) Process(input []float64, stretchFactor float64) []float64 {
	if len(input) == 0 || stretchFactor <= 0 {
		return input
	}
	if math.Abs(stretchFactor-1.0) < 0.001 {
		return input
	}
	if stretchFactor < MinFactor || stretchFactor > MaxFactor {
		return input
	}

	windowSize := stretchWindowSize
	analysisHop := windowSize / 4 // 75% overlap
	synthesisHop := int(float64(analysisHop) * stretchFactor)

	analysisWindow, err := windowing.HanningWindow(windowSize)
	if err != nil {
		return input
	}
	synthesisWindow, err := windowing.HanningWindow(windowSize)
	if err != nil {
		return input
	}

	// Normalize the analysis window for unity gain under weighted
	// overlap-add: the squared window sampled at the analysis hop must sum
	// to one.
	windowSum := 0.0
	for i := 0; i < windowSize; i += analysisHop {
		windowSum += analysisWindow[i] * analysisWindow[i]
	}
	if windowSum > 0 {
		floats.Scale(1/math.Sqrt(windowSum), analysisWindow)
	}

	outputLength := int(float64(len(input))*stretchFactor) + windowSize
	output := make([]float64, outputLength)
	compensation := make([]float64, outputLength)

	// Zero-pad one window on each side to avoid edge artifacts
	padded := make([]float64, len(input)+2*windowSize)
	copy(padded[windowSize:], input)

	sampleRate := s.SampleRate
	if sampleRate <= 0 {
		sampleRate = ReferenceSampleRate
	}
	frameDelta := float64(analysisHop) / float64(sampleRate)

	state := newVocoderState(windowSize/2 + 1)
	frame := make([]complex128, windowSize)

	outputPos := 0
	for pos := 0; pos+windowSize <= len(padded); pos += analysisHop {
		for i := 0; i < windowSize; i++ {
			frame[i] = complex(padded[pos+i]*analysisWindow[i], 0)
		}

		if err := spectral.FFT(frame); err != nil {
			return input
		}

		state.apply(frame, stretchFactor, frameDelta)

		if err := spectral.IFFT(frame); err != nil {
			return input
		}

		if outputPos+windowSize <= len(output) {
			for i := 0; i < windowSize; i++ {
				output[outputPos+i] += real(frame[i]) * synthesisWindow[i]
				compensation[outputPos+i] += synthesisWindow[i] * synthesisWindow[i]
			}
		}

		outputPos += synthesisHop
	}

	// Overlap compensation; tiny accumulations are left alone to avoid
	// division blow-up at the edges
	for i := range output {
		if compensation[i] > 0.01 {
			output[i] /= math.Sqrt(compensation[i])
		}
	}

	if expected := int(float64(len(input)) * stretchFactor); expected < len(output) {
		output = output[:expected]
	}

	// Match output loudness to the input, capped so near-silent inputs
	// cannot trigger extreme amplification
	inputRMS := rms(input)
	outputRMS := rms(output)
	if inputRMS > 0 && outputRMS > 0 {
		gain := math.Min(inputRMS/outputRMS, maxGain)
		floats.Scale(gain, output)
	}

	for i, v := range output {
		output[i] = math.Max(-safetyClip, math.Min(safetyClip, v))
	}

	return output
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}
