package stretch

import (
	"math"
	"math/cmplx"
)

// transientRatio is the current/previous magnitude ratio above which a frame
// is treated as a transient and its phases are left untouched, protecting
// percussive attacks from smearing.
const transientRatio = 3.0

// vocoderState carries per-bin phase and magnitude from one analysis frame
// to the next. It is the stretcher's only cross-frame memory and is created
// fresh for every stretch invocation.
type vocoderState struct {
	prevPhase     []float64
	prevMagnitude []float64
}

func newVocoderState(numBins int) *vocoderState {
	return &vocoderState{
		prevPhase:     make([]float64, numBins),
		prevMagnitude: make([]float64, numBins),
	}
}

// apply rewrites the spectrum's phases in place for time-stretched
// resynthesis. Steady-state bins advance by their instantaneous frequency
// scaled with the stretch factor; transient frames keep their measured
// phases. Bins above N/2 are rebuilt by conjugate symmetry, and DC and
// Nyquist are forced real.
func (vs *vocoderState) apply(spectrum []complex128, stretchFactor, frameDelta float64) {
	n := len(spectrum)
	numBins := n/2 + 1
	omega := 2 * math.Pi / float64(n)

	// A sudden broadband magnitude jump anywhere flags the whole frame
	isTransient := false
	for i := 1; i < numBins-1; i++ {
		if vs.prevMagnitude[i] > 0 {
			if cmplx.Abs(spectrum[i])/vs.prevMagnitude[i] > transientRatio {
				isTransient = true
				break
			}
		}
	}

	for i := 0; i < numBins; i++ {
		magnitude := cmplx.Abs(spectrum[i])
		phase := cmplx.Phase(spectrum[i])

		newPhase := phase

		if i > 0 && i < numBins-1 {
			if isTransient && magnitude > 0.01 {
				// Preserve original phase relationships across the attack
				newPhase = phase
			} else {
				expectedAdvance := omega * float64(i) * frameDelta
				phaseDiff := phase - vs.prevPhase[i]

				// Unwrap into [-pi, pi]
				phaseDiff -= 2 * math.Pi * math.Round(phaseDiff/(2*math.Pi))

				instFreq := expectedAdvance + phaseDiff/frameDelta
				newPhase = vs.prevPhase[i] + instFreq*frameDelta*stretchFactor
			}
		} else {
			// Keep DC and Nyquist real
			newPhase = 0
		}

		spectrum[i] = cmplx.Rect(magnitude, newPhase)

		vs.prevPhase[i] = newPhase
		vs.prevMagnitude[i] = magnitude
	}

	// Conjugate-symmetric negative frequencies
	for i := 1; i < n/2; i++ {
		spectrum[n-i] = cmplx.Conj(spectrum[i])
	}

	spectrum[0] = complex(real(spectrum[0]), 0)
	if n%2 == 0 {
		spectrum[n/2] = complex(real(spectrum[n/2]), 0)
	}
}
