package analysis

import (
	"fmt"

	"github.com/beatgrid/beatgrid/algorithms/stretch"
	"github.com/beatgrid/beatgrid/logging"
)

// Session owns one loaded track: its original samples, the analysis result
// and the stretch factor currently applied. Every tempo change re-stretches
// from the original samples, never from already-stretched output, so
// repeated adjustments do not compound vocoder artifacts. A Session belongs
// to a single deck; it is not safe for concurrent use.
type Session struct {
	samples    []float64
	sampleRate int
	analysis   *TrackAnalysis
	stretcher  *stretch.Stretcher
	factor     float64
	logger     logging.Logger
}

// NewSession analyzes the track once and prepares it for tempo changes.
// A nil config uses DefaultConfig.
func NewSession(samples []float64, sampleRate int, config *Config) *Session {
	stretcher := stretch.NewStretcher()
	stretcher.SampleRate = sampleRate

	return &Session{
		samples:    samples,
		sampleRate: sampleRate,
		analysis:   NewAnalyzer(config).Analyze(samples, sampleRate),
		stretcher:  stretcher,
		factor:     1.0,
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{
			"component": "session",
		}),
	}
}

// Analysis returns the track's analysis result.
func (s *Session) Analysis() *TrackAnalysis {
	return s.analysis
}

// BPM returns the analyzed tempo, 0 when undetermined.
func (s *Session) BPM() int {
	return s.analysis.BPM
}

// StretchFactor returns the factor currently applied relative to the
// original track.
func (s *Session) StretchFactor() float64 {
	return s.factor
}

// CurrentBPM returns the tempo after the applied stretch. Stretching longer
// lowers the tempo by the same factor.
func (s *Session) CurrentBPM() int {
	if s.analysis.BPM == 0 || s.factor == 0 {
		return s.analysis.BPM
	}
	return int(float64(s.analysis.BPM)/s.factor + 0.5)
}

// ChangeTempo stretches the original samples by factor and records it as the
// session's applied factor. Unlike the core stretcher, out-of-range factors
// here are explicit errors: a host calling the session asked for that exact
// change and should hear about the refusal.
func (s *Session) ChangeTempo(factor float64) ([]float64, error) {
	if factor < stretch.MinFactor || factor > stretch.MaxFactor {
		return nil, fmt.Errorf("analysis: stretch factor %.3f outside [%.2f, %.2f]",
			factor, stretch.MinFactor, stretch.MaxFactor)
	}

	out := s.stretcher.Process(s.samples, factor)
	s.factor = factor

	s.logger.Info("tempo changed", logging.Fields{
		"factor":      factor,
		"out_samples": len(out),
	})

	return out, nil
}

// TargetBPM stretches the original samples so the track plays at the given
// tempo. Fails when the original tempo is unknown (analysis returned 0).
func (s *Session) TargetBPM(bpm int) ([]float64, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("analysis: target BPM must be positive, got %d", bpm)
	}
	if s.analysis.BPM == 0 {
		return nil, fmt.Errorf("analysis: original tempo unknown, cannot derive stretch factor")
	}

	// Longer audio plays slower: factor = original / target
	return s.ChangeTempo(float64(s.analysis.BPM) / float64(bpm))
}
