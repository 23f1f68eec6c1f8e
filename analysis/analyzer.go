package analysis

import (
	"github.com/beatgrid/beatgrid/algorithms/temporal"
	"github.com/beatgrid/beatgrid/logging"
)

// TrackAnalysis is the result of analyzing a track.
type TrackAnalysis struct {
	BPM        int   `json:"bpm"`   // 0 means the tempo could not be determined
	Beats      []int `json:"beats"` // onset-envelope frame indices, ascending
	SampleRate int   `json:"sample_rate"`
	HopSize    int   `json:"hop_size"`
}

// BeatTimes converts the beat frame indices to seconds.
func (ta *TrackAnalysis) BeatTimes() []float64 {
	times := make([]float64, len(ta.Beats))
	if ta.SampleRate <= 0 {
		return times
	}
	for i, beat := range ta.Beats {
		times[i] = float64(beat*ta.HopSize) / float64(ta.SampleRate)
	}
	return times
}

// Analyzer chains onset detection, beat picking and tempo estimation. It is
// stateless between calls; every Analyze owns its working buffers, so one
// Analyzer may serve concurrent calls.
type Analyzer struct {
	config *Config
	onsets *temporal.OnsetDetector
	logger logging.Logger
}

// NewAnalyzer creates an analyzer. A nil config uses DefaultConfig.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = DefaultConfig()
	}

	onsets := temporal.NewOnsetDetector()
	onsets.HopSize = config.HopSize

	return &Analyzer{
		config: config,
		onsets: onsets,
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{
			"component": "analyzer",
		}),
	}
}

// Analyze runs the full beat pipeline over mono normalized samples. Tracks
// where no reliable tempo emerges come back with BPM 0 and whatever beats
// were found; that is a data-quality outcome, not an error.
func (a *Analyzer) Analyze(samples []float64, sampleRate int) *TrackAnalysis {
	result := &TrackAnalysis{
		Beats:      []int{},
		SampleRate: sampleRate,
		HopSize:    a.config.HopSize,
	}

	envelope := a.onsets.DetectOnsets(samples, sampleRate)
	if len(envelope) == 0 {
		a.logger.Warn("onset envelope empty", logging.Fields{
			"samples":     len(samples),
			"sample_rate": sampleRate,
		})
		return result
	}

	result.Beats = temporal.FindBeats(envelope, a.config.ThresholdFactor)
	result.BPM = temporal.EstimateTempo(result.Beats, sampleRate, a.config.HopSize)

	a.logger.Debug("track analyzed", logging.Fields{
		"frames": len(envelope),
		"beats":  len(result.Beats),
		"bpm":    result.BPM,
	})

	return result
}
