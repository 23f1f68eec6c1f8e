package analysis

// Config controls the beat analysis pipeline.
type Config struct {
	// HopSize is the stride in samples between onset analysis frames.
	HopSize int `json:"hop_size"`

	// ThresholdFactor scales the local standard deviation in the adaptive
	// beat-picking threshold. Higher values keep only the strongest peaks.
	ThresholdFactor float64 `json:"threshold_factor"`
}

// DefaultConfig returns the standard analysis parameters.
func DefaultConfig() *Config {
	return &Config{
		HopSize:         512,
		ThresholdFactor: 1.3,
	}
}
