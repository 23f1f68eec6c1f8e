package temporal

import (
	"testing"
)

func TestFindBeatsSpikes(t *testing.T) {
	envelope := make([]float64, 400)
	for i := 43; i < len(envelope); i += 43 {
		envelope[i] = 1.0
	}

	beats := FindBeats(envelope, DefaultThresholdFactor)
	if len(beats) == 0 {
		t.Fatal("no beats found in spike envelope")
	}

	for _, beat := range beats {
		if beat%43 != 0 {
			t.Errorf("beat at %d is not a spike position", beat)
		}
	}
}

func TestFindBeatsAscendingWithinBounds(t *testing.T) {
	envelope := make([]float64, 300)
	for i := 20; i < len(envelope); i += 31 {
		envelope[i] = 0.8
	}

	beats := FindBeats(envelope, DefaultThresholdFactor)

	for i, beat := range beats {
		if beat < peakNeighborhood || beat >= len(envelope)-peakNeighborhood {
			t.Errorf("beat %d violates the boundary margin", beat)
		}
		if i > 0 && beat <= beats[i-1] {
			t.Errorf("beats not strictly ascending: %d after %d", beat, beats[i-1])
		}
	}
}

func TestFindBeatsFlatEnvelope(t *testing.T) {
	envelope := make([]float64, 200)
	for i := range envelope {
		envelope[i] = 0.5
	}

	// A constant envelope never exceeds its own mean-based threshold
	if beats := FindBeats(envelope, DefaultThresholdFactor); len(beats) != 0 {
		t.Errorf("flat envelope produced %d beats", len(beats))
	}
}

func TestFindBeatsEmptyEnvelope(t *testing.T) {
	if beats := FindBeats(nil, DefaultThresholdFactor); len(beats) != 0 {
		t.Errorf("empty envelope produced %d beats", len(beats))
	}
}
