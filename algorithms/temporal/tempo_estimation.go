package temporal

import (
	"math"
)

const (
	minBeatInterval = 0.2 // seconds, 300 BPM before harmonic folding
	maxBeatInterval = 2.0 // seconds, 30 BPM before harmonic folding

	minHistogramBPM = 50.0
	maxHistogramBPM = 220.0
)

// harmonicVote is one tempo interpretation of an inter-beat interval.
type harmonicVote struct {
	multiplier float64
	weight     float64
}

// harmonicVotes lists the musically related interpretations of a beat
// interval: the primary tempo plus double, half, triple and third tempo.
var harmonicVotes = []harmonicVote{
	{1.0, 1.0},
	{2.0, 0.9},
	{0.5, 0.8},
	{3.0, 0.5},
	{1.0 / 3.0, 0.5},
}

// EstimateTempo votes a BPM from beat frame indices via a weighted histogram
// of inter-beat intervals at 0.5 BPM resolution. Later intervals carry more
// weight, tolerating tempo drift and intros with a different feel. Returns 0
// when the estimate would be unreliable: fewer than four beats, or no
// interval in the plausible range.
func EstimateTempo(beats []int, sampleRate, hopSize int) int {
	if len(beats) < 4 || sampleRate <= 0 {
		return 0
	}

	beatTimes := make([]float64, len(beats))
	for i, beat := range beats {
		beatTimes[i] = float64(beat*hopSize) / float64(sampleRate)
	}

	intervals := make([]float64, 0, len(beatTimes)-1)
	for i := 1; i < len(beatTimes); i++ {
		ibi := beatTimes[i] - beatTimes[i-1]
		if ibi >= minBeatInterval && ibi <= maxBeatInterval {
			intervals = append(intervals, ibi)
		}
	}

	if len(intervals) == 0 {
		return 0
	}

	// Histogram keys are round(bpm*2) for 0.5 BPM resolution
	histogram := make(map[int]float64)

	for i, ibi := range intervals {
		weight := 0.5 + 0.5*(float64(i)/float64(len(intervals)))
		primaryBPM := 60.0 / ibi

		for _, vote := range harmonicVotes {
			bpm := primaryBPM * vote.multiplier
			if bpm < minHistogramBPM || bpm > maxHistogramBPM {
				continue
			}
			key := int(math.Round(bpm * 2.0))
			histogram[key] += weight * vote.weight
		}
	}

	bestKey := 0
	maxScore := 0.0
	for key, score := range histogram {
		if score > maxScore {
			maxScore = score
			bestKey = key
		}
	}

	// Single-pass refinement: blend with the first nearby bucket whose vote
	// mass comes within 92% of the winner
	for offset := -3; offset <= 3; offset++ {
		nearbyKey := bestKey + offset
		if score, ok := histogram[nearbyKey]; ok && score > 0.92*maxScore {
			bestKey = int((float64(bestKey)*maxScore + float64(nearbyKey)*score) / (maxScore + score))
			break
		}
	}

	exactBPM := float64(bestKey) / 2.0

	// Fold into the canonical display range
	if exactBPM < 60 {
		exactBPM *= 2
	} else if exactBPM > 180 {
		exactBPM /= 2
	}

	return int(math.Round(exactBPM))
}
