package stretch

import (
	"math"
	"math/rand"
	"testing"
)

func sine(freq float64, seconds float64, sampleRate int, amplitude float64) []float64 {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestTimeStretchIdentity(t *testing.T) {
	input := sine(440, 0.5, 44100, 0.5)

	out := TimeStretch(input, 1.0, 4096)
	if len(out) != len(input) {
		t.Fatalf("identity stretch changed length: %d -> %d", len(input), len(out))
	}
	for i := range out {
		if out[i] != input[i] {
			t.Fatalf("identity stretch changed sample %d", i)
		}
	}

	// Near-unity factors short-circuit the same way
	out = TimeStretch(input, 1.0005, 4096)
	if len(out) != len(input) {
		t.Errorf("near-unity stretch changed length: %d -> %d", len(input), len(out))
	}
}

func TestTimeStretchGuards(t *testing.T) {
	input := sine(440, 0.2, 44100, 0.5)

	for _, factor := range []float64{0, -1, 0.1, 5.0} {
		out := TimeStretch(input, factor, 4096)
		if len(out) != len(input) {
			t.Errorf("factor %f: expected pass-through, got %d samples", factor, len(out))
		}
	}

	if out := TimeStretch(nil, 2.0, 4096); len(out) != 0 {
		t.Errorf("empty input: got %d samples", len(out))
	}
}

func TestTimeStretchDouble(t *testing.T) {
	input := sine(440, 1.0, 44100, 0.5)

	out := TimeStretch(input, 2.0, 4096)

	want := int(float64(len(input)) * 2.0)
	if len(out) != want {
		t.Fatalf("got %d samples, want %d", len(out), want)
	}

	inRMS := rms(input)
	outRMS := rms(out)
	if math.Abs(outRMS-inRMS)/inRMS > 0.1 {
		t.Errorf("RMS drifted: input %f, output %f", inRMS, outRMS)
	}
}

func TestTimeStretchCompress(t *testing.T) {
	input := sine(220, 1.0, 44100, 0.4)

	out := TimeStretch(input, 0.5, 4096)

	want := int(float64(len(input)) * 0.5)
	if len(out) != want {
		t.Fatalf("got %d samples, want %d", len(out), want)
	}
}

func TestTimeStretchClippingGuarantee(t *testing.T) {
	rng := rand.New(rand.NewSource(23))

	input := make([]float64, 44100)
	for i := range input {
		input[i] = rng.Float64()*1.98 - 0.99
	}

	for _, factor := range []float64{0.5, 1.5, 2.0} {
		out := TimeStretch(input, factor, 4096)
		for i, v := range out {
			if math.Abs(v) > 0.95 {
				t.Fatalf("factor %f sample %d exceeds limiter: %f", factor, i, v)
			}
		}
	}
}

func TestTimeStretchDeterministic(t *testing.T) {
	input := sine(330, 0.6, 44100, 0.5)

	first := TimeStretch(input, 1.5, 4096)
	second := TimeStretch(input, 1.5, 4096)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vocoder state leaked between calls at sample %d", i)
		}
	}
}

func TestStretcherCustomSampleRate(t *testing.T) {
	input := sine(440, 1.0, 48000, 0.5)

	stretcher := &Stretcher{SampleRate: 48000}
	out := stretcher.Process(input, 1.25)

	want := int(float64(len(input)) * 1.25)
	if len(out) != want {
		t.Fatalf("got %d samples, want %d", len(out), want)
	}
}

func BenchmarkTimeStretch(b *testing.B) {
	input := sine(440, 1.0, 44100, 0.5)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = TimeStretch(input, 1.2, 4096)
	}
}
