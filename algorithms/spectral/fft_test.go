package spectral

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	godsp "github.com/mjibson/go-dsp/fft"
)

func TestFFTRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 2; n <= 4096; n <<= 1 {
		original := make([]complex128, n)
		for i := range original {
			original[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
		}

		buf := make([]complex128, n)
		copy(buf, original)

		if err := FFT(buf); err != nil {
			t.Fatalf("FFT(n=%d): %v", n, err)
		}
		if err := IFFT(buf); err != nil {
			t.Fatalf("IFFT(n=%d): %v", n, err)
		}

		for i := range buf {
			if cmplx.Abs(buf[i]-original[i]) > 1e-9 {
				t.Fatalf("round trip n=%d bin %d: got %v, want %v", n, i, buf[i], original[i])
			}
		}
	}
}

func TestFFTInvalidSizes(t *testing.T) {
	for _, n := range []int{3, 5, 100} {
		buf := make([]complex128, n)
		if err := FFT(buf); err != ErrInvalidSize {
			t.Errorf("FFT(n=%d): got %v, want ErrInvalidSize", n, err)
		}
		if err := IFFT(buf); err != ErrInvalidSize {
			t.Errorf("IFFT(n=%d): got %v, want ErrInvalidSize", n, err)
		}
	}
}

func TestFFTDegenerateSizes(t *testing.T) {
	if err := FFT(nil); err != nil {
		t.Errorf("FFT(nil): %v", err)
	}
	if err := IFFT(nil); err != nil {
		t.Errorf("IFFT(nil): %v", err)
	}

	one := []complex128{complex(0.7, -0.3)}
	if err := FFT(one); err != nil {
		t.Errorf("FFT(n=1): %v", err)
	}
	if one[0] != complex(0.7, -0.3) {
		t.Errorf("FFT(n=1) modified the buffer: %v", one[0])
	}
}

// TestFFTMatchesReference cross-checks the kernel against go-dsp on random
// real input.
func TestFFTMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{64, 256, 1024} {
		samples := make([]float64, n)
		buf := make([]complex128, n)
		for i := range samples {
			samples[i] = rng.Float64()*2 - 1
			buf[i] = complex(samples[i], 0)
		}

		if err := FFT(buf); err != nil {
			t.Fatalf("FFT(n=%d): %v", n, err)
		}
		want := godsp.FFTReal(samples)

		for i := range buf {
			if cmplx.Abs(buf[i]-want[i]) > 1e-8 {
				t.Fatalf("n=%d bin %d: got %v, reference %v", n, i, buf[i], want[i])
			}
		}
	}
}

func TestMagnitudesSinePeak(t *testing.T) {
	const n = 64
	const bin = 8

	frame := make([]float64, n)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * bin * float64(i) / n)
	}

	mags, err := Magnitudes(frame)
	if err != nil {
		t.Fatal(err)
	}
	if len(mags) != n/2+1 {
		t.Fatalf("got %d bins, want %d", len(mags), n/2+1)
	}

	peak := 0
	for i, m := range mags {
		if m > mags[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Errorf("peak at bin %d, want %d", peak, bin)
	}
	if math.Abs(mags[bin]-n/2) > 1e-9 {
		t.Errorf("peak magnitude %f, want %f", mags[bin], float64(n)/2)
	}
}

func TestMagnitudesInvalidSize(t *testing.T) {
	if _, err := Magnitudes(make([]float64, 100)); err != ErrInvalidSize {
		t.Errorf("got %v, want ErrInvalidSize", err)
	}
}

func BenchmarkFFT4096(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	buf := make([]complex128, 4096)
	for i := range buf {
		buf[i] = complex(rng.Float64()*2-1, 0)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = FFT(buf)
	}
}
