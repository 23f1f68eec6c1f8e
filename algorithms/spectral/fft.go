package spectral

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrInvalidSize reports an FFT or IFFT call on a buffer whose length is
// greater than one but not a power of two.
var ErrInvalidSize = errors.New("spectral: buffer length must be a power of two")

// FFT performs an in-place radix-2 Cooley-Tukey decimation-in-time transform.
// Lengths 0 and 1 are no-ops. Any other length that is not a power of two
// returns ErrInvalidSize and leaves the buffer untouched.
func FFT(x []complex128) error {
	n := len(x)
	if n <= 1 {
		return nil
	}
	if n&(n-1) != 0 {
		return ErrInvalidSize
	}

	// Bit-reversal permutation
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j >= bit {
			j -= bit
			bit >>= 1
		}
		j += bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	// Precompute twiddle factors
	twiddles := make([]complex128, n/2)
	for i := range twiddles {
		angle := -2 * math.Pi * float64(i) / float64(n)
		twiddles[i] = complex(math.Cos(angle), math.Sin(angle))
	}

	// Radix-2 butterfly passes
	for length := 2; length <= n; length <<= 1 {
		half := length / 2
		step := n / length

		for i := 0; i < n; i += length {
			for k := 0; k < half; k++ {
				w := twiddles[k*step]
				t := x[i+k+half] * w
				x[i+k+half] = x[i+k] - t
				x[i+k] += t
			}
		}
	}

	return nil
}

// IFFT performs the in-place inverse transform: conjugate, forward FFT,
// conjugate again and scale by 1/N. Same size contract as FFT.
func IFFT(x []complex128) error {
	n := len(x)
	if n <= 1 {
		return nil
	}
	if n&(n-1) != 0 {
		return ErrInvalidSize
	}

	for i := range x {
		x[i] = cmplx.Conj(x[i])
	}

	if err := FFT(x); err != nil {
		return err
	}

	norm := complex(1/float64(n), 0)
	for i := range x {
		x[i] = cmplx.Conj(x[i]) * norm
	}

	return nil
}

// Magnitudes computes the magnitude spectrum of a real-valued frame for bins
// [0, N/2]. The frame length must be a power of two.
func Magnitudes(frame []float64) ([]float64, error) {
	n := len(frame)
	if n == 0 {
		return []float64{}, nil
	}
	if n&(n-1) != 0 {
		return nil, ErrInvalidSize
	}

	buf := make([]complex128, n)
	for i, s := range frame {
		buf[i] = complex(s, 0)
	}

	if err := FFT(buf); err != nil {
		return nil, err
	}

	mags := make([]float64, n/2+1)
	for i := range mags {
		mags[i] = cmplx.Abs(buf[i])
	}

	return mags, nil
}
