package windowing

import (
	"fmt"
	"math"
)

// HanningWindow returns the coefficients of a symmetric Hann window:
// w[i] = 0.5 * (1 - cos(2*pi*i/(size-1))). Sizes below 2 are rejected
// because the denominator degenerates.
func HanningWindow(size int) ([]float64, error) {
	if size < 2 {
		return nil, fmt.Errorf("windowing: hann window size must be >= 2, got %d", size)
	}

	window := make([]float64, size)
	denominator := float64(size - 1)
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}

	return window, nil
}

// ApplyHannWindow multiplies the buffer by a Hann window in place.
func ApplyHannWindow(buffer []float64) error {
	n := len(buffer)
	if n < 2 {
		return fmt.Errorf("windowing: hann window size must be >= 2, got %d", n)
	}

	norm := 2 * math.Pi / float64(n-1)
	for i := range buffer {
		buffer[i] *= 0.5 * (1.0 - math.Cos(float64(i)*norm))
	}

	return nil
}
