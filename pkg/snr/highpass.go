package snr

import "math"

// HighPass runs a second-order Butterworth high-pass over x and returns
// the filtered copy. It conditions strain before the FFT so that
// low-frequency content below the analysis band does not leak through
// the band truncation.
func HighPass(x []float64, cutoff float64, sampleRate int) []float64 {
	// Bilinear-transform biquad coefficients.
	wc := math.Tan(math.Pi * cutoff / float64(sampleRate))
	k1 := math.Sqrt2 * wc
	k2 := wc * wc
	a0 := 1 / (1 + k1 + k2)

	b0 := a0
	b1 := -2 * a0
	b2 := a0
	a1 := 2 * a0 * (k2 - 1)
	a2 := a0 * (1 - k1 + k2)

	out := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for i, v := range x {
		y := b0*v + b1*x1 + b2*x2 - a1*y1 - a2*y2
		out[i] = y
		x2, x1 = x1, v
		y2, y1 = y1, y
	}
	return out
}
