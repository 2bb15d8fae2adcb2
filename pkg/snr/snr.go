// Package snr computes batched matched-filter signal-to-noise series
// and streams them into the output store. The filter follows the usual
// frequency-domain form: the strain spectrum is correlated against a
// template over the analysis band, weighted by the detector PSD and
// normalized by the template sigma.
package snr

import (
	"math"
	"math/cmplx"
)

// CutoffIndices maps the analysis band [fLow, fHigh] to frequency bin
// indices [kmin, kmax) of an n-sample transform. A zero fLow starts at
// bin 1 (DC excluded); a zero fHigh runs to Nyquist.
func CutoffIndices(fLow, fHigh, deltaF float64, n int) (kmin, kmax int) {
	kmin = 1
	if fLow > 0 {
		kmin = int(fLow / deltaF)
	}
	kmax = n/2 + 1
	if fHigh > 0 {
		if k := int(fHigh / deltaF); k < kmax {
			kmax = k
		}
	}
	return kmin, kmax
}

// Sigma returns the matched-filter normalization of a template over the
// analysis band: sqrt(4Δf Σ |h̃|²/S). htilde and psd must already be
// sliced to the same band.
func Sigma(htilde []complex128, psd []float64, deltaF float64) float64 {
	var sum float64
	for k, h := range htilde {
		m := cmplx.Abs(h)
		sum += m * m / psd[k]
	}
	return math.Sqrt(4 * deltaF * sum)
}
