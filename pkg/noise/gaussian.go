package noise

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FromPSD synthesizes n time samples of zero-mean Gaussian noise whose
// one-sided PSD matches psd, which must span the full band (n/2+1 bins
// at deltaF = 1/(n·deltaT)). The caller owns rng; pass distinct
// generators to concurrent callers.
func FromPSD(psd []float64, n int, deltaT float64, rng *rand.Rand) ([]float64, error) {
	if n <= 0 || n%2 != 0 {
		return nil, fmt.Errorf("noise: length must be positive and even, got %d", n)
	}
	if len(psd) < n/2+1 {
		return nil, fmt.Errorf("noise: psd has %d bins, need %d", len(psd), n/2+1)
	}

	// Each frequency bin is an independent complex Gaussian with
	// variance n·S_k/(4Δt) per quadrature. DC and Nyquist are real.
	spec := make([]complex128, n)
	for k := 1; k < n/2; k++ {
		sigma := math.Sqrt(float64(n) * psd[k] / (4 * deltaT))
		spec[k] = complex(sigma*rng.NormFloat64(), sigma*rng.NormFloat64())
		spec[n-k] = complex(real(spec[k]), -imag(spec[k]))
	}
	spec[n/2] = complex(math.Sqrt(float64(n)*psd[n/2]/(2*deltaT))*rng.NormFloat64(), 0)

	fft := fourier.NewCmplxFFT(n)
	seq := fft.Sequence(nil, spec)
	out := make([]float64, n)
	for i := range out {
		out[i] = real(seq[i]) / float64(n)
	}
	return out, nil
}
