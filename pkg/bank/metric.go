package bank

import "math"

// Metric maps physical parameters into a flat coordinate system ("xi
// coordinates") in which Euclidean distance approximates waveform
// mismatch. Bank-generation pipelines supply their own metric; the
// selection code only relies on this contract.
type Metric interface {
	// Xi returns the coordinates of the point. The returned slice length
	// must be the same for every input.
	Xi(m1, m2, s1z, s2z float64) []float64
}

// ChirpTimesMetric is a built-in metric using the dimensionless chirp
// times theta0 and theta3 at a reference frequency, plus a weighted
// effective-spin coordinate. Chirp times are the standard flat coordinates
// for inspiral bank placement at this order; the spin coordinate is an
// approximation that keeps aligned-spin banks from collapsing onto the
// mass plane.
type ChirpTimesMetric struct {
	// FLow is the reference frequency in Hz.
	FLow float64

	// SpinWeight scales the effective-spin coordinate relative to the
	// chirp times. The default used by NewChirpTimesMetric is 250.
	SpinWeight float64
}

// NewChirpTimesMetric returns a ChirpTimesMetric at the given reference
// frequency with the default spin weighting.
func NewChirpTimesMetric(fLow float64) *ChirpTimesMetric {
	return &ChirpTimesMetric{FLow: fLow, SpinWeight: 250}
}

// Xi returns {theta0, theta3, weighted effective spin}.
func (m *ChirpTimesMetric) Xi(m1, m2, s1z, s2z float64) []float64 {
	total := (m1 + m2) * solarMassSeconds
	eta := m1 * m2 / ((m1 + m2) * (m1 + m2))
	v0 := math.Cbrt(math.Pi * total * m.FLow)

	tau0 := 5 * total / (256 * eta * math.Pow(v0, 8))
	tau3 := math.Pi * total / (8 * eta * math.Pow(v0, 5))

	chi := (m1*s1z + m2*s2z) / (m1 + m2)

	return []float64{
		2 * math.Pi * m.FLow * tau0,
		2 * math.Pi * m.FLow * tau3,
		m.SpinWeight * chi,
	}
}
