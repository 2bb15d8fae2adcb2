// Package waveform defines the waveform-generation contract and the two
// steps that turn a polarization pair into per-detector strain: projection
// through the detector antenna response, and injection into a noise
// segment at a target epoch.
//
// Waveform physics itself sits behind the [Generator] interface; the
// built-in [Newtonian] generator implements the leading-order inspiral,
// which is enough to exercise the pipeline and produce test datasets.
// Production banks plug in their own generator.
package waveform

import "math"

// Params are the physical parameters of one compact binary signal.
// Masses in solar masses, distance in Mpc, angles in radians, GPS epoch
// in seconds.
type Params struct {
	Mass1, Mass2   float64
	Spin1z, Spin2z float64
	Inclination    float64
	Distance       float64
	RA, Dec        float64
	Polarization   float64
	GPS            float64
}

// Polarizations is a plus/cross polarization pair sampled at DeltaT.
// The merger sits at the end of the series.
type Polarizations struct {
	Plus   []float64
	Cross  []float64
	DeltaT float64
}

// Generator produces waveform polarizations from physical parameters.
// Implementations must be safe for concurrent use: the batch engine calls
// them from its worker pool.
type Generator interface {
	// TimeDomain returns the polarization pair starting at frequency
	// fLow, sampled at deltaT.
	TimeDomain(p Params, fLow, deltaT float64) (Polarizations, error)

	// FrequencyDomain returns the plus-polarization spectrum on the
	// regular frequency grid [0, fFinal] with spacing deltaF, zero below
	// fLow. The returned slice has int(fFinal/deltaF)+1 elements.
	FrequencyDomain(p Params, fLow, deltaF, fFinal float64) ([]complex128, error)
}

const (
	solarMassSeconds = 4.925490947641267e-6 // G*Msun/c^3 in seconds
	megaparsecSecond = 1.02927125054339e14  // 1 Mpc / c in seconds
)

// chirpMassSeconds returns the chirp mass of the pair in seconds.
func chirpMassSeconds(m1, m2 float64) float64 {
	return math.Pow(m1*m2, 0.6) / math.Pow(m1+m2, 0.2) * solarMassSeconds
}
