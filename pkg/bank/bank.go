// Package bank holds the template bank: an immutable catalog of compact
// binary waveform parameters sorted by chirp mass, together with the
// template selection policies that pair each training sample with a small,
// representative, non-duplicate set of templates.
//
// Two interchangeable notions of distance between a parameter point and a
// template exist:
//
//   - metric distance: squared Euclidean distance between precomputed
//     positions in a flat parameter-space coordinate system ("xi
//     coordinates", see [Metric])
//   - heuristic distance: a chirp-mass-weighted mismatch in mass ratio and
//     chirp mass (see [HeuristicDistance])
//
// Callers pick one and use it consistently per dataset: [SelectMetric] for
// the former, [SelectWindow] for the latter.
package bank

import "math"

// Template is one point of the bank: chirp mass plus the component masses
// and aligned spins it derives from. Masses are in solar masses.
type Template struct {
	ChirpMass float64
	Mass1     float64
	Mass2     float64
	Spin1z    float64
	Spin2z    float64
}

// ChirpMass returns (m1*m2)^0.6 / (m1+m2)^0.2, the mass combination that
// controls leading-order waveform phasing.
func ChirpMass(m1, m2 float64) float64 {
	return math.Pow(m1*m2, 0.6) / math.Pow(m1+m2, 0.2)
}

// HeuristicDistance is the chirp-mass-weighted dissimilarity between a
// template and a parameter point. It produces acceptable matches for
// non-spinning systems; bank selection in the metric space supersedes it
// when xi coordinates are available.
func HeuristicDistance(t Template, m1, m2 float64) float64 {
	return math.Abs(t.Mass2/t.Mass1-m2/m1) + 1000*math.Abs(t.ChirpMass-ChirpMass(m1, m2))
}

const (
	solarMassSeconds = 4.925490947641267e-6 // G*Msun/c^3 in seconds
	c                = 299792458.0
	g                = 6.674e-11
	solarMassKG      = 1.989e30
)

// TimeAtFreq returns the first-order time, in seconds, for a binary with
// the given masses to evolve from frequency f (Hz) to merger. A 1% margin
// is added: overestimating the remaining time is safer than underestimating
// it when positioning signals inside noise segments.
func TimeAtFreq(m1, m2, f float64) float64 {
	top := 5 * math.Pow(c, 5) * math.Cbrt((m1+m2)*solarMassKG)
	bottom := math.Pow(f, 8.0/3.0) * 256 * math.Pow(math.Pi, 8.0/3.0) *
		math.Pow(g, 5.0/3.0) * m1 * m2 * solarMassKG * solarMassKG
	return 1.01 * top / bottom
}

// FreqAtTime returns the first-order gravitational-wave frequency, in Hz,
// of a binary with the given masses at time t (seconds) before merger.
func FreqAtTime(m1, m2, t float64) float64 {
	top := 5 * math.Pow(c, 5) * math.Cbrt((m1+m2)*solarMassKG)
	bottom := t * 256 * math.Pow(math.Pi, 8.0/3.0) *
		math.Pow(g, 5.0/3.0) * m1 * m2 * solarMassKG * solarMassKG
	return math.Pow(top/bottom, 3.0/8.0)
}
