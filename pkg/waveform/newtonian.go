package waveform

import (
	"fmt"
	"math"
)

// Newtonian generates leading-order (quadrupole) inspiral waveforms.
// The time-domain series sweeps from fLow to the innermost stable circular
// orbit; the frequency-domain form is the stationary-phase approximation
// of the same signal.
type Newtonian struct{}

// NewNewtonian returns the built-in leading-order generator.
func NewNewtonian() *Newtonian { return &Newtonian{} }

// isco returns the innermost-stable-circular-orbit GW frequency in Hz.
func isco(m1, m2 float64) float64 {
	total := (m1 + m2) * solarMassSeconds
	return 1 / (math.Pow(6, 1.5) * math.Pi * total)
}

// timeToMerger returns the Newtonian time from frequency f to merger, in
// seconds, for chirp mass mc (seconds).
func timeToMerger(mc, f float64) float64 {
	return 5.0 / 256.0 * math.Pow(mc, -5.0/3.0) * math.Pow(math.Pi*f, -8.0/3.0)
}

// TimeDomain sweeps the chirp from fLow to ISCO. Spins are ignored at
// this order.
func (g *Newtonian) TimeDomain(p Params, fLow, deltaT float64) (Polarizations, error) {
	if p.Mass1 <= 0 || p.Mass2 <= 0 {
		return Polarizations{}, fmt.Errorf("waveform: non-positive mass (%v, %v)", p.Mass1, p.Mass2)
	}
	if p.Distance <= 0 {
		return Polarizations{}, fmt.Errorf("waveform: non-positive distance %v", p.Distance)
	}

	mc := chirpMassSeconds(p.Mass1, p.Mass2)
	dist := p.Distance * megaparsecSecond
	tauStart := timeToMerger(mc, fLow)
	tauEnd := timeToMerger(mc, isco(p.Mass1, p.Mass2))

	n := int((tauStart - tauEnd) / deltaT)
	if n < 1 {
		return Polarizations{}, fmt.Errorf("waveform: band [%v Hz, ISCO) shorter than one sample", fLow)
	}

	cosi := math.Cos(p.Inclination)
	ampPlus := (1 + cosi*cosi) / 2
	ampCross := cosi

	pol := Polarizations{
		Plus:   make([]float64, n),
		Cross:  make([]float64, n),
		DeltaT: deltaT,
	}
	for i := 0; i < n; i++ {
		tau := tauStart - float64(i)*deltaT
		f := 1 / (8 * math.Pi * mc) * math.Pow(5*mc/tau, 3.0/8.0)
		amp := 4 / dist * math.Pow(mc, 5.0/3.0) * math.Pow(math.Pi*f, 2.0/3.0)
		phase := -2 * math.Pow(tau/(5*mc), 5.0/8.0)
		pol.Plus[i] = amp * ampPlus * math.Cos(phase)
		pol.Cross[i] = amp * ampCross * math.Sin(phase)
	}
	return pol, nil
}

// FrequencyDomain returns the stationary-phase spectrum on the grid
// [0, fFinal] with spacing deltaF. Bins below fLow and above ISCO are
// zero.
func (g *Newtonian) FrequencyDomain(p Params, fLow, deltaF, fFinal float64) ([]complex128, error) {
	if p.Mass1 <= 0 || p.Mass2 <= 0 {
		return nil, fmt.Errorf("waveform: non-positive mass (%v, %v)", p.Mass1, p.Mass2)
	}
	dist := p.Distance * megaparsecSecond
	if p.Distance <= 0 {
		// Template generation uses a nominal distance.
		dist = 1 * megaparsecSecond
	}

	mc := chirpMassSeconds(p.Mass1, p.Mass2)
	fISCO := isco(p.Mass1, p.Mass2)
	n := int(fFinal/deltaF) + 1

	out := make([]complex128, n)
	ampScale := math.Sqrt(5.0/24.0) * math.Pow(math.Pi, -2.0/3.0) * math.Pow(mc, 5.0/6.0) / dist
	for k := 1; k < n; k++ {
		f := float64(k) * deltaF
		if f < fLow || f > fISCO {
			continue
		}
		amp := ampScale * math.Pow(f, -7.0/6.0)
		psi := -math.Pi/4 + 3.0/128.0*math.Pow(math.Pi*mc*f, -5.0/3.0)
		out[k] = complex(amp*math.Cos(psi), amp*math.Sin(psi))
	}
	return out, nil
}
