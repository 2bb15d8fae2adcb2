package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/shieldml/snrgen/pkg/waveform"
)

// Prior draws source parameters for injection candidates. Draw must be
// deterministic given the rng state; the generator owns seeding.
type Prior interface {
	Draw(rng *rand.Rand) waveform.Params
}

// UniformPrior samples component masses and spins uniformly, sky
// position and orientation isotropically, and distance uniformly in
// volume.
type UniformPrior struct {
	Mass1Min, Mass1Max float64
	Mass2Min, Mass2Max float64
	SpinMin, SpinMax   float64
	DistanceMin        float64 // Mpc
	DistanceMax        float64
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// Draw implements Prior.
func (p UniformPrior) Draw(rng *rand.Rand) waveform.Params {
	// Uniform in volume: cube root of a uniform draw over r³.
	r3 := uniform(rng, math.Pow(p.DistanceMin, 3), math.Pow(p.DistanceMax, 3))
	return waveform.Params{
		Mass1:        uniform(rng, p.Mass1Min, p.Mass1Max),
		Mass2:        uniform(rng, p.Mass2Min, p.Mass2Max),
		Spin1z:       uniform(rng, p.SpinMin, p.SpinMax),
		Spin2z:       uniform(rng, p.SpinMin, p.SpinMax),
		RA:           uniform(rng, 0, 2*math.Pi),
		Dec:          math.Asin(uniform(rng, -1, 1)),
		Distance:     math.Cbrt(r3),
		Inclination:  math.Acos(uniform(rng, -1, 1)),
		Polarization: uniform(rng, 0, 2*math.Pi),
	}
}
