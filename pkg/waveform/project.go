package waveform

import (
	"fmt"
	"math"

	"github.com/shieldml/snrgen/pkg/detector"
)

// Projection is a waveform projected onto one detector: the antenna-
// weighted combination of the two polarizations, plus the geometric
// arrival delay relative to the network's reference detector, expressed
// in whole samples.
//
// The delay is applied later, by [Injector.Inject], as a circular shift
// of the zero-padded analysis buffer; wrapping is harmless there because
// the signal is padded well away from the buffer edges.
type Projection struct {
	Strain       []float64
	DelaySamples int
}

// Projector combines polarization pairs with detector responses.
type Projector struct {
	geo        detector.Geometry
	detectors  []string
	sampleRate int
}

// NewProjector creates a projector for the given detector list. The first
// detector is the delay reference.
func NewProjector(geo detector.Geometry, detectors []string, sampleRate int) *Projector {
	return &Projector{geo: geo, detectors: detectors, sampleRate: sampleRate}
}

// Project computes the per-detector response to the polarization pair for
// a source described by p's extrinsic parameters.
func (pr *Projector) Project(pol Polarizations, p Params) (map[string]Projection, error) {
	ref := pr.detectors[0]
	out := make(map[string]Projection, len(pr.detectors))
	for _, det := range pr.detectors {
		fplus, fcross, err := pr.geo.AntennaPattern(det, p.RA, p.Dec, p.Polarization, p.GPS)
		if err != nil {
			return nil, fmt.Errorf("waveform: project onto %s: %w", det, err)
		}
		strain := make([]float64, len(pol.Plus))
		for i := range strain {
			strain[i] = fplus*pol.Plus[i] + fcross*pol.Cross[i]
		}

		delay, err := pr.geo.TimeDelay(det, ref, p.RA, p.Dec, p.GPS)
		if err != nil {
			return nil, fmt.Errorf("waveform: delay %s from %s: %w", det, ref, err)
		}
		out[det] = Projection{
			Strain:       strain,
			DelaySamples: int(math.Round(delay * float64(pr.sampleRate))),
		}
	}
	return out, nil
}
