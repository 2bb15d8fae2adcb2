package dataset

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/shieldml/snrgen/pkg/bank"
	"github.com/shieldml/snrgen/pkg/detector"
	"github.com/shieldml/snrgen/pkg/noise"
	"github.com/shieldml/snrgen/pkg/waveform"
)

// NoiseSource provides n samples of detector noise starting at a GPS
// time. Implementations must be safe for concurrent use.
type NoiseSource interface {
	Strain(ctx context.Context, gps float64, n int) (map[string][]float64, error)
}

// SegmentNoise serves recorded noise from a segment archive.
type SegmentNoise struct {
	Segments *noise.SegmentSet
}

func (s SegmentNoise) Strain(ctx context.Context, gps float64, n int) (map[string][]float64, error) {
	rate := s.Segments.SampleRate()
	duration := int64((n + rate - 1) / rate)
	out, err := s.Segments.Fetch(ctx, int64(gps), duration)
	if err != nil {
		return nil, err
	}
	for det, row := range out {
		out[det] = row[:n]
	}
	return out, nil
}

// GaussianNoise synthesizes stationary colored noise from a PSD. The
// draw is deterministic in (Seed, gps, detector), so retried batches
// reproduce the same noise.
type GaussianNoise struct {
	PSD        *noise.PSD
	Detectors  []string
	SampleRate int
	Seed       uint64
}

func (g GaussianNoise) Strain(_ context.Context, gps float64, n int) (map[string][]float64, error) {
	deltaF := float64(g.SampleRate) / float64(n)
	deltaT := 1 / float64(g.SampleRate)
	out := make(map[string][]float64, len(g.Detectors))
	for di, det := range g.Detectors {
		psd, err := g.PSD.Interpolate(det, deltaF, n/2+1)
		if err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewPCG(g.Seed^uint64(di+1), math.Float64bits(gps)))
		x, err := noise.FromPSD(psd, n, deltaT, rng)
		if err != nil {
			return nil, err
		}
		out[det] = x
	}
	return out, nil
}

// SynthSource turns a dataset into engine input: per sample it fetches
// noise, synthesizes and injects the signal, and resolves template
// indices against the bank.
type SynthSource struct {
	set   *Set
	cat   *bank.Catalog
	gen   waveform.Generator
	noise NoiseSource
	proj  *waveform.Projector
	inj   *waveform.Injector
}

// NewSynthSource wires a source for set. mergerOffset shifts the
// injection merger relative to the segment center, matching the SNR
// window offset used downstream.
func NewSynthSource(set *Set, cat *bank.Catalog, gen waveform.Generator, geo detector.Geometry, ns NoiseSource, mergerOffset int) *SynthSource {
	return &SynthSource{
		set:   set,
		cat:   cat,
		gen:   gen,
		noise: ns,
		proj:  waveform.NewProjector(geo, set.Meta.Detectors, set.Meta.SampleRate),
		inj:   waveform.NewInjector(set.Meta.SegmentLen, mergerOffset),
	}
}

// Len implements snr.Source.
func (s *SynthSource) Len() int { return len(s.set.Samples) }

// Synthesize implements snr.Source.
func (s *SynthSource) Synthesize(ctx context.Context, i int) (map[string][]float64, []bank.Template, error) {
	smp := s.set.Samples[i]

	tmpls := make([]bank.Template, len(smp.Templates))
	for j, idx := range smp.Templates {
		if idx < 0 || idx >= s.cat.Len() {
			return nil, nil, fmt.Errorf("dataset: sample %d references template %d of %d", i, idx, s.cat.Len())
		}
		tmpls[j] = s.cat.At(idx)
	}

	base, err := s.noise.Strain(ctx, smp.GPS, s.set.Meta.SegmentLen)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: noise for sample %d: %w", i, err)
	}
	if !smp.Injection {
		return base, tmpls, nil
	}

	p := waveform.Params{
		Mass1:        smp.Mass1,
		Mass2:        smp.Mass2,
		Spin1z:       smp.Spin1z,
		Spin2z:       smp.Spin2z,
		Distance:     smp.Distance,
		Inclination:  smp.Inclination,
		RA:           smp.RA,
		Dec:          smp.Dec,
		Polarization: smp.Polarization,
		GPS:          smp.GPS,
	}
	pol, err := s.gen.TimeDomain(p, s.set.Meta.FLow, 1/float64(s.set.Meta.SampleRate))
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: waveform for sample %d: %w", i, err)
	}
	proj, err := s.proj.Project(pol, p)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: project sample %d: %w", i, err)
	}
	out, err := s.inj.Inject(base, proj)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: inject sample %d: %w", i, err)
	}
	return out, tmpls, nil
}
