package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/shieldml/snrgen/pkg/bank"
	"github.com/shieldml/snrgen/pkg/detector"
	"github.com/shieldml/snrgen/pkg/noise"
	"github.com/shieldml/snrgen/pkg/snr"
	"github.com/shieldml/snrgen/pkg/waveform"
)

// GenerateConfig controls one dataset build.
type GenerateConfig struct {
	Injections         int
	NoiseSamples       int
	DetectorThreshold  float64 // minimum expected SNR in every detector
	NetworkThreshold   float64 // minimum quadrature-sum SNR
	TemplatesPerSample int
	SelectionWidth     float64 // chirp-mass window fractional width
	MaxAttempts        int     // prior draws per accepted sample, default 100
}

// Generator draws injection candidates from a prior, keeps the ones
// loud enough to train on, and assigns each a set of nearby templates.
type Generator struct {
	meta Meta
	cat  *bank.Catalog
	gen  waveform.Generator
	geo  detector.Geometry

	deltaF  float64
	fFinal  float64
	psdBand map[string][]float64
}

// NewGenerator prepares a Generator for the run described by meta. The
// PSD is interpolated once onto the run's frequency grid.
func NewGenerator(meta Meta, cat *bank.Catalog, gen waveform.Generator, geo detector.Geometry, psd *noise.PSD) (*Generator, error) {
	if len(meta.Detectors) == 0 {
		return nil, fmt.Errorf("dataset: no detectors in run metadata")
	}
	if meta.SegmentLen <= 0 || meta.SampleRate <= 0 {
		return nil, fmt.Errorf("dataset: invalid segment geometry %d samples at %d Hz",
			meta.SegmentLen, meta.SampleRate)
	}
	deltaF := float64(meta.SampleRate) / float64(meta.SegmentLen)
	kmin, kmax := snr.CutoffIndices(meta.FLow, 0, deltaF, meta.SegmentLen)

	banded := make(map[string][]float64, len(meta.Detectors))
	for _, det := range meta.Detectors {
		full, err := psd.Interpolate(det, deltaF, meta.SegmentLen/2+1)
		if err != nil {
			return nil, err
		}
		banded[det] = noise.Slice(full, kmin, kmax)
	}
	return &Generator{
		meta:    meta,
		cat:     cat,
		gen:     gen,
		geo:     geo,
		deltaF:  deltaF,
		fFinal:  float64(meta.SegmentLen/2) * deltaF,
		psdBand: banded,
	}, nil
}

// ExpectedSNR estimates the matched-filter SNR the injection would
// produce in each detector, using the antenna response and inclination
// factors on the dominant mode, plus the network quadrature sum.
func (g *Generator) ExpectedSNR(p waveform.Params) (map[string]float64, float64, error) {
	h, err := g.gen.FrequencyDomain(p, g.meta.FLow, g.deltaF, g.fFinal)
	if err != nil {
		return nil, 0, err
	}
	kmin, kmax := snr.CutoffIndices(g.meta.FLow, 0, g.deltaF, g.meta.SegmentLen)
	band := h[kmin:kmax]

	aPlus := (1 + math.Cos(p.Inclination)*math.Cos(p.Inclination)) / 2
	aCross := math.Cos(p.Inclination)

	snrs := make(map[string]float64, len(g.meta.Detectors))
	var sumSq float64
	for _, det := range g.meta.Detectors {
		fp, fc, err := g.geo.AntennaPattern(det, p.RA, p.Dec, p.Polarization, p.GPS)
		if err != nil {
			return nil, 0, err
		}
		amp := math.Hypot(fp*aPlus, fc*aCross)
		s := amp * snr.Sigma(band, g.psdBand[det], g.deltaF)
		snrs[det] = s
		sumSq += s * s
	}
	return snrs, math.Sqrt(sumSq), nil
}

// Generate builds a dataset: cfg.Injections accepted injections followed
// by cfg.NoiseSamples pure-noise samples. GPS times are drawn from
// times, which must be non-empty (use SegmentSet.ValidTimes).
func (g *Generator) Generate(cfg GenerateConfig, prior Prior, times []int64) (*Set, error) {
	if cfg.Injections <= 0 {
		return nil, fmt.Errorf("dataset: injection count must be positive, got %d", cfg.Injections)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("dataset: no valid GPS times")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}

	rng := rand.New(rand.NewPCG(g.meta.Seed, 0x9e3779b97f4a7c15))
	set := &Set{Meta: g.meta}
	set.Meta.ID = uuid.NewString()
	set.Meta.TemplatesPerSample = cfg.TemplatesPerSample

	rejected := 0
	budget := cfg.MaxAttempts * cfg.Injections
	for len(set.Samples) < cfg.Injections {
		if rejected+len(set.Samples) >= budget {
			return nil, fmt.Errorf("dataset: accepted %d of %d injections after %d draws; lower the thresholds or widen the prior",
				len(set.Samples), cfg.Injections, budget)
		}
		p := prior.Draw(rng)
		if p.Mass1 < p.Mass2 {
			p.Mass1, p.Mass2 = p.Mass2, p.Mass1
			p.Spin1z, p.Spin2z = p.Spin2z, p.Spin1z
		}
		p.GPS = float64(times[rng.IntN(len(times))])

		snrs, network, err := g.ExpectedSNR(p)
		if err != nil {
			return nil, err
		}
		if network < cfg.NetworkThreshold || belowAny(snrs, cfg.DetectorThreshold) {
			rejected++
			continue
		}

		tmpls, err := bank.SelectWindow(g.cat, p.Mass1, p.Mass2, cfg.TemplatesPerSample, cfg.SelectionWidth, rng)
		if err != nil {
			return nil, fmt.Errorf("dataset: select templates for (%v, %v): %w", p.Mass1, p.Mass2, err)
		}
		set.Samples = append(set.Samples, Sample{
			Mass1:        p.Mass1,
			Mass2:        p.Mass2,
			Spin1z:       p.Spin1z,
			Spin2z:       p.Spin2z,
			RA:           p.RA,
			Dec:          p.Dec,
			Distance:     p.Distance,
			Inclination:  p.Inclination,
			Polarization: p.Polarization,
			GPS:          p.GPS,
			Injection:    true,
			SNR:          snrs,
			NetworkSNR:   network,
			Templates:    tmpls,
		})
	}

	for i := 0; i < cfg.NoiseSamples; i++ {
		// Center the template window on a random bank entry so noise
		// rows exercise the same template population as injections.
		t := g.cat.At(rng.IntN(g.cat.Len()))
		tmpls, err := bank.SelectWindow(g.cat, t.Mass1, t.Mass2, cfg.TemplatesPerSample, cfg.SelectionWidth, rng)
		if err != nil {
			return nil, fmt.Errorf("dataset: select noise templates: %w", err)
		}
		zero := make(map[string]float64, len(g.meta.Detectors))
		for _, det := range g.meta.Detectors {
			zero[det] = 0
		}
		set.Samples = append(set.Samples, Sample{
			GPS:       float64(times[rng.IntN(len(times))]),
			Injection: false,
			SNR:       zero,
			Templates: tmpls,
		})
	}

	slog.Info("dataset generated",
		"id", set.Meta.ID,
		"injections", cfg.Injections,
		"noise", cfg.NoiseSamples,
		"rejected", rejected)
	return set, nil
}

func belowAny(snrs map[string]float64, threshold float64) bool {
	for _, s := range snrs {
		if s < threshold {
			return true
		}
	}
	return false
}
