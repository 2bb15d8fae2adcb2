package snr

import (
	"errors"
	"fmt"

	"github.com/shieldml/snrgen/pkg/bank"
	"github.com/shieldml/snrgen/pkg/waveform"
)

// Templates materializes frequency-domain templates on the run's grid,
// truncated to the analysis band, through a Cache.
type Templates struct {
	gen    waveform.Generator
	cache  Cache
	fLow   float64
	deltaF float64
	fFinal float64
	kmin   int
	kmax   int
}

// NewTemplates builds a materializer for an n-sample analysis segment
// with bin spacing deltaF. Templates span [fLow, fHigh]; pass fHigh 0
// to run to Nyquist.
func NewTemplates(gen waveform.Generator, cache Cache, fLow, fHigh, deltaF float64, n int) *Templates {
	kmin, kmax := CutoffIndices(fLow, fHigh, deltaF, n)
	return &Templates{
		gen:    gen,
		cache:  cache,
		fLow:   fLow,
		deltaF: deltaF,
		fFinal: float64(n/2) * deltaF,
		kmin:   kmin,
		kmax:   kmax,
	}
}

// Band returns the bin range [kmin, kmax) the materialized templates
// cover.
func (t *Templates) Band() (kmin, kmax int) { return t.kmin, t.kmax }

// Materialize returns the banded template spectrum, generating and
// caching it on first use.
func (t *Templates) Materialize(tmpl bank.Template) ([]complex128, error) {
	key := fmt.Sprintf("%.8f:%.8f:%.6f:%.6f:%g:%g",
		tmpl.Mass1, tmpl.Mass2, tmpl.Spin1z, tmpl.Spin2z, t.fLow, t.deltaF)

	cached, err := t.cache.Get(key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	full, err := t.gen.FrequencyDomain(waveform.Params{
		Mass1:  tmpl.Mass1,
		Mass2:  tmpl.Mass2,
		Spin1z: tmpl.Spin1z,
		Spin2z: tmpl.Spin2z,
	}, t.fLow, t.deltaF, t.fFinal)
	if err != nil {
		return nil, fmt.Errorf("snr: materialize template (%v, %v): %w", tmpl.Mass1, tmpl.Mass2, err)
	}
	if len(full) < t.kmax {
		return nil, fmt.Errorf("snr: template spectrum has %d bins, need %d", len(full), t.kmax)
	}
	band := full[t.kmin:t.kmax]
	if err := t.cache.Put(key, band); err != nil {
		return nil, err
	}
	return band, nil
}
