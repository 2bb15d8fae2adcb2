package snr

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Filter computes complex SNR time series for one analysis segment
// geometry: n time samples at the given rate, correlated over the band
// [fLow, fHigh]. A Filter reuses FFT plans and scratch space and is NOT
// safe for concurrent use; the engine runs one per filter stage.
type Filter struct {
	n          int
	sampleRate int
	deltaT     float64
	deltaF     float64
	kmin       int
	kmax       int
	rfft       *fourier.FFT
	ifft       *fourier.CmplxFFT
	spec       []complex128
	corr       []complex128
}

// NewFilter builds a filter for n-sample segments. n must be even.
func NewFilter(n, sampleRate int, fLow, fHigh float64) (*Filter, error) {
	if n <= 0 || n%2 != 0 {
		return nil, fmt.Errorf("snr: segment length must be positive and even, got %d", n)
	}
	deltaT := 1 / float64(sampleRate)
	deltaF := 1 / (float64(n) * deltaT)
	kmin, kmax := CutoffIndices(fLow, fHigh, deltaF, n)
	return &Filter{
		n:          n,
		sampleRate: sampleRate,
		deltaT:     deltaT,
		deltaF:     deltaF,
		kmin:       kmin,
		kmax:       kmax,
		rfft:       fourier.NewFFT(n),
		ifft:       fourier.NewCmplxFFT(n),
		spec:       make([]complex128, n/2+1),
		corr:       make([]complex128, n),
	}, nil
}

// DeltaF returns the frequency resolution of the segment grid.
func (f *Filter) DeltaF() float64 { return f.deltaF }

// Band returns the analysis bin range [kmin, kmax).
func (f *Filter) Band() (kmin, kmax int) { return f.kmin, f.kmax }

// StrainFD transforms a time-domain strain segment and returns its
// spectrum over the analysis band, scaled to the same continuous-
// transform convention the template generator uses.
func (f *Filter) StrainFD(strain []float64) ([]complex128, error) {
	if len(strain) != f.n {
		return nil, fmt.Errorf("snr: strain has %d samples, want %d", len(strain), f.n)
	}
	f.rfft.Coefficients(f.spec, strain)
	out := make([]complex128, f.kmax-f.kmin)
	dt := complex(f.deltaT, 0)
	for i := range out {
		out[i] = f.spec[f.kmin+i] * dt
	}
	return out, nil
}

// SNRSeries correlates a banded strain spectrum against a banded
// template and returns the complex SNR time series of length n. All
// three inputs must cover the same band.
func (f *Filter) SNRSeries(strainBand, tmplBand []complex128, psdBand []float64) ([]complex128, error) {
	width := f.kmax - f.kmin
	if len(strainBand) != width || len(tmplBand) != width || len(psdBand) != width {
		return nil, fmt.Errorf("snr: band widths %d/%d/%d, want %d",
			len(strainBand), len(tmplBand), len(psdBand), width)
	}
	sigma := Sigma(tmplBand, psdBand, f.deltaF)
	if sigma == 0 {
		return nil, fmt.Errorf("snr: template has zero power in band")
	}

	for i := range f.corr {
		f.corr[i] = 0
	}
	for k := 0; k < width; k++ {
		h := tmplBand[k]
		f.corr[f.kmin+k] = strainBand[k] * complex(real(h), -imag(h)) / complex(psdBand[k], 0)
	}

	series := f.ifft.Sequence(nil, f.corr)
	scale := complex(4*f.deltaF/sigma, 0)
	for i := range series {
		series[i] *= scale
	}
	return series, nil
}

// Window selects the stored slice of an SNR series around the segment
// center, where the injection merger sits. Before and After are in
// seconds; Offset shifts the window by whole samples.
type Window struct {
	Before float64
	After  float64
	Offset int
}

// Bounds returns the half-open sample range the window covers in an
// n-sample series.
func (w Window) Bounds(n, sampleRate int) (start, end int) {
	start = n/2 - int(w.Before*float64(sampleRate)) + w.Offset
	end = n/2 + int(w.After*float64(sampleRate)) + w.Offset
	return start, end
}

// Len returns the window length in samples.
func (w Window) Len(sampleRate int) int {
	return int(w.Before*float64(sampleRate)) + int(w.After*float64(sampleRate))
}

// Slice extracts the window from a full SNR series, narrowing to
// complex64 for storage.
func (w Window) Slice(series []complex128, sampleRate int) ([]complex64, error) {
	start, end := w.Bounds(len(series), sampleRate)
	if start < 0 || end > len(series) || start >= end {
		return nil, fmt.Errorf("snr: window [%d, %d) outside series of %d samples", start, end, len(series))
	}
	out := make([]complex64, end-start)
	for i := range out {
		out[i] = complex64(series[start+i])
	}
	return out, nil
}
