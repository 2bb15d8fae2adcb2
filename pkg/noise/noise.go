// Package noise provides the detector noise inputs of the pipeline:
// recorded segments served through a storage backend, Gaussian noise
// synthesized from a power spectral density, and the PSD records both
// paths share.
package noise

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrNoSegment is returned by Fetch when no recorded segment covers
	// the requested interval.
	ErrNoSegment = errors.New("noise: no segment covers the requested time")

	// ErrUnknownDetector is returned when a PSD or segment set has no
	// data for the named detector.
	ErrUnknownDetector = errors.New("noise: unknown detector")
)

// PSD is a one-sided power spectral density estimate per detector, on a
// uniform frequency grid starting at 0 Hz.
type PSD struct {
	DeltaF    float64              `msgpack:"delta_f"`
	Detectors map[string][]float64 `msgpack:"detectors"`
}

// ReadPSD decodes a msgpack PSD record.
func ReadPSD(r io.Reader) (*PSD, error) {
	var p PSD
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("noise: decode psd: %w", err)
	}
	if p.DeltaF <= 0 {
		return nil, fmt.Errorf("noise: psd has non-positive delta_f %v", p.DeltaF)
	}
	return &p, nil
}

// Write encodes the record as msgpack.
func (p *PSD) Write(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("noise: encode psd: %w", err)
	}
	return nil
}

// Interpolate resamples the named detector's PSD onto a grid of n bins
// spaced deltaF apart, linearly between stored bins. Frequencies beyond
// the stored grid hold the last stored value.
func (p *PSD) Interpolate(det string, deltaF float64, n int) ([]float64, error) {
	src, ok := p.Detectors[det]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDetector, det)
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("noise: empty psd for %q", det)
	}
	out := make([]float64, n)
	for k := range out {
		x := float64(k) * deltaF / p.DeltaF
		i := int(x)
		if i >= len(src)-1 {
			out[k] = src[len(src)-1]
			continue
		}
		frac := x - float64(i)
		out[k] = src[i] + frac*(src[i+1]-src[i])
	}
	return out, nil
}

// Slice returns the band [kmin, kmax) of a PSD array.
func Slice(psd []float64, kmin, kmax int) []float64 {
	if kmin < 0 {
		kmin = 0
	}
	if kmax > len(psd) {
		kmax = len(psd)
	}
	if kmin >= kmax {
		return nil
	}
	return psd[kmin:kmax]
}
