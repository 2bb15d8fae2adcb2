package waveform

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when the detector key sets or lengths of
// noise and signal disagree.
var ErrShapeMismatch = errors.New("waveform: shape mismatch")

// Injector places projected signals into noise segments. The merger is
// positioned at sample N/2 + Offset of the full analysis buffer, where N
// is the buffer length.
//
// Signals are required to be shorter than half the buffer; longer signals
// are silently truncated to their trailing N/2 samples. That mirrors the
// upstream pipeline's behavior and keeps retraining runs comparable; see
// DESIGN.md for the rationale for not turning it into an error.
type Injector struct {
	// N is the analysis buffer length in samples (duration * sample rate).
	N int

	// Offset shifts the merger position away from the buffer midpoint,
	// in samples.
	Offset int
}

// NewInjector creates an injector for buffers of n samples with the given
// merger offset. The offset is clamped to half the buffer.
func NewInjector(n, offset int) *Injector {
	if offset > n/2 {
		offset = n / 2
	}
	return &Injector{N: n, Offset: offset}
}

// Inject returns the composite strain per detector: the projected signal
// centered in a zero buffer, circularly shifted by its arrival delay, plus
// the noise. A nil projection map returns the noise unchanged (pure-noise
// samples).
func (inj *Injector) Inject(noise map[string][]float64, proj map[string]Projection) (map[string][]float64, error) {
	if proj == nil {
		return noise, nil
	}
	if len(noise) != len(proj) {
		return nil, fmt.Errorf("%w: %d noise detectors, %d signal detectors", ErrShapeMismatch, len(noise), len(proj))
	}

	out := make(map[string][]float64, len(noise))
	for det, n := range noise {
		p, ok := proj[det]
		if !ok {
			return nil, fmt.Errorf("%w: no signal for detector %s", ErrShapeMismatch, det)
		}
		if len(n) != inj.N {
			return nil, fmt.Errorf("%w: %s noise has %d samples, want %d", ErrShapeMismatch, det, len(n), inj.N)
		}

		buf := make([]float64, inj.N)
		wLen := min(len(p.Strain), inj.N/2)
		// Trailing samples survive truncation: the merger end of the
		// signal is what the filter must see.
		sig := p.Strain[len(p.Strain)-wLen:]
		copy(buf[inj.N/2-wLen+inj.Offset:inj.N/2+inj.Offset], sig)

		roll(buf, p.DelaySamples)
		for i := range buf {
			buf[i] += n[i]
		}
		out[det] = buf
	}
	return out, nil
}

// roll circularly shifts x right by k samples (left for negative k).
func roll(x []float64, k int) {
	n := len(x)
	if n == 0 {
		return
	}
	k = ((k % n) + n) % n
	if k == 0 {
		return
	}
	tmp := make([]float64, n)
	copy(tmp[k:], x[:n-k])
	copy(tmp[:k], x[n-k:])
	copy(x, tmp)
}
