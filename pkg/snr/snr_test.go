package snr

import (
	"math"
	"testing"
)

func TestCutoffIndices(t *testing.T) {
	kmin, kmax := CutoffIndices(30, 0, 0.5, 4096)
	if kmin != 60 || kmax != 2049 {
		t.Errorf("band = [%d, %d), want [60, 2049)", kmin, kmax)
	}
	kmin, kmax = CutoffIndices(0, 100, 0.5, 4096)
	if kmin != 1 || kmax != 200 {
		t.Errorf("band = [%d, %d), want [1, 200)", kmin, kmax)
	}
	// fHigh beyond Nyquist clamps.
	_, kmax = CutoffIndices(20, 1e6, 0.5, 4096)
	if kmax != 2049 {
		t.Errorf("kmax = %d, want 2049", kmax)
	}
}

func TestSigma(t *testing.T) {
	h := []complex128{3 + 4i, 0, 1}
	psd := []float64{1, 1, 0.5}
	// 4Δf (25 + 0 + 2) with Δf = 2.
	want := math.Sqrt(4 * 2 * 27.0)
	if got := Sigma(h, psd, 2); math.Abs(got-want) > 1e-12 {
		t.Errorf("Sigma = %v, want %v", got, want)
	}
}

func TestHighPassBlocksDC(t *testing.T) {
	x := make([]float64, 4096)
	for i := range x {
		x[i] = 1
	}
	out := HighPass(x, 30, 2048)
	if v := math.Abs(out[len(out)-1]); v > 0.01 {
		t.Errorf("DC leaks through: tail = %v", v)
	}
}

func TestHighPassKeepsBand(t *testing.T) {
	const rate = 2048
	x := make([]float64, 4096)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 300 * float64(i) / rate)
	}
	out := HighPass(x, 30, rate)

	// Peak amplitude after the filter settles.
	var peak float64
	for _, v := range out[1024:] {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak < 0.9 || peak > 1.1 {
		t.Errorf("in-band amplitude = %v, want ~1", peak)
	}
}
