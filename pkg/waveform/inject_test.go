package waveform

import (
	"errors"
	"math"
	"testing"
)

func TestInjectPureNoise(t *testing.T) {
	inj := NewInjector(1024, 0)
	noise := map[string][]float64{"H1": make([]float64, 1024)}
	got, err := inj.Inject(noise, nil)
	if err != nil {
		t.Fatal(err)
	}
	if &got["H1"][0] != &noise["H1"][0] {
		t.Error("pure-noise injection should return the noise unchanged")
	}
}

func TestInjectPlacesMergerAtCenter(t *testing.T) {
	const n = 1024
	inj := NewInjector(n, 0)
	noise := map[string][]float64{"H1": make([]float64, n)}

	sig := make([]float64, 100)
	for i := range sig {
		sig[i] = float64(i + 1)
	}
	got, err := inj.Inject(noise, map[string]Projection{"H1": {Strain: sig}})
	if err != nil {
		t.Fatal(err)
	}
	h := got["H1"]
	// The last signal sample lands just before N/2.
	if h[n/2-1] != 100 {
		t.Errorf("h[N/2-1] = %v, want 100", h[n/2-1])
	}
	if h[n/2-100] != 1 {
		t.Errorf("h[N/2-100] = %v, want 1", h[n/2-100])
	}
	if h[n/2] != 0 {
		t.Errorf("h[N/2] = %v, want 0 (nothing after merger)", h[n/2])
	}
}

func TestInjectOversizedSignalTruncates(t *testing.T) {
	// 2048-sample signal into a 1024-sample buffer: must not fail, and
	// the trailing 512 samples survive at the configured center.
	const n = 1024
	inj := NewInjector(n, 0)
	noise := map[string][]float64{"H1": make([]float64, n)}

	sig := make([]float64, 2048)
	for i := range sig {
		sig[i] = float64(i)
	}
	got, err := inj.Inject(noise, map[string]Projection{"H1": {Strain: sig}})
	if err != nil {
		t.Fatal(err)
	}
	h := got["H1"]
	if h[0] != 1536 {
		t.Errorf("h[0] = %v, want 1536 (first retained sample)", h[0])
	}
	if h[n/2-1] != 2047 {
		t.Errorf("h[N/2-1] = %v, want 2047 (last signal sample)", h[n/2-1])
	}
}

func TestInjectAppliesDelayAndNoise(t *testing.T) {
	const n = 64
	inj := NewInjector(n, 0)
	noise := map[string][]float64{"H1": make([]float64, n)}
	for i := range noise["H1"] {
		noise["H1"][i] = 0.5
	}

	sig := []float64{1, 2, 3, 4}
	got, err := inj.Inject(noise, map[string]Projection{"H1": {Strain: sig, DelaySamples: 3}})
	if err != nil {
		t.Fatal(err)
	}
	h := got["H1"]
	// Unshifted, the signal spans [28,32); shifted right by 3 it spans
	// [31,35), riding on the 0.5 noise floor.
	if math.Abs(h[31]-1.5) > 1e-12 || math.Abs(h[34]-4.5) > 1e-12 {
		t.Errorf("delayed signal misplaced: h[31]=%v h[34]=%v", h[31], h[34])
	}
	if math.Abs(h[28]-0.5) > 1e-12 {
		t.Errorf("h[28] = %v, want pure noise after shift", h[28])
	}
}

func TestInjectShapeMismatch(t *testing.T) {
	inj := NewInjector(64, 0)

	_, err := inj.Inject(
		map[string][]float64{"H1": make([]float64, 64)},
		map[string]Projection{"L1": {Strain: []float64{1}}},
	)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("detector key mismatch: err = %v, want ErrShapeMismatch", err)
	}

	_, err = inj.Inject(
		map[string][]float64{"H1": make([]float64, 32)},
		map[string]Projection{"H1": {Strain: []float64{1}}},
	)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("length mismatch: err = %v, want ErrShapeMismatch", err)
	}
}

func TestRollNegative(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	roll(x, -2)
	want := []float64{3, 4, 5, 1, 2}
	for i := range want {
		if x[i] != want[i] {
			t.Fatalf("roll(-2) = %v, want %v", x, want)
		}
	}
}
