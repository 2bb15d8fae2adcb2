package detector

import (
	"math"
	"testing"
)

const gpsO3 = 1239554617.0

func TestAntennaPatternBounded(t *testing.T) {
	net := NewNetwork()
	for _, det := range net.Names() {
		for _, ra := range []float64{0, 1.3, 4.0} {
			for _, dec := range []float64{-1.2, 0, 0.9} {
				fp, fc, err := net.AntennaPattern(det, ra, dec, 0.5, gpsO3)
				if err != nil {
					t.Fatal(err)
				}
				if math.Abs(fp) > 1 || math.Abs(fc) > 1 {
					t.Errorf("%s: |F+|=%v |Fx|=%v exceed 1", det, math.Abs(fp), math.Abs(fc))
				}
				if fp == 0 && fc == 0 {
					t.Errorf("%s: both responses exactly zero", det)
				}
			}
		}
	}
}

func TestAntennaPatternPolarizationRotation(t *testing.T) {
	// Rotating the polarization angle by pi/2 flips the sign of both
	// responses (spin-2 symmetry: period pi with an internal flip).
	net := NewNetwork()
	fp0, fc0, err := net.AntennaPattern("H1", 2.1, 0.4, 0, gpsO3)
	if err != nil {
		t.Fatal(err)
	}
	fp1, fc1, err := net.AntennaPattern("H1", 2.1, 0.4, math.Pi/2, gpsO3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fp0+fp1) > 1e-9 || math.Abs(fc0+fc1) > 1e-9 {
		t.Errorf("pi/2 rotation: got (%v,%v) then (%v,%v), want sign flip", fp0, fc0, fp1, fc1)
	}
}

func TestTimeDelaySelf(t *testing.T) {
	net := NewNetwork()
	d, err := net.TimeDelay("H1", "H1", 1.0, 0.5, gpsO3)
	if err != nil {
		t.Fatal(err)
	}
	if d != 0 {
		t.Errorf("self delay = %v, want 0", d)
	}
}

func TestTimeDelayAntisymmetric(t *testing.T) {
	net := NewNetwork()
	ab, err := net.TimeDelay("L1", "H1", 3.3, -0.2, gpsO3)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := net.TimeDelay("H1", "L1", 3.3, -0.2, gpsO3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ab+ba) > 1e-12 {
		t.Errorf("delay not antisymmetric: %v vs %v", ab, ba)
	}
	// The H1 to L1 light travel time is about 10 ms; no sky position can beat it.
	if math.Abs(ab) > 0.011 {
		t.Errorf("H1-L1 delay %v s exceeds the light travel time", ab)
	}
}

func TestUnknownDetector(t *testing.T) {
	net := NewNetwork()
	if _, _, err := net.AntennaPattern("G1", 0, 0, 0, gpsO3); err == nil {
		t.Error("unknown detector should fail")
	}
	if _, err := net.TimeDelay("G1", "H1", 0, 0, gpsO3); err == nil {
		t.Error("unknown detector should fail")
	}
}
