package bank

import (
	"math"
	"strings"
	"testing"
)

func TestChirpMass(t *testing.T) {
	// Equal masses: compare against the closed form
	// (m1*m2)^(3/5) / (m1+m2)^(1/5) directly.
	got := ChirpMass(1.4, 1.4)
	want := math.Pow(1.4*1.4, 0.6) / math.Pow(2.8, 0.2)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("ChirpMass(1.4,1.4) = %v, want %v", got, want)
	}
	if ChirpMass(2, 1) >= ChirpMass(2, 2) {
		t.Error("chirp mass should grow with the secondary mass")
	}
}

func TestLoadCatalogSortsAndFilters(t *testing.T) {
	// Lines intentionally out of chirp-mass order.
	input := `# bank export
2.0,2.4,2.2,0.02,0.01
1.1,1.3,1.2,0.10,0.00

1.5,1.8,1.6,0.00,0.05
0.9,5.0,0.3,0.00,0.00
`
	cat, err := LoadCatalog(strings.NewReader(input), &LoadOptions{
		Mass1Min: 1.0, Mass1Max: 3.0,
		Mass2Min: 1.0, Mass2Max: 3.0,
		SpinScale: 0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cat.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (mass filter should drop one)", cat.Len())
	}
	for i := 1; i < cat.Len(); i++ {
		if cat.At(i).ChirpMass < cat.At(i-1).ChirpMass {
			t.Fatalf("catalog not sorted at %d", i)
		}
	}
	if got := cat.At(0).Spin1z; got != 0.05 {
		t.Errorf("spin scale not applied: Spin1z = %v, want 0.05", got)
	}
}

func TestLoadCatalogBadLine(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("1.0,1.0,1.0\n"), nil)
	if err == nil {
		t.Fatal("short line should fail")
	}
}

func TestWindowBinarySearch(t *testing.T) {
	cat := testCatalog(t, 1000)
	target := cat.At(500)

	lo, hi := cat.Window(target.ChirpMass, 0.02)
	if lo >= hi {
		t.Fatalf("empty window [%d,%d)", lo, hi)
	}
	lowMass := target.ChirpMass * (1 - 0.01)
	highMass := target.ChirpMass * (1 + 0.01)
	for i := lo; i < hi; i++ {
		cm := cat.At(i).ChirpMass
		if cm < lowMass || cm >= highMass {
			t.Errorf("index %d (cm=%v) outside [%v,%v)", i, cm, lowMass, highMass)
		}
	}
	if lo > 0 && cat.At(lo-1).ChirpMass >= lowMass {
		t.Error("window misses a template below lo")
	}
	if hi < cat.Len() && cat.At(hi).ChirpMass < highMass {
		t.Error("window misses a template above hi")
	}
}

func TestChirpTimesMetricOrdering(t *testing.T) {
	m := NewChirpTimesMetric(30)

	// Heavier systems spend less time in band: theta0 must shrink as the
	// chirp mass grows.
	light := m.Xi(1.2, 1.2, 0, 0)
	heavy := m.Xi(2.4, 2.4, 0, 0)
	if heavy[0] >= light[0] {
		t.Errorf("theta0 heavy=%v >= light=%v", heavy[0], light[0])
	}

	// Metric distance to itself is zero, and grows with mass separation.
	cat := testCatalog(t, 50)
	cat.PrecomputeXi(m)
	tgt := cat.At(25)
	dist := cat.metricDistances(m, tgt.Mass1, tgt.Mass2, 0, 0)
	if dist[25] != 0 {
		t.Errorf("self distance = %v, want 0", dist[25])
	}
	if dist[0] < dist[20] {
		t.Errorf("distance should grow with parameter separation: d[0]=%v < d[20]=%v", dist[0], dist[20])
	}
}

func TestTimeFreqRelations(t *testing.T) {
	// Round trip: the frequency at the time-to-merger of f should be
	// close to f (the 1% safety margin skews it slightly).
	f := 30.0
	tt := TimeAtFreq(1.4, 1.4, f)
	if tt <= 0 {
		t.Fatalf("TimeAtFreq = %v, want positive", tt)
	}
	back := FreqAtTime(1.4, 1.4, tt)
	if math.Abs(back-f)/f > 0.05 {
		t.Errorf("round trip f = %v, want ~%v", back, f)
	}
	// Heavier systems merge faster from the same frequency.
	if TimeAtFreq(2.6, 2.6, f) >= TimeAtFreq(1.0, 1.0, f) {
		t.Error("heavier binary should reach merger sooner")
	}
}
