package bank

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func testCatalog(t *testing.T, n int) *Catalog {
	t.Helper()
	ts := make([]Template, n)
	for i := range ts {
		m1 := 1.0 + 0.002*float64(i)
		m2 := 1.0 + 0.001*float64(i)
		ts[i] = Template{ChirpMass: ChirpMass(m1, m2), Mass1: m1, Mass2: m2}
	}
	return NewCatalog(ts)
}

func checkSelection(t *testing.T, got []int, n, catLen int) {
	t.Helper()
	if len(got) != n {
		t.Fatalf("selection length = %d, want %d", len(got), n)
	}
	seen := make(map[int]bool)
	for _, idx := range got {
		if idx < 0 || idx >= catLen {
			t.Errorf("index %d outside catalog [0,%d)", idx, catLen)
		}
		if seen[idx] {
			t.Errorf("duplicate index %d in %v", idx, got)
		}
		seen[idx] = true
	}
	for i := 2; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Errorf("tail not strictly ascending at %d: %v", i, got)
		}
	}
}

func TestSelectMetricBestFirst(t *testing.T) {
	cat := testCatalog(t, 200)
	m := NewChirpTimesMetric(30)
	cat.PrecomputeXi(m)
	rng := rand.New(rand.NewPCG(1, 2))

	target := cat.At(57)
	got, err := SelectMetric(cat, m, target.Mass1, target.Mass2, 0, 0, 8, 100, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 8 {
		t.Fatalf("got %d indices, want 8", len(got))
	}

	// Brute-force nearest neighbor under the same distance.
	dist := cat.metricDistances(m, target.Mass1, target.Mass2, 0, 0)
	bestIdx, bestDist := 0, dist[0]
	for i, d := range dist {
		if d < bestDist {
			bestIdx, bestDist = i, d
		}
	}
	if got[0] != bestIdx {
		t.Errorf("first index = %d, want brute-force nearest %d", got[0], bestIdx)
	}

	seen := make(map[int]bool)
	for _, idx := range got {
		if seen[idx] {
			t.Errorf("duplicate index %d in %v", idx, got)
		}
		seen[idx] = true
	}
}

func TestSelectMetricWithoutPrecomputedXi(t *testing.T) {
	cat := testCatalog(t, 150)
	m := NewChirpTimesMetric(30)
	rng := rand.New(rand.NewPCG(3, 4))

	target := cat.At(10)
	got, err := SelectMetric(cat, m, target.Mass1, target.Mass2, 0, 0, 4, 50, rng)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 10 {
		t.Errorf("first index = %d, want 10 (exact parameter match)", got[0])
	}
}

func TestSelectMetricInsufficientCandidates(t *testing.T) {
	cat := testCatalog(t, 50)
	m := NewChirpTimesMetric(30)
	rng := rand.New(rand.NewPCG(1, 1))

	if _, err := SelectMetric(cat, m, 1.4, 1.3, 0, 0, 4, 100, rng); err == nil {
		t.Fatal("limit > catalog size should fail")
	} else if !strings.Contains(err.Error(), "insufficient candidates") {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := SelectMetric(cat, m, 1.4, 1.3, 0, 0, 30, 20, rng); err == nil {
		t.Fatal("nTemplates > limit should fail")
	}
}

func TestSelectWindowProperties(t *testing.T) {
	cat := testCatalog(t, 500)
	rng := rand.New(rand.NewPCG(7, 9))

	target := cat.At(250)
	lo, hi := cat.Window(target.ChirpMass, 0.05)
	if hi-lo < 10 {
		t.Fatalf("window [%d,%d) too narrow for this test", lo, hi)
	}

	for trial := 0; trial < 20; trial++ {
		got, err := SelectWindow(cat, target.Mass1, target.Mass2, 10, 0.05, rng)
		if err != nil {
			t.Fatal(err)
		}
		checkSelection(t, got, 10, cat.Len())
		// Duplicate resolution may bump a few indices past the upper
		// window edge, never below the lower one.
		for _, idx := range got[1:] {
			if idx < lo || idx >= hi+10 {
				t.Errorf("index %d outside window [%d,%d)", idx, lo, hi)
			}
		}
	}
}

func TestSelectWindowDegenerateEdge(t *testing.T) {
	cat := testCatalog(t, 300)
	rng := rand.New(rand.NewPCG(11, 13))

	// Target at the bottom edge of the bank: the left half of the density
	// has zero width, forcing the one-sided fallback.
	target := cat.At(0)
	got, err := SelectWindow(cat, target.Mass1, target.Mass2, 5, 0.05, rng)
	if err != nil {
		t.Fatal(err)
	}
	checkSelection(t, got, 5, cat.Len())
	if got[0] != 0 {
		t.Errorf("best match = %d, want 0", got[0])
	}

	// Top edge: right half degenerates instead.
	target = cat.At(cat.Len() - 1)
	got, err = SelectWindow(cat, target.Mass1, target.Mass2, 5, 0.05, rng)
	if err != nil {
		t.Fatal(err)
	}
	checkSelection(t, got, 5, cat.Len())
}

func TestSelectWindowNarrowWindow(t *testing.T) {
	cat := testCatalog(t, 100)
	rng := rand.New(rand.NewPCG(17, 19))

	// A vanishing width gives a window narrower than the request; the
	// selector must still return a full set without raising.
	target := cat.At(50)
	got, err := SelectWindow(cat, target.Mass1, target.Mass2, 8, 1e-9, rng)
	if err != nil {
		t.Fatal(err)
	}
	checkSelection(t, got, 8, cat.Len())
}

func TestSelectWindowThreeTemplateScenario(t *testing.T) {
	cat := NewCatalog([]Template{
		{ChirpMass: 1.0, Mass1: 1, Mass2: 1},
		{ChirpMass: 1.2, Mass1: 1.1, Mass2: 1},
		{ChirpMass: 2.0, Mass1: 1.5, Mass2: 1.3},
	})
	rng := rand.New(rand.NewPCG(23, 29))

	// Target chirp mass near 1.1 with a window wide enough for all three.
	got, err := SelectWindow(cat, 1.3, 1.23, 2, 2.0, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d indices, want 2", len(got))
	}
	if got[0] != 0 && got[0] != 1 {
		t.Errorf("best match = %d, want 0 or 1", got[0])
	}
	if got[0] == got[1] {
		t.Errorf("duplicate indices %v", got)
	}
	for _, idx := range got {
		if idx < 0 || idx >= 3 {
			t.Errorf("index %d outside [0,3)", idx)
		}
	}
}

func TestSelectWindowSingleTemplate(t *testing.T) {
	cat := testCatalog(t, 100)
	rng := rand.New(rand.NewPCG(31, 37))
	target := cat.At(42)
	got, err := SelectWindow(cat, target.Mass1, target.Mass2, 1, 0.01, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("got %v, want [42]", got)
	}
}

func TestResolveDistinctOverflow(t *testing.T) {
	// Duplicates at the top of the catalog must be reassigned downward
	// rather than pushed out of range.
	got := resolveDistinct(98, []int{99, 99, 99}, 100)
	checkSelection(t, got, 4, 100)
	if got[0] != 98 {
		t.Errorf("best = %d, want 98", got[0])
	}
}
