package bank

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInsufficientCandidates is returned when the selection window or limit
// is too small for the requested number of templates. The caller must
// retry with adjusted parameters.
var ErrInsufficientCandidates = errors.New("bank: insufficient candidates")

// DefaultLimit is the default candidate pool size for [SelectMetric].
const DefaultLimit = 100

// SelectMetric picks nTemplates template indices for the target point
// using metric distance. The closest template always comes first (lowest
// index on ties); the remaining nTemplates-1 are drawn uniformly at random
// without replacement from the next limit-1 closest candidates. The
// randomness source is explicit so datasets are reproducible.
//
// Returns ErrInsufficientCandidates if limit exceeds the catalog size or
// nTemplates exceeds limit; the caller must clamp.
func SelectMetric(cat *Catalog, m Metric, m1, m2, s1z, s2z float64, nTemplates, limit int, rng *rand.Rand) ([]int, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > cat.Len() {
		return nil, fmt.Errorf("%w: limit %d exceeds catalog size %d", ErrInsufficientCandidates, limit, cat.Len())
	}
	if nTemplates > limit {
		return nil, fmt.Errorf("%w: %d templates requested from a pool of %d", ErrInsufficientCandidates, nTemplates, limit)
	}

	dist := cat.metricDistances(m, m1, m2, s1z, s2z)
	order := make([]int, len(dist))
	for i := range order {
		order[i] = i
	}
	// Stable sort keeps the lowest catalog index first on distance ties.
	sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })

	out := make([]int, 0, nTemplates)
	out = append(out, order[0])
	out = append(out, uniformSample(order[1:limit], nTemplates-1, rng)...)
	return out, nil
}

// SelectWindow picks nTemplates template indices for the point (m1, m2)
// from the contiguous chirp-mass window cm*(1 ± width/2). The best match
// under [HeuristicDistance] comes first; the rest are sampled without
// replacement from a two-sided truncated-normal density centered on the
// best match, each side renormalized to probability 0.5. If one side's
// density degenerates (zero-width sub-window), sampling falls back to the
// well-defined side; if the window holds fewer than nTemplates candidates,
// the nearest contiguous block clamped to catalog bounds is used instead.
//
// The result always has exactly nTemplates distinct indices: the best
// match followed by ascending indices.
func SelectWindow(cat *Catalog, m1, m2 float64, nTemplates int, width float64, rng *rand.Rand) ([]int, error) {
	if nTemplates < 1 {
		return nil, fmt.Errorf("bank: nTemplates must be >= 1, got %d", nTemplates)
	}
	if nTemplates > cat.Len() {
		return nil, fmt.Errorf("%w: %d templates requested from a catalog of %d", ErrInsufficientCandidates, nTemplates, cat.Len())
	}

	best := cat.NearestHeuristic(m1, m2)
	lo, hi := cat.Window(ChirpMass(m1, m2), width)

	if hi-lo < nTemplates {
		return contiguousBlock(best, nTemplates, cat.Len()), nil
	}
	if nTemplates == 1 {
		return []int{best}, nil
	}

	split := min(max(best, lo), hi)

	// Integer-halved side widths; a sub-window narrower than two slots
	// degenerates to sigma 0 and is treated as undefined.
	sigmaLow := float64((best - lo) / 2)
	sigmaHigh := float64((hi - best) / 2)

	left, leftSum := sideDensity(lo, split, best, sigmaLow)
	right, rightSum := sideDensity(split, hi, best, sigmaHigh)
	leftOK := leftSum > 0 && !math.IsInf(leftSum, 0) && !math.IsNaN(leftSum)
	rightOK := rightSum > 0 && !math.IsInf(rightSum, 0) && !math.IsNaN(rightSum)

	var picks []int
	switch {
	case leftOK && rightOK:
		// Each half carries probability mass 0.5 so the two halves join
		// into one proper density over the window.
		weights := make([]float64, 0, hi-lo)
		for _, w := range left {
			weights = append(weights, 0.5*w/leftSum)
		}
		for _, w := range right {
			weights = append(weights, 0.5*w/rightSum)
		}
		picks = weightedSample(lo, weights, nTemplates-1, rng)
	case rightOK && hi-split >= nTemplates-1:
		slog.Warn("bank: left selection density degenerate, sampling right side only",
			"best", best, "low", lo, "high", hi)
		picks = weightedSample(split, right, nTemplates-1, rng)
	case leftOK && split-lo >= nTemplates-1:
		slog.Warn("bank: right selection density degenerate, sampling left side only",
			"best", best, "low", lo, "high", hi)
		picks = weightedSample(lo, left, nTemplates-1, rng)
	default:
		return contiguousBlock(best, nTemplates, cat.Len()), nil
	}

	return resolveDistinct(best, picks, cat.Len()), nil
}

// sideDensity evaluates the (unnormalized) normal density centered on best
// with the given scale at every index in [lo, hi). The sum is returned so
// the caller can renormalize; sigma <= 0 yields a zero sum, flagging the
// side as degenerate.
func sideDensity(lo, hi, best int, sigma float64) ([]float64, float64) {
	if hi <= lo {
		return nil, 0
	}
	w := make([]float64, hi-lo)
	if sigma <= 0 {
		return w, 0
	}
	dist := distuv.Normal{Mu: float64(best), Sigma: sigma}
	var sum float64
	for k := lo; k < hi; k++ {
		w[k-lo] = dist.Prob(float64(k))
		sum += w[k-lo]
	}
	return w, sum
}

// contiguousBlock returns the nearest nTemplates contiguous indices around
// best, clamped to [0, catLen), best first and the rest ascending.
func contiguousBlock(best, nTemplates, catLen int) []int {
	start := best - nTemplates/2
	start = min(max(start, 0), catLen-nTemplates)
	out := make([]int, 0, nTemplates)
	out = append(out, best)
	for i := start; i < start+nTemplates; i++ {
		if i != best {
			out = append(out, i)
		}
	}
	return out[:nTemplates]
}

// uniformSample draws k elements from pool uniformly without replacement
// via a partial Fisher-Yates shuffle.
func uniformSample(pool []int, k int, rng *rand.Rand) []int {
	tmp := make([]int, len(pool))
	copy(tmp, pool)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(tmp)-i)
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp[:k]
}

// weightedSample draws k indices without replacement from the discrete
// density weights, where weights[i] is the probability mass of index
// base+i. Drawn indices have their mass removed before the next draw; if
// the remaining mass underflows to zero, the lowest undrawn indices fill
// the rest.
func weightedSample(base int, weights []float64, k int, rng *rand.Rand) []int {
	w := make([]float64, len(weights))
	copy(w, weights)
	drawn := make([]bool, len(w))
	var total float64
	for _, x := range w {
		total += x
	}
	out := make([]int, 0, k)
	for n := 0; n < k; n++ {
		idx := -1
		if total > 0 {
			r := rng.Float64() * total
			for i, x := range w {
				if drawn[i] || x <= 0 {
					continue
				}
				r -= x
				idx = i
				if r <= 0 {
					break
				}
			}
		}
		if idx < 0 {
			for i := range w {
				if !drawn[i] {
					idx = i
					break
				}
			}
		}
		drawn[idx] = true
		total -= w[idx]
		w[idx] = 0
		out = append(out, base+idx)
	}
	return out
}

// resolveDistinct turns the sampled indices into the final selection: the
// best match first, then the samples sorted ascending with duplicate
// consecutive indices bumped up one slot. Indices pushed past the catalog
// bound (or colliding with the best match) are reassigned to the largest
// free slots, so the result is always exactly len(picks)+1 distinct,
// in-catalog indices.
func resolveDistinct(best int, picks []int, catLen int) []int {
	sort.Ints(picks)

	used := make(map[int]bool, len(picks)+1)
	used[best] = true
	tail := make([]int, 0, len(picks))
	overflow := 0

	prev := -1
	for _, v := range picks {
		if v <= prev {
			v = prev + 1
		}
		for v < catLen && used[v] {
			v++
		}
		if v >= catLen {
			overflow++
			continue
		}
		used[v] = true
		tail = append(tail, v)
		prev = v
	}

	// Fill any overflow from the largest free slots.
	for v := catLen - 1; overflow > 0 && v >= 0; v-- {
		if !used[v] {
			used[v] = true
			tail = append(tail, v)
			overflow--
		}
	}
	sort.Ints(tail)

	out := make([]int, 0, len(tail)+1)
	out = append(out, best)
	return append(out, tail...)
}
