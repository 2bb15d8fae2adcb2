package bank

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Catalog is an immutable template bank sorted ascending by chirp mass.
// The sort order is an invariant: window queries binary-search on it.
//
// A catalog may additionally carry precomputed xi coordinates for every
// template (see [Catalog.PrecomputeXi]), which makes metric selection a
// flat scan instead of a per-query coordinate transform.
type Catalog struct {
	tmpl []Template
	xi   [][]float64
}

// NewCatalog builds a catalog from templates, sorting them by chirp mass.
func NewCatalog(ts []Template) *Catalog {
	tmpl := make([]Template, len(ts))
	copy(tmpl, ts)
	sort.SliceStable(tmpl, func(i, j int) bool { return tmpl[i].ChirpMass < tmpl[j].ChirpMass })
	return &Catalog{tmpl: tmpl}
}

// LoadOptions restrict and rescale templates while loading a bank file.
// Zero limits mean "no bound" for maxima and "no bound below" for minima.
type LoadOptions struct {
	Mass1Min, Mass1Max float64
	Mass2Min, Mass2Max float64
	QMin, QMax         float64 // mass ratio m2/m1 bounds

	// SpinScale multiplies template spins: 0 strips spins, 1 keeps them.
	SpinScale float64
}

func (o *LoadOptions) keep(t Template) bool {
	if o == nil {
		return true
	}
	q := t.Mass2 / t.Mass1
	switch {
	case t.Mass1 < o.Mass1Min, o.Mass1Max > 0 && t.Mass1 > o.Mass1Max:
		return false
	case t.Mass2 < o.Mass2Min, o.Mass2Max > 0 && t.Mass2 > o.Mass2Max:
		return false
	case q < o.QMin, o.QMax > 0 && q > o.QMax:
		return false
	}
	return true
}

// LoadCatalog reads a bank in the text interchange format: one template per
// line, comma separated as "chirpmass,mass1,mass2,spin1z,spin2z". Blank
// lines and lines starting with '#' are skipped. Templates failing the
// options' bounds are dropped; spins are scaled by SpinScale.
func LoadCatalog(r io.Reader, opt *LoadOptions) (*Catalog, error) {
	var ts []Template
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 5 {
			return nil, fmt.Errorf("bank: line %d: expected 5 fields, got %d", line, len(fields))
		}
		var v [5]float64
		for i, f := range fields {
			x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("bank: line %d: %w", line, err)
			}
			v[i] = x
		}
		t := Template{ChirpMass: v[0], Mass1: v[1], Mass2: v[2], Spin1z: v[3], Spin2z: v[4]}
		if !opt.keep(t) {
			continue
		}
		if opt != nil {
			t.Spin1z *= opt.SpinScale
			t.Spin2z *= opt.SpinScale
		}
		ts = append(ts, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bank: %w", err)
	}
	if len(ts) == 0 {
		return nil, fmt.Errorf("bank: no templates after filtering")
	}
	return NewCatalog(ts), nil
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.tmpl) }

// At returns the i-th template in chirp-mass order.
func (c *Catalog) At(i int) Template { return c.tmpl[i] }

// Window returns the half-open index range [lo, hi) of templates whose
// chirp mass lies within cm*(1 ± width/2), located by binary search.
func (c *Catalog) Window(cm, width float64) (lo, hi int) {
	lowMass := cm * (1 - width/2)
	highMass := cm * (1 + width/2)
	lo = sort.Search(len(c.tmpl), func(i int) bool { return c.tmpl[i].ChirpMass >= lowMass })
	hi = sort.Search(len(c.tmpl), func(i int) bool { return c.tmpl[i].ChirpMass >= highMass })
	return lo, hi
}

// NearestHeuristic returns the index of the template closest to (m1, m2)
// under [HeuristicDistance], lowest index on ties.
func (c *Catalog) NearestHeuristic(m1, m2 float64) int {
	best := 0
	bestDist := HeuristicDistance(c.tmpl[0], m1, m2)
	for i := 1; i < len(c.tmpl); i++ {
		if d := HeuristicDistance(c.tmpl[i], m1, m2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// PrecomputeXi computes and stores the xi coordinates of every template
// under the given metric.
func (c *Catalog) PrecomputeXi(m Metric) {
	xi := make([][]float64, len(c.tmpl))
	for i, t := range c.tmpl {
		xi[i] = m.Xi(t.Mass1, t.Mass2, t.Spin1z, t.Spin2z)
	}
	c.xi = xi
}

// metricDistances returns the metric distance from the point to every
// template, using precomputed xi coordinates when present.
func (c *Catalog) metricDistances(m Metric, m1, m2, s1z, s2z float64) []float64 {
	p := m.Xi(m1, m2, s1z, s2z)
	out := make([]float64, len(c.tmpl))
	for i := range c.tmpl {
		var q []float64
		if c.xi != nil {
			q = c.xi[i]
		} else {
			t := c.tmpl[i]
			q = m.Xi(t.Mass1, t.Mass2, t.Spin1z, t.Spin2z)
		}
		var d float64
		for k := range p {
			diff := p[k] - q[k]
			d += diff * diff
		}
		out[i] = d
	}
	return out
}
