package snr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shieldml/snrgen/pkg/bank"
	"github.com/shieldml/snrgen/pkg/noise"
	"github.com/shieldml/snrgen/pkg/store"
	"github.com/shieldml/snrgen/pkg/waveform"
)

// DefaultWorkers is the synthesis worker count used when Config leaves
// Workers zero.
const DefaultWorkers = 10

// Source yields the samples of a run. Synthesize must be safe for
// concurrent calls; the engine invokes it from its worker pool.
type Source interface {
	// Len returns the number of samples in the run.
	Len() int

	// Synthesize builds the time-domain strain per detector and the
	// selected templates for sample i.
	Synthesize(ctx context.Context, i int) (map[string][]float64, []bank.Template, error)
}

// Config parameterizes an Engine run.
//
// BatchSize·TemplatesPerSample filters are held in memory per batch,
// and up to SuperBatch synthesized batches wait in flight; size them to
// the available memory. The engine does not enforce a byte limit.
type Config struct {
	Detectors          []string
	SampleRate         int
	SegmentLen         int // samples per analysis segment
	FLow               float64
	FHigh              float64 // 0 means Nyquist
	TemplatesPerSample int
	Window             Window

	Workers    int // synthesis workers, DefaultWorkers if 0
	BatchSize  int // samples per batch, derived from TemplatesPerSample if 0
	SuperBatch int // synthesized batches buffered ahead of the filter stage
}

func (c *Config) fill() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100 / c.TemplatesPerSample
		if c.BatchSize > 50 {
			c.BatchSize = 50
		}
		if c.BatchSize < 1 {
			c.BatchSize = 1
		}
	}
	if c.SuperBatch <= 0 {
		c.SuperBatch = 2
	}
}

// Engine drives a run: a pool of synthesis workers feeds a single
// sequential filter stage that writes SNR windows to the store.
type Engine struct {
	cfg       Config
	filter    *Filter
	templates *Templates
	psd       map[string][]float64 // banded, per detector
	store     *store.Store
}

// NewEngine validates the configuration and prepares the filter, the
// template materializer and the banded PSDs.
func NewEngine(cfg Config, gen waveform.Generator, cache Cache, psd *noise.PSD, st *store.Store) (*Engine, error) {
	cfg.fill()
	if len(cfg.Detectors) == 0 {
		return nil, fmt.Errorf("snr: no detectors configured")
	}
	if cfg.TemplatesPerSample <= 0 {
		return nil, fmt.Errorf("snr: templates per sample must be positive, got %d", cfg.TemplatesPerSample)
	}
	f, err := NewFilter(cfg.SegmentLen, cfg.SampleRate, cfg.FLow, cfg.FHigh)
	if err != nil {
		return nil, err
	}
	if cfg.Window.Len(cfg.SampleRate) <= 0 {
		return nil, fmt.Errorf("snr: empty analysis window")
	}
	if start, end := cfg.Window.Bounds(cfg.SegmentLen, cfg.SampleRate); start < 0 || end > cfg.SegmentLen {
		return nil, fmt.Errorf("snr: window [%d, %d) outside segment of %d samples", start, end, cfg.SegmentLen)
	}

	kmin, kmax := f.Band()
	banded := make(map[string][]float64, len(cfg.Detectors))
	for _, det := range cfg.Detectors {
		full, err := psd.Interpolate(det, f.DeltaF(), cfg.SegmentLen/2+1)
		if err != nil {
			return nil, err
		}
		banded[det] = noise.Slice(full, kmin, kmax)
	}

	dets, rows, width := st.Shape()
	if dets != len(cfg.Detectors) {
		return nil, fmt.Errorf("snr: store has %d detectors, config has %d", dets, len(cfg.Detectors))
	}
	if width != cfg.Window.Len(cfg.SampleRate) {
		return nil, fmt.Errorf("snr: store width %d does not match window of %d samples",
			width, cfg.Window.Len(cfg.SampleRate))
	}
	_ = rows // bounds are checked per run against the source

	return &Engine{
		cfg:       cfg,
		filter:    f,
		templates: NewTemplates(gen, cache, cfg.FLow, cfg.FHigh, f.DeltaF(), cfg.SegmentLen),
		psd:       banded,
		store:     st,
	}, nil
}

type synthBatch struct {
	start     int
	count     int
	strains   []map[string][]float64
	templates [][]bank.Template
	err       error
}

// Run filters the samples in part, writing store rows
// [part.Start·T, part.End·T). Jobs of an array run on disjoint
// partitions of the same source; validate the split with
// store.ValidatePartitions before launching.
func (e *Engine) Run(ctx context.Context, src Source, part store.Partition) error {
	if part.Start < 0 || part.End > src.Len() || part.Start >= part.End {
		return fmt.Errorf("snr: partition [%d, %d) outside source of %d samples", part.Start, part.End, src.Len())
	}
	_, rows, _ := e.store.Shape()
	if part.End*e.cfg.TemplatesPerSample > rows {
		return fmt.Errorf("snr: partition needs %d store rows, store has %d",
			part.End*e.cfg.TemplatesPerSample, rows)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	totalBatches := (part.Rows() + e.cfg.BatchSize - 1) / e.cfg.BatchSize
	jobs := make(chan store.Partition)
	results := make(chan *synthBatch, e.cfg.SuperBatch)

	var wg sync.WaitGroup
	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.synthWorker(ctx, src, jobs, results)
		}()
	}
	go func() {
		defer close(jobs)
		for s := part.Start; s < part.End; s += e.cfg.BatchSize {
			end := min(s+e.cfg.BatchSize, part.End)
			select {
			case jobs <- store.Partition{Start: s, End: end}:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	slog.Info("snr run started",
		"samples", part.Rows(),
		"batches", totalBatches,
		"workers", e.cfg.Workers,
		"templates_per_sample", e.cfg.TemplatesPerSample)

	began := time.Now()
	done := 0
	var firstErr error
	for b := range results {
		if firstErr != nil {
			continue // drain after failure
		}
		if b.err != nil {
			firstErr = b.err
			cancel()
			continue
		}
		if err := e.filterBatch(b); err != nil {
			firstErr = err
			cancel()
			continue
		}
		done++
		slog.Info("batch filtered", "start", b.start, "done", done, "total", totalBatches)
	}
	if firstErr != nil {
		return firstErr
	}
	if done != totalBatches {
		return ctx.Err()
	}
	slog.Info("snr run finished", "samples", part.Rows(), "elapsed", time.Since(began))
	return nil
}

func (e *Engine) synthWorker(ctx context.Context, src Source, jobs <-chan store.Partition, results chan<- *synthBatch) {
	for job := range jobs {
		b := &synthBatch{start: job.Start, count: job.Rows()}
		for i := job.Start; i < job.End; i++ {
			strains, tmpls, err := src.Synthesize(ctx, i)
			if err != nil {
				b.err = fmt.Errorf("snr: synthesize sample %d: %w", i, err)
				break
			}
			if len(tmpls) != e.cfg.TemplatesPerSample {
				b.err = fmt.Errorf("snr: sample %d selected %d templates, want %d",
					i, len(tmpls), e.cfg.TemplatesPerSample)
				break
			}
			b.strains = append(b.strains, strains)
			b.templates = append(b.templates, tmpls)
		}
		select {
		case results <- b:
		case <-ctx.Done():
			return
		}
	}
}

// filterBatch runs the sequential filter stage of one batch and writes
// its rows.
func (e *Engine) filterBatch(b *synthBatch) error {
	t := e.cfg.TemplatesPerSample
	rows := make(map[string][][]complex64, len(e.cfg.Detectors))

	for i := 0; i < b.count; i++ {
		for _, det := range e.cfg.Detectors {
			strain, ok := b.strains[i][det]
			if !ok {
				return fmt.Errorf("snr: sample %d has no strain for %s", b.start+i, det)
			}
			sband, err := e.filter.StrainFD(HighPass(strain, e.cfg.FLow, e.cfg.SampleRate))
			if err != nil {
				return err
			}
			for _, tmpl := range b.templates[i] {
				hband, err := e.templates.Materialize(tmpl)
				if err != nil {
					return err
				}
				series, err := e.filter.SNRSeries(sband, hband, e.psd[det])
				if err != nil {
					return err
				}
				win, err := e.cfg.Window.Slice(series, e.cfg.SampleRate)
				if err != nil {
					return err
				}
				rows[det] = append(rows[det], win)
			}
		}
	}

	for di, det := range e.cfg.Detectors {
		if err := e.store.Write(di, b.start*t, rows[det]); err != nil {
			return fmt.Errorf("snr: write batch at row %d: %w", b.start*t, err)
		}
	}
	return nil
}
