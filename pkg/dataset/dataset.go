// Package dataset builds and persists the injection parameter sets a
// run filters. A dataset is a list of samples, each carrying source
// parameters, expected per-detector SNRs and assigned template indices,
// plus run metadata.
package dataset

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/shieldml/snrgen/pkg/storage"
)

const (
	paramsFile = "params.msgpack"
	argsFile   = "args.yaml"
)

// Sample is one row of the dataset. Pure-noise samples have Injection
// false and zero SNRs; their templates are still filtered so the model
// sees template responses to plain noise.
type Sample struct {
	Mass1        float64 `msgpack:"mass1"`
	Mass2        float64 `msgpack:"mass2"`
	Spin1z       float64 `msgpack:"spin1z"`
	Spin2z       float64 `msgpack:"spin2z"`
	RA           float64 `msgpack:"ra"`
	Dec          float64 `msgpack:"dec"`
	Distance     float64 `msgpack:"distance"`
	Inclination  float64 `msgpack:"inclination"`
	Polarization float64 `msgpack:"polarization"`
	GPS          float64 `msgpack:"gps"`
	Injection    bool    `msgpack:"injection"`

	SNR        map[string]float64 `msgpack:"snr"`
	NetworkSNR float64            `msgpack:"network_snr"`
	Templates  []int              `msgpack:"templates"`
}

// Meta describes the run that produced a dataset.
type Meta struct {
	ID                 string   `msgpack:"id" yaml:"id"`
	Detectors          []string `msgpack:"detectors" yaml:"detectors"`
	SampleRate         int      `msgpack:"sample_rate" yaml:"sample_rate"`
	SegmentLen         int      `msgpack:"segment_len" yaml:"segment_len"`
	FLow               float64  `msgpack:"f_low" yaml:"f_low"`
	TemplatesPerSample int      `msgpack:"templates_per_sample" yaml:"templates_per_sample"`
	Seed               uint64   `msgpack:"seed" yaml:"seed"`
}

// Set is a complete dataset: metadata plus samples in store row order.
type Set struct {
	Meta    Meta     `msgpack:"meta"`
	Samples []Sample `msgpack:"samples"`
}

// Encode writes the set as msgpack.
func (s *Set) Encode(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("dataset: encode: %w", err)
	}
	return nil
}

// Decode reads a set written by Encode.
func Decode(r io.Reader) (*Set, error) {
	var s Set
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("dataset: decode: %w", err)
	}
	return &s, nil
}

// Save writes params.msgpack and args.yaml into dir of the archive.
// args.yaml duplicates the metadata in a form downstream tooling reads
// without a msgpack decoder.
func (s *Set) Save(ctx context.Context, store storage.Archive, dir string) error {
	w, err := store.Create(ctx, path.Join(dir, paramsFile))
	if err != nil {
		return fmt.Errorf("dataset: create params: %w", err)
	}
	if err := s.Encode(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("dataset: write params: %w", err)
	}

	raw, err := yaml.Marshal(s.Meta)
	if err != nil {
		return fmt.Errorf("dataset: marshal args: %w", err)
	}
	aw, err := store.Create(ctx, path.Join(dir, argsFile))
	if err != nil {
		return fmt.Errorf("dataset: create args: %w", err)
	}
	if _, err := aw.Write(raw); err != nil {
		aw.Close()
		return fmt.Errorf("dataset: write args: %w", err)
	}
	return aw.Close()
}

// Load reads params.msgpack from dir of the archive.
func Load(ctx context.Context, store storage.Archive, dir string) (*Set, error) {
	r, err := store.Open(ctx, path.Join(dir, paramsFile))
	if err != nil {
		return nil, fmt.Errorf("dataset: open params: %w", err)
	}
	defer r.Close()
	return Decode(r)
}
