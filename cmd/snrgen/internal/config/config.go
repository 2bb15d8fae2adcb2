// Package config loads the project file that describes one training-set
// run: the detector network, segment geometry, template bank, noise
// archive, priors, and engine tuning. Every snrgen subcommand takes the
// same project file so the generate / snr / finalize stages of a run
// cannot drift apart.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Storage selects the archive backend holding noise segments, PSDs and
// dataset files.
type Storage struct {
	Backend string `yaml:"backend"` // "local" (default) or "s3"
	Root    string `yaml:"root"`    // local: archive root directory

	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"` // empty: anonymous access
	SecretKey string `yaml:"secret_key"`
}

// Bank locates the template bank and its load-time filters.
type Bank struct {
	Path      string  `yaml:"path"` // archive path of the bank file
	Mass1Min  float64 `yaml:"mass1_min"`
	Mass1Max  float64 `yaml:"mass1_max"`
	Mass2Min  float64 `yaml:"mass2_min"`
	Mass2Max  float64 `yaml:"mass2_max"`
	QMin      float64 `yaml:"q_min"`
	QMax      float64 `yaml:"q_max"`
	SpinScale float64 `yaml:"spin_scale"`
}

// Window is the stored slice of each SNR series, in seconds around the
// segment center.
type Window struct {
	Before float64 `yaml:"before"`
	After  float64 `yaml:"after"`
	Offset int     `yaml:"offset"` // whole samples
}

// Prior bounds the injection parameter draws.
type Prior struct {
	Mass1Min    float64 `yaml:"mass1_min"`
	Mass1Max    float64 `yaml:"mass1_max"`
	Mass2Min    float64 `yaml:"mass2_min"`
	Mass2Max    float64 `yaml:"mass2_max"`
	SpinMin     float64 `yaml:"spin_min"`
	SpinMax     float64 `yaml:"spin_max"`
	DistanceMin float64 `yaml:"distance_min"` // Mpc
	DistanceMax float64 `yaml:"distance_max"`
}

// Generate controls the dataset build.
type Generate struct {
	Injections         int     `yaml:"injections"`
	NoiseSamples       int     `yaml:"noise_samples"`
	DetectorThreshold  float64 `yaml:"detector_threshold"`
	NetworkThreshold   float64 `yaml:"network_threshold"`
	TemplatesPerSample int     `yaml:"templates_per_sample"`
	SelectionWidth     float64 `yaml:"selection_width"`
	Seed               uint64  `yaml:"seed"`
}

// Engine tunes the filter stage.
type Engine struct {
	Workers    int    `yaml:"workers"`
	BatchSize  int    `yaml:"batch_size"`
	SuperBatch int    `yaml:"super_batch"`
	CacheDir   string `yaml:"cache_dir"` // local dir for the template cache; empty keeps it in memory
}

// Project is a full run description.
type Project struct {
	Detectors      []string `yaml:"detectors"`
	SampleRate     int      `yaml:"sample_rate"`
	SegmentSeconds int      `yaml:"segment_seconds"`
	FLow           float64  `yaml:"f_low"`
	FHigh          float64  `yaml:"f_high"` // 0 runs to Nyquist

	Bank     Bank    `yaml:"bank"`
	PSDPath  string  `yaml:"psd"`       // archive path of the PSD record
	NoiseDir string  `yaml:"noise_dir"` // archive dir of recorded segments; empty synthesizes Gaussian noise
	GPSStart int64   `yaml:"gps_start"` // epoch for Gaussian noise runs
	RunDir   string  `yaml:"run_dir"`   // archive dir for dataset files
	Store    string  `yaml:"store"`     // local path of the output array
	Window   Window  `yaml:"window"`
	Offset   int     `yaml:"merger_offset"` // merger shift from segment center, samples

	Prior    Prior    `yaml:"prior"`
	Generate Generate `yaml:"generate"`
	Engine   Engine   `yaml:"engine"`
	Storage  Storage  `yaml:"storage"`
}

// Load reads and validates a project file.
func Load(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var p Project
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	p.applyDefaults()
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &p, nil
}

func (p *Project) applyDefaults() {
	if p.Storage.Backend == "" {
		p.Storage.Backend = "local"
	}
	if p.GPSStart == 0 {
		p.GPSStart = 1e9
	}
	if p.RunDir == "" {
		p.RunDir = "run"
	}
	if p.Store == "" {
		p.Store = "snr.npy"
	}
	if p.Bank.SpinScale == 0 {
		p.Bank.SpinScale = 1
	}
}

func (p *Project) validate() error {
	if len(p.Detectors) == 0 {
		return fmt.Errorf("no detectors")
	}
	if p.SampleRate <= 0 || p.SegmentSeconds <= 0 {
		return fmt.Errorf("segment geometry %d s at %d Hz", p.SegmentSeconds, p.SampleRate)
	}
	if p.FLow <= 0 {
		return fmt.Errorf("f_low must be positive, got %v", p.FLow)
	}
	if p.Bank.Path == "" {
		return fmt.Errorf("no bank path")
	}
	if p.PSDPath == "" {
		return fmt.Errorf("no psd path")
	}
	if p.Window.Before+p.Window.After <= 0 {
		return fmt.Errorf("empty snr window")
	}
	if p.Generate.TemplatesPerSample <= 0 {
		return fmt.Errorf("templates_per_sample must be positive")
	}
	switch p.Storage.Backend {
	case "local":
		if p.Storage.Root == "" {
			return fmt.Errorf("local storage needs a root")
		}
	case "s3":
		if p.Storage.Bucket == "" {
			return fmt.Errorf("s3 storage needs a bucket")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", p.Storage.Backend)
	}
	return nil
}

// SegmentLen returns the analysis segment length in samples.
func (p *Project) SegmentLen() int { return p.SegmentSeconds * p.SampleRate }

// WindowLen returns the stored window length in samples.
func (p *Project) WindowLen() int {
	return int(p.Window.Before*float64(p.SampleRate)) + int(p.Window.After*float64(p.SampleRate))
}

// Rows returns the total number of store rows the run produces.
func (p *Project) Rows() int {
	return (p.Generate.Injections + p.Generate.NoiseSamples) * p.Generate.TemplatesPerSample
}
