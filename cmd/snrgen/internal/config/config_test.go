package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const projectYAML = `
detectors: [H1, L1]
sample_rate: 2048
segment_seconds: 1024
f_low: 30
bank:
  path: bank.csv
  spin_scale: 0.5
psd: psd.msgpack
noise_dir: noise
run_dir: run-1
store: /tmp/snr.npy
window:
  before: 0.5
  after: 0.5
generate:
  injections: 1000
  noise_samples: 200
  network_threshold: 8
  templates_per_sample: 20
  selection_width: 0.01
  seed: 7
storage:
  backend: local
  root: /data/archive
`

func writeProject(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	p, err := Load(writeProject(t, projectYAML))
	if err != nil {
		t.Fatal(err)
	}
	if p.SegmentLen() != 1024*2048 {
		t.Errorf("SegmentLen = %d", p.SegmentLen())
	}
	if p.WindowLen() != 2048 {
		t.Errorf("WindowLen = %d", p.WindowLen())
	}
	if p.Rows() != 1200*20 {
		t.Errorf("Rows = %d", p.Rows())
	}
	if p.Generate.Seed != 7 || p.Bank.SpinScale != 0.5 {
		t.Errorf("parsed %+v", p)
	}
	// Defaults.
	if p.GPSStart != 1e9 || p.Storage.Backend != "local" {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestLoadRejectsBadProjects(t *testing.T) {
	cases := map[string]string{
		"no detectors":   strings.Replace(projectYAML, "detectors: [H1, L1]", "detectors: []", 1),
		"no bank":        strings.Replace(projectYAML, "path: bank.csv", "path: \"\"", 1),
		"bad backend":    strings.Replace(projectYAML, "backend: local", "backend: ftp", 1),
		"missing root":   strings.Replace(projectYAML, "root: /data/archive", "root: \"\"", 1),
		"zero window":    strings.Replace(projectYAML, "before: 0.5\n  after: 0.5", "before: 0\n  after: 0", 1),
		"zero templates": strings.Replace(projectYAML, "templates_per_sample: 20", "templates_per_sample: 0", 1),
	}
	for name, body := range cases {
		if _, err := Load(writeProject(t, body)); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}
