package dataset

import (
	"bytes"
	"context"
	"testing"

	"github.com/shieldml/snrgen/pkg/storage"
)

func sampleSet() *Set {
	return &Set{
		Meta: Meta{
			ID:                 "run-1",
			Detectors:          []string{"H1", "L1"},
			SampleRate:         2048,
			SegmentLen:         4096,
			FLow:               30,
			TemplatesPerSample: 2,
			Seed:               42,
		},
		Samples: []Sample{
			{
				Mass1: 1.6, Mass2: 1.4, GPS: 1.2345e9, Injection: true,
				SNR:        map[string]float64{"H1": 9.5, "L1": 7.1},
				NetworkSNR: 11.86,
				Templates:  []int{3, 7},
			},
			{
				GPS: 1.2346e9, Injection: false,
				SNR:       map[string]float64{"H1": 0, "L1": 0},
				Templates: []int{1, 2},
			},
		},
	}
}

func TestSetRoundTrip(t *testing.T) {
	in := sampleSet()
	var buf bytes.Buffer
	if err := in.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if out.Meta.ID != "run-1" || out.Meta.Seed != 42 {
		t.Fatalf("meta = %+v", out.Meta)
	}
	if len(out.Samples) != 2 {
		t.Fatalf("decoded %d samples", len(out.Samples))
	}
	s := out.Samples[0]
	if !s.Injection || s.Mass1 != 1.6 || s.SNR["L1"] != 7.1 || s.Templates[1] != 7 {
		t.Fatalf("sample = %+v", s)
	}
	if out.Samples[1].Injection {
		t.Error("noise sample decoded as injection")
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	in := sampleSet()
	if err := in.Save(ctx, store, "run-1"); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"run-1/params.msgpack", "run-1/args.yaml"} {
		ok, err := store.Exists(ctx, name)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("%s not written", name)
		}
	}

	out, err := Load(ctx, store, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Samples) != 2 || out.Meta.SampleRate != 2048 {
		t.Fatalf("loaded %+v", out.Meta)
	}
}
