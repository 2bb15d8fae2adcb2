package noise

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/shieldml/snrgen/pkg/storage"
)

func writeSegmentDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	args := "detectors: [H1, L1]\nsample_rate: 4\nprefix: noise\n"
	if err := os.WriteFile(filepath.Join(dir, "args.yaml"), []byte(args), 0o644); err != nil {
		t.Fatal(err)
	}

	// One 8 s segment at 4 Hz: 32 samples per detector row.
	const rowLen = 32
	buf := make([]byte, 2*rowLen*4)
	for i := 0; i < rowLen; i++ {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(i)))
		binary.LittleEndian.PutUint32(buf[4*(rowLen+i):], math.Float32bits(float32(100+i)))
	}
	if err := os.WriteFile(filepath.Join(dir, "noise-1000-8.f32"), buf, 0o644); err != nil {
		t.Fatal(err)
	}
	// Unrelated files are skipped by the scanner.
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func openTestSegments(t *testing.T) *SegmentSet {
	t.Helper()
	dir := writeSegmentDir(t)
	store, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	set, err := OpenSegments(context.Background(), store, ".")
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestOpenSegments(t *testing.T) {
	set := openTestSegments(t)
	if set.Len() != 1 {
		t.Fatalf("indexed %d segments, want 1", set.Len())
	}
	if set.SampleRate() != 4 {
		t.Errorf("sample rate = %d, want 4", set.SampleRate())
	}
	if dets := set.Detectors(); len(dets) != 2 || dets[0] != "H1" || dets[1] != "L1" {
		t.Errorf("detectors = %v", dets)
	}
}

func TestValidTimes(t *testing.T) {
	set := openTestSegments(t)
	times := set.ValidTimes(4)
	if len(times) != 5 {
		t.Fatalf("got %d valid times, want 5: %v", len(times), times)
	}
	if times[0] != 1000 || times[4] != 1004 {
		t.Errorf("valid times = %v", times)
	}
	if got := set.ValidTimes(9); len(got) != 0 {
		t.Errorf("oversized window should have no valid times, got %v", got)
	}
}

func TestFetch(t *testing.T) {
	set := openTestSegments(t)
	got, err := set.Fetch(context.Background(), 1002, 2)
	if err != nil {
		t.Fatal(err)
	}
	h1, l1 := got["H1"], got["L1"]
	if len(h1) != 8 || len(l1) != 8 {
		t.Fatalf("lengths = %d, %d, want 8", len(h1), len(l1))
	}
	// 2 s into the segment at 4 Hz is sample 8.
	for i := range h1 {
		if h1[i] != float64(8+i) {
			t.Errorf("H1[%d] = %v, want %v", i, h1[i], float64(8+i))
		}
		if l1[i] != float64(108+i) {
			t.Errorf("L1[%d] = %v, want %v", i, l1[i], float64(108+i))
		}
	}
}

func TestFetchOutsideSegments(t *testing.T) {
	set := openTestSegments(t)
	if _, err := set.Fetch(context.Background(), 1005, 4); !errors.Is(err, ErrNoSegment) {
		t.Errorf("err = %v, want ErrNoSegment", err)
	}
	if _, err := set.Fetch(context.Background(), 900, 2); !errors.Is(err, ErrNoSegment) {
		t.Errorf("err = %v, want ErrNoSegment", err)
	}
}

func TestParseSegmentName(t *testing.T) {
	if _, _, ok := parseSegmentName("noise-12a-8.f32", "noise"); ok {
		t.Error("bad gps should be rejected")
	}
	if _, _, ok := parseSegmentName("other-1000-8.f32", "noise"); ok {
		t.Error("wrong prefix should be rejected")
	}
	gps, dur, ok := parseSegmentName("noise-1234-16.f32", "noise")
	if !ok || gps != 1234 || dur != 16 {
		t.Errorf("parse = %d %d %v", gps, dur, ok)
	}
}
