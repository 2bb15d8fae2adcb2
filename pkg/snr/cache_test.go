package snr

import (
	"errors"
	"testing"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	if _, err := c.Get("a"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("empty cache: err = %v, want ErrCacheMiss", err)
	}

	in := []complex128{1 + 2i, 3 - 4i}
	if err := c.Put("a", in); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 1+2i || got[1] != 3-4i {
		t.Fatalf("Get = %v", got)
	}

	// The cache holds its own copy.
	in[0] = 99
	got, _ = c.Get("a")
	if got[0] != 1+2i {
		t.Error("cache shares the caller's slice")
	}
}

func TestBadgerCache(t *testing.T) {
	c, err := OpenBadgerCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Get("tmpl"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("missing key: err = %v, want ErrCacheMiss", err)
	}

	in := []complex128{0.5 - 0.25i, -1}
	if err := c.Put("tmpl", in); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get("tmpl")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Fatalf("Get = %v, want %v", got, in)
	}
}

func TestSeriesEncoding(t *testing.T) {
	in := []complex128{1.25 - 3i, 0, -7.5 + 0.125i}
	got := decodeSeries(encodeSeries(in))
	if len(got) != len(in) {
		t.Fatalf("len = %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], in[i])
		}
	}
}
