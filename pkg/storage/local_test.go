package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	arch, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	w, err := arch.Create(ctx, "noise/HL-1239550000-1024.f32")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("segment-data")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := arch.Open(ctx, "noise/HL-1239550000-1024.f32")
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	r.Close()
	if string(data) != "segment-data" {
		t.Errorf("read back %q, want %q", data, "segment-data")
	}
}

func TestLocalOpenMissing(t *testing.T) {
	ctx := context.Background()
	arch, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = arch.Open(ctx, "nope.f32")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open missing = %v, want fs.ErrNotExist", err)
	}
}

func TestLocalList(t *testing.T) {
	ctx := context.Background()
	arch, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{"noise/b.f32", "noise/a.f32", "psd.msgpack"} {
		w, err := arch.Create(ctx, p)
		if err != nil {
			t.Fatal(err)
		}
		w.Close()
	}

	got, err := arch.List(ctx, "noise")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"noise/a.f32", "noise/b.f32"}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Listing a prefix with no files is not an error.
	empty, err := arch.List(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("List(missing) = %v, want empty", empty)
	}

	ok, err := arch.Exists(ctx, "psd.msgpack")
	if err != nil || !ok {
		t.Errorf("Exists(psd.msgpack) = %v, %v, want true", ok, err)
	}
}
