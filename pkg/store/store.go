// Package store persists SNR series as a single numpy-compatible array
// on disk. The array is memory mapped and written in place by parallel
// jobs; the numpy header is only written at Finalize, so a file without
// it is visibly incomplete.
//
// The array is C-ordered complex64 with shape
// (detectors, samples·templates, window).
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

var (
	// ErrFinalized is returned when writing to or finalizing a store
	// whose header has already been written.
	ErrFinalized = errors.New("store: already finalized")

	// ErrOutOfRange is returned for writes outside the array bounds.
	ErrOutOfRange = errors.New("store: write outside array bounds")
)

// Store is a memory-mapped output array. A Store is safe for concurrent
// Write calls on disjoint row ranges; overlapping writers must be
// rejected up front with ValidatePartitions.
type Store struct {
	f         *os.File
	data      []byte
	detectors int
	rows      int
	width     int
	finalized bool
}

func dataSize(detectors, rows, width int) int64 {
	return int64(detectors) * int64(rows) * int64(width) * 8
}

// Create preallocates the file for the given shape and maps it. Any
// existing file at path is truncated.
func Create(path string, detectors, rows, width int) (*Store, error) {
	if detectors <= 0 || rows <= 0 || width <= 0 {
		return nil, fmt.Errorf("store: invalid shape (%d, %d, %d)", detectors, rows, width)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: create %s: %w", path, err)
	}
	if err := f.Truncate(headerSize + dataSize(detectors, rows, width)); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: preallocate %s: %w", path, err)
	}
	return attach(f, detectors, rows, width, false)
}

// Open maps an existing file created by Create with the same shape. It
// works on both finalized and unfinalized files; finalized files reject
// further writes.
func Open(path string, detectors, rows, width int) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	want := headerSize + dataSize(detectors, rows, width)
	if fi.Size() != want {
		f.Close()
		return nil, fmt.Errorf("store: %s is %d bytes, want %d for shape (%d, %d, %d)",
			path, fi.Size(), want, detectors, rows, width)
	}

	s, err := attach(f, detectors, rows, width, false)
	if err != nil {
		return nil, err
	}
	if shape, err := parseNpyHeader(s.data); err == nil {
		if shape != [3]int{detectors, rows, width} {
			s.Close()
			return nil, fmt.Errorf("store: %s holds shape %v, want (%d, %d, %d)",
				path, shape, detectors, rows, width)
		}
		s.finalized = true
	}
	return s, nil
}

func attach(f *os.File, detectors, rows, width int, finalized bool) (*Store, error) {
	size := int(headerSize + dataSize(detectors, rows, width))
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("store: mmap %s: %w", f.Name(), err)
	}
	return &Store{
		f:         f,
		data:      data,
		detectors: detectors,
		rows:      rows,
		width:     width,
		finalized: finalized,
	}, nil
}

// Shape returns (detectors, rows, width).
func (s *Store) Shape() (int, int, int) { return s.detectors, s.rows, s.width }

// Write stores the given rows for one detector starting at rowStart.
// Every row must have the array width. Writes are idempotent.
func (s *Store) Write(det, rowStart int, rows [][]complex64) error {
	if s.finalized {
		return ErrFinalized
	}
	if det < 0 || det >= s.detectors {
		return fmt.Errorf("%w: detector %d of %d", ErrOutOfRange, det, s.detectors)
	}
	if rowStart < 0 || rowStart+len(rows) > s.rows {
		return fmt.Errorf("%w: rows [%d, %d) of %d", ErrOutOfRange, rowStart, rowStart+len(rows), s.rows)
	}
	for i, row := range rows {
		if len(row) != s.width {
			return fmt.Errorf("store: row %d has %d samples, want %d", rowStart+i, len(row), s.width)
		}
		base := headerSize + int(dataSize(1, det*s.rows+rowStart+i, s.width))
		for j, v := range row {
			binary.LittleEndian.PutUint32(s.data[base+8*j:], math.Float32bits(real(v)))
			binary.LittleEndian.PutUint32(s.data[base+8*j+4:], math.Float32bits(imag(v)))
		}
	}
	return nil
}

// Read returns a copy of one row. Intended for verification and tests.
func (s *Store) Read(det, row int) ([]complex64, error) {
	if det < 0 || det >= s.detectors || row < 0 || row >= s.rows {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfRange, det, row)
	}
	base := headerSize + int(dataSize(1, det*s.rows+row, s.width))
	out := make([]complex64, s.width)
	for j := range out {
		re := math.Float32frombits(binary.LittleEndian.Uint32(s.data[base+8*j:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(s.data[base+8*j+4:]))
		out[j] = complex(re, im)
	}
	return out, nil
}

// Flush syncs written data to disk.
func (s *Store) Flush() error {
	if err := unix.Msync(s.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("store: msync: %w", err)
	}
	return nil
}

// Finalize flushes the data and writes the numpy header, turning the
// file into a readable .npy array. It must be called exactly once,
// after every job has written its rows; a second call returns
// ErrFinalized.
func (s *Store) Finalize() error {
	if s.finalized {
		return ErrFinalized
	}
	if err := s.Flush(); err != nil {
		return err
	}
	hdr, err := npyHeader([3]int{s.detectors, s.rows, s.width})
	if err != nil {
		return err
	}
	copy(s.data[:headerSize], hdr)
	if err := s.Flush(); err != nil {
		return err
	}
	s.finalized = true
	return nil
}

// Finalized reports whether the header has been written.
func (s *Store) Finalized() bool { return s.finalized }

// Close unmaps and closes the file without writing the header.
func (s *Store) Close() error {
	if s.data != nil {
		if err := unix.Munmap(s.data); err != nil {
			s.f.Close()
			return fmt.Errorf("store: munmap: %w", err)
		}
		s.data = nil
	}
	return s.f.Close()
}
