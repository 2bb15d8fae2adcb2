// Package storage abstracts the archive that holds noise segments, PSD
// records and dataset parameter files. Runs on a workstation read from a
// local directory; cluster jobs can point the same code at an S3-compatible
// object store without touching the pipeline.
//
// Paths are forward-slash separated and relative to the archive root.
package storage

import (
	"context"
	"io"
)

// Archive is a minimal file-oriented store.
//
// Implementations must be safe for concurrent use. Noise archives are
// written once and then read by many jobs, so there is no delete operation.
type Archive interface {
	// Open opens the named file for reading. The caller must close the
	// returned ReadCloser. If the file does not exist, an error wrapping
	// os.ErrNotExist is returned.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create opens the named file for writing, truncating any existing
	// content. Parent directories are created as needed. The caller must
	// close the returned WriteCloser to flush data.
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// List returns the paths of all files under the given prefix,
	// in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}
