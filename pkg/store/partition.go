package store

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOverlappingRanges is returned when two partitions claim the same
// rows.
var ErrOverlappingRanges = errors.New("store: overlapping partitions")

// Partition is a half-open row range [Start, End) owned by one job.
type Partition struct {
	Start int
	End   int
}

// Rows returns the number of rows in the partition.
func (p Partition) Rows() int { return p.End - p.Start }

// ValidatePartitions checks that every partition is well formed, lies
// inside [0, totalRows) and that no two partitions overlap. The store
// has no locking, so this is the only guard against double writers.
func ValidatePartitions(parts []Partition, totalRows int) error {
	sorted := make([]Partition, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	prevEnd := 0
	for _, p := range sorted {
		if p.Start < 0 || p.End > totalRows || p.Start >= p.End {
			return fmt.Errorf("store: invalid partition [%d, %d) of %d rows", p.Start, p.End, totalRows)
		}
		if p.Start < prevEnd {
			return fmt.Errorf("%w: [%d, %d) begins before row %d", ErrOverlappingRanges, p.Start, p.End, prevEnd)
		}
		prevEnd = p.End
	}
	return nil
}

// JobPartition splits total rows across totalJobs and returns the range
// owned by job index. Jobs before the remainder get one extra row, so
// the ranges tile [0, total) exactly.
func JobPartition(total, index, totalJobs int) (Partition, error) {
	if totalJobs <= 0 || index < 0 || index >= totalJobs {
		return Partition{}, fmt.Errorf("store: job %d of %d", index, totalJobs)
	}
	if total < 0 {
		return Partition{}, fmt.Errorf("store: negative row count %d", total)
	}
	base, rem := total/totalJobs, total%totalJobs
	start := index*base + min(index, rem)
	size := base
	if index < rem {
		size++
	}
	return Partition{Start: start, End: start + size}, nil
}
