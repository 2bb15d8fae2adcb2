package noise

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/shieldml/snrgen/pkg/storage"
)

// segmentArgsFile describes the archive directory holding the segments.
const segmentArgsFile = "args.yaml"

type segmentArgs struct {
	Detectors  []string `yaml:"detectors"`
	SampleRate int      `yaml:"sample_rate"`
	Prefix     string   `yaml:"prefix"`
}

// segment is one recorded file, named <prefix>-<gps>-<dur>.f32. The file
// holds one row of float32 little-endian samples per detector, in the
// order listed in args.yaml.
type segment struct {
	path     string
	gps      int64
	duration int64
}

// SegmentSet is a read-only catalog of recorded noise segments stored in
// an archive directory.
type SegmentSet struct {
	store      storage.Archive
	detectors  []string
	sampleRate int
	segments   []segment // sorted by gps
}

// OpenSegments scans dir in the archive: it reads args.yaml and indexes
// every segment file under the directory. Files that do not match the
// naming scheme are ignored.
func OpenSegments(ctx context.Context, store storage.Archive, dir string) (*SegmentSet, error) {
	rc, err := store.Open(ctx, path.Join(dir, segmentArgsFile))
	if err != nil {
		return nil, fmt.Errorf("noise: open segment args: %w", err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("noise: read segment args: %w", err)
	}
	var args segmentArgs
	if err := yaml.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("noise: parse segment args: %w", err)
	}
	if len(args.Detectors) == 0 || args.SampleRate <= 0 {
		return nil, fmt.Errorf("noise: segment args missing detectors or sample rate")
	}

	names, err := store.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("noise: list segments: %w", err)
	}
	set := &SegmentSet{
		store:      store,
		detectors:  args.Detectors,
		sampleRate: args.SampleRate,
	}
	for _, name := range names {
		gps, dur, ok := parseSegmentName(path.Base(name), args.Prefix)
		if !ok {
			continue
		}
		set.segments = append(set.segments, segment{path: name, gps: gps, duration: dur})
	}
	sort.Slice(set.segments, func(i, j int) bool { return set.segments[i].gps < set.segments[j].gps })
	return set, nil
}

func parseSegmentName(name, prefix string) (gps, duration int64, ok bool) {
	name, found := strings.CutSuffix(name, ".f32")
	if !found {
		return 0, 0, false
	}
	rest, found := strings.CutPrefix(name, prefix+"-")
	if !found {
		return 0, 0, false
	}
	gpsStr, durStr, found := strings.Cut(rest, "-")
	if !found {
		return 0, 0, false
	}
	gps, err := strconv.ParseInt(gpsStr, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	duration, err = strconv.ParseInt(durStr, 10, 64)
	if err != nil || duration <= 0 {
		return 0, 0, false
	}
	return gps, duration, true
}

// Detectors returns the detector names, in file row order.
func (s *SegmentSet) Detectors() []string { return s.detectors }

// SampleRate returns the segment sample rate in Hz.
func (s *SegmentSet) SampleRate() int { return s.sampleRate }

// Len returns the number of indexed segments.
func (s *SegmentSet) Len() int { return len(s.segments) }

// ValidTimes returns every GPS second at which a window of minDuration
// seconds fits entirely inside one segment. Draw injection times from
// this list to guarantee Fetch succeeds.
func (s *SegmentSet) ValidTimes(minDuration int64) []int64 {
	var times []int64
	for _, seg := range s.segments {
		for t := seg.gps; t+minDuration <= seg.gps+seg.duration; t++ {
			times = append(times, t)
		}
	}
	return times
}

// Fetch reads duration seconds of strain starting at gps for every
// detector. The interval must lie inside a single segment.
func (s *SegmentSet) Fetch(ctx context.Context, gps, duration int64) (map[string][]float64, error) {
	var seg *segment
	for i := range s.segments {
		c := &s.segments[i]
		if c.gps <= gps && gps+duration <= c.gps+c.duration {
			seg = c
			break
		}
	}
	if seg == nil {
		return nil, fmt.Errorf("%w: gps %d duration %d", ErrNoSegment, gps, duration)
	}

	rc, err := s.store.Open(ctx, seg.path)
	if err != nil {
		return nil, fmt.Errorf("noise: open segment %s: %w", seg.path, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("noise: read segment %s: %w", seg.path, err)
	}

	rowLen := int(seg.duration) * s.sampleRate
	if len(raw) != len(s.detectors)*rowLen*4 {
		return nil, fmt.Errorf("noise: segment %s is %d bytes, want %d",
			seg.path, len(raw), len(s.detectors)*rowLen*4)
	}

	offset := int(gps-seg.gps) * s.sampleRate
	n := int(duration) * s.sampleRate
	out := make(map[string][]float64, len(s.detectors))
	for row, det := range s.detectors {
		base := (row*rowLen + offset) * 4
		samples := make([]float64, n)
		for i := range samples {
			bits := binary.LittleEndian.Uint32(raw[base+4*i:])
			samples[i] = float64(math.Float32frombits(bits))
		}
		out[det] = samples
	}
	return out, nil
}
