package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// The header region is fixed so data can be written before the header.
// 128 bytes fits any shape this pipeline produces and keeps the data
// section page-aligned-friendly for downstream mmap readers.
const headerSize = 128

var npyMagic = []byte("\x93NUMPY\x01\x00")

// npyHeader renders a numpy format 1.0 header for a C-ordered complex64
// array of the given shape, padded to exactly headerSize bytes.
func npyHeader(shape [3]int) ([]byte, error) {
	dict := fmt.Sprintf("{'descr': '<c8', 'fortran_order': False, 'shape': (%d, %d, %d), }",
		shape[0], shape[1], shape[2])

	buf := make([]byte, 0, headerSize)
	buf = append(buf, npyMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(headerSize-len(npyMagic)-2))
	buf = append(buf, dict...)
	if len(buf) >= headerSize {
		return nil, fmt.Errorf("store: header dict too long for %d-byte region", headerSize)
	}
	for len(buf) < headerSize-1 {
		buf = append(buf, ' ')
	}
	buf = append(buf, '\n')
	return buf, nil
}

// parseNpyHeader checks the magic and extracts the shape from a header
// region previously written by npyHeader.
func parseNpyHeader(raw []byte) (shape [3]int, err error) {
	if len(raw) < headerSize || !bytes.HasPrefix(raw, npyMagic) {
		return shape, fmt.Errorf("store: not a finalized array file")
	}
	dict := raw[len(npyMagic)+2 : headerSize]
	lp := bytes.IndexByte(dict, '(')
	rp := bytes.IndexByte(dict, ')')
	if lp < 0 || rp < lp {
		return shape, fmt.Errorf("store: malformed header %q", dict)
	}
	n, err := fmt.Sscanf(string(dict[lp:rp+1]), "(%d, %d, %d)", &shape[0], &shape[1], &shape[2])
	if err != nil || n != 3 {
		return shape, fmt.Errorf("store: malformed shape in header %q", dict)
	}
	return shape, nil
}
