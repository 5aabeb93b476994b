// Package probtable holds the precomputed casting-probability table.
//
// The table is indexed by [cmc][devotionA][devotionB][landsA][landsB][landsAB]
// and stores the probability of having enough lands of the right colors to
// cast a spell on curve. It ships as a zstd-compressed binary asset with a
// small versioned header:
//
//	magic   "DBPT"
//	uint16  version
//	uint16  rank (always 6)
//	uint16  dims[rank]
//	uint16  cells[prod(dims)]  probability * 65535
//
// All integers are little-endian.
package probtable

import (
	"bytes"
	_ "embed"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const (
	// Magic identifies a probability table blob.
	Magic = "DBPT"
	// Version is the only supported format version.
	Version = 1
	// Rank is the number of table dimensions.
	Rank = 6

	headerSize = len(Magic) + 2 + 2 + 2*Rank
	fixedScale = 65535
)

// Dimension caps. Inputs above a cap are clamped to it.
const (
	MaxCMC       = 7
	MaxDevotionA = 7
	MaxDevotionB = 3
	MaxLands     = 17
)

// Dims are the expected table dimensions.
var Dims = [Rank]int{MaxCMC + 1, MaxDevotionA + 1, MaxDevotionB + 1, MaxLands + 1, MaxLands + 1, MaxLands + 1}

//go:embed probtable_v1.bin.zst
var embedded []byte

// FormatError reports a malformed or mismatched table blob.
type FormatError struct {
	Field string
	Got   any
	Want  any
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("probtable: invalid %s: got %v, want %v", e.Field, e.Got, e.Want)
}

// Table is an immutable casting-probability table.
type Table struct {
	dims    [Rank]int
	strides [Rank]int
	cells   []uint16
}

// New wraps raw fixed-point cells in a table with the standard dimensions.
func New(cells []uint16) (*Table, error) {
	t := newTable(Dims)
	if len(cells) != len(t.cells) {
		return nil, &FormatError{Field: "cell count", Got: len(cells), Want: len(t.cells)}
	}
	copy(t.cells, cells)
	return t, nil
}

func newTable(dims [Rank]int) *Table {
	t := &Table{dims: dims}
	size := 1
	for i := Rank - 1; i >= 0; i-- {
		t.strides[i] = size
		size *= dims[i]
	}
	t.cells = make([]uint16, size)
	return t
}

// Dims returns the table dimensions.
func (t *Table) Dims() [Rank]int {
	return t.dims
}

func (t *Table) offset(coords [Rank]int) int {
	off := 0
	for i, c := range coords {
		if c < 0 {
			c = 0
		}
		if c >= t.dims[i] {
			c = t.dims[i] - 1
		}
		off += c * t.strides[i]
	}
	return off
}

// Lookup returns the probability for the given cell. Coordinates are clamped
// into the table's range.
func (t *Table) Lookup(cmc, devotionA, devotionB, landsA, landsB, landsAB int) float64 {
	off := t.offset([Rank]int{cmc, devotionA, devotionB, landsA, landsB, landsAB})
	return float64(t.cells[off]) / fixedScale
}

// Parse validates an uncompressed blob and builds a table from it.
func Parse(raw []byte) (*Table, error) {
	if len(raw) < headerSize {
		return nil, &FormatError{Field: "header length", Got: len(raw), Want: headerSize}
	}
	if magic := string(raw[:len(Magic)]); magic != Magic {
		return nil, &FormatError{Field: "magic", Got: magic, Want: Magic}
	}
	pos := len(Magic)
	version := binary.LittleEndian.Uint16(raw[pos:])
	if version != Version {
		return nil, &FormatError{Field: "version", Got: version, Want: Version}
	}
	rank := binary.LittleEndian.Uint16(raw[pos+2:])
	if rank != Rank {
		return nil, &FormatError{Field: "rank", Got: rank, Want: Rank}
	}
	pos += 4

	var dims [Rank]int
	for i := range dims {
		dims[i] = int(binary.LittleEndian.Uint16(raw[pos:]))
		pos += 2
	}
	if dims != Dims {
		return nil, &FormatError{Field: "dimensions", Got: dims, Want: Dims}
	}

	t := newTable(dims)
	if want := headerSize + 2*len(t.cells); len(raw) != want {
		return nil, &FormatError{Field: "data length", Got: len(raw), Want: want}
	}
	for i := range t.cells {
		t.cells[i] = binary.LittleEndian.Uint16(raw[pos:])
		pos += 2
	}
	return t, nil
}

// MarshalBinary encodes the table without compression.
func (t *Table) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize+2*len(t.cells))
	copy(buf, Magic)
	pos := len(Magic)
	binary.LittleEndian.PutUint16(buf[pos:], Version)
	binary.LittleEndian.PutUint16(buf[pos+2:], Rank)
	pos += 4
	for _, d := range t.dims {
		binary.LittleEndian.PutUint16(buf[pos:], uint16(d))
		pos += 2
	}
	for _, c := range t.cells {
		binary.LittleEndian.PutUint16(buf[pos:], c)
		pos += 2
	}
	return buf, nil
}

// Decode reads a zstd-compressed table.
func Decode(r io.Reader) (*Table, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress table: %w", err)
	}
	return Parse(raw)
}

// Encode writes the table zstd-compressed.
func Encode(w io.Writer, t *Table) error {
	raw, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return fmt.Errorf("compress table: %w", err)
	}
	return enc.Close()
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Decode(bytes.NewReader(embedded))
})

// Default returns the embedded table, decoding it on first use.
func Default() (*Table, error) {
	return loadDefault()
}
