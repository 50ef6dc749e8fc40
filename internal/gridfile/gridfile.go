// Package gridfile stores voxel grids on disk: a JSON header line followed by
// a gob body, all zstd compressed.
package gridfile

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/voxel"
)

const (
	Magic   = "OBJVOXEL"
	Version = 1
)

// ErrFormat is returned for files that are not voxel grids of a known version.
var ErrFormat = errors.New("gridfile: bad format")

// Header is the readable first line of a grid file.
type Header struct {
	Magic   string `json:"magic"`
	Version int    `json:"version"`
	SizeX   int    `json:"size_x"`
	SizeY   int    `json:"size_y"`
	SizeZ   int    `json:"size_z"`
	Solid   int    `json:"solid"`
}

type body struct {
	Header    Header
	Names     []string // table index -> block name; index 0 is unnamed
	Occupancy []byte   // bit i set when cell i is occupied
	Blocks    []uint16 // table index per occupied cell, in cell order
}

// Write encodes res. Block ids are stored by name via pal so the file can be
// read against a different palette.
func Write(w io.Writer, res *voxel.Result, pal *palette.Palette) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("gridfile: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	b := encodeBody(res, pal)
	hb, _ := json.Marshal(b.Header)
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return fmt.Errorf("gridfile: write header: %w", err)
	}
	if err := gob.NewEncoder(bw).Encode(&b); err != nil {
		enc.Close()
		return fmt.Errorf("gridfile: gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("gridfile: flush: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("gridfile: close: %w", err)
	}
	return nil
}

func encodeBody(res *voxel.Result, pal *palette.Palette) body {
	b := body{
		Header: Header{
			Magic: Magic, Version: Version,
			SizeX: res.SizeX, SizeY: res.SizeY, SizeZ: res.SizeZ,
		},
		Names:     []string{""},
		Occupancy: make([]byte, (len(res.Occupied)+7)/8),
	}
	table := map[palette.BlockID]uint16{}
	for _, id := range res.Distinct() {
		name, ok := pal.Name(id)
		if !ok {
			table[id] = 0
			continue
		}
		table[id] = uint16(len(b.Names))
		b.Names = append(b.Names, name)
	}
	for i, occ := range res.Occupied {
		if !occ {
			continue
		}
		b.Occupancy[i/8] |= 1 << (i % 8)
		b.Blocks = append(b.Blocks, table[res.Blocks[i]])
	}
	b.Header.Solid = len(b.Blocks)
	return b
}

// Read decodes a grid and maps its block names onto pal. Names pal does not
// know are returned in unknown; their cells stay occupied with palette.None.
func Read(r io.Reader, pal *palette.Palette) (res *voxel.Result, unknown []string, err error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("gridfile: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil || h.Magic != Magic {
		return nil, nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	if h.Version != Version {
		return nil, nil, fmt.Errorf("%w: version %d", ErrFormat, h.Version)
	}

	var b body
	if err := gob.NewDecoder(br).Decode(&b); err != nil {
		return nil, nil, fmt.Errorf("gridfile: gob decode: %w", err)
	}
	return decodeBody(b, pal)
}

func decodeBody(b body, pal *palette.Palette) (*voxel.Result, []string, error) {
	h := b.Header
	if h.SizeX < 1 || h.SizeY < 1 || h.SizeZ < 1 {
		return nil, nil, fmt.Errorf("%w: size %dx%dx%d", ErrFormat, h.SizeX, h.SizeY, h.SizeZ)
	}
	res := voxel.NewResult(h.SizeX, h.SizeY, h.SizeZ)
	if len(b.Occupancy) != (len(res.Occupied)+7)/8 {
		return nil, nil, fmt.Errorf("%w: occupancy length %d", ErrFormat, len(b.Occupancy))
	}

	ids := make([]palette.BlockID, len(b.Names))
	var unknown []string
	for i, name := range b.Names {
		if i == 0 {
			continue
		}
		if id, ok := pal.Lookup(name); ok {
			ids[i] = id
		} else {
			unknown = append(unknown, name)
		}
	}

	n := 0
	for i := range res.Occupied {
		if b.Occupancy[i/8]&(1<<(i%8)) == 0 {
			continue
		}
		if n >= len(b.Blocks) || int(b.Blocks[n]) >= len(ids) {
			return nil, nil, fmt.Errorf("%w: block table truncated", ErrFormat)
		}
		res.Occupied[i] = true
		res.Blocks[i] = ids[b.Blocks[n]]
		n++
	}
	if n != len(b.Blocks) {
		return nil, nil, fmt.Errorf("%w: %d extra blocks", ErrFormat, len(b.Blocks)-n)
	}
	return res, unknown, nil
}

// WriteFile writes res to path, creating parent directories.
func WriteFile(path string, res *voxel.Result, pal *palette.Palette) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("gridfile: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gridfile: create %s: %w", path, err)
	}
	if err := Write(f, res, pal); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a grid written by WriteFile.
func ReadFile(path string, pal *palette.Palette) (*voxel.Result, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("gridfile: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, pal)
}
