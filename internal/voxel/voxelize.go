package voxel

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/wavefront"
)

// ErrGridTooLarge is returned when the scaled model exceeds Options.MaxCells.
var ErrGridTooLarge = errors.New("voxel: grid too large")

// Options controls voxelization.
type Options struct {
	Height   int  // target size along Y in cells, minimum 1
	Solid    bool // fill the interior
	MaxCells int  // 0 means unlimited
}

// Materials maps a face material name to a block id.
type Materials interface {
	Lookup(name string) palette.BlockID
}

// MaterialsFunc adapts a function to Materials.
type MaterialsFunc func(name string) palette.BlockID

func (f MaterialsFunc) Lookup(name string) palette.BlockID { return f(name) }

const eps = 1e-9

// Voxelize rasterizes the mesh into a grid whose Y size equals opt.Height.
// X and Z use the same scale. A mesh flat in X or Z still voxelizes, one cell
// thick on that axis; a mesh flat in Y is scaled by its larger horizontal
// extent and gets SizeY 1. Meshes without faces, with all vertices coincident
// or with non-finite coordinates yield an empty 1x1x1 grid.
func Voxelize(m *wavefront.Mesh, opt Options, mats Materials) (*Result, error) {
	height := max(opt.Height, 1)

	lo, hi, ok := m.Bounds()
	if !ok || len(m.Faces) == 0 || !finite(lo) || !finite(hi) {
		return NewResult(1, 1, 1), nil
	}
	ext := hi.Sub(lo)

	var scale float64
	switch {
	case ext.Y() > eps:
		scale = float64(height) / ext.Y()
	case math.Max(ext.X(), ext.Z()) > eps:
		// Flat in Y: size the largest horizontal extent to height instead.
		scale = float64(height) / math.Max(ext.X(), ext.Z())
	default:
		return NewResult(1, 1, 1), nil
	}

	sx := cellsFor(ext.X() * scale)
	sz := cellsFor(ext.Z() * scale)
	sy := height
	if ext.Y() <= eps {
		sy = 1
	}
	if opt.MaxCells > 0 && float64(sx)*float64(sy)*float64(sz) > float64(opt.MaxCells) {
		return nil, fmt.Errorf("%w: %dx%dx%d exceeds %d cells", ErrGridTooLarge, sx, sy, sz, opt.MaxCells)
	}

	res := NewResult(sx, sy, sz)

	// Scale once; faces index into this slice.
	pts := make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = v.Sub(lo).Mul(scale)
	}

	for _, f := range m.Faces {
		id := mats.Lookup(f.Material)
		for k := 1; k+1 < len(f.Indices); k++ {
			i0, i1, i2 := f.Indices[0], f.Indices[k], f.Indices[k+1]
			if !validIndex(i0, len(pts)) || !validIndex(i1, len(pts)) || !validIndex(i2, len(pts)) {
				continue
			}
			rasterizeTriangle(res, pts[i0], pts[i1], pts[i2], id)
		}
	}

	if opt.Solid {
		fillInterior(res)
	}
	return res, nil
}

func cellsFor(span float64) int {
	n := int(math.Ceil(span - 1e-6))
	return max(n, 1)
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func validIndex(i, n int) bool {
	return i >= 0 && i < n
}
