package voxel

import (
	"sort"

	"obj-voxel-importer/internal/palette"
)

// Result is a voxel grid stored as flat slices indexed ((x*SizeY)+y)*SizeZ+z.
// Blocks[i] is meaningful only where Occupied[i] is true.
type Result struct {
	SizeX, SizeY, SizeZ int
	Occupied            []bool
	Blocks              []palette.BlockID
}

// NewResult allocates an empty grid. Sizes below 1 are raised to 1.
func NewResult(sx, sy, sz int) *Result {
	sx, sy, sz = max(sx, 1), max(sy, 1), max(sz, 1)
	n := sx * sy * sz
	return &Result{
		SizeX:    sx,
		SizeY:    sy,
		SizeZ:    sz,
		Occupied: make([]bool, n),
		Blocks:   make([]palette.BlockID, n),
	}
}

// Index returns the flat index of (x, y, z). The caller guarantees bounds.
func (r *Result) Index(x, y, z int) int {
	return (x*r.SizeY+y)*r.SizeZ + z
}

// In reports whether (x, y, z) lies inside the grid.
func (r *Result) In(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < r.SizeX && y < r.SizeY && z < r.SizeZ
}

// At returns the block at (x, y, z) and whether the cell is occupied.
func (r *Result) At(x, y, z int) (palette.BlockID, bool) {
	if !r.In(x, y, z) {
		return palette.None, false
	}
	i := r.Index(x, y, z)
	if !r.Occupied[i] {
		return palette.None, false
	}
	return r.Blocks[i], true
}

// Set marks (x, y, z) occupied with id.
func (r *Result) Set(x, y, z int, id palette.BlockID) {
	i := r.Index(x, y, z)
	r.Occupied[i] = true
	r.Blocks[i] = id
}

// mark sets a cell only if it is still empty, so the first face to reach a cell keeps it.
func (r *Result) mark(x, y, z int, id palette.BlockID) {
	i := r.Index(x, y, z)
	if !r.Occupied[i] {
		r.Occupied[i] = true
		r.Blocks[i] = id
	}
}

// Count returns the number of occupied cells.
func (r *Result) Count() int {
	n := 0
	for _, o := range r.Occupied {
		if o {
			n++
		}
	}
	return n
}

// Distinct returns the distinct block ids of occupied cells in ascending order.
func (r *Result) Distinct() []palette.BlockID {
	seen := make(map[palette.BlockID]struct{})
	for i, o := range r.Occupied {
		if o {
			seen[r.Blocks[i]] = struct{}{}
		}
	}
	ids := make([]palette.BlockID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}

// Each calls fn for every occupied cell, x outermost then y then z.
func (r *Result) Each(fn func(x, y, z int, id palette.BlockID)) {
	i := 0
	for x := 0; x < r.SizeX; x++ {
		for y := 0; y < r.SizeY; y++ {
			for z := 0; z < r.SizeZ; z++ {
				if r.Occupied[i] {
					fn(x, y, z, r.Blocks[i])
				}
				i++
			}
		}
	}
}
