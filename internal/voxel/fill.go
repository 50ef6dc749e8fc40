package voxel

import "obj-voxel-importer/internal/palette"

// fillInterior solidifies the shell layer by layer with a scanline parity rule.
//
// Along a row each maximal run of occupied cells counts as one boundary crossing.
// Empty cells after an odd number of crossings, with another run still ahead, are
// inside. A cell is filled only when both its X row and its Z column say so.
// Filled cells take the block of the nearest surface cell on their X row, the
// lower x winning ties.
func fillInterior(res *Result) {
	sx, sy, sz := res.SizeX, res.SizeY, res.SizeZ
	insideZ := make([]bool, sx*sz)

	type fill struct {
		x, z int
		id   palette.BlockID
	}
	var pending []fill

	for y := 0; y < sy; y++ {
		for i := range insideZ {
			insideZ[i] = false
		}
		for x := 0; x < sx; x++ {
			scanInside(sz, func(z int) bool {
				return res.Occupied[res.Index(x, y, z)]
			}, func(z, _, _ int) {
				insideZ[x*sz+z] = true
			})
		}

		pending = pending[:0]
		for z := 0; z < sz; z++ {
			scanInside(sx, func(x int) bool {
				return res.Occupied[res.Index(x, y, z)]
			}, func(x, left, right int) {
				if !insideZ[x*sz+z] {
					return
				}
				src := left
				if right-x < x-left {
					src = right
				}
				pending = append(pending, fill{x, z, res.Blocks[res.Index(src, y, z)]})
			})
		}
		// Applied after the layer scan so new cells do not change parity.
		for _, f := range pending {
			res.Set(f.x, y, f.z, f.id)
		}
	}
}

// scanInside walks a line of n cells and calls inside(i, left, right) for each
// empty cell enclosed by parity, where left is the last surface cell before it and
// right the first surface cell after it.
func scanInside(n int, occupied func(i int) bool, inside func(i, left, right int)) {
	crossings := 0
	lastSurface := -1
	i := 0
	for i < n {
		if occupied(i) {
			for i < n && occupied(i) {
				i++
			}
			crossings++
			lastSurface = i - 1
			continue
		}

		// Empty gap [start, end).
		start := i
		for i < n && !occupied(i) {
			i++
		}
		end := i
		if crossings%2 == 1 && end < n {
			for k := start; k < end; k++ {
				inside(k, lastSurface, end)
			}
		}
	}
}
