// Package surface finds the ground level of a world column.
package surface

import "obj-voxel-importer/internal/world"

// None is returned by Locate when a column holds no solid block.
const None = -1 << 31

// Range bounds the vertical scan, both ends inclusive.
type Range struct {
	MaxY, MinY int
}

// DefaultRange covers a 0..255 world height.
var DefaultRange = Range{MaxY: 255, MinY: 0}

// Locate returns the highest y in r at which (x, z) is solid, or None.
func Locate(p world.Prober, x, z int, r Range) int {
	for y := r.MaxY; y >= r.MinY; y-- {
		if p.SolidAt(x, y, z) {
			return y
		}
	}
	return None
}

// OriginY is the y a model placed on top of column (x, z) starts at:
// one above the surface, or r.MinY for an empty column.
func OriginY(p world.Prober, x, z int, r Range) int {
	if y := Locate(p, x, z, r); y != None {
		return y + 1
	}
	return r.MinY
}
