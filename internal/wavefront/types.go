package wavefront

import (
	"github.com/go-gl/mathgl/mgl64"

	"obj-voxel-importer/internal/palette"
)

// Face is one polygon. Indices are 0-based into Mesh.Vertices.
type Face struct {
	Indices  []int
	Material string // active usemtl when the face was declared, "" if none
}

// Mesh holds parsed OBJ geometry. It is not modified after parsing.
type Mesh struct {
	Vertices    []mgl64.Vec3
	Faces       []Face
	MaterialLib string // first mtllib reference, relative to the OBJ file
}

// UsesMaterials reports whether any face references a material.
func (m *Mesh) UsesMaterials() bool {
	for _, f := range m.Faces {
		if f.Material != "" {
			return true
		}
	}
	return false
}

// TriangleCount returns the number of triangles after fan triangulation.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f.Indices) >= 3 {
			n += len(f.Indices) - 2
		}
	}
	return n
}

// Bounds returns the axis-aligned bounding box of all vertices.
// ok is false for a mesh without vertices.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3, ok bool) {
	if len(m.Vertices) == 0 {
		return lo, hi, false
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < lo[k] {
				lo[k] = v[k]
			}
			if v[k] > hi[k] {
				hi[k] = v[k]
			}
		}
	}
	return lo, hi, true
}

// Material is one newmtl block of an MTL library.
type Material struct {
	Name       string
	Diffuse    palette.RGB
	HasDiffuse bool   // Kd was present
	DiffuseMap string // map_Kd path as written in the file, "" if none
}
