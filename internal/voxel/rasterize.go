package voxel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"obj-voxel-importer/internal/palette"
)

// rasterizeTriangle marks every cell the grid-space triangle a-b-c passes through.
//
// The triangle is projected onto the plane of its dominant normal axis. Each cell
// centre inside the projection gets the cell at the interpolated depth. Edges are
// also walked at half-cell steps, so slivers still leave a trace.
func rasterizeTriangle(res *Result, a, b, c mgl64.Vec3, id palette.BlockID) {
	g := a.Add(b).Add(c).Mul(1.0 / 3)
	rasterizeEdge(res, a, b, g, id)
	rasterizeEdge(res, b, c, g, id)
	rasterizeEdge(res, c, a, g, id)

	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < 1e-12 {
		return
	}

	// d is the depth axis, u and v span the projection plane.
	d := 0
	if math.Abs(n[1]) > math.Abs(n[d]) {
		d = 1
	}
	if math.Abs(n[2]) > math.Abs(n[d]) {
		d = 2
	}
	u, v := (d+1)%3, (d+2)%3
	size := [3]int{res.SizeX, res.SizeY, res.SizeZ}

	u0, v0, d0 := a[u], a[v], a[d]
	u1, v1, d1 := b[u], b[v], b[d]
	u2, v2, d2 := c[u], c[v], c[d]

	// Bounding box in the projection plane, clamped to the grid.
	minU := clampCell(math.Min(math.Min(u0, u1), u2), size[u])
	maxU := clampCell(math.Max(math.Max(u0, u1), u2), size[u])
	minV := clampCell(math.Min(math.Min(v0, v1), v2), size[v])
	maxV := clampCell(math.Max(math.Max(v0, v1), v2), size[v])

	// Barycentric setup
	det := (v1-v2)*(u0-u2) + (u2-u1)*(v0-v2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det
	dv12 := v1 - v2
	du21 := u2 - u1
	dv20 := v2 - v0
	du02 := u0 - u2

	var cell [3]int
	for iu := minU; iu <= maxU; iu++ {
		pu := float64(iu) + 0.5 - u2
		for iv := minV; iv <= maxV; iv++ {
			pv := float64(iv) + 0.5 - v2
			w0 := (dv12*pu + du21*pv) * invDet
			w1 := (dv20*pu + du02*pv) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			cell[u] = iu
			cell[v] = iv
			cell[d] = clampCell(w0*d0+w1*d1+w2*d2, size[d])
			res.mark(cell[0], cell[1], cell[2], id)
		}
	}
}

// rasterizeEdge marks the cells under points sampled every half cell along p-q,
// endpoints included. Samples are pulled a hair towards the centroid g so points on
// cell corners land in a cell the triangle actually covers.
func rasterizeEdge(res *Result, p, q, g mgl64.Vec3, id palette.BlockID) {
	steps := int(math.Ceil(q.Sub(p).Len()*2)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s := p.Add(q.Sub(p).Mul(t))
		s = s.Add(g.Sub(s).Mul(1e-6))
		res.mark(
			clampCell(s[0], res.SizeX),
			clampCell(s[1], res.SizeY),
			clampCell(s[2], res.SizeZ),
			id,
		)
	}
}

// clampCell maps a grid-space coordinate to a cell index in [0, n).
func clampCell(x float64, n int) int {
	i := int(math.Floor(x))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
