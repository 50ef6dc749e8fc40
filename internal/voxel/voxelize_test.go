package voxel

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/wavefront"
)

const (
	blockA palette.BlockID = 1
	blockB palette.BlockID = 2
	blockD palette.BlockID = 9
)

func constMaterials(id palette.BlockID) Materials {
	return MaterialsFunc(func(string) palette.BlockID { return id })
}

func byName(m map[string]palette.BlockID, def palette.BlockID) Materials {
	return MaterialsFunc(func(name string) palette.BlockID {
		if id, ok := m[name]; ok {
			return id
		}
		return def
	})
}

// cubeMesh is the axis-aligned box [0,sx]x[0,sy]x[0,sz] as six quads.
// The x=0 face uses material "left"; all others use "rest".
func cubeMesh(sx, sy, sz float64) *wavefront.Mesh {
	m := &wavefront.Mesh{Vertices: []mgl64.Vec3{
		{0, 0, 0}, {sx, 0, 0}, {sx, sy, 0}, {0, sy, 0},
		{0, 0, sz}, {sx, 0, sz}, {sx, sy, sz}, {0, sy, sz},
	}}
	quads := []struct {
		idx []int
		mat string
	}{
		{[]int{0, 4, 7, 3}, "left"},
		{[]int{1, 2, 6, 5}, "rest"},
		{[]int{0, 1, 5, 4}, "rest"},
		{[]int{3, 7, 6, 2}, "rest"},
		{[]int{0, 3, 2, 1}, "rest"},
		{[]int{4, 5, 6, 7}, "rest"},
	}
	for _, q := range quads {
		m.Faces = append(m.Faces, wavefront.Face{Indices: q.idx, Material: q.mat})
	}
	return m
}

// sphereMesh is a UV sphere of radius r centred at the origin.
func sphereMesh(r float64, rings, segments int) *wavefront.Mesh {
	m := &wavefront.Mesh{}
	for i := 0; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			m.Vertices = append(m.Vertices, mgl64.Vec3{
				r * math.Sin(phi) * math.Cos(theta),
				r * math.Cos(phi),
				r * math.Sin(phi) * math.Sin(theta),
			})
		}
	}
	at := func(i, j int) int { return i*segments + j%segments }
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			m.Faces = append(m.Faces, wavefront.Face{Indices: []int{at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)}})
		}
	}
	return m
}

func TestVoxelize_NoFaces(t *testing.T) {
	m := &wavefront.Mesh{Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 2, 3}}}
	res, err := Voxelize(m, Options{Height: 10, Solid: true}, constMaterials(blockD))
	if err != nil {
		t.Fatalf("Voxelize: %v", err)
	}
	if res.SizeX != 1 || res.SizeY != 1 || res.SizeZ != 1 {
		t.Fatalf("size=%dx%dx%d want 1x1x1", res.SizeX, res.SizeY, res.SizeZ)
	}
	if res.Count() != 0 {
		t.Fatalf("count=%d want 0", res.Count())
	}
}

func TestVoxelize_CoincidentVertices(t *testing.T) {
	m := &wavefront.Mesh{
		Vertices: []mgl64.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
		Faces:    []wavefront.Face{{Indices: []int{0, 1, 2}}},
	}
	res, err := Voxelize(m, Options{Height: 5}, constMaterials(blockD))
	if err != nil {
		t.Fatalf("Voxelize: %v", err)
	}
	if res.SizeX*res.SizeY*res.SizeZ != 1 || res.Count() != 0 {
		t.Fatalf("got %dx%dx%d count=%d, want empty 1x1x1", res.SizeX, res.SizeY, res.SizeZ, res.Count())
	}
}

func TestVoxelize_UnitTriangle(t *testing.T) {
	m := &wavefront.Mesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}},
		Faces:    []wavefront.Face{{Indices: []int{0, 1, 2}}},
	}
	res, err := Voxelize(m, Options{Height: 1, Solid: true}, constMaterials(blockD))
	if err != nil {
		t.Fatalf("Voxelize: %v", err)
	}
	if res.SizeX != 1 || res.SizeY != 1 || res.SizeZ != 1 {
		t.Fatalf("size=%dx%dx%d want 1x1x1", res.SizeX, res.SizeY, res.SizeZ)
	}
	id, ok := res.At(0, 0, 0)
	if !ok || id != blockD {
		t.Fatalf("cell (0,0,0)=%d,%v want %d,true", id, ok, blockD)
	}
}

func TestVoxelize_FlatTriangleFootprint(t *testing.T) {
	// Right triangle covering half of a 4x4 footprint after scaling.
	m := &wavefront.Mesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {0, 0, 4}, {4, 0, 0}},
		Faces:    []wavefront.Face{{Indices: []int{0, 1, 2}}},
	}
	res, err := Voxelize(m, Options{Height: 4}, constMaterials(blockD))
	if err != nil {
		t.Fatalf("Voxelize: %v", err)
	}
	if res.SizeX != 4 || res.SizeY != 1 || res.SizeZ != 4 {
		t.Fatalf("size=%dx%dx%d want 4x1x4", res.SizeX, res.SizeY, res.SizeZ)
	}
	for x := 0; x < 4; x++ {
		for z := 0; z < 4; z++ {
			_, ok := res.At(x, 0, z)
			want := x+z <= 3
			if ok != want {
				t.Fatalf("cell (%d,0,%d) occupied=%v want %v", x, z, ok, want)
			}
		}
	}
}

func TestVoxelize_Proportions(t *testing.T) {
	res, err := Voxelize(cubeMesh(1, 2, 0.5), Options{Height: 10}, constMaterials(blockD))
	if err != nil {
		t.Fatalf("Voxelize: %v", err)
	}
	if res.SizeX != 5 || res.SizeY != 10 || res.SizeZ != 3 {
		t.Fatalf("size=%dx%dx%d want 5x10x3", res.SizeX, res.SizeY, res.SizeZ)
	}
}

func TestVoxelize_CubeShellAndSolid(t *testing.T) {
	mats := byName(map[string]palette.BlockID{"left": blockA, "rest": blockB}, blockD)

	shell, err := Voxelize(cubeMesh(1, 1, 1), Options{Height: 4}, mats)
	if err != nil {
		t.Fatalf("Voxelize shell: %v", err)
	}
	if got := shell.Count(); got != 56 {
		t.Fatalf("shell count=%d want 56", got)
	}
	if _, ok := shell.At(1, 1, 1); ok {
		t.Fatalf("shell interior (1,1,1) should be empty")
	}

	solid, err := Voxelize(cubeMesh(1, 1, 1), Options{Height: 4, Solid: true}, mats)
	if err != nil {
		t.Fatalf("Voxelize solid: %v", err)
	}
	if got := solid.Count(); got != 64 {
		t.Fatalf("solid count=%d want 64", got)
	}
	if id, _ := solid.At(0, 1, 1); id != blockA {
		t.Fatalf("left face cell=%d want %d", id, blockA)
	}
	if id, _ := solid.At(1, 1, 1); id != blockA {
		t.Fatalf("interior near left face=%d want %d", id, blockA)
	}
	if id, _ := solid.At(2, 1, 1); id != blockB {
		t.Fatalf("interior near right face=%d want %d", id, blockB)
	}
}

func TestVoxelize_ShellSubsetOfSolid(t *testing.T) {
	m := sphereMesh(1, 24, 32)
	shell, err := Voxelize(m, Options{Height: 21}, constMaterials(blockD))
	if err != nil {
		t.Fatalf("Voxelize shell: %v", err)
	}
	solid, err := Voxelize(m, Options{Height: 21, Solid: true}, constMaterials(blockD))
	if err != nil {
		t.Fatalf("Voxelize solid: %v", err)
	}
	if shell.Count() > solid.Count() {
		t.Fatalf("shell=%d > solid=%d", shell.Count(), solid.Count())
	}
	for i, o := range shell.Occupied {
		if o && !solid.Occupied[i] {
			t.Fatalf("shell cell %d missing from solid", i)
		}
	}
	c := shell.SizeX / 2
	if _, ok := shell.At(c, 10, c); ok {
		t.Fatalf("sphere centre occupied in shell")
	}
	if _, ok := solid.At(c, 10, c); !ok {
		t.Fatalf("sphere centre empty in solid")
	}
}

func TestVoxelize_MaxCells(t *testing.T) {
	_, err := Voxelize(cubeMesh(1, 1, 1), Options{Height: 10, MaxCells: 999}, constMaterials(blockD))
	if !errors.Is(err, ErrGridTooLarge) {
		t.Fatalf("err=%v want ErrGridTooLarge", err)
	}
}

func TestResult_EachOrderAndDistinct(t *testing.T) {
	r := NewResult(2, 2, 2)
	r.Set(1, 0, 0, blockB)
	r.Set(0, 1, 1, blockA)
	r.Set(0, 0, 1, blockB)

	var got [][3]int
	r.Each(func(x, y, z int, _ palette.BlockID) { got = append(got, [3]int{x, y, z}) })
	want := [][3]int{{0, 0, 1}, {0, 1, 1}, {1, 0, 0}}
	if len(got) != len(want) {
		t.Fatalf("visited %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visited %v want %v", got, want)
		}
	}

	ids := r.Distinct()
	if len(ids) != 2 || ids[0] != blockA || ids[1] != blockB {
		t.Fatalf("distinct=%v", ids)
	}
}

func TestScanInside(t *testing.T) {
	row := []bool{false, true, false, false, true, true, false, true, false}
	var cells, lefts, rights []int
	scanInside(len(row), func(i int) bool { return row[i] }, func(i, l, r int) {
		cells = append(cells, i)
		lefts = append(lefts, l)
		rights = append(rights, r)
	})
	// Runs at 1, 4-5, 7: gap 2-3 is inside (after 1 crossing), gap 6 is not (after 2).
	if len(cells) != 2 || cells[0] != 2 || cells[1] != 3 {
		t.Fatalf("inside=%v want [2 3]", cells)
	}
	if lefts[0] != 1 || rights[0] != 4 {
		t.Fatalf("bounds=(%d,%d) want (1,4)", lefts[0], rights[0])
	}
}
