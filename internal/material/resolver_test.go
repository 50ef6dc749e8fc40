package material

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/texture"
	"obj-voxel-importer/internal/wavefront"
)

func testPalette(t *testing.T) *palette.Palette {
	t.Helper()
	p, err := palette.New([]palette.Entry{
		{Name: "test:red", Color: palette.RGB{R: 255}},
		{Name: "test:green", Color: palette.RGB{G: 255}},
		{Name: "test:blue", Color: palette.RGB{B: 255}},
		{Name: "test:gray", Color: palette.RGB{R: 128, G: 128, B: 128}},
	}, "")
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	return p
}

func writeSolidPNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestResolve_DiffuseAndDefault(t *testing.T) {
	p := testPalette(t)
	r := NewResolver(p, nil)

	m := r.Resolve(map[string]wavefront.Material{
		"leaf":  {Name: "leaf", Diffuse: palette.RGB{G: 200}, HasDiffuse: true},
		"plain": {Name: "plain"},
	}, t.TempDir(), nil)

	green, _ := p.Lookup("test:green")
	gray, _ := p.Lookup("test:gray")
	if got := m.Lookup("leaf"); got != green {
		t.Fatalf("leaf=%d want %d", got, green)
	}
	if got := m.Lookup("plain"); got != gray {
		t.Fatalf("plain=%d want %d (mid gray)", got, gray)
	}
	if got := m.Lookup("unknown"); got != p.DefaultBlock() {
		t.Fatalf("unknown=%d want default %d", got, p.DefaultBlock())
	}
	if got := m.Lookup(""); got != p.DefaultBlock() {
		t.Fatalf("empty=%d want default %d", got, p.DefaultBlock())
	}
	if m.Len() != 2 {
		t.Fatalf("len=%d want 2", m.Len())
	}
}

func TestResolve_TexturePreferred(t *testing.T) {
	p := testPalette(t)
	dir := t.TempDir()
	writeSolidPNG(t, filepath.Join(dir, "Bricks.png"), color.NRGBA{R: 240, G: 10, B: 10, A: 255})

	var lines []string
	r := NewResolver(p, nil)
	m := r.Resolve(map[string]wavefront.Material{
		"wall": {Name: "wall", Diffuse: palette.RGB{B: 255}, HasDiffuse: true, DiffuseMap: `textures\bricks.png`},
	}, dir, func(s string) { lines = append(lines, s) })

	red, _ := p.Lookup("test:red")
	if got := m.Lookup("wall"); got != red {
		t.Fatalf("wall=%d want %d", got, red)
	}
	if len(lines) != 1 || lines[0] != "  Texture wall -> block test:red" {
		t.Fatalf("lines=%q", lines)
	}
}

func TestResolve_TextureFailureFallsBack(t *testing.T) {
	p := testPalette(t)
	calls := 0
	r := &Resolver{
		Palette: p,
		Textures: texture.SamplerFunc(func(string) (palette.RGB, error) {
			calls++
			return palette.RGB{}, errors.New("corrupt")
		}),
	}
	dir := t.TempDir()
	writeSolidPNG(t, filepath.Join(dir, "a.png"), color.NRGBA{A: 255})

	var lines []string
	m := r.Resolve(map[string]wavefront.Material{
		"a":       {Name: "a", Diffuse: palette.RGB{B: 250}, HasDiffuse: true, DiffuseMap: "a.png"},
		"missing": {Name: "missing", Diffuse: palette.RGB{G: 250}, HasDiffuse: true, DiffuseMap: "nope.png"},
	}, dir, func(s string) { lines = append(lines, s) })

	blue, _ := p.Lookup("test:blue")
	green, _ := p.Lookup("test:green")
	if got := m.Lookup("a"); got != blue {
		t.Fatalf("a=%d want %d", got, blue)
	}
	if got := m.Lookup("missing"); got != green {
		t.Fatalf("missing=%d want %d", got, green)
	}
	if calls != 1 {
		t.Fatalf("sampler calls=%d want 1", calls)
	}
	want := []string{
		"  Warning: texture failed for a: corrupt",
		"  Color a (0,0,250) -> block test:blue",
		"  Warning: texture failed for missing: ",
		"  Color missing (0,250,0) -> block test:green",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines=%q", lines)
	}
	for i := range want {
		if !strings.HasPrefix(lines[i], want[i]) {
			t.Fatalf("line %d=%q want prefix %q", i, lines[i], want[i])
		}
	}
}

func TestLoad_NoMaterials(t *testing.T) {
	p := testPalette(t)
	var lines []string
	m := NewResolver(p, nil).Load(&wavefront.Mesh{MaterialLib: "x.mtl"}, "model.obj", func(s string) { lines = append(lines, s) })
	if m.Len() != 0 || m.Default() != p.DefaultBlock() {
		t.Fatalf("len=%d default=%d", m.Len(), m.Default())
	}
	if len(lines) != 1 || lines[0] != "No materials found" {
		t.Fatalf("lines=%q", lines)
	}
}

func TestLoad_MissingLibrary(t *testing.T) {
	p := testPalette(t)
	mesh := &wavefront.Mesh{
		MaterialLib: "gone.mtl",
		Faces:       []wavefront.Face{{Indices: []int{0, 1, 2}, Material: "red"}},
	}
	var lines []string
	m := NewResolver(p, nil).Load(mesh, filepath.Join(t.TempDir(), "model.obj"), func(s string) { lines = append(lines, s) })
	if got := m.Lookup("red"); got != p.DefaultBlock() {
		t.Fatalf("red=%d want default %d", got, p.DefaultBlock())
	}
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "Warning: MTL parsing failed:") {
		t.Fatalf("lines=%q", lines)
	}
}

func TestLoad_Library(t *testing.T) {
	p := testPalette(t)
	dir := t.TempDir()
	mtl := "newmtl red\nKd 1 0 0\nnewmtl blue\nKd 0 0 1\n"
	if err := os.WriteFile(filepath.Join(dir, "m.mtl"), []byte(mtl), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mesh := &wavefront.Mesh{
		MaterialLib: "m.mtl",
		Faces:       []wavefront.Face{{Indices: []int{0, 1, 2}, Material: "red"}},
	}
	m := NewResolver(p, nil).Load(mesh, filepath.Join(dir, "model.obj"), nil)
	red, _ := p.Lookup("test:red")
	blue, _ := p.Lookup("test:blue")
	if m.Lookup("red") != red || m.Lookup("blue") != blue {
		t.Fatalf("red=%d blue=%d", m.Lookup("red"), m.Lookup("blue"))
	}
}
