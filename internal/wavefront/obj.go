package wavefront

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ParseOBJFile reads and parses an OBJ file.
func ParseOBJFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavefront: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return m, nil
}

// ParseOBJ parses OBJ text. Only geometry (v), faces (f), usemtl and mtllib are
// interpreted; every other directive is skipped.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	lr := newLineReader(r)
	material := ""

	for {
		f := lr.fields()
		if f == nil {
			break
		}

		switch f[0] {
		case "v":
			if len(f) < 4 {
				return nil, parseErrorf(lr.line, "vertex needs 3 coordinates, got %d", len(f)-1)
			}
			var v mgl64.Vec3
			for k := 0; k < 3; k++ {
				x, err := strconv.ParseFloat(f[k+1], 64)
				if err != nil {
					return nil, parseErrorf(lr.line, "vertex coordinate %q: not a number", f[k+1])
				}
				v[k] = x
			}
			m.Vertices = append(m.Vertices, v)

		case "f":
			if len(f) < 4 {
				return nil, parseErrorf(lr.line, "face needs at least 3 vertices, got %d", len(f)-1)
			}
			idx := make([]int, 0, len(f)-1)
			for _, tok := range f[1:] {
				i, err := faceIndex(tok, len(m.Vertices))
				if err != nil {
					return nil, parseErrorf(lr.line, "face vertex %q: %v", tok, err)
				}
				idx = append(idx, i)
			}
			m.Faces = append(m.Faces, Face{Indices: idx, Material: material})

		case "usemtl":
			material = strings.Join(f[1:], " ")

		case "mtllib":
			if m.MaterialLib == "" && len(f) > 1 {
				m.MaterialLib = f[1]
			}
		}
	}
	if err := lr.err(); err != nil {
		return nil, fmt.Errorf("wavefront: read obj: %w", err)
	}
	return m, nil
}

// faceIndex converts a "v", "v/vt", "v//vn" or "v/vt/vn" token to a 0-based vertex
// index. Negative indices count back from the last vertex defined so far.
func faceIndex(tok string, nverts int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.New("not an integer index")
	}
	switch {
	case n > 0 && n <= nverts:
		return n - 1, nil
	case n < 0 && -n <= nverts:
		return nverts + n, nil
	case n == 0:
		return 0, errors.New("index 0 is invalid")
	default:
		return 0, fmt.Errorf("index out of range (%d vertices)", nverts)
	}
}
