package wavefront

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"obj-voxel-importer/internal/palette"
)

// ParseMTLFile reads and parses an MTL file.
func ParseMTLFile(path string) (map[string]Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavefront: open %s: %w", path, err)
	}
	defer f.Close()

	mats, err := ParseMTL(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return mats, nil
}

// ParseMTL parses MTL text into materials keyed by name. Only newmtl, Kd and map_Kd
// are interpreted. Materials without Kd get palette.MidGray.
func ParseMTL(r io.Reader) (map[string]Material, error) {
	mats := make(map[string]Material)
	lr := newLineReader(r)
	var cur *Material

	flush := func() {
		if cur != nil {
			mats[cur.Name] = *cur
		}
	}

	for {
		f := lr.fields()
		if f == nil {
			break
		}

		switch f[0] {
		case "newmtl":
			flush()
			cur = &Material{Name: strings.Join(f[1:], " "), Diffuse: palette.MidGray}

		case "Kd":
			if cur == nil {
				continue
			}
			args := f[1:]
			if len(args) > 0 && (args[0] == "spectral" || args[0] == "xyz") {
				// Spectral and CIE XYZ forms are not supported; keep the default.
				continue
			}
			if len(args) == 1 {
				args = []string{args[0], args[0], args[0]}
			}
			if len(args) < 3 {
				return nil, parseErrorf(lr.line, "Kd needs 3 components, got %d", len(args))
			}
			var c [3]uint8
			for k := 0; k < 3; k++ {
				x, err := strconv.ParseFloat(args[k], 64)
				if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
					return nil, parseErrorf(lr.line, "Kd component %q: not a number", args[k])
				}
				c[k] = unitToByte(x)
			}
			cur.Diffuse = palette.RGB{R: c[0], G: c[1], B: c[2]}
			cur.HasDiffuse = true

		case "map_Kd":
			if cur == nil || len(f) < 2 {
				continue
			}
			cur.DiffuseMap = mapPath(f[1:])
		}
	}
	flush()
	if err := lr.err(); err != nil {
		return nil, fmt.Errorf("wavefront: read mtl: %w", err)
	}
	return mats, nil
}

// mapOptionArgs is the number of values following each map_* option.
var mapOptionArgs = map[string]int{
	"-blendu": 1, "-blendv": 1, "-bm": 1, "-boost": 1, "-cc": 1, "-clamp": 1,
	"-imfchan": 1, "-texres": 1, "-type": 1,
	"-mm": 2,
	"-o": 3, "-s": 3, "-t": 3,
}

// mapPath skips texture options and returns the file name, which may contain spaces.
func mapPath(args []string) string {
	i := 0
	for i < len(args) {
		n, ok := mapOptionArgs[args[i]]
		if !ok {
			break
		}
		i++
		// -o/-s/-t take 1 to 3 numbers.
		for k := 0; k < n && i < len(args); k++ {
			if k > 0 {
				if _, err := strconv.ParseFloat(args[i], 64); err != nil {
					break
				}
			}
			i++
		}
	}
	if i >= len(args) {
		return args[len(args)-1]
	}
	return strings.Join(args[i:], " ")
}

func unitToByte(x float64) uint8 {
	v := math.Round(x * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
