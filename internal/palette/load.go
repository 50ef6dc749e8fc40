package palette

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_palette.yaml
var defaultPaletteYAML []byte

// DefaultBlockName is the default block of the built-in palette.
const DefaultBlockName = "core:stone"

type paletteFile struct {
	Default string      `yaml:"default"`
	Blocks  []blockSpec `yaml:"blocks"`
}

type blockSpec struct {
	Name  string `yaml:"name"`
	Color []int  `yaml:"color"`
}

// Load reads a YAML palette file.
//
//	default: core:stone
//	blocks:
//	  - name: core:stone
//	    color: [128, 128, 128]
func Load(path string) (*Palette, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("palette: read %s: %w", path, err)
	}
	p, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("palette: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes YAML palette data.
func Parse(raw []byte) (*Palette, error) {
	var f paletteFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("palette: parse: %w", err)
	}

	blocks := make([]Entry, 0, len(f.Blocks))
	for i, b := range f.Blocks {
		if len(b.Color) != 3 {
			return nil, fmt.Errorf("palette: block %d (%s): color needs 3 channels, got %d", i, b.Name, len(b.Color))
		}
		var c [3]uint8
		for k, v := range b.Color {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("palette: block %d (%s): channel %d out of range: %d", i, b.Name, k, v)
			}
			c[k] = uint8(v)
		}
		blocks = append(blocks, Entry{Name: b.Name, Color: RGB{c[0], c[1], c[2]}})
	}
	return New(blocks, f.Default)
}

// Default returns the built-in palette. The value is shared and read-only.
var Default = sync.OnceValue(func() *Palette {
	p, err := Parse(defaultPaletteYAML)
	if err != nil {
		panic(fmt.Sprintf("palette: built-in palette: %v", err))
	}
	return p
})
