package palette

import (
	"errors"
	"fmt"
)

// ErrEmptyPalette is a configuration error: nearest-color search needs at least one entry.
var ErrEmptyPalette = errors.New("palette: no block entries")

// Palette is the fixed set of block types available to an import.
// It is read-only after construction and safe for concurrent use.
type Palette struct {
	entries []Entry // entries[i].ID == i+1
	byName  map[string]BlockID
	def     BlockID
}

// New builds a palette from blocks in insertion order. IDs are assigned 1..n;
// the ID field of the input is ignored. defaultName may be empty.
func New(blocks []Entry, defaultName string) (*Palette, error) {
	if len(blocks) == 0 {
		return nil, ErrEmptyPalette
	}
	if len(blocks) > int(^BlockID(0)) {
		return nil, fmt.Errorf("palette: too many entries (%d)", len(blocks))
	}

	p := &Palette{
		entries: make([]Entry, 0, len(blocks)),
		byName:  make(map[string]BlockID, len(blocks)),
	}
	for i, b := range blocks {
		if b.Name == "" {
			return nil, fmt.Errorf("palette: entry %d has empty name", i)
		}
		if _, dup := p.byName[b.Name]; dup {
			return nil, fmt.Errorf("palette: duplicate block %q", b.Name)
		}
		id := BlockID(i + 1)
		p.entries = append(p.entries, Entry{ID: id, Name: b.Name, Color: b.Color})
		p.byName[b.Name] = id
	}

	if defaultName != "" {
		id, ok := p.byName[defaultName]
		if !ok {
			return nil, fmt.Errorf("palette: default block %q not in palette", defaultName)
		}
		p.def = id
	} else {
		// No configured default: closest to mid gray.
		p.def = p.Nearest(MidGray.R, MidGray.G, MidGray.B)
	}
	return p, nil
}

// Nearest returns the entry closest to (r, g, b) by Euclidean distance.
// Ties go to the entry inserted first.
func (p *Palette) Nearest(r, g, b uint8) BlockID {
	best := p.entries[0].ID
	bestDist := -1
	for _, e := range p.entries {
		dr := int(e.Color.R) - int(r)
		dg := int(e.Color.G) - int(g)
		db := int(e.Color.B) - int(b)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = e.ID, d
		}
	}
	return best
}

// NearestRGB is Nearest for an RGB value.
func (p *Palette) NearestRGB(c RGB) BlockID {
	return p.Nearest(c.R, c.G, c.B)
}

// Entry returns the entry for id.
func (p *Palette) Entry(id BlockID) (Entry, bool) {
	if id == None || int(id) > len(p.entries) {
		return Entry{}, false
	}
	return p.entries[id-1], true
}

// Name returns the placeable name for id.
func (p *Palette) Name(id BlockID) (string, bool) {
	e, ok := p.Entry(id)
	return e.Name, ok
}

// Lookup returns the id of a block by name.
func (p *Palette) Lookup(name string) (BlockID, bool) {
	id, ok := p.byName[name]
	return id, ok
}

// DefaultBlock is the block used for faces without a resolvable material.
func (p *Palette) DefaultBlock() BlockID {
	return p.def
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Entries returns a copy of all entries in ID order.
func (p *Palette) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}
