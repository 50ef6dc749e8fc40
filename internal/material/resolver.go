// Package material maps mesh materials to palette blocks.
package material

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/texture"
	"obj-voxel-importer/internal/wavefront"
)

// Map is the material name to block id table of one import.
type Map struct {
	ids map[string]palette.BlockID
	def palette.BlockID
}

// NewMap returns an empty map whose lookups all return def.
func NewMap(def palette.BlockID) Map {
	return Map{ids: map[string]palette.BlockID{}, def: def}
}

// Lookup returns the block for a face material, or the default block when
// the name is empty or was not resolved.
func (m Map) Lookup(name string) palette.BlockID {
	if id, ok := m.ids[name]; ok {
		return id
	}
	return m.def
}

// Default returns the fallback block.
func (m Map) Default() palette.BlockID { return m.def }

// Len returns the number of resolved materials.
func (m Map) Len() int { return len(m.ids) }

// Resolver picks a block for every material: the texture average when the
// texture can be loaded, the diffuse color otherwise.
type Resolver struct {
	Palette  *palette.Palette
	Textures texture.Sampler // nil uses a fresh texture.Cache per resolver
	Logger   *log.Logger     // nil discards warnings
}

// NewResolver creates a resolver with its own texture cache.
func NewResolver(p *palette.Palette, logger *log.Logger) *Resolver {
	return &Resolver{Palette: p, Textures: texture.NewCache(), Logger: logger}
}

// Load reads the material library of mesh, if any, and resolves it.
// A missing or malformed library is not fatal: every face gets the default block.
func (r *Resolver) Load(mesh *wavefront.Mesh, objPath string, progress func(string)) Map {
	report := sink(progress)
	if !mesh.UsesMaterials() || mesh.MaterialLib == "" {
		report("No materials found")
		return NewMap(r.Palette.DefaultBlock())
	}

	mtlPath := filepath.Join(filepath.Dir(objPath), filepath.FromSlash(mesh.MaterialLib))
	report("Parsing MTL: " + mesh.MaterialLib)
	mats, err := wavefront.ParseMTLFile(mtlPath)
	if err != nil {
		report(fmt.Sprintf("Warning: MTL parsing failed: %v", err))
		r.warnf("material: %v", err)
		return NewMap(r.Palette.DefaultBlock())
	}
	report(fmt.Sprintf("Found %d materials", len(mats)))
	return r.Resolve(mats, filepath.Dir(mtlPath), progress)
}

// Resolve maps each material to a block. Texture paths are looked up
// relative to mtlDir. Materials are processed in name order.
func (r *Resolver) Resolve(mats map[string]wavefront.Material, mtlDir string, progress func(string)) Map {
	report := sink(progress)
	out := NewMap(r.Palette.DefaultBlock())

	names := make([]string, 0, len(mats))
	for name := range mats {
		names = append(names, name)
	}
	sort.Strings(names)

	var idx *texture.Index
	for _, name := range names {
		mat := mats[name]

		if mat.DiffuseMap != "" {
			if idx == nil {
				idx = texture.BuildIndex(mtlDir)
			}
			id, err := r.fromTexture(idx, mat.DiffuseMap)
			if err == nil {
				out.ids[name] = id
				report(fmt.Sprintf("  Texture %s -> block %s", name, r.blockName(id)))
				continue
			}
			report(fmt.Sprintf("  Warning: texture failed for %s: %v", name, err))
			r.warnf("material: texture for %s: %v", name, err)
		}

		c := mat.Diffuse
		if !mat.HasDiffuse {
			c = palette.MidGray
		}
		id := r.Palette.NearestRGB(c)
		out.ids[name] = id
		report(fmt.Sprintf("  Color %s (%d,%d,%d) -> block %s", name, c.R, c.G, c.B, r.blockName(id)))
	}
	return out
}

func (r *Resolver) fromTexture(idx *texture.Index, ref string) (palette.BlockID, error) {
	path, ok := idx.ResolvePath(ref)
	if !ok {
		return palette.None, &texture.LoadError{Path: ref, Err: os.ErrNotExist}
	}
	sampler := r.Textures
	if sampler == nil {
		r.Textures = texture.NewCache()
		sampler = r.Textures
	}
	avg, err := sampler.Average(path)
	if err != nil {
		return palette.None, err
	}
	return r.Palette.NearestRGB(avg), nil
}

func (r *Resolver) blockName(id palette.BlockID) string {
	if name, ok := r.Palette.Name(id); ok {
		return name
	}
	return fmt.Sprintf("ID:%d", id)
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

func sink(progress func(string)) func(string) {
	if progress == nil {
		return func(string) {}
	}
	return progress
}
