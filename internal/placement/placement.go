// Package placement commits a voxel grid into a world.
package placement

import (
	"context"
	"fmt"

	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/voxel"
	"obj-voxel-importer/internal/world"
)

// Names resolves a block id to the name the world places.
type Names interface {
	Name(id palette.BlockID) (string, bool)
}

// Options controls placement.
type Options struct {
	// Fallback is placed for cells whose id has no name. Empty skips them.
	Fallback string
	Progress func(string)
}

// Stats counts what Place did.
type Stats struct {
	Placed      int // includes Substituted
	Skipped     int
	Substituted int
	Unique      int // distinct ids that resolved to a name
}

// Place writes every occupied cell of res at origin+(x,y,z) in one Execute
// call. Names are resolved once per distinct id before the world is touched.
// Cancelling ctx does not stop placement; only values are taken from it.
func Place(ctx context.Context, w world.World, res *voxel.Result, origin world.Pos, names Names, opts Options) (Stats, error) {
	cache := make(map[palette.BlockID]string)
	for _, id := range res.Distinct() {
		if id == palette.None {
			continue
		}
		if name, ok := names.Name(id); ok && name != "" {
			cache[id] = name
		}
	}
	if opts.Progress != nil {
		opts.Progress(fmt.Sprintf("Resolved %d unique block types", len(cache)))
	}

	var st Stats
	st.Unique = len(cache)
	err := w.Execute(context.WithoutCancel(ctx), func(tx world.Tx) error {
		i := 0
		for x := 0; x < res.SizeX; x++ {
			for y := 0; y < res.SizeY; y++ {
				for z := 0; z < res.SizeZ; z++ {
					if !res.Occupied[i] {
						i++
						continue
					}
					name, ok := cache[res.Blocks[i]]
					i++
					if !ok {
						if opts.Fallback == "" {
							st.Skipped++
							continue
						}
						name = opts.Fallback
						st.Substituted++
					}
					if err := tx.SetBlock(origin.X+x, origin.Y+y, origin.Z+z, name); err != nil {
						return err
					}
					st.Placed++
				}
			}
		}
		return nil
	})
	if err != nil {
		return st, fmt.Errorf("placement: %w", err)
	}
	return st, nil
}

// Summary is the final progress line of an import.
func (s Stats) Summary() string {
	return fmt.Sprintf("Import complete! Placed %d blocks (skipped %d unknown).", s.Placed, s.Skipped)
}
