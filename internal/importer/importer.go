// Package importer runs the OBJ import pipeline: parse, resolve materials,
// voxelize, find the ground and place blocks.
package importer

import (
	"context"
	"fmt"
	"log"
	"time"

	"obj-voxel-importer/internal/config"
	"obj-voxel-importer/internal/material"
	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/placement"
	"obj-voxel-importer/internal/surface"
	"obj-voxel-importer/internal/voxel"
	"obj-voxel-importer/internal/wavefront"
	"obj-voxel-importer/internal/world"
)

// Importer holds the shared, read-only state of all imports.
// It is safe for concurrent use.
type Importer struct {
	ModelsDir         string
	Palette           *palette.Palette
	Materials         *material.Resolver
	Surface           surface.Range
	DefaultHeight     int
	MaxCells          int
	SubstituteUnknown bool
	Logger            *log.Logger
}

// New creates an importer from resolved configuration.
func New(cfg config.Config, pal *palette.Palette, logger *log.Logger) *Importer {
	return &Importer{
		ModelsDir:         cfg.ModelsDir,
		Palette:           pal,
		Materials:         material.NewResolver(pal, logger),
		Surface:           surface.Range{MaxY: cfg.SurfaceMaxY, MinY: cfg.SurfaceMinY},
		DefaultHeight:     cfg.DefaultHeight,
		MaxCells:          cfg.MaxCells,
		SubstituteUnknown: cfg.SubstituteUnknown,
		Logger:            logger,
	}
}

// Grid is a voxelized model that has not been placed yet.
type Grid struct {
	Path      string
	Mesh      *wavefront.Mesh
	Materials material.Map
	Result    *voxel.Result
	Height    int
	Solid     bool
}

// Report summarizes a finished import.
type Report struct {
	File     string
	ImportID string // set when the world records imports
	Origin   world.Pos
	SizeX    int
	SizeY    int
	SizeZ    int
	Solid    int
	Stats    placement.Stats
	Duration time.Duration
	Grid     *Grid // the placed grid, for export
}

// Outcome is what Start delivers.
type Outcome struct {
	Report Report
	Err    error
}

// Recorder is implemented by worlds that keep an import log.
type Recorder interface {
	RecordImport(ctx context.Context, rec world.ImportRecord) (string, error)
}

// Voxelize runs parsing, material resolution and voxelization.
func (im *Importer) Voxelize(ctx context.Context, req Request, progress func(string)) (*Grid, error) {
	report := sink(progress)

	path, err := im.Resolve(req)
	if err != nil {
		return nil, err
	}

	report("Parsing OBJ file...")
	mesh, err := wavefront.ParseOBJFile(path)
	if err != nil {
		return nil, err
	}
	report(fmt.Sprintf("Mesh: %d vertices, %d faces", len(mesh.Vertices), len(mesh.Faces)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	def := im.Palette.DefaultBlock()
	report(fmt.Sprintf("Default block: ID %d -> %s", def, im.blockName(def)))
	mats := im.Materials.Load(mesh, path, progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	height := im.height(req)
	report(fmt.Sprintf("Voxelizing (height=%d, solid=%t)...", height, req.Solid))
	res, err := voxel.Voxelize(mesh, voxel.Options{Height: height, Solid: req.Solid, MaxCells: im.MaxCells}, mats)
	if err != nil {
		return nil, fmt.Errorf("importer: %s: %w", path, err)
	}
	report(fmt.Sprintf("Voxelized: %dx%dx%d (%d solid blocks)", res.SizeX, res.SizeY, res.SizeZ, res.Count()))

	return &Grid{
		Path:      path,
		Mesh:      mesh,
		Materials: mats,
		Result:    res,
		Height:    height,
		Solid:     req.Solid,
	}, nil
}

// Import runs the whole pipeline and places the model into w.
// Cancellation is honoured until voxelization finishes; after that the grid
// is placed to completion.
func (im *Importer) Import(ctx context.Context, w world.World, req Request, progress func(string)) (Report, error) {
	report := sink(progress)
	start := time.Now()

	if _, err := im.Resolve(req); err != nil {
		return Report{}, err
	}
	report("Starting OBJ import: " + req.File)
	if req.Y != nil {
		report(fmt.Sprintf("Position: (%d, %d, %d) height=%d solid=%t", req.X, *req.Y, req.Z, im.height(req), req.Solid))
	} else {
		report(fmt.Sprintf("Position: (%d, surface, %d) height=%d solid=%t", req.X, req.Z, im.height(req), req.Solid))
	}

	g, err := im.Voxelize(ctx, req, progress)
	if err != nil {
		return Report{}, err
	}
	return im.Place(ctx, w, req, g, start, progress)
}

// Place commits an already voxelized grid. start is used for the report duration.
// A grid that reached Place is always placed in full, even if ctx is cancelled.
func (im *Importer) Place(ctx context.Context, w world.World, req Request, g *Grid, start time.Time, progress func(string)) (Report, error) {
	report := sink(progress)
	ctx = context.WithoutCancel(ctx)

	origin := world.Pos{X: req.X, Z: req.Z}
	if req.Y != nil {
		origin.Y = *req.Y
	} else {
		origin.Y = surface.OriginY(w, req.X, req.Z, im.Surface)
		report(fmt.Sprintf("Surface origin: y=%d", origin.Y))
	}

	opts := placement.Options{Progress: progress}
	if im.SubstituteUnknown {
		opts.Fallback = im.blockName(im.Palette.DefaultBlock())
	}
	st, err := placement.Place(ctx, w, g.Result, origin, im.Palette, opts)
	report(st.Summary())

	rep := Report{
		File:     req.File,
		Origin:   origin,
		SizeX:    g.Result.SizeX,
		SizeY:    g.Result.SizeY,
		SizeZ:    g.Result.SizeZ,
		Solid:    g.Result.Count(),
		Stats:    st,
		Duration: time.Since(start),
		Grid:     g,
	}
	if err != nil {
		return rep, fmt.Errorf("importer: %s: %w", g.Path, err)
	}
	if st.Skipped > 0 && im.Logger != nil {
		im.Logger.Printf("importer: %s: skipped %d cells with unknown blocks", g.Path, st.Skipped)
	}
	if rec, ok := w.(Recorder); ok {
		id, err := rec.RecordImport(ctx, world.ImportRecord{
			File: req.File, X: origin.X, Y: origin.Y, Z: origin.Z,
			SizeX: rep.SizeX, SizeY: rep.SizeY, SizeZ: rep.SizeZ,
			Placed: st.Placed, Skipped: st.Skipped,
		})
		if err != nil {
			return rep, err
		}
		rep.ImportID = id
	}
	return rep, nil
}

// Start runs Import on its own goroutine. The channel receives exactly one
// Outcome and is then closed.
func (im *Importer) Start(ctx context.Context, w world.World, req Request, progress func(string)) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		rep, err := im.Import(ctx, w, req, progress)
		out <- Outcome{Report: rep, Err: err}
	}()
	return out
}

func (im *Importer) blockName(id palette.BlockID) string {
	if name, ok := im.Palette.Name(id); ok {
		return name
	}
	return "NULL"
}

func sink(progress func(string)) func(string) {
	if progress == nil {
		return func(string) {}
	}
	return progress
}
