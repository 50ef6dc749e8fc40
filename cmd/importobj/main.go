package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"obj-voxel-importer/internal/batch"
	"obj-voxel-importer/internal/config"
	"obj-voxel-importer/internal/gridfile"
	"obj-voxel-importer/internal/importer"
	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/preview"
	"obj-voxel-importer/internal/world"
)

// optInt is an int flag that records whether it was set.
type optInt struct{ v *int }

func (o *optInt) String() string {
	if o.v == nil {
		return ""
	}
	return strconv.Itoa(*o.v)
}

func (o *optInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.v = &n
	return nil
}

type store interface {
	world.World
	Close() error
}

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	file := flag.String("file", "", "OBJ file relative to the models directory")
	x := flag.Int("x", 0, "X origin coordinate")
	z := flag.Int("z", 0, "Z origin coordinate")
	var y optInt
	flag.Var(&y, "y", "Y origin coordinate (default: on top of the surface)")
	height := flag.Int("height", 0, "Model height in blocks (default: 100)")
	solid := flag.Bool("solid", true, "Fill interior")
	baseDir := flag.String("data", "", "Server base directory (default: auto-detect)")
	modelsDir := flag.String("models", "", "Models directory (default: mods/ObjImporter/models)")
	paletteFile := flag.String("palette", "", "Block palette YAML (default: built-in)")
	worldDB := flag.String("world", "", "SQLite world database (default: in-memory world)")
	export := flag.String("export", "", "Write the voxel grid to this file")
	gridIn := flag.String("grid", "", "Place a previously exported grid instead of an OBJ file")
	previewOut := flag.String("preview", "", "Write a top-down WebP preview to this file")
	manifest := flag.String("manifest", "", "Batch job list (JSON)")
	reportOut := flag.String("report", "", "Batch report output (JSON)")
	workers := flag.Int("workers", 0, "Number of batch workers (default: NumCPU)")

	flag.Parse()

	logger := log.New(os.Stdout, "[importobj] ", log.LstdFlags)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:     *baseDir,
		ModelsDir:   *modelsDir,
		PaletteFile: *paletteFile,
		WorldDB:     *worldDB,
		Workers:     *workers,
	})

	pal := palette.Default()
	if cfg.PaletteFile != "" {
		var err error
		pal, err = palette.Load(cfg.PaletteFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading palette: %v\n", err)
			os.Exit(1)
		}
	}
	im := importer.New(cfg, pal, logger)

	req := importer.Request{File: *file, X: *x, Z: *z, Y: y.v, Height: *height, Solid: *solid}
	if *manifest == "" && *gridIn == "" {
		if _, err := im.Resolve(req); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	w, err := openWorld(cfg.WorldDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening world: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, cfg, im, w, req, runOptions{
		export:   *export,
		gridIn:   *gridIn,
		preview:  *previewOut,
		manifest: *manifest,
		report:   *reportOut,
	}, logger)
	stop()
	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing world: %v\n", err)
	}
	os.Exit(code)
}

type runOptions struct {
	export, gridIn, preview, manifest, report string
}

func run(ctx context.Context, cfg config.Config, im *importer.Importer, w world.World, req importer.Request, opts runOptions, logger *log.Logger) int {
	if opts.manifest != "" {
		return runBatch(ctx, cfg, im, w, opts.manifest, opts.report, logger)
	}

	progress := func(msg string) { fmt.Println(msg) }
	var err error
	if opts.gridIn != "" {
		err = placeGrid(ctx, im, w, req, opts.gridIn, progress)
	} else {
		err = importOne(ctx, cfg, im, w, req, opts.export, opts.preview, progress)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error during import: %v\n", err)
		return 1
	}
	return 0
}

func openWorld(path string) (store, error) {
	if path == "" {
		return world.NewMemory(), nil
	}
	s, err := world.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func importOne(ctx context.Context, cfg config.Config, im *importer.Importer, w world.World, req importer.Request, export, previewOut string, progress func(string)) error {
	rep, err := im.Import(ctx, w, req, progress)
	if err != nil {
		return err
	}
	fmt.Printf("Origin: (%d, %d, %d), %.1fs\n", rep.Origin.X, rep.Origin.Y, rep.Origin.Z, rep.Duration.Seconds())
	if rep.ImportID != "" {
		fmt.Printf("Import ID: %s\n", rep.ImportID)
	}

	if export != "" {
		if err := gridfile.WriteFile(export, rep.Grid.Result, im.Palette); err != nil {
			return err
		}
		fmt.Printf("Grid: %s\n", export)
	}
	if previewOut != "" {
		img := preview.TopDown(rep.Grid.Result, im.Palette, cfg.PreviewScale)
		if err := preview.WriteWebP(previewOut, img); err != nil {
			return err
		}
		fmt.Printf("Preview: %s\n", previewOut)
	}
	return nil
}

func placeGrid(ctx context.Context, im *importer.Importer, w world.World, req importer.Request, path string, progress func(string)) error {
	start := time.Now()
	res, unknown, err := gridfile.ReadFile(path, im.Palette)
	if err != nil {
		return err
	}
	for _, name := range unknown {
		progress("Warning: block not in palette: " + name)
	}
	progress(fmt.Sprintf("Grid: %dx%dx%d (%d solid blocks)", res.SizeX, res.SizeY, res.SizeZ, res.Count()))

	if req.File == "" {
		req.File = filepath.Base(path)
	}
	_, err = im.Place(ctx, w, req, &importer.Grid{Path: path, Result: res}, start, progress)
	return err
}

func runBatch(ctx context.Context, cfg config.Config, im *importer.Importer, w world.World, manifest, reportOut string, logger *log.Logger) int {
	jobs, err := batch.LoadJobs(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading jobs: %v\n", err)
		return 1
	}
	if len(jobs) == 0 {
		fmt.Println("No models to import.")
		return 0
	}

	fmt.Println("OBJ voxel importer, batch mode")
	fmt.Printf("Models: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Models dir: %s\n", cfg.ModelsDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(ctx, batch.Config{
		Importer:     im,
		World:        w,
		Workers:      cfg.Workers,
		PreviewScale: cfg.PreviewScale,
		Logger:       logger,
	}, jobs)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	rep := batch.Summarize(results)
	fmt.Printf("Imported: %d/%d, placed %d blocks (skipped %d unknown)\n", rep.Succeeded, rep.Total, rep.Placed, rep.Skipped)

	if rep.Failed > 0 {
		fmt.Printf("\nFailed (%d):\n", rep.Failed)
		shown := 0
		for _, r := range results {
			if r.Success || shown >= 20 {
				continue
			}
			fmt.Printf("  %s: %s\n", r.File, r.Error)
			shown++
		}
	}

	if reportOut != "" {
		if err := batch.WriteReport(reportOut, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: report write failed: %v\n", err)
		} else {
			fmt.Printf("Report: %s\n", reportOut)
		}
	}

	if rep.Failed > 0 || errors.Is(ctx.Err(), context.Canceled) {
		return 1
	}
	return 0
}
