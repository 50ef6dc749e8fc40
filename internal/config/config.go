package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds importer paths and limits.
type Config struct {
	// Paths
	BaseDir     string `json:"base_dir"`
	ModelsDir   string `json:"models_dir"`
	PaletteFile string `json:"palette_file"` // empty uses the built-in palette
	WorldDB     string `json:"world_db"`     // empty keeps the world in memory

	// Import settings
	DefaultHeight     int  `json:"default_height"`
	SurfaceMaxY       int  `json:"surface_max_y"`
	SurfaceMinY       int  `json:"surface_min_y"`
	SubstituteUnknown bool `json:"substitute_unknown_blocks"`
	MaxCells          int  `json:"max_cells"`
	PreviewScale      int  `json:"preview_scale"`
	Workers           int  `json:"workers"`
}

const (
	DefaultHeight       = 100
	DefaultSurfaceMaxY  = 255
	DefaultMaxCells     = 1 << 26
	DefaultPreviewScale = 4
)

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.ModelsDir != "" {
		c.ModelsDir = flags.ModelsDir
	}
	if flags.PaletteFile != "" {
		c.PaletteFile = flags.PaletteFile
	}
	if flags.WorldDB != "" {
		c.WorldDB = flags.WorldDB
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	if c.ModelsDir == "" {
		c.ModelsDir = filepath.Join(c.BaseDir, "mods", "ObjImporter", "models")
	} else if !filepath.IsAbs(c.ModelsDir) {
		c.ModelsDir = filepath.Join(c.BaseDir, c.ModelsDir)
	}
	if c.PaletteFile != "" && !filepath.IsAbs(c.PaletteFile) {
		c.PaletteFile = filepath.Join(c.BaseDir, c.PaletteFile)
	}
	if c.WorldDB != "" && !filepath.IsAbs(c.WorldDB) {
		c.WorldDB = filepath.Join(c.BaseDir, c.WorldDB)
	}

	if c.DefaultHeight <= 0 {
		c.DefaultHeight = DefaultHeight
	}
	if c.SurfaceMaxY == 0 {
		c.SurfaceMaxY = DefaultSurfaceMaxY
	}
	if c.MaxCells <= 0 {
		c.MaxCells = DefaultMaxCells
	}
	if c.PreviewScale <= 0 {
		c.PreviewScale = DefaultPreviewScale
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir     string
	ModelsDir   string
	PaletteFile string
	WorldDB     string
	Workers     int
}

// detectBaseDir looks for a server root (a directory holding mods/ObjImporter)
// next to the executable, then at the working directory and its parent.
func detectBaseDir() string {
	marker := filepath.Join("mods", "ObjImporter")

	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if _, err := os.Stat(filepath.Join(base, marker)); err == nil {
				return base
			}
		}
	}

	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(filepath.Dir(cwd), marker)); err == nil {
		return filepath.Dir(cwd)
	}
	return cwd
}
