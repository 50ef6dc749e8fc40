package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrFileNotFound is returned before any work when the model file is missing.
var ErrFileNotFound = errors.New("OBJ file not found")

// Request describes one import.
type Request struct {
	File   string `json:"file"` // relative to the models directory unless absolute
	X      int    `json:"x"`
	Z      int    `json:"z"`
	Y      *int   `json:"y,omitempty"`      // nil places the model on the surface
	Height int    `json:"height,omitempty"` // <= 0 uses the configured default
	Solid  bool   `json:"solid"`
}

// Resolve returns the absolute model path for req, or an error wrapping
// ErrFileNotFound.
func (im *Importer) Resolve(req Request) (string, error) {
	if req.File == "" {
		return "", fmt.Errorf("importer: %w: empty file name", ErrFileNotFound)
	}
	path := filepath.FromSlash(req.File)
	if !filepath.IsAbs(path) {
		path = filepath.Join(im.ModelsDir, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return path, nil
}

func (im *Importer) height(req Request) int {
	if req.Height > 0 {
		return req.Height
	}
	if im.DefaultHeight > 0 {
		return im.DefaultHeight
	}
	return 100
}
