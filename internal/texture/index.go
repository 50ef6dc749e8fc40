package texture

import (
	"os"
	"path/filepath"
	"strings"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true, ".tga": true,
}

// Index resolves texture references from an MTL file to files on disk.
// Exporters often write absolute paths from another machine, Windows
// separators or the wrong case, so lookups fall back to a case-insensitive
// match on the file name.
type Index struct {
	dir     string
	entries map[string]string // lowercase base name -> full path
}

// BuildIndex scans dir and its subdirectories for image files.
// The first path found for a base name wins, in lexical walk order.
func BuildIndex(dir string) *Index {
	idx := &Index{dir: dir, entries: make(map[string]string)}
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !imageExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		key := strings.ToLower(d.Name())
		if _, exists := idx.entries[key]; !exists {
			idx.entries[key] = path
		}
		return nil
	})
	return idx
}

// ResolvePath returns the file for a texture reference, or ("", false).
func (idx *Index) ResolvePath(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	norm := strings.ReplaceAll(ref, "\\", "/")

	direct := norm
	if !filepath.IsAbs(direct) {
		direct = filepath.Join(idx.dir, filepath.FromSlash(norm))
	}
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return direct, true
	}

	base := strings.ToLower(norm[strings.LastIndex(norm, "/")+1:])
	path, ok := idx.entries[base]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
