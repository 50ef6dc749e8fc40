// Package preview renders small orthographic images of a voxel grid.
package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/voxel"
)

// TopDown draws the grid seen from above: one pixel per (x, z) column, the
// color of its highest occupied cell, darker the lower that cell is. Empty
// columns stay transparent. The result is upscaled by scale.
func TopDown(res *voxel.Result, pal *palette.Palette, scale int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, res.SizeX, res.SizeZ))
	for x := 0; x < res.SizeX; x++ {
		for z := 0; z < res.SizeZ; z++ {
			for y := res.SizeY - 1; y >= 0; y-- {
				id, ok := res.At(x, y, z)
				if !ok {
					continue
				}
				setShaded(img, x, z, colorOf(pal, id), y+1, res.SizeY)
				break
			}
		}
	}
	return upscale(img, scale)
}

// Side draws the grid seen from the -Z side with +Y up, shading by depth.
func Side(res *voxel.Result, pal *palette.Palette, scale int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, res.SizeX, res.SizeY))
	for x := 0; x < res.SizeX; x++ {
		for y := 0; y < res.SizeY; y++ {
			for z := 0; z < res.SizeZ; z++ {
				id, ok := res.At(x, y, z)
				if !ok {
					continue
				}
				setShaded(img, x, res.SizeY-1-y, colorOf(pal, id), res.SizeZ-z, res.SizeZ)
				break
			}
		}
	}
	return upscale(img, scale)
}

func colorOf(pal *palette.Palette, id palette.BlockID) palette.RGB {
	if e, ok := pal.Entry(id); ok {
		return e.Color
	}
	return palette.RGB{R: 255, B: 255}
}

// setShaded writes c at half brightness for level 0 up to full at level == levels.
func setShaded(img *image.NRGBA, x, y int, c palette.RGB, level, levels int) {
	f := 0.5 + 0.5*float64(level)/float64(max(levels, 1))
	i := img.PixOffset(x, y)
	img.Pix[i] = uint8(float64(c.R)*f + 0.5)
	img.Pix[i+1] = uint8(float64(c.G)*f + 0.5)
	img.Pix[i+2] = uint8(float64(c.B)*f + 0.5)
	img.Pix[i+3] = 255
}

func upscale(img *image.NRGBA, scale int) *image.NRGBA {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WriteWebP encodes img losslessly to path, creating parent directories.
func WriteWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("preview: webp encode: %w", err)
	}
	return f.Close()
}
