package texture

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"obj-voxel-importer/internal/palette"
)

// MaxSampleSize bounds the side of the image that is averaged; larger textures
// are subsampled first.
const MaxSampleSize = 256

// AverageColor loads the image at path and returns its mean color.
func AverageColor(path string) (palette.RGB, error) {
	img, err := LoadTexture(path)
	if err != nil {
		return palette.RGB{}, err
	}
	return Average(img), nil
}

// Average returns the arithmetic mean of every pixel's RGB channels, alpha ignored.
// Images wider or taller than MaxSampleSize are scaled down with bilinear
// filtering before averaging, which leaves uniform images unchanged.
func Average(img *image.NRGBA) palette.RGB {
	img = subsample(img)

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return palette.MidGray
	}

	var sumR, sumG, sumB float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float64(img.Pix[i])
			sumG += float64(img.Pix[i+1])
			sumB += float64(img.Pix[i+2])
		}
	}
	n := float64(w * h)
	return palette.RGB{
		R: uint8(math.Round(sumR / n)),
		G: uint8(math.Round(sumG / n)),
		B: uint8(math.Round(sumB / n)),
	}
}

func subsample(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxSampleSize && h <= MaxSampleSize {
		return img
	}
	scale := math.Min(float64(MaxSampleSize)/float64(w), float64(MaxSampleSize)/float64(h))
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))

	// Opaque copy: averaging ignores alpha, so scaling must not weight by it.
	opaque := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(opaque, opaque.Bounds(), img, b.Min, draw.Src)
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 255
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), opaque, opaque.Bounds(), draw.Src, nil)
	return dst
}
