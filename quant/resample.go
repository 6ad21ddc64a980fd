// Package quant reduces bitmaps to coarse pixel-art grids by
// nearest-neighbor resampling. Quantization here is spatial only; the
// color depth of the source is preserved.
package quant

import (
	"fmt"
	"image"
	"image/color"
)

// DimensionError reports a zero or negative dimension somewhere in the
// resampling pipeline.
type DimensionError struct {
	Dim   string
	Value int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Dim, e.Value)
}

// Resample maps src onto a targetWidth x targetHeight grid where every
// destination cell holds the single source pixel nearest to it. No
// averaging or blending takes place, so hard edges survive.
//
// The destination is always fully covered; only the computed source
// indices are clamped, guarding the final row and column against
// overshoot.
func Resample(src image.Image, targetWidth, targetHeight int) (*image.RGBA, error) {
	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	switch {
	case srcWidth <= 0:
		return nil, &DimensionError{Dim: "source width", Value: srcWidth}
	case srcHeight <= 0:
		return nil, &DimensionError{Dim: "source height", Value: srcHeight}
	case targetWidth <= 0:
		return nil, &DimensionError{Dim: "target width", Value: targetWidth}
	case targetHeight <= 0:
		return nil, &DimensionError{Dim: "target height", Value: targetHeight}
	}

	dest := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	for y := 0; y < targetHeight; y++ {
		srcY := y * srcHeight / targetHeight
		if srcY > srcHeight-1 {
			srcY = srcHeight - 1
		}
		for x := 0; x < targetWidth; x++ {
			srcX := x * srcWidth / targetWidth
			if srcX > srcWidth-1 {
				srcX = srcWidth - 1
			}
			c := color.RGBAModel.Convert(src.At(bounds.Min.X+srcX, bounds.Min.Y+srcY)).(color.RGBA)
			dest.SetRGBA(x, y, c)
		}
	}

	return dest, nil
}

// Magnify upscales img by an integer factor so every cell becomes a
// scale x scale block of identical pixels.
func Magnify(img image.Image, scale int) (*image.RGBA, error) {
	if scale <= 0 {
		return nil, &DimensionError{Dim: "magnification", Value: scale}
	}
	bounds := img.Bounds()
	return Resample(img, bounds.Dx()*scale, bounds.Dy()*scale)
}
