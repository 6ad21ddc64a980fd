package quant

import (
	"fmt"
	"math"
)

// AspectRatio is a "w:h" ratio for the target grid.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectWide      AspectRatio = "16:9"
	AspectTall      AspectRatio = "9:16"
)

// Ratio parses the aspect ratio into its integer terms.
func (ar AspectRatio) Ratio() (w, h int, err error) {
	n, err := fmt.Sscanf(string(ar), "%d:%d", &w, &h)
	if err != nil {
		return 0, 0, fmt.Errorf("could not read aspect ratio %q: %w", string(ar), err)
	} else if n < 2 {
		return 0, 0, fmt.Errorf("insufficient aspect ratio fields in %q: %d", string(ar), n)
	}

	if w <= 0 {
		return 0, 0, &DimensionError{Dim: "aspect width", Value: w}
	}
	if h <= 0 {
		return 0, 0, &DimensionError{Dim: "aspect height", Value: h}
	}
	return w, h, nil
}

// GridSize derives the target grid from a chosen cell height and an
// aspect ratio: width = round(height * w / h).
func GridSize(pixelHeight int, ar AspectRatio) (width, height int, err error) {
	if pixelHeight <= 0 {
		return 0, 0, &DimensionError{Dim: "grid height", Value: pixelHeight}
	}

	w, h, err := ar.Ratio()
	if err != nil {
		return 0, 0, err
	}

	width = int(math.Round(float64(pixelHeight) * float64(w) / float64(h)))
	if width <= 0 {
		return 0, 0, &DimensionError{Dim: "grid width", Value: width}
	}
	return width, pixelHeight, nil
}
