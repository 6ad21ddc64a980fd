// Package swatch derives the editor's color swatches from the artwork
// itself: a small, diverse set of colors the user paints with.
package swatch

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// kmeans needs a bounded sample set even for large bitmaps.
const maxSamples = 12000

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// Extract picks k swatch colors for img, dominant tones first, ordered
// darkest to brightest. Falls back to a k-means partition when the
// dominant-color pass yields nothing, and to the default palette when
// both fail.
func Extract(img image.Image, k int) []color.RGBA {
	if k <= 0 || img == nil {
		return nil
	}

	pal := extractDominant(img, k)
	if len(pal) == 0 {
		pal = extractKMeans(img, k)
	}
	if len(pal) == 0 {
		def := DefaultPalette()
		if k < len(def) {
			def = def[:k]
		}
		return def
	}

	sortByBrightness(pal)

	out := make([]color.RGBA, 0, len(pal))
	for _, c := range pal {
		r, g, b := c.Clamped().RGB255()
		out = append(out, color.RGBA{R: r, G: g, B: b, A: 0xFF})
	}
	return out
}

func extractDominant(img image.Image, k int) []colorful.Color {
	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: w})
	}
	return selectDiverse(weighted, k)
}

func extractKMeans(img image.Image, k int) []colorful.Color {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return nil
	}

	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		w := float64(len(c.Observations))
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col, weight: w})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse greedily picks k colors, seeding with the strongest
// candidate and then maximizing Lab-space distance to everything
// already chosen, weighted toward heavier candidates.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	if k > len(cands) {
		k = len(cands)
	}

	labs := make([][3]float64, len(cands))
	maxW := 0.0
	for i, c := range cands {
		l, a, b := c.col.Lab()
		labs[i] = [3]float64{l, a, b}
		if c.weight > maxW {
			maxW = c.weight
		}
	}
	if maxW <= 0 {
		maxW = 1
	}

	seed := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].weight > cands[seed].weight {
			seed = i
		}
	}

	chosen := []int{seed}
	taken := make([]bool, len(cands))
	taken[seed] = true

	for len(chosen) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range cands {
			if taken[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range chosen {
				d0 := labs[i][0] - labs[s][0]
				d1 := labs[i][1] - labs[s][1]
				d2 := labs[i][2] - labs[s][2]
				if d := d0*d0 + d1*d1 + d2*d2; d < minD2 {
					minD2 = d
				}
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(cands[i].weight/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		taken[bestIdx] = true
		chosen = append(chosen, bestIdx)
	}

	out := make([]colorful.Color, 0, len(chosen))
	for _, idx := range chosen {
		out = append(out, cands[idx].col)
	}
	return out
}

// sortByBrightness orders colors darkest to brightest so the first
// entry works as a background tone.
func sortByBrightness(pal []colorful.Color) {
	slices.SortFunc(pal, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		switch {
		case yi < yj:
			return -1
		case yi > yj:
			return 1
		default:
			return 0
		}
	})
}

// Hex formats a swatch for logging.
func Hex(c color.RGBA) string {
	col, _ := colorful.MakeColor(c)
	return col.Hex()
}

// DefaultPalette is the fixed swatch set used when nothing can be
// extracted from the artwork.
func DefaultPalette() []color.RGBA {
	return []color.RGBA{
		{0x00, 0x00, 0x00, 0xFF},
		{0x40, 0x40, 0x40, 0xFF},
		{0x80, 0x80, 0x80, 0xFF},
		{0xC0, 0xC0, 0xC0, 0xFF},
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xE5, 0x39, 0x35, 0xFF},
		{0xFB, 0x8C, 0x00, 0xFF},
		{0xFD, 0xD8, 0x35, 0xFF},
		{0x43, 0xA0, 0x47, 0xFF},
		{0x1E, 0x88, 0xE5, 0xFF},
		{0x8E, 0x24, 0xAA, 0xFF},
		{0x6D, 0x4C, 0x41, 0xFF},
	}
}
