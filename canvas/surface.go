// Package canvas maintains a live pixel-addressable bitmap and maps
// pointer input in display space onto single backing-store cells.
package canvas

import (
	"errors"
	"image"
	"image/color"
	"math"

	"pixelsmith/codec"
)

var errNoBitmap = errors.New("no bitmap loaded")

// Surface is a grid-aligned paint surface. The backing store always
// equals the bitmap's true pixel dimensions; the display size is a
// presentation-layer value and the two are never conflated when
// resolving input coordinates.
type Surface struct {
	img      *image.RGBA
	backingW int
	backingH int
	displayW int
	displayH int
	scale    int
	active   color.RGBA
	stroking bool
}

// New wraps img in a paint surface. The display size follows the scale
// policy for the given maximum footprint and preferred magnification.
// A nil or zero-size bitmap yields an inert surface that ignores all
// input until a bitmap is loaded.
func New(img *image.RGBA, maxFootprint, preferredScale int) *Surface {
	s := &Surface{
		active: color.RGBA{A: 0xFF},
	}
	s.Load(img, maxFootprint, preferredScale)
	return s
}

// Load replaces the backing bitmap wholesale and recomputes the display
// mapping. Any in-progress stroke is abandoned.
func (s *Surface) Load(img *image.RGBA, maxFootprint, preferredScale int) {
	s.stroking = false
	s.img = img
	s.backingW = 0
	s.backingH = 0
	s.displayW = 0
	s.displayH = 0
	s.scale = 0

	if img == nil {
		return
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return
	}

	s.backingW = bounds.Dx()
	s.backingH = bounds.Dy()
	s.scale = DisplayScale(s.backingW, s.backingH, maxFootprint, preferredScale)
	s.displayW = s.backingW * s.scale
	s.displayH = s.backingH * s.scale
}

// DisplayScale picks an integer on-screen magnification for a bitmap of
// natural size (nw, nh): the preferred factor, shrunk until both axes
// fit the footprint, floored, and never below 1 so every backing pixel
// maps to a whole number of display pixels.
func DisplayScale(nw, nh, maxFootprint, preferred int) int {
	if nw <= 0 || nh <= 0 {
		return 1
	}

	scale := math.Min(float64(preferred), float64(maxFootprint)/float64(nw))
	scale = math.Min(scale, float64(maxFootprint)/float64(nh))
	if scale < 1 {
		return 1
	}
	return int(math.Floor(scale))
}

// ResolveCell converts a position in display space, relative to the
// surface's top-left corner, to backing-store cell indices. Each axis
// scales by its own display/backing ratio; the two ratios are
// independent because the display size need not share the backing
// store's aspect ratio after a layout reflow.
func (s *Surface) ResolveCell(displayX, displayY float64) (cx, cy int, ok bool) {
	if s.backingW <= 0 || s.backingH <= 0 || s.displayW <= 0 || s.displayH <= 0 {
		return 0, 0, false
	}

	cx = int(math.Floor(displayX / float64(s.displayW) * float64(s.backingW)))
	cy = int(math.Floor(displayY / float64(s.displayH) * float64(s.backingH)))
	if cx < 0 || cx >= s.backingW || cy < 0 || cy >= s.backingH {
		return 0, 0, false
	}
	return cx, cy, true
}

// PointerDown begins a stroke and fills the cell under the pointer. A
// down event while already stroking stays in the stroke and fills.
func (s *Surface) PointerDown(displayX, displayY float64) {
	s.stroking = true
	s.paintAt(displayX, displayY)
}

// PointerMove fills the cell under the pointer while a stroke is
// active; outside a stroke it is ignored.
func (s *Surface) PointerMove(displayX, displayY float64) {
	if !s.stroking {
		return
	}
	s.paintAt(displayX, displayY)
}

// PointerUp ends the active stroke.
func (s *Surface) PointerUp() {
	s.stroking = false
}

// PointerCancel ends the active stroke without a release.
func (s *Surface) PointerCancel() {
	s.stroking = false
}

func (s *Surface) paintAt(displayX, displayY float64) {
	cx, cy, ok := s.ResolveCell(displayX, displayY)
	if !ok {
		return
	}
	s.Fill(cx, cy, s.active)
}

// Fill sets exactly one cell to a flat, fully opaque color. Coordinates
// outside the backing store are silently ignored; pointer input
// routinely lands slightly out of bounds during normal use.
func (s *Surface) Fill(cx, cy int, c color.RGBA) {
	if s.img == nil || cx < 0 || cx >= s.backingW || cy < 0 || cy >= s.backingH {
		return
	}
	c.A = 0xFF
	s.img.SetRGBA(cx, cy, c)
}

// SelectColor sets the active color for all subsequent fills. Cells
// already painted keep their color.
func (s *Surface) SelectColor(c color.RGBA) {
	s.active = c
}

// ActiveColor returns the color applied by the next fill.
func (s *Surface) ActiveColor() color.RGBA {
	return s.active
}

// Stroking reports whether a stroke is in progress.
func (s *Surface) Stroking() bool {
	return s.stroking
}

// Finalize serializes the current backing bitmap to the portable
// encoded form, reflecting every fill applied so far.
func (s *Surface) Finalize() ([]byte, error) {
	if s.img == nil {
		return nil, &codec.EncodeError{Err: errNoBitmap}
	}
	return codec.Encode(s.img)
}

// Image exposes the live backing bitmap.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// BackingSize returns the true pixel dimensions of the bitmap.
func (s *Surface) BackingSize() (w, h int) {
	return s.backingW, s.backingH
}

// DisplaySize returns the on-screen rendered size.
func (s *Surface) DisplaySize() (w, h int) {
	return s.displayW, s.displayH
}

// Scale returns the integer display magnification, or 0 when no bitmap
// is loaded.
func (s *Surface) Scale() int {
	return s.scale
}
