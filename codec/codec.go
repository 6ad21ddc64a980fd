// Package codec converts between the editor's pixel-addressable form
// and the portable encoded form. PNG is the portable container: it is
// lossless, carries alpha and round-trips every pixel value exactly.
package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

const dataURLPrefix = "data:image/png;base64,"

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// DecodeError reports malformed or undecodable image data. Terminal for
// the generation cycle that produced it.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failed serialization to the portable form.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("could not encode image: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return len(data) >= len(pngMagic) && bytes.Equal(data[:len(pngMagic)], pngMagic)
}

// Decode reads an encoded raster into a pixel-addressable RGBA bitmap
// with zero-origin bounds. Any registered input format is accepted.
func Decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty image data")}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return ToRGBA(img), nil
}

// ToRGBA normalizes img to an RGBA bitmap anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}

	bounds := img.Bounds()
	dest := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dest, dest.Bounds(), img, bounds.Min, draw.Src)
	return dest
}

// Encode serializes img to PNG bytes.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes img to w as PNG, reusing encoder buffers across calls.
func EncodeTo(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return &EncodeError{Err: fmt.Errorf("empty bitmap: %dx%d", bounds.Dx(), bounds.Dy())}
	}

	enc := png.Encoder{
		CompressionLevel: png.BestCompression,
		BufferPool:       pngPool,
	}
	if err := enc.Encode(w, img); err != nil {
		return &EncodeError{Err: err}
	}
	return nil
}

// EncodeDataURL serializes img to a base64 PNG data URL, the form used
// as network payload.
func EncodeDataURL(img image.Image) (string, error) {
	data, err := Encode(img)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL reads a base64 PNG data URL back into a bitmap.
func DecodeDataURL(url string) (*image.RGBA, error) {
	payload, ok := strings.CutPrefix(url, dataURLPrefix)
	if !ok {
		return nil, &DecodeError{Err: fmt.Errorf("not a PNG data URL: %.32q", url)}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if !IsPNG(data) {
		return nil, &DecodeError{Err: errors.New("payload missing PNG signature")}
	}
	return Decode(data)
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
