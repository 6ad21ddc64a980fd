// Package pixelate implements the batch command: scan a folder of
// images and reduce each one to a pixel-art grid.
package pixelate

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"pixelsmith/canvas"
	"pixelsmith/parallel"
	"pixelsmith/quant"
	"pixelsmith/swatch"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

type CLICmd struct {
	Scan      string `help:"Source folder to scan" default:"."`
	Dest      string `help:"Destination folder for pixelated pictures. Relative to scan dir if not absolute." default:"pixelated"`
	Height    int    `help:"Grid height in cells" enum:"64,128,256,512" default:"128"`
	Aspect    string `help:"Aspect ratio of the target grid" enum:"1:1,3:4,4:3,16:9,9:16" default:"1:1"`
	Upscale   bool   `help:"Magnify the grid for crisp on-screen viewing" default:"false" group:"upscale"`
	Footprint int    `help:"Maximum footprint in pixels of the magnified output" default:"512" group:"upscale"`
	Magnify   int    `help:"Preferred per-cell magnification" default:"8" group:"upscale"`
	Swatches  int    `help:"Log this many suggested palette colors per image" default:"0"`
	Format    string `help:"Output format. If prefixed with 'unsup:' will convert only unsupported formats" enum:"same,gif,unsup:gif,jpeg,unsup:jpeg,png,unsup:png,bmp,unsup:bmp,tiff,unsup:tiff" default:"unsup:png"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if _, _, err := quant.GridSize(c.Height, quant.AspectRatio(c.Aspect)); err != nil {
		return fmt.Errorf("invalid grid: %w", err)
	}

	if c.Upscale {
		switch {
		case c.Footprint < 1:
			return fmt.Errorf("invalid footprint: %d", c.Footprint)
		case c.Magnify < 1:
			return fmt.Errorf("invalid magnification: %d", c.Magnify)
		}
	}

	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool) error {
	if err := os.MkdirAll(c.Dest, os.ModeDir); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	gridWidth, gridHeight, err := quant.GridSize(c.Height, quant.AspectRatio(c.Aspect))
	if err != nil {
		return err
	}

	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		pool.Do(func(fileName string) func() {
			return func() {
				filePath := filepath.Join(c.Scan, fileName)
				logger := slog.Default().With("file", filePath)

				imgFile, err := os.Open(filePath)
				if err != nil {
					errCount.Add(1)
					logger.Error("could not open image", "error", err)
					return
				}

				img, imgType, err := image.Decode(imgFile)
				if closeErr := imgFile.Close(); closeErr != nil {
					logger.Error("could not close image", "error", closeErr)
				}
				if err != nil {
					errCount.Add(1)
					logger.Error("could not decode image", "error", err)
					return
				}

				logger.Info("quantizing", "width", gridWidth, "height", gridHeight)
				grid, err := quant.Resample(img, gridWidth, gridHeight)
				if err != nil {
					errCount.Add(1)
					logger.Error("could not quantize image", "error", err)
					return
				}

				if c.Swatches > 0 {
					logSwatches(logger, grid, c.Swatches)
				}

				out := image.Image(grid)
				if c.Upscale {
					scale := canvas.DisplayScale(gridWidth, gridHeight, c.Footprint, c.Magnify)
					if out, err = quant.Magnify(grid, scale); err != nil {
						errCount.Add(1)
						logger.Error("could not magnify image", "scale", scale, "error", err)
						return
					}
				}

				if err = save(out, imgType, c.Format, c.Dest, fileName); err != nil {
					errCount.Add(1)
					logger.Error("could not save image", "dir", c.Dest, "error", err)
					return
				}
				processedCount.Add(1)
			}
		}(file.Name()))
	}

	pool.Wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func logSwatches(logger *slog.Logger, img image.Image, n int) {
	pal := swatch.Extract(img, n)
	hexes := make([]string, 0, len(pal))
	for _, c := range pal {
		hexes = append(hexes, swatch.Hex(c))
	}
	logger.Info("suggested palette", "colors", hexes)
}
