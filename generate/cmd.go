// Package generate implements the prompt-to-pixel-art command: ask the
// remote service for an image, quantize it, and save the result.
package generate

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pixelsmith/codec"
	"pixelsmith/genai"
	"pixelsmith/quant"
	"pixelsmith/swatch"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Prompt   string `help:"Text prompt describing the artwork" xor:"source"`
	Random   bool   `help:"Ask the generation service for a creative prompt" xor:"source"`
	Aspect   string `help:"Aspect ratio of the target grid" enum:"1:1,3:4,4:3,16:9,9:16" default:"1:1"`
	Height   int    `help:"Grid height in cells" enum:"64,128,256,512" default:"128"`
	Out      string `help:"Output PNG path" type:"path" default:"pixelsmith.png"`
	Swatches int    `help:"Number of suggested palette colors to derive" default:"8"`
	Palette  string `help:"Write the suggested palette as a RIFF PAL file" type:"path"`
	APIKey   string `help:"Generation service API key" env:"PIXELSMITH_API_KEY"`
	BaseURL  string `help:"Generation service base URL" default:"${genai_base_url}"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if !c.Random && strings.TrimSpace(c.Prompt) == "" {
		return fmt.Errorf("either --prompt or --random is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("an API key is required (flag --api-key or PIXELSMITH_API_KEY)")
	}
	if _, _, err := quant.GridSize(c.Height, quant.AspectRatio(c.Aspect)); err != nil {
		return fmt.Errorf("invalid grid: %w", err)
	}
	return nil
}

func (c *CLICmd) Run() error {
	ctx := context.Background()

	client := genai.New(c.APIKey)
	if c.BaseURL != "" {
		client.BaseURL = c.BaseURL
	}

	prompt := c.Prompt
	if c.Random {
		var err error
		slog.Info("requesting prompt")
		if prompt, err = client.GeneratePrompt(ctx); err != nil {
			return err
		}
		slog.Info("got prompt", "prompt", prompt)
	}

	logger := slog.Default().With("prompt", prompt, "aspect", c.Aspect)

	logger.Info("requesting image")
	data, err := client.GenerateImage(ctx, prompt, quant.AspectRatio(c.Aspect))
	if err != nil {
		return err
	}

	img, err := codec.Decode(data)
	if err != nil {
		return err
	}

	gridWidth, gridHeight, err := quant.GridSize(c.Height, quant.AspectRatio(c.Aspect))
	if err != nil {
		return err
	}

	logger.Info("quantizing", "width", gridWidth, "height", gridHeight)
	grid, err := quant.Resample(img, gridWidth, gridHeight)
	if err != nil {
		return err
	}

	if c.Swatches > 0 {
		pal := swatch.Extract(grid, c.Swatches)
		hexes := make([]string, 0, len(pal))
		for _, col := range pal {
			hexes = append(hexes, swatch.Hex(col))
		}
		logger.Info("suggested palette", "colors", hexes)

		if c.Palette != "" {
			if err := writePalette(c.Palette, pal); err != nil {
				return err
			}
		}
	}

	out, err := codec.Encode(grid)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, out, 0o644); err != nil {
		return fmt.Errorf("could not write destination file %q: %w", c.Out, err)
	}

	logger.Info("saved", "file", c.Out, "width", gridWidth, "height", gridHeight)
	return nil
}

func writePalette(path string, pal []color.RGBA) (err error) {
	palFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create palette file %q: %w", path, err)
	}
	defer func() {
		if closeErr := palFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close palette file %q: %w", path, closeErr)
		}
	}()

	if err = swatch.WritePAL(palFile, pal); err != nil {
		return fmt.Errorf("could not write palette file %q: %w", path, err)
	}
	slog.Info("saved palette", "file", filepath.Base(path), "colors", len(pal))
	return nil
}
