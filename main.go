package main

import (
	"log/slog"
	"os"

	"pixelsmith/genai"
	"pixelsmith/generate"
	"pixelsmith/parallel"
	"pixelsmith/pixelate"

	"github.com/alecthomas/kong"
)

type cli struct {
	Pixelate pixelate.CLICmd `cmd:"" help:"Reduce images in a folder to pixel-art grids"`
	Generate generate.CLICmd `cmd:"" help:"Generate an image from a prompt and reduce it to a pixel-art grid"`
	Workers  int             `help:"Number of workers for batch commands. Zero uses all CPUs." default:"1"`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("pixelsmith"),
		kong.Description("Prompt-to-pixel-art generator and grid quantizer"),
		kong.Vars{"genai_base_url": genai.DefaultBaseURL},
	)

	pool := parallel.Start(c.Workers)
	if err := kctx.Run(pool); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
