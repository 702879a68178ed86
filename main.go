package main

import (
	"github.com/alecthomas/kong"

	"droscher.com/WineLovers/cmd"
)

func main() {
	ctx := kong.Parse(&cmd.CLI, kong.Name("Wine Lovers"), kong.Description("WineLovers is a faceted wine catalog search service."))
	err := ctx.Run(&cmd.Context{Debug: cmd.CLI.Debug})
	ctx.FatalIfErrorf(err)
}
