// Command vulgata builds, imports, previews and queries the static Vulgate site.
package main

import (
	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/vulgata/internal/cli"
)

// CLI defines the command-line interface for vulgata.
type CLI struct {
	cli.Globals

	Build   cli.BuildCmd   `cmd:"" help:"Generate the static site from the data directory"`
	Import  cli.ImportCmd  `cmd:"" help:"Convert a source Bible into per-book data files"`
	Serve   cli.ServeCmd   `cmd:"" help:"Build and serve the site locally"`
	Show    cli.ShowCmd    `cmd:"" help:"Print a passage from the data directory"`
	Verify  cli.VerifyCmd  `cmd:"" help:"Check a site archive against its checksum and manifest"`
	Init    cli.InitCmd    `cmd:"" help:"Write a configuration file with the defaults"`
	Version cli.VersionCmd `cmd:"" help:"Print version information"`
}

func main() {
	var c CLI
	ctx := kong.Parse(&c,
		kong.Name("vulgata"),
		kong.Description("Vulgata - static site generator for the Latin Vulgate"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&c.Globals)
	ctx.FatalIfErrorf(err)
}
