// Command vulgata-build regenerates the site using vulgata.yaml, or the
// defaults when it is absent. It takes no arguments; see "vulgata build" for
// flags.
package main

import (
	"fmt"
	"os"

	"github.com/FocuswithJustin/vulgata/internal/cli"
)

func main() {
	if err := (&cli.BuildCmd{}).Run(&cli.Globals{}); err != nil {
		fmt.Fprintf(os.Stderr, "vulgata-build: %v\n", err)
		os.Exit(1)
	}
}
