// Command vulgata-import fetches the configured source and writes one data
// file per book. It takes no arguments; see "vulgata import" for flags.
package main

import (
	"fmt"
	"os"

	"github.com/FocuswithJustin/vulgata/internal/cli"
)

func main() {
	if err := (&cli.ImportCmd{}).Run(&cli.Globals{}); err != nil {
		fmt.Fprintf(os.Stderr, "vulgata-import: %v\n", err)
		os.Exit(1)
	}
}
