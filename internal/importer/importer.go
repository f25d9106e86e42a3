package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/FocuswithJustin/vulgata/internal/logging"
)

// Result summarizes an import run.
type Result struct {
	DataDir string
	Books   int
	Files   int
}

// Run reads opts.Source, converts it and writes the book files, printing
// operator progress to out.
func Run(ctx context.Context, opts Options, out io.Writer) (*Result, error) {
	if logging.GetRunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, logging.NewRunID())
	}

	if IsURL(opts.Source) {
		fmt.Fprintf(out, "Downloading %s...\n", opts.Source)
	} else {
		fmt.Fprintf(out, "Reading %s...\n", opts.Source)
	}
	doc, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "Converting and writing per book...")
	books := Convert(ctx, doc)
	n, err := WriteBooks(ctx, opts.DataDir, books)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Wrote %d file(s) to %s\n", n, opts.DataDir)

	logging.InfoContext(ctx, "import_complete",
		"source", opts.Source,
		"books", len(books),
		"files", n,
	)
	return &Result{DataDir: opts.DataDir, Books: len(books), Files: n}, nil
}
