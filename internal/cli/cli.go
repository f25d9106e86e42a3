// Package cli holds the commands shared by the vulgata binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/FocuswithJustin/vulgata/core/book"
	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/core/ref"
	"github.com/FocuswithJustin/vulgata/core/sqlite"
	"github.com/FocuswithJustin/vulgata/internal/archive"
	"github.com/FocuswithJustin/vulgata/internal/config"
	"github.com/FocuswithJustin/vulgata/internal/importer"
	"github.com/FocuswithJustin/vulgata/internal/logging"
	"github.com/FocuswithJustin/vulgata/internal/site"
	"github.com/FocuswithJustin/vulgata/internal/web"
)

// Version is the release reported by the version command.
var Version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"Configuration file" default:"vulgata.yaml" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (text, json)"`

	stdout io.Writer
}

// Out returns the writer for operator messages.
func (g *Globals) Out() io.Writer {
	if g.stdout != nil {
		return g.stdout
	}
	return os.Stdout
}

// SetOut redirects operator messages, for tests and embedding.
func (g *Globals) SetOut(w io.Writer) {
	g.stdout = w
}

// load reads the configuration, applies the log flags and sets up logging.
// Logs go to stderr so stdout carries only operator messages.
func (g *Globals) load() (*config.Config, error) {
	path := g.Config
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	logging.InitLogger(logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))
	return cfg, nil
}

// BuildCmd generates the static site.
type BuildCmd struct {
	Data     string `help:"Directory of <slug>.json book files" type:"path"`
	Out      string `help:"Output directory" type:"path"`
	AssetDir string `name:"asset-dir" help:"Asset directory, relative to the output directory"`
	Template string `help:"Page template file" type:"path"`
	Escape   bool   `help:"HTML-escape book names and verse text"`
	Clean    bool   `help:"Remove page directories of previously built books first"`
	Archive  string `help:"Also pack the site into a .tar.xz or .tar.gz archive" type:"path"`
}

func (c *BuildCmd) apply(cfg *config.Config) {
	if c.Data != "" {
		cfg.DataDir = c.Data
	}
	if c.Out != "" {
		cfg.OutDir = c.Out
	}
	if c.AssetDir != "" {
		cfg.AssetDir = c.AssetDir
	}
	if c.Template != "" {
		cfg.Template = c.Template
	}
	if c.Escape {
		cfg.EscapeHTML = true
	}
	if c.Clean {
		cfg.Clean = true
	}
}

func (c *BuildCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	res, err := site.Build(context.Background(), site.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out(), "Generated successfully in %s\n", res.OutDir)

	if c.Archive != "" {
		sum, err := archive.CreateSite(res.OutDir, c.Archive)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.Out(), "Archived %s (blake3 %s)\n", c.Archive, sum)
	}
	return nil
}

// ImportCmd converts a source Bible into per-book data files.
type ImportCmd struct {
	Source  string        `arg:"" optional:"" help:"URL or .json, .json.xz, .db, .sqlite or .xml file (default from config)"`
	Data    string        `help:"Directory to write <slug>.json files to" type:"path"`
	Timeout time.Duration `help:"Download timeout, 0 for none"`
}

func (c *ImportCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Source != "" {
		cfg.Source = c.Source
	}
	if c.Data != "" {
		cfg.DataDir = c.Data
	}
	if c.Timeout > 0 {
		cfg.FetchTimeout = c.Timeout.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, err = importer.Run(context.Background(), importer.Options{
		Source:  cfg.Source,
		DataDir: cfg.DataDir,
		Timeout: cfg.GetFetchTimeout(),
	}, g.Out())
	return err
}

// ServeCmd builds the site and serves it locally.
type ServeCmd struct {
	Addr  string `help:"Listen address" default:"127.0.0.1:8000"`
	Watch bool   `short:"w" help:"Rebuild and reload pages when data or the template change"`
	Data  string `help:"Directory of <slug>.json book files" type:"path"`
	Out   string `help:"Output directory" type:"path"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	(&BuildCmd{Data: c.Data, Out: c.Out}).apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.New(web.Options{Site: site.OptionsFromConfig(cfg), Addr: c.Addr, Watch: c.Watch})
	return srv.ListenAndServe(ctx, func(addr string) {
		fmt.Fprintf(g.Out(), "Serving %s at http://%s/\n", cfg.OutDir, addr)
	})
}

// ShowCmd prints a passage from the data directory.
type ShowCmd struct {
	Ref  []string `arg:"" help:"Reference such as 'genesis 1:1-3' or 'Canticum Canticorum 2'"`
	Data string   `help:"Directory of <slug>.json book files" type:"path"`
}

func (c *ShowCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Data != "" {
		cfg.DataDir = c.Data
	}

	r, err := ref.Parse(strings.Join(c.Ref, " "))
	if err != nil {
		return errors.NewValidation("", "ref", err.Error())
	}
	lib, err := book.LoadDir(cfg.DataDir)
	if err != nil {
		return err
	}
	return Show(g.Out(), lib, r)
}

// Show writes the passage r selects. A book alone prints its chapter count; a
// chapter prints every verse as "n text".
func Show(w io.Writer, lib *book.Library, r *ref.Ref) error {
	rec, ok := lib.Find(r.Book)
	if !ok {
		return errors.NewNotFound("book", r.Book)
	}
	if r.Chapter == 0 {
		fmt.Fprintf(w, "%s (%s): %d chapter(s)\n", rec.Name, rec.Slug, rec.Chapters)
		return nil
	}

	verses, ok := rec.Data[r.Chapter]
	if !ok {
		return errors.NewNotFound("chapter", r.String())
	}
	if r.Verse > len(verses) {
		return errors.NewNotFound("verse", r.String())
	}

	fmt.Fprintf(w, "%s %d\n", rec.Name, r.Chapter)
	for i, text := range verses {
		if n := i + 1; r.Selects(n) {
			fmt.Fprintf(w, "%d %s\n", n, text)
		}
	}
	return nil
}

// VerifyCmd checks a site archive written by "build --archive".
type VerifyCmd struct {
	Archive  string `arg:"" help:"Site archive (.tar.xz or .tar.gz)" type:"existingfile"`
	AssetDir string `name:"asset-dir" help:"Asset directory the site was built with"`
}

func (c *VerifyCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.AssetDir != "" {
		cfg.AssetDir = c.AssetDir
	}

	rep, err := archive.Verify(c.Archive, cfg.AssetDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out(), "%s: OK (%d file(s), %d book(s), blake3 %s)\n", c.Archive, rep.Files, len(rep.Books), rep.Digest)
	return nil
}

// InitCmd writes a configuration file holding the defaults.
type InitCmd struct {
	Force bool `help:"Overwrite an existing file"`
}

func (c *InitCmd) Run(g *Globals) error {
	path := g.Config
	if path == "" {
		path = config.DefaultPath
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return errors.NewValidation(path, "", "file exists; use --force to overwrite")
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(g.Out(), "Wrote %s\n", path)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(g.Out(), "vulgata version %s (sqlite driver %s, %s)\n", Version, info.DriverName, info.DriverType)
	return nil
}
