// Package site generates the static Vulgata site from a data directory of
// book files.
package site

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/vulgata/core/book"
	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/core/render"
	"github.com/FocuswithJustin/vulgata/internal/config"
	"github.com/FocuswithJustin/vulgata/internal/logging"
	"github.com/FocuswithJustin/vulgata/internal/validation"
)

// ManifestName is the file name of the book manifest inside the asset dir.
const ManifestName = "books.json"

// Options configures a build.
type Options struct {
	DataDir  string
	OutDir   string
	AssetDir string
	// Template is a page template path; empty selects the built-in template.
	Template string

	TitlePrefix string
	HomeTitle   string
	HomePrompt  string

	// Escape HTML-escapes book names, verse text and the home prompt.
	Escape bool
	// Clean removes the page directories of every book listed in the
	// previous manifest before writing.
	Clean bool
}

// OptionsFromConfig maps the loaded configuration onto build options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataDir:     cfg.DataDir,
		OutDir:      cfg.OutDir,
		AssetDir:    cfg.AssetDir,
		Template:    cfg.Template,
		TitlePrefix: cfg.TitlePrefix,
		HomeTitle:   cfg.HomeTitle,
		HomePrompt:  cfg.HomePrompt,
		Escape:      cfg.EscapeHTML,
		Clean:       cfg.Clean,
	}
}

// Result describes a finished build.
type Result struct {
	OutDir string
	// Books is the manifest in display order.
	Books []book.Meta
	// Pages counts the chapter pages written, excluding index.html.
	Pages int
}

// Build regenerates the site: the manifest, the index page and one page per
// chapter. Any load or validation failure aborts before anything other than
// the asset directory has been created.
func Build(ctx context.Context, opts Options) (*Result, error) {
	if logging.GetRunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, logging.NewRunID())
	}
	start := time.Now()

	assetRel, err := validation.SanitizePath(opts.OutDir, opts.AssetDir)
	if err != nil {
		return nil, &errors.ValidationError{Field: "asset_dir", Message: err.Error(), Err: err}
	}
	assetDir := filepath.Join(opts.OutDir, assetRel)
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		return nil, errors.NewIO("create directory", assetDir, err)
	}

	lib, err := book.LoadDir(opts.DataDir)
	if err != nil {
		return nil, err
	}
	for _, m := range lib.List {
		if err := validation.ValidateFilename(m.Slug); err != nil {
			return nil, &errors.ValidationError{Field: "slug", Message: m.Slug + ": " + err.Error(), Err: err}
		}
	}
	ordered := lib.Ordered()

	tmpl, err := render.LoadTemplate(opts.Template)
	if err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(assetDir, ManifestName)
	if opts.Clean {
		if err := cleanPrevious(ctx, opts.OutDir, assetRel, manifestPath); err != nil {
			return nil, err
		}
	}

	manifest, err := book.Encode(ordered)
	if err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}
	if err := writeFile(ctx, manifestPath, manifest); err != nil {
		return nil, err
	}
	if err := writeStaticAssets(ctx, assetDir); err != nil {
		return nil, err
	}

	var home render.Fields
	home.Set(render.KeyTitle, opts.HomeTitle)
	home.Set(render.KeyAssetsBase, filepath.ToSlash(assetRel))
	home.Set(render.KeyRootBase, "")
	home.Set(render.KeyBookSlugJS, render.NullJS)
	home.Set(render.KeyChapterJS, render.NullJS)
	home.Set(render.KeyContentHTML, render.HomeContent(opts.HomePrompt, opts.Escape))
	if err := writeFile(ctx, filepath.Join(opts.OutDir, "index.html"), []byte(render.Render(tmpl, home))); err != nil {
		return nil, err
	}

	pages := 0
	for _, m := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := lib.BySlug[m.Slug]
		n, err := writeBook(ctx, opts, tmpl, assetRel, rec)
		if err != nil {
			return nil, err
		}
		pages += n
	}

	logging.InfoContext(ctx, "build_complete",
		"out_dir", opts.OutDir,
		"books", len(ordered),
		"pages", pages,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{OutDir: opts.OutDir, Books: ordered, Pages: pages}, nil
}

// writeBook writes <out>/<slug>/<n>.html for every chapter of rec, in
// ascending chapter order.
func writeBook(ctx context.Context, opts Options, tmpl, assetRel string, rec *book.Record) (int, error) {
	dir := filepath.Join(opts.OutDir, rec.Slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.NewIO("create directory", dir, err)
	}

	assetsBase := "../" + filepath.ToSlash(assetRel)
	slugJS := render.JSString(rec.Slug)

	nums := rec.Data.Numbers()
	for _, n := range nums {
		var f render.Fields
		f.Set(render.KeyTitle, opts.TitlePrefix+" — "+rec.Name+" "+strconv.Itoa(n))
		f.Set(render.KeyAssetsBase, assetsBase)
		f.Set(render.KeyRootBase, "../")
		f.Set(render.KeyBookSlugJS, slugJS)
		f.Set(render.KeyChapterJS, n)
		f.Set(render.KeyContentHTML, render.ChapterContent(rec.Name, n, rec.Data[n], opts.Escape))

		path := filepath.Join(dir, strconv.Itoa(n)+".html")
		if err := writeFile(ctx, path, []byte(render.Render(tmpl, f))); err != nil {
			return 0, err
		}
	}
	return len(nums), nil
}

// cleanPrevious removes <out>/<slug> for every slug in the manifest left by
// the previous build. A missing or unreadable manifest removes nothing, and
// the directory holding the assets is never removed.
func cleanPrevious(ctx context.Context, outDir, assetRel, manifestPath string) error {
	assetRoot := strings.SplitN(filepath.ToSlash(assetRel), "/", 2)[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewIO("read", manifestPath, err)
	}

	var previous []book.Meta
	if err := json.Unmarshal(data, &previous); err != nil {
		logging.WarnContext(ctx, "ignoring unreadable manifest", "path", manifestPath, "error", err)
		return nil
	}
	for _, m := range previous {
		if validation.ValidateFilename(m.Slug) != nil || m.Slug == assetRoot {
			logging.WarnContext(ctx, "skipping unsafe slug in previous manifest", "slug", m.Slug)
			continue
		}
		dir := filepath.Join(outDir, m.Slug)
		if err := os.RemoveAll(dir); err != nil {
			return errors.NewIO("remove", dir, err)
		}
		logging.DebugContext(ctx, "stale_pages_removed", "path", dir)
	}
	return nil
}

// writeStaticAssets copies the embedded client files into the asset dir,
// leaving existing files untouched so they can be customized.
func writeStaticAssets(ctx context.Context, assetDir string) error {
	static := render.StaticAssets()
	return fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		dest := filepath.Join(assetDir, filepath.FromSlash(path))
		if _, err := os.Stat(dest); err == nil {
			return nil
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return errors.NewIO("create directory", filepath.Dir(dest), err)
		}
		return writeFile(ctx, dest, data)
	})
}

func writeFile(ctx context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	logging.PageWritten(ctx, path, "bytes", len(data))
	return nil
}
