package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/vulgata/core/book"
	"github.com/FocuswithJustin/vulgata/core/cas"
	"github.com/FocuswithJustin/vulgata/core/errors"
)

func makeSite(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "docs")
	files := map[string]string{
		"index.html":        "<html>index</html>",
		"assets/books.json": "[]",
		"assets/app.js":     "// app",
		"genesis/1.html":    "<html>1</html>",
		"genesis/2.html":    "<html>2</html>",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestCreate_LexicalOrder(t *testing.T) {
	for _, ext := range []string{".tar.xz", ".tar.gz"} {
		t.Run(ext, func(t *testing.T) {
			src := makeSite(t)
			dst := filepath.Join(t.TempDir(), "site"+ext)
			if err := Create(src, dst, "site"); err != nil {
				t.Fatalf("Create: %v", err)
			}

			names, err := List(dst)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{
				"site/assets/",
				"site/assets/app.js",
				"site/assets/books.json",
				"site/genesis/",
				"site/genesis/1.html",
				"site/genesis/2.html",
				"site/index.html",
			}
			if diff := cmp.Diff(want, names); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}

			data, err := ReadFile(dst, "genesis/2.html")
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if string(data) != "<html>2</html>" {
				t.Errorf("ReadFile = %q", data)
			}
		})
	}
}

func TestCreate_Reproducible(t *testing.T) {
	src := makeSite(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tar.xz")
	b := filepath.Join(dir, "b.tar.xz")
	if err := Create(src, a, "site"); err != nil {
		t.Fatal(err)
	}
	if err := Create(src, b, "site"); err != nil {
		t.Fatal(err)
	}
	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if !bytes.Equal(da, db) {
		t.Error("archives of the same tree differ")
	}
}

func TestCreate_SkipsItself(t *testing.T) {
	src := makeSite(t)
	dst := filepath.Join(src, "site.tar.gz")
	if err := Create(src, dst, "site"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	names, err := List(dst)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if strings.HasSuffix(n, "site.tar.gz") {
			t.Errorf("archive contains itself: %s", n)
		}
	}
}

func TestCreate_Errors(t *testing.T) {
	src := makeSite(t)
	if err := Create(src, filepath.Join(t.TempDir(), "site.zip"), "site"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if err := Create(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "x.tar.xz"), "x"); err == nil {
		t.Error("expected error for missing source")
	}
	rar := filepath.Join(t.TempDir(), "x.rar")
	if err := os.WriteFile(rar, []byte("Rar!"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(rar); !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("Open(x.rar) = %v, want unsupported", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "none.tar.xz"), "index.html"); err == nil {
		t.Error("expected error for missing archive")
	}
}

func TestCreateSite(t *testing.T) {
	src := makeSite(t)
	dst := filepath.Join(t.TempDir(), "out", "vulgata-site.tar.xz")

	digest, err := CreateSite(src, dst)
	if err != nil {
		t.Fatalf("CreateSite: %v", err)
	}

	sum, err := cas.SumFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if digest != sum.BLAKE3 {
		t.Errorf("digest = %s, want %s", digest, sum.BLAKE3)
	}
	sidecar, err := os.ReadFile(dst + ".blake3")
	if err != nil {
		t.Fatal(err)
	}
	if want := digest + "  vulgata-site.tar.xz\n"; string(sidecar) != want {
		t.Errorf("sidecar = %q, want %q", sidecar, want)
	}

	names, err := List(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 || !strings.HasPrefix(names[0], "vulgata-site/") {
		t.Errorf("entries should live under vulgata-site/: %v", names)
	}
}

func TestReadFile_NotFound(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "site.tar.gz")
	if err := Create(makeSite(t), dst, "site"); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(dst, "exodus/1.html"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("ReadFile(missing) = %v, want not found", err)
	}
}

func TestVerify(t *testing.T) {
	src := makeSite(t)
	manifest := `[{"name":"Genesis","slug":"genesis","chapters":2}]`
	if err := os.WriteFile(filepath.Join(src, "assets", "books.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(t.TempDir(), "site.tar.xz")
	digest, err := CreateSite(src, dst)
	if err != nil {
		t.Fatal(err)
	}

	rep, err := Verify(dst, "assets")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rep.Digest != digest || rep.Files != 5 {
		t.Errorf("Report = %+v", rep)
	}
	if diff := cmp.Diff([]book.Meta{{Name: "Genesis", Slug: "genesis", Chapters: 2}}, rep.Books); diff != "" {
		t.Errorf("Books mismatch (-want +got):\n%s", diff)
	}

	if _, err := Verify(dst, "static"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Verify(wrong asset dir) = %v, want not found", err)
	}

	if err := os.WriteFile(dst+".blake3", []byte("00  site.tar.xz\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(dst, "assets"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Verify(bad checksum) = %v, want invalid input", err)
	}
}

func TestVerify_MissingPages(t *testing.T) {
	src := makeSite(t)
	manifest := `[{"name":"Genesis","slug":"genesis","chapters":3}]`
	if err := os.WriteFile(filepath.Join(src, "assets", "books.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(t.TempDir(), "site.tar.gz")
	if _, err := CreateSite(src, dst); err != nil {
		t.Fatal(err)
	}

	_, err := Verify(dst, "assets")
	var vErr *errors.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "genesis" {
		t.Errorf("Verify = %v, want validation error for genesis", err)
	}
}
