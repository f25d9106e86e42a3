package archive

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/vulgata/core/book"
	"github.com/FocuswithJustin/vulgata/core/cas"
	"github.com/FocuswithJustin/vulgata/core/errors"
)

// Reader reads the regular files of a site archive.
type Reader struct {
	tr   *tar.Reader
	file *os.File
	gz   *gzip.Reader
}

// Open opens a .tar.xz or .tar.gz site archive.
func Open(archivePath string) (*Reader, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.NewIO("open archive", archivePath, err)
	}

	r := &Reader{file: f}
	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		xzr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, errors.NewParse("XZ", archivePath, err)
		}
		r.tr = tar.NewReader(xzr)
	case strings.HasSuffix(archivePath, ".tar.gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewParse("gzip", archivePath, err)
		}
		r.gz = gzr
		r.tr = tar.NewReader(gzr)
	default:
		f.Close()
		return nil, errors.NewUnsupported("archive format", archivePath)
	}
	return r, nil
}

// Close releases the archive file.
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.file.Close()
}

// Each calls fn for every regular file, in stored order, with its name
// relative to the archive's base directory. Returning io.EOF from fn stops the
// walk without error.
func (r *Reader) Each(fn func(name string, content io.Reader) error) error {
	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read archive entry")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(stripBase(hdr.Name), r.tr); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// stripBase drops the leading base directory CreateSite puts every entry in.
func stripBase(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Walk opens archivePath and calls fn for every regular file.
func Walk(archivePath string, fn func(name string, content io.Reader) error) error {
	r, err := Open(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Each(fn)
}

// List returns the full entry names of the archive in stored order,
// directories included.
func List(archivePath string) ([]string, error) {
	r, err := Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read archive entry")
		}
		names = append(names, hdr.Name)
	}
}

// ReadFile returns the content of the file stored as name, relative to the
// base directory.
func ReadFile(archivePath, name string) ([]byte, error) {
	var content []byte
	found := false
	err := Walk(archivePath, func(entry string, r io.Reader) error {
		if entry != name {
			return nil
		}
		found = true
		var err error
		content, err = io.ReadAll(r)
		if err != nil {
			return err
		}
		return io.EOF
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound("archive entry", name)
	}
	return content, nil
}

// Report describes a verified site archive.
type Report struct {
	Digest string
	Files  int
	Books  []book.Meta
}

// Verify checks a site archive against its .blake3 checksum file, then checks
// that it holds index.html, the manifest under assetDir and one page per
// chapter of every listed book.
func Verify(archivePath, assetDir string) (*Report, error) {
	sum, err := cas.SumFile(archivePath)
	if err != nil {
		return nil, errors.NewIO("hash archive", archivePath, err)
	}
	sidecar, err := os.ReadFile(archivePath + ".blake3")
	if err != nil {
		return nil, errors.NewIO("read checksum", archivePath+".blake3", err)
	}
	fields := strings.Fields(string(sidecar))
	if len(fields) == 0 || fields[0] != sum.BLAKE3 {
		return nil, errors.NewValidation(archivePath, "blake3", "checksum does not match archive")
	}

	manifestName := path.Join(path.Clean(strings.ReplaceAll(assetDir, "\\", "/")), "books.json")
	pages := make(map[string]int)
	rep := &Report{Digest: sum.BLAKE3}
	var manifest []byte
	hasIndex := false

	err = Walk(archivePath, func(name string, r io.Reader) error {
		rep.Files++
		switch {
		case name == "index.html":
			hasIndex = true
		case name == manifestName:
			var err error
			manifest, err = io.ReadAll(r)
			return err
		case strings.HasSuffix(name, ".html") && strings.Count(name, "/") == 1:
			pages[path.Dir(name)]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !hasIndex {
		return nil, errors.NewNotFound("archive entry", "index.html")
	}
	if manifest == nil {
		return nil, errors.NewNotFound("archive entry", manifestName)
	}
	if err := json.Unmarshal(manifest, &rep.Books); err != nil {
		return nil, errors.NewParse("JSON", manifestName, err)
	}
	for _, m := range rep.Books {
		if pages[m.Slug] != m.Chapters {
			return nil, errors.NewValidation(archivePath, m.Slug,
				fmt.Sprintf("manifest lists %d chapter(s) but archive holds %d page(s)", m.Chapters, pages[m.Slug]))
		}
	}
	return rep, nil
}
