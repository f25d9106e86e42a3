// Package archive packs a generated site into a reproducible compressed tar
// file and reads such archives back for verification.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/vulgata/core/cas"
)

// ModTime is stamped on every entry so that identical sites produce
// identical archives.
var ModTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Create packs srcDir into dstPath, compressing with xz for .tar.xz and gzip
// for .tar.gz. Entries are named baseDir/<relative path>, in lexical order.
// dstPath itself is skipped when it lies inside srcDir.
func Create(srcDir, dstPath, baseDir string) error {
	var newCompressor func(io.Writer) (io.WriteCloser, error)
	switch {
	case strings.HasSuffix(dstPath, ".tar.xz"):
		newCompressor = func(w io.Writer) (io.WriteCloser, error) { return xz.NewWriter(w) }
	case strings.HasSuffix(dstPath, ".tar.gz"):
		newCompressor = func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }
	default:
		return fmt.Errorf("unsupported archive format: %s", dstPath)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	skip, err := filepath.Abs(dstPath)
	if err != nil {
		return err
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer outFile.Close()

	cw, err := newCompressor(outFile)
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}
	tw := tar.NewWriter(cw)

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == skip || abs == skip+".blake3" {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = baseDir + "/" + filepath.ToSlash(relPath)
		if d.IsDir() {
			header.Name += "/"
		}
		header.ModTime = ModTime
		header.AccessTime = time.Time{}
		header.ChangeTime = time.Time{}
		header.Uid, header.Gid = 0, 0
		header.Uname, header.Gname = "", ""
		header.Format = tar.FormatPAX

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("failed to finish compression: %w", err)
	}
	return outFile.Close()
}

// CreateSite archives the generated site and writes a BLAKE3 checksum file
// next to it. The base directory inside the archive is derived from dstPath
// by dropping the .tar.xz or .tar.gz suffix. Returns the hex digest.
func CreateSite(srcDir, dstPath string) (string, error) {
	baseDir := filepath.Base(strings.TrimSuffix(strings.TrimSuffix(dstPath, ".tar.xz"), ".tar.gz"))
	if err := Create(srcDir, dstPath, baseDir); err != nil {
		return "", err
	}
	return cas.WriteBlake3Sidecar(dstPath)
}
