package importer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/vulgata/core/cas"
	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/internal/logging"
	"github.com/FocuswithJustin/vulgata/internal/validation"
)

// Kind identifies how a source location is read.
type Kind string

const (
	KindURL    Kind = "url"
	KindJSON   Kind = "json"
	KindJSONXZ Kind = "json.xz"
	KindSQLite Kind = "sqlite"
	KindXML    Kind = "xml"
)

// Options configures Open and Run.
type Options struct {
	// Source is an http(s) URL or a local .json, .json.xz, .db/.sqlite or .xml file.
	Source string
	// DataDir receives the <slug>.json files written by Run.
	DataDir string
	// Timeout bounds the download of URL sources. Zero means no timeout.
	Timeout time.Duration
	// Client is used for URL sources; nil means http.DefaultClient.
	Client *http.Client
}

// IsURL reports whether source is fetched over HTTP.
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// DetectKind classifies source. Local files are sniffed as well as judged by
// extension, so a mislabelled file is rejected before parsing.
func DetectKind(source string) (Kind, error) {
	if IsURL(source) {
		return KindURL, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return "", errors.NewIO("open source", source, err)
	}
	defer f.Close()

	ft, err := validation.DetectFileType(f, source)
	if err != nil {
		return "", errors.NewUnsupported("import source "+source, err.Error())
	}
	switch ft {
	case validation.FileTypeJSON:
		return KindJSON, nil
	case validation.FileTypeJSONXZ:
		return KindJSONXZ, nil
	case validation.FileTypeSQLite:
		return KindSQLite, nil
	case validation.FileTypeXML:
		return KindXML, nil
	default:
		return "", errors.NewUnsupported("import source "+source, "expected a URL or a .json, .json.xz, .db, .sqlite or .xml file")
	}
}

// Open reads opts.Source into a Document, whatever its kind. The SHA-256 and
// BLAKE3 digests of the raw payload are logged for provenance.
func Open(ctx context.Context, opts Options) (*Document, error) {
	kind, err := DetectKind(opts.Source)
	if err != nil {
		return nil, err
	}

	if kind == KindSQLite {
		sum, err := cas.SumFile(opts.Source)
		if err != nil {
			return nil, errors.NewIO("read source", opts.Source, err)
		}
		logSource(ctx, opts.Source, kind, sum)
		return readSQLite(ctx, opts.Source)
	}

	var payload []byte
	if kind == KindURL {
		payload, err = Fetch(ctx, opts.Client, opts.Source, opts.Timeout)
	} else {
		payload, err = os.ReadFile(opts.Source)
		if err != nil {
			err = errors.NewIO("read source", opts.Source, err)
		}
	}
	if err != nil {
		return nil, err
	}
	logSource(ctx, opts.Source, kind, cas.Sum(payload))

	switch kind {
	case KindJSONXZ:
		data, err := decompressXZ(payload)
		if err != nil {
			return nil, errors.NewParse("XZ", opts.Source, err)
		}
		return DecodeDocument(data, opts.Source)
	case KindXML:
		return readZefania(payload, opts.Source)
	default:
		return DecodeDocument(payload, opts.Source)
	}
}

func decompressXZ(payload []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func logSource(ctx context.Context, source string, kind Kind, sum cas.HashResult) {
	logging.InfoContext(ctx, "source_loaded",
		"source", source,
		"kind", string(kind),
		"sha256", sum.SHA256,
		"blake3", sum.BLAKE3,
	)
}
