package importer

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/internal/logging"
)

// Fetch performs a single GET of url and returns the body. A non-2xx status
// is a *errors.FetchError carrying the status code. A zero timeout leaves
// the request bounded only by ctx.
func Fetch(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errors.FetchError{URL: url, Err: err}
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &errors.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.FetchError{URL: url, Status: resp.StatusCode, Err: err}
	}

	logging.HTTPRequestContext(ctx, http.MethodGet, url, resp.StatusCode, time.Since(start),
		"bytes", len(body),
	)
	return body, nil
}

// FetchDocument fetches url and decodes the body as a Document.
func FetchDocument(ctx context.Context, client *http.Client, url string, timeout time.Duration) (*Document, error) {
	body, err := Fetch(ctx, client, url, timeout)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(body, url)
}
