// Package cas computes the content digests vulgata records for import
// payloads and site archives.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// HashResult contains both SHA-256 and BLAKE3 digests of a payload.
type HashResult struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// Hash computes the SHA-256 hash of data.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Blake3Hash computes the BLAKE3 hash of data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Sum returns both digests of data.
func Sum(data []byte) HashResult {
	return HashResult{SHA256: Hash(data), BLAKE3: Blake3Hash(data)}
}

// SumReader hashes everything read from r in a single pass.
func SumReader(r io.Reader) (HashResult, int64, error) {
	s := sha256.New()
	b := blake3.New()
	n, err := io.Copy(io.MultiWriter(s, b), r)
	if err != nil {
		return HashResult{}, n, err
	}
	return HashResult{
		SHA256: hex.EncodeToString(s.Sum(nil)),
		BLAKE3: hex.EncodeToString(b.Sum(nil)),
	}, n, nil
}

// SumFile hashes the file at path.
func SumFile(path string) (HashResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return HashResult{}, err
	}
	defer f.Close()

	res, _, err := SumReader(f)
	if err != nil {
		return HashResult{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return res, nil
}

// WriteBlake3Sidecar writes "<hex>  <basename>\n" to path+".blake3", the
// layout b3sum --check understands, and returns the digest.
func WriteBlake3Sidecar(path string) (string, error) {
	res, err := SumFile(path)
	if err != nil {
		return "", err
	}
	line := res.BLAKE3 + "  " + filepath.Base(path) + "\n"
	if err := os.WriteFile(path+".blake3", []byte(line), 0644); err != nil {
		return "", fmt.Errorf("failed to write checksum: %w", err)
	}
	return res.BLAKE3, nil
}
