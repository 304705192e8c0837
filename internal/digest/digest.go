package digest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

// Bytes returns the hex-encoded SHA3-256 digest of data.
func Bytes(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// File returns the hex-encoded SHA3-256 digest of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Digest of user-selected files is intentional
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Short returns the first 12 characters of a digest for display.
func Short(d string) string {
	if len(d) <= 12 {
		return d
	}
	return d[:12]
}
