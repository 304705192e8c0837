package digest

import (
	"os"
	"path/filepath"
	"testing"
)

// TestBytes tests the digest against the SHA3-256 test vector for "abc".
func TestBytes(t *testing.T) {
	t.Parallel()

	const want = "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"
	if got := Bytes([]byte("abc")); got != want {
		t.Errorf("Bytes(abc) = %s, want %s", got, want)
	}
}

// TestFile tests that file and in-memory digests agree.
func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("matches Bytes", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "m.json")
		data := []byte(`{"format":"epsfdir-forest"}`)
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		got, err := File(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != Bytes(data) {
			t.Errorf("File() = %s, want %s", got, Bytes(data))
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()
		if _, err := File(filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

// TestShort tests digest truncation.
func TestShort(t *testing.T) {
	t.Parallel()

	if got := Short("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("Short() = %s", got)
	}
	if got := Short("abc"); got != "abc" {
		t.Errorf("Short() = %s", got)
	}
}
