package download

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore(t *testing.T) {
	content := []byte(strings.Repeat("wallet-data-", 512))
	sum := sha256.Sum256(content)
	goodSum := hex.EncodeToString(sum[:])

	testCases := map[string]struct {
		contentLength int64
		opts          []Option
		expErr        error
	}{
		"basic":           {contentLength: int64(len(content))},
		"unknownLength":   {contentLength: -1},
		"checksumPass":    {contentLength: int64(len(content)), opts: []Option{WithChecksum(sha256.New(), goodSum)}},
		"checksumFail":    {contentLength: int64(len(content)), opts: []Option{WithChecksum(sha256.New(), "deadbeef")}, expErr: ErrChecksumMismatch},
		"lengthMismatch":  {contentLength: int64(len(content)) + 10, expErr: ErrContentLengthMismatch},
		"progressLogging": {contentLength: int64(len(content)), opts: []Option{WithProgressLogging()}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			var last float64
			path, err := Store(t.Context(), bytes.NewReader(content), tc.contentLength, dir, "file.bin", slog.Default(), func(f float64) { last = f }, tc.opts...)

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("expected %v, got %v", tc.expErr, err)
				}
				assertDirEmpty(t, dir)
				return
			}
			if err != nil {
				t.Fatalf("store: %v", err)
			}

			if path != filepath.Join(dir, "file.bin") {
				t.Errorf("path = %q", path)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read stored file: %v", err)
			}
			if !bytes.Equal(got, content) {
				t.Error("stored content mismatch")
			}

			exp := 1.0
			if tc.contentLength < 0 {
				exp = 0
			}
			if last != exp {
				t.Errorf("last progress = %v, want %v", last, exp)
			}
		})
	}
}

func TestStore_Cancelled(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Store(ctx, bytes.NewReader([]byte("data")), 4, dir, "file.bin", slog.Default(), nil)
	if !errors.Is(err, ErrDownloadCancelled) {
		t.Fatalf("expected ErrDownloadCancelled, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestStore_MoveFailure(t *testing.T) {
	dir := t.TempDir()

	// A non-empty directory occupying the destination blocks the rename.
	blocker := filepath.Join(dir, "file.bin")
	if err := os.MkdirAll(filepath.Join(blocker, "child"), 0o700); err != nil {
		t.Fatal(err)
	}

	_, err := Store(t.Context(), bytes.NewReader([]byte("data")), 4, dir, "file.bin", slog.Default(), nil)
	if !errors.Is(err, ErrMoveFailed) {
		t.Fatalf("expected ErrMoveFailed, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %v", entries)
	}
}

func TestStore_ReadError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("connection reset")

	_, err := Store(t.Context(), io.MultiReader(bytes.NewReader([]byte("partial")), errReader{boom}), 100, dir, "file.bin", slog.Default(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	assertDirEmpty(t, dir)
}

func TestWithFileName(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "a/b", `a\b`} {
		if _, err := FileName("x", WithFileName(bad)); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}

	name, err := FileName("fallback", WithFileName("report.pdf"))
	if err != nil || name != "report.pdf" {
		t.Errorf("got %q, %v", name, err)
	}
	name, err = FileName("fallback")
	if err != nil || name != "fallback" {
		t.Errorf("got %q, %v", name, err)
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty dir, found %d entries", len(entries))
	}
}
