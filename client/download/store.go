package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Store streams body to a temp file inside dir and renames it to
// dir/name on success. report, if non-nil, receives the transferred
// fraction after every write. On any error the temp file is removed.
func Store(ctx context.Context, body io.Reader, contentLength int64, dir, name string, logger *slog.Logger, report func(float64), optFns ...Option) (string, error) {
	opts, err := apply(optFns)
	if err != nil {
		return "", fmt.Errorf("applying option: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}

	body = &contextReader{ctx: ctx, r: body}

	file, err := os.CreateTemp(dir, ".netclient-dl-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Error("failed to remove temp file", "error", err)
			}
		}
	}()

	var writer io.Writer = file
	if opts.checksum != nil {
		writer = io.MultiWriter(writer, opts.checksum)
	}

	pw := &progressWriter{
		w:         writer,
		report:    report,
		total:     contentLength,
		startTime: time.Now(),
	}
	if opts.logging {
		pw.logger = logger
	}

	n, err := io.Copy(pw, body)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
		}
		return "", fmt.Errorf("copying file body: %w", err)
	}

	if contentLength >= 0 && n != contentLength {
		return "", &Error{
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", contentLength, n),
		}
	}

	if err := opts.checksum.Verify(); err != nil {
		return "", err
	}

	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("syncing temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(file.Name(), dest); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMoveFailed, err)
	}
	successful = true

	return dest, nil
}

// contextReader stops a copy as soon as ctx ends.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
