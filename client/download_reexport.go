package client

import (
	"hash"

	"github.com/forkwallet/netclient/client/download"
)

// ————————————————————————————————————————————————————————————————————
// Type aliases – re-export user-facing types from [download].
// ————————————————————————————————————————————————————————————————————

type (
	// DownloadOption configures a single download.
	DownloadOption = download.Option

	// DownloadError wraps a sentinel error with additional detail.
	DownloadError = download.Error

	// DownloadTask represents an in-flight or completed async download.
	DownloadTask = download.Task

	// DownloadHandle identifies a registered download.
	DownloadHandle = download.Handle
)

// ————————————————————————————————————————————————————————————————————
// Sentinel errors
// ————————————————————————————————————————————————————————————————————

var (
	// ErrContentLengthMismatch indicates the byte count did not match Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch

	// ErrChecksumMismatch indicates the file checksum did not match the expected value.
	ErrChecksumMismatch = download.ErrChecksumMismatch

	// ErrDownloadCancelled indicates the download was cancelled.
	ErrDownloadCancelled = download.ErrDownloadCancelled

	// ErrMoveFailed indicates the finished file could not be moved into place.
	ErrMoveFailed = download.ErrMoveFailed
)

// ————————————————————————————————————————————————————————————————————
// Download option forwarding functions
// ————————————————————————————————————————————————————————————————————

// WithChecksum enables checksum validation of the downloaded file.
// h is a [hash.Hash] instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithProgressLogging logs transfer progress at most once per second.
func WithProgressLogging() DownloadOption { return download.WithProgressLogging() }

// WithFileName stores the download under name instead of
// "<handle>-<url base name>".
func WithFileName(name string) DownloadOption { return download.WithFileName(name) }
