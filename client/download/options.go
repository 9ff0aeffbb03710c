package download

import (
	"errors"
	"hash"
	"path/filepath"
	"strings"
)

// Option defines optional settings for storing a download.
type Option func(*options) error

type options struct {
	checksum *checksumVerifier
	logging  bool
	fileName string
}

// WithChecksum enables checksum validation of the downloaded file.
// h is a hash.Hash instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}
		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}
		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

// WithProgressLogging logs transfer progress at most once per second.
func WithProgressLogging() Option {
	return func(opts *options) error {
		opts.logging = true
		return nil
	}
}

// WithFileName sets the base name of the stored file instead of deriving
// it from the URL. It must not contain path separators.
func WithFileName(name string) Option {
	return func(opts *options) error {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
			return errors.New("file name must be a plain base name")
		}
		opts.fileName = name
		return nil
	}
}

// FileName returns the name configured via WithFileName, or fallback.
func FileName(fallback string, optFns ...Option) (string, error) {
	opts, err := apply(optFns)
	if err != nil {
		return "", err
	}
	if opts.fileName != "" {
		return opts.fileName, nil
	}
	return fallback, nil
}

func apply(optFns []Option) (options, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return options{}, err
		}
	}
	return opts, nil
}
