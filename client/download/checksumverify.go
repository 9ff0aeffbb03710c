package download

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// checksumVerifier hashes the body as it streams to disk.
type checksumVerifier struct {
	hash     hash.Hash
	expected string
}

func (v *checksumVerifier) Write(p []byte) (int, error) {
	return v.hash.Write(p)
}

// Verify compares the digest with the expected hex string. A nil verifier
// always passes.
func (v *checksumVerifier) Verify() error {
	if v == nil {
		return nil
	}

	actual := hex.EncodeToString(v.hash.Sum(nil))
	if !strings.EqualFold(actual, v.expected) {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", v.expected, actual),
		}
	}

	return nil
}
