package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// classifyTransport maps a failed round trip onto the error taxonomy.
// Connectivity-class failures become KindTransport; anything else is
// returned wrapped but unclassified.
func classifyTransport(err error) error {
	if ne, ok := AsNetworkError(err); ok {
		return ne
	}

	if isConnectivity(err) {
		return &NetworkError{Kind: KindTransport, Err: err}
	}

	return fmt.Errorf("exec http do: %w", err)
}

func isConnectivity(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Refused or reset connections reached a host and are not
	// connectivity failures.
	for _, errno := range []syscall.Errno{
		syscall.ENETUNREACH,
		syscall.EHOSTUNREACH,
		syscall.ENETDOWN,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	return false
}

// statusError classifies a response outside [200,400). A non-empty body is
// preferred as a decode failure so callers can parse a structured error.
func statusError(code int, body []byte) error {
	if len(body) > 0 {
		return &NetworkError{
			Kind:       KindDecode,
			StatusCode: code,
			RawBody:    body,
		}
	}

	return &NetworkError{Kind: KindHTTPStatus, StatusCode: code}
}

func successStatus(code int) bool {
	return code >= 200 && code < 400
}

// emptyGuard is an http.RoundTripper turning a nil response into
// ErrEmptyResponse instead of letting net/http invent a generic error.
type emptyGuard struct {
	base http.RoundTripper
}

func (g emptyGuard) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := g.base.RoundTrip(r)
	if err == nil && resp == nil {
		return nil, &NetworkError{Kind: KindEmptyResponse}
	}
	return resp, err
}
