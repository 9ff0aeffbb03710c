package client

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrBodySize caps the amount of response body read from a non-success
// response. The bytes are handed to callers for structured error decoding.
const maxErrBodySize = 64 << 10 // 64KB

// maxBodySize caps a successful response body.
const maxBodySize = 10 << 20 // 10MB

// execFn represents a func to operate on a successful response body.
type execFn func(body []byte) error

// DecodeFunc turns a successful response body into a T.
type DecodeFunc[T any] func(body []byte) (T, error)

var (
	// ErrTransportFailure marks connectivity-class failures: timeouts, DNS
	// failures, unreachable networks or hosts.
	ErrTransportFailure = errors.New("transport failure")
	// ErrEmptyResponse marks a round trip that produced no HTTP response.
	ErrEmptyResponse = errors.New("empty response")
	// ErrHTTPStatus marks a status outside [200,400) with no body.
	ErrHTTPStatus = errors.New("unexpected status code")
	// ErrDecodeFailure marks response bytes that could not be decoded. This
	// includes the body of any non-success status.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrAuthFailure is additionally matched when the server responds with
	// 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrBodyTooLarge is returned when a response exceeds the body cap.
	ErrBodyTooLarge = errors.New("response body too large")
)

// Kind classifies a NetworkError.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindEmptyResponse
	KindHTTPStatus
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transportFailure"
	case KindEmptyResponse:
		return "emptyResponse"
	case KindHTTPStatus:
		return "httpStatus"
	case KindDecode:
		return "decodeFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransportFailure
	case KindEmptyResponse:
		return ErrEmptyResponse
	case KindHTTPStatus:
		return ErrHTTPStatus
	case KindDecode:
		return ErrDecodeFailure
	default:
		return nil
	}
}

// NetworkError is the classified failure of a request or download.
//
// StatusCode is set for KindHTTPStatus and for KindDecode errors caused by a
// non-success status. RawBody holds the undecodable bytes of a KindDecode
// error so callers can attempt a secondary decode against an error schema.
type NetworkError struct {
	Kind       Kind
	StatusCode int
	RawBody    []byte
	Err        error
}

func (e *NetworkError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%v: %d", e.Kind.sentinel(), e.StatusCode)
	case KindDecode:
		if e.StatusCode != 0 {
			return fmt.Sprintf("%v: status %d, body: %s", e.Kind.sentinel(), e.StatusCode, e.RawBody)
		}
		return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Err)
	}

	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Err)
	}
	return fmt.Sprint(e.Kind.sentinel())
}

func (e *NetworkError) Unwrap() []error {
	errs := make([]error, 0, 3)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		errs = append(errs, ErrAuthFailure)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// AsNetworkError returns the NetworkError wrapped in err, if any.
func AsNetworkError(err error) (*NetworkError, bool) {
	var ne *NetworkError
	if !errors.As(err, &ne) {
		return nil, false
	}
	return ne, true
}
