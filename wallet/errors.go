package wallet

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/forkwallet/netclient/client"
)

// Code is a machine readable wallet backend error code.
type Code string

const (
	CodeNoConnection       Code = "NO_CONNECTION"
	CodeUnknownServerError Code = "ERR_UNKNOWN_SERVER_ERROR"
	CodeWalletDoesntExist  Code = "ERR_WALLET_DOESNT_EXIST"
)

func (c Code) known() bool {
	switch c {
	case CodeNoConnection, CodeUnknownServerError, CodeWalletDoesntExist:
		return true
	}
	return false
}

// ErrUnknown is reported when nothing better is known about a failure.
var ErrUnknown = &Error{Message: "Unknown error"}

// Error is a failure as presented to wallet features. Code is empty when
// the backend did not supply one.
type Error struct {
	Message string `json:"detail"`
	Code    Code   `json:"code,omitempty"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches another *Error with the same code, or the same message when
// neither carries a code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code == "" && t.Code == "" {
		return e.Message == t.Message
	}
	return e.Code == t.Code
}

// UnmarshalJSON decodes the backend error body {"detail", "code"}. A missing
// or unrecognised code becomes CodeUnknownServerError.
func (e *Error) UnmarshalJSON(b []byte) error {
	var raw struct {
		Detail *string `json:"detail"`
		Code   Code    `json:"code"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Detail == nil {
		return errors.New("wallet error: missing detail")
	}

	e.Message = *raw.Detail
	e.Code = raw.Code
	if !e.Code.known() {
		e.Code = CodeUnknownServerError
	}

	return nil
}

// FromError reconstructs a wallet Error from a client failure. The body of a
// decode failure is parsed against the backend error schema; transport
// failures map to CodeNoConnection. Anything else keeps its description.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var we *Error
	if errors.As(err, &we) {
		return we
	}

	out := &Error{Message: err.Error()}

	ne, ok := client.AsNetworkError(err)
	if !ok {
		return out
	}

	switch ne.Kind {
	case client.KindDecode:
		var parsed Error
		if len(ne.RawBody) > 0 && json.Unmarshal(ne.RawBody, &parsed) == nil {
			return &parsed
		}
	case client.KindTransport:
		out.Code = CodeNoConnection
	}

	return out
}
