package wallet

import "encoding/json"

// Status of a wallet backend response.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Response is the envelope wallet endpoints are read into. The backend
// returns the bare payload, so a decoded Response is always StatusOK.
type Response[T any] struct {
	Code    Code
	Status  Status
	Message string
	Payload T
}

// UnmarshalJSON decodes the whole body as the payload.
func (r *Response[T]) UnmarshalJSON(b []byte) error {
	var payload T
	if err := json.Unmarshal(b, &payload); err != nil {
		return err
	}

	*r = Response[T]{Status: StatusOK, Payload: payload}
	return nil
}

// Err returns the failure carried by a non-ok response.
func (r Response[T]) Err() *Error {
	if r.Status == StatusOK {
		return nil
	}
	return &Error{Message: r.Message, Code: r.Code}
}

// AddressPayload is the body of GET wallet/<userID>.
type AddressPayload struct {
	Wallet string `json:"wallet"`
}
