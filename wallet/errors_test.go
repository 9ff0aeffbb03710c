package wallet_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/forkwallet/netclient/client"
	"github.com/forkwallet/netclient/wallet"
)

func TestFromError(t *testing.T) {
	plain := errors.New("exec http do: something odd")

	testCases := map[string]struct {
		err error
		exp *wallet.Error
	}{
		"nil": {
			err: nil,
			exp: nil,
		},
		"decodeWithSchema": {
			err: &client.NetworkError{
				Kind:       client.KindDecode,
				StatusCode: 404,
				RawBody:    []byte(`{"detail":"no wallet","code":"ERR_WALLET_DOESNT_EXIST"}`),
			},
			exp: &wallet.Error{Message: "no wallet", Code: wallet.CodeWalletDoesntExist},
		},
		"decodeMissingCode": {
			err: &client.NetworkError{
				Kind:    client.KindDecode,
				RawBody: []byte(`{"detail":"odd"}`),
			},
			exp: &wallet.Error{Message: "odd", Code: wallet.CodeUnknownServerError},
		},
		"transport": {
			err: fmt.Errorf("wrapped: %w", &client.NetworkError{Kind: client.KindTransport, Err: errors.New("dial tcp: refused")}),
			exp: &wallet.Error{
				Message: "wrapped: transport failure: dial tcp: refused",
				Code:    wallet.CodeNoConnection,
			},
		},
		"httpStatus": {
			err: &client.NetworkError{Kind: client.KindHTTPStatus, StatusCode: 502},
			exp: &wallet.Error{Message: "unexpected status code: 502"},
		},
		"unclassified": {
			err: plain,
			exp: &wallet.Error{Message: plain.Error()},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := wallet.FromError(tc.err)
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromError_DecodeWithoutSchema(t *testing.T) {
	err := &client.NetworkError{Kind: client.KindDecode, StatusCode: 500, RawBody: []byte("<html>")}

	got := wallet.FromError(err)
	if got.Code != "" || got.Message != err.Error() {
		t.Errorf("got %+v", got)
	}
}

func TestResponse_DecodedIsOK(t *testing.T) {
	var r wallet.Response[wallet.AddressPayload]
	if err := json.Unmarshal([]byte(`{"wallet":"EQ-1"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Status != wallet.StatusOK || r.Err() != nil {
		t.Errorf("decoded response not ok: %+v", r)
	}
	if r.Payload.Wallet != "EQ-1" {
		t.Errorf("payload %q", r.Payload.Wallet)
	}
}

func TestResponse_Err(t *testing.T) {
	ok := wallet.Response[wallet.AddressPayload]{Status: wallet.StatusOK}
	if ok.Err() != nil {
		t.Error("ok response reported an error")
	}

	failed := wallet.Response[wallet.AddressPayload]{
		Status:  wallet.StatusError,
		Message: "nope",
		Code:    wallet.CodeWalletDoesntExist,
	}
	if !errors.Is(failed.Err(), &wallet.Error{Code: wallet.CodeWalletDoesntExist}) {
		t.Errorf("unexpected error %v", failed.Err())
	}
}
