// Package wallet is a thin adapter over the client for wallet backend
// endpoints. Client failures are reconstructed into [*Error] values.
package wallet

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/forkwallet/netclient/client"
)

// Option configures a Network.
type Option func(*Network) error

// WithInterceptor installs i. By default no failure is intercepted.
func WithInterceptor(i Interceptor) Option {
	return func(n *Network) error {
		if i == nil {
			return errors.New("interceptor must not be nil")
		}
		n.interceptor = i
		return nil
	}
}

// WithAuthToken sends token as a bearer token with every request.
func WithAuthToken(token string) Option {
	return func(n *Network) error {
		if token == "" {
			return errors.New("cannot use empty auth token")
		}
		n.token = token
		return nil
	}
}

// WithLogger sets the logger used to report intercepted failures.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		n.logger = logger
		return nil
	}
}

// Network issues wallet requests through a shared client.
type Network struct {
	c           *client.Client
	interceptor Interceptor
	token       string
	logger      *slog.Logger
}

// New returns a Network using c.
func New(c *client.Client, opts ...Option) (*Network, error) {
	if c == nil {
		return nil, errors.New("client must not be nil")
	}

	n := &Network{
		c:           c,
		interceptor: nopInterceptor{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// Address resolves the TON wallet address of a user.
func (n *Network) Address(ctx context.Context, userID int64) (string, error) {
	resp, err := get[AddressPayload](ctx, n, "wallet", strconv.FormatInt(userID, 10))
	if err != nil {
		return "", err
	}

	return resp.Payload.Wallet, nil
}

func get[T any](ctx context.Context, n *Network, segments ...string) (Response[T], error) {
	u, err := n.c.Endpoint(segments...)
	if err != nil {
		return Response[T]{}, err
	}

	var reqOpts []client.RequestOption
	if n.token != "" {
		reqOpts = append(reqOpts, client.WithAuthToken(n.token))
	}

	d, err := client.NewDescriptor(client.MethodGet, u, reqOpts...)
	if err != nil {
		return Response[T]{}, err
	}

	resp, err := client.Execute(ctx, n.c, d, client.JSON[Response[T]]())
	if err != nil {
		// A cancelled caller is not a wallet failure.
		if ctx.Err() != nil {
			return Response[T]{}, ctx.Err()
		}
		return Response[T]{}, n.fail(FromError(err))
	}

	// Decoded bodies are always ok today. Kept for envelopes that carry
	// their own status.
	if werr := resp.Err(); werr != nil {
		return Response[T]{}, n.fail(werr)
	}

	return resp, nil
}

func (n *Network) fail(werr *Error) error {
	if n.interceptor.Process(werr) {
		n.logger.Debug("wallet error intercepted", "code", werr.Code, "message", werr.Message)
		return ErrIntercepted
	}
	return werr
}
