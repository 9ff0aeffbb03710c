// Package netclient exposes the client builder.
package netclient

import (
	"github.com/forkwallet/netclient/client"
)

// NewClient instantiates a new *client.Client with the provided options.
// If not specified, a fresh http.Client over http.DefaultTransport is used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}
