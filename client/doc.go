// Package client provides the request and download executors of the
// wallet backend client, built on [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithDevice(device.Detect("1.4.0")),
//	)
//
// # Making Requests
//
// Describe a request with [NewDescriptor] and run it with [Client.Do] or
// the typed [Execute]:
//
//	u, _ := c.Endpoint("wallet", userID)
//	d, err := client.NewDescriptor(client.MethodGet, u, client.WithAuthToken(token))
//	w, err := client.Execute(ctx, c, d, client.JSON[Wallet]())
//
// Only one request is in flight per Client. Further callers wait for the
// current one to finish or for their context to end. [Go] runs a request in
// the background and returns a cancellable [Call].
//
// Failures are reported as [*NetworkError]. A non-success status with a
// body is a [KindDecode] error whose RawBody can be decoded against the
// backend's error schema.
//
// # Downloading Files
//
// Downloads are not gated and any number may run at once. The body is
// streamed to a temp file in the download directory and moved into place on
// success:
//
//	path, err := c.Download(ctx, fileURL, func(f float64) { bar.Set(f) },
//		client.WithChecksum(sha256.New(), expectedHex),
//	)
//
// [Client.DownloadAsync] returns a [DownloadTask] that can be waited on or
// cancelled. No callback fires after [download.Task.Cancel] returns.
//
// For lower-level control see the
// [github.com/forkwallet/netclient/client/download] package.
package client
