package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/forkwallet/netclient/client/device"
	"github.com/forkwallet/netclient/client/download"
	"github.com/forkwallet/netclient/client/gate"
	"github.com/forkwallet/netclient/client/throttle"
)

// DefaultAPIRoot is the backend every [Client.Endpoint] is resolved against
// unless [WithAPIRoot] is given.
const DefaultAPIRoot = "https://api.teleton.io/api/v1/"

const tracerName = "github.com/forkwallet/netclient/client"

// Client wraps the std-lib *http.Client.
// Requests are admitted one at a time through a gate; downloads run
// concurrently and are tracked in a registry.
type Client struct {
	c       *http.Client
	logger  *slog.Logger
	gate    *gate.Gate
	dl      *download.Registry
	device  device.Info
	apiRoot *url.URL
	dlDir   string
	tracer  trace.Tracer
}

// Build creates a Client. Nothing is shared with http.DefaultClient.
func Build(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		c:      &http.Client{},
		logger: slog.Default(),
		gate:   gate.New(),
		dl:     download.NewRegistry(),
		dlDir:  filepath.Join(os.TempDir(), "netclient-downloads"),
		tracer: otel.Tracer(tracerName),
	}

	if opts.client != nil {
		cpy := *opts.client
		client.c = &cpy
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if opts.device != nil {
		client.device = *opts.device
	} else {
		client.device = device.Detect("")
	}

	root := opts.apiRoot
	if root == nil {
		var err error
		if root, err = url.Parse(DefaultAPIRoot); err != nil {
			return nil, fmt.Errorf("parsing default api root: %w", err)
		}
	}
	client.apiRoot = root

	if opts.downloadDir != "" {
		client.dlDir = opts.downloadDir
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	transport = emptyGuard{base: transport}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Do fires the request described by d and writes the response into the
// destination given with WithDestination, if any.
func (c *Client) Do(ctx context.Context, d Descriptor, opts ...DoOption) error {
	var settings doOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return err
		}
	}

	return c.exec(ctx, d, func(body []byte) error {
		if settings.responseBody == nil {
			return nil
		}
		return decodeJSON(body, settings.responseBody, settings.useJSONNum)
	})
}

// Execute fires the request described by d and decodes a successful body
// with decode.
func Execute[T any](ctx context.Context, c *Client, d Descriptor, decode DecodeFunc[T]) (T, error) {
	var out T
	if decode == nil {
		return out, errors.New("decode func must not be nil")
	}

	err := c.exec(ctx, d, func(body []byte) error {
		v, err := decode(body)
		if err != nil {
			return err
		}
		out = v
		return nil
	})

	return out, err
}

// JSON returns a DecodeFunc unmarshalling a JSON body into a T.
// Only WithJSONNumb is meaningful here.
func JSON[T any](opts ...DoOption) DecodeFunc[T] {
	var settings doOpts
	var optErr error
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			optErr = err
			break
		}
	}

	return func(body []byte) (T, error) {
		var v T
		if optErr != nil {
			return v, optErr
		}
		err := decodeJSON(body, &v, settings.useJSONNum)
		return v, err
	}
}

// Bytes is a DecodeFunc returning the raw body.
func Bytes(body []byte) ([]byte, error) {
	return body, nil
}

func decodeJSON(body []byte, dest any, useNumber bool) error {
	d := json.NewDecoder(bytes.NewReader(body))
	if useNumber {
		d.UseNumber()
	}

	if err := d.Decode(dest); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}

	return nil
}

// Endpoint resolves path segments against the API root.
func (c *Client) Endpoint(segments ...string) (string, error) {
	for _, s := range segments {
		for _, elem := range strings.Split(s, "/") {
			if elem == ".." {
				return "", fmt.Errorf("endpoint segment %q escapes the api root", s)
			}
		}
	}

	return c.apiRoot.JoinPath(segments...).String(), nil
}

// Busy reports whether a request currently holds the gate.
func (c *Client) Busy() bool {
	return c.gate.Busy()
}

// InFlightDownloads reports the number of registered downloads.
func (c *Client) InFlightDownloads() int {
	return c.dl.Len()
}

// exec builds the request, waits for the gate and runs fn on a successful
// body. Every failure is classified into a NetworkError where possible.
func (c *Client) exec(ctx context.Context, d Descriptor, fn execFn) error {
	req, err := d.build(ctx, c.device.Headers())
	if err != nil {
		return err
	}

	ctx, span := c.startSpan(ctx, "netclient.request", req)
	defer span.End()
	req = req.WithContext(ctx)

	err = c.send(ctx, req, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

func (c *Client) send(ctx context.Context, req *http.Request, fn execFn) error {
	if c.gate.Busy() {
		c.logger.Debug("waiting for request gate", "method", req.Method, "url", req.URL.Redacted())
	}

	ticket, err := c.gate.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring request gate: %w", err)
	}
	defer ticket.Release()
	stop := context.AfterFunc(ctx, ticket.Release)
	defer stop()

	resp, err := c.c.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer c.closeBody(resp.Body)

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	body, err := readBody(resp.Body)
	if err != nil {
		return err
	}

	if err := fn(body); err != nil {
		return &NetworkError{
			Kind:    KindDecode,
			RawBody: body,
			Err:     err,
		}
	}

	return nil
}

// checkStatus classifies a response outside [200,400). Up to maxErrBodySize
// of its body is kept for the caller.
func (c *Client) checkStatus(resp *http.Response) error {
	if successStatus(resp.StatusCode) {
		return nil
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		c.logger.Error("reading error body", "status", resp.StatusCode, "error", err)
		b = nil
	}

	return statusError(resp.StatusCode, b)
}

// readBody reads a successful body up to maxBodySize.
func readBody(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		if isConnectivity(err) {
			return nil, &NetworkError{Kind: KindTransport, Err: err}
		}
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(b) > maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, maxBodySize)
	}

	return b, nil
}

// closeBody drains what is left of a body so the connection can be reused.
func (c *Client) closeBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, io.LimitReader(body, maxErrBodySize)); err != nil {
		c.logger.Debug("failed to discard unused body", "error", err)
	}
	if err := body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}

func (c *Client) startSpan(ctx context.Context, name string, req *http.Request) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.Redacted()),
		),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return ctx, span
}
