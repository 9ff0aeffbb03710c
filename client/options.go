package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/forkwallet/netclient/client/device"
	"github.com/forkwallet/netclient/client/multipart"
	"github.com/forkwallet/netclient/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	device            *device.Info
	apiRoot           *url.URL
	downloadDir       string
	tracer            trace.Tracer
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
// By default no timeout is imposed.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
// A 3xx response is then treated as success.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithDevice sets the environment descriptor whose headers are merged into
// every request. It defaults to [device.Detect].
func WithDevice(info device.Info) Option {
	return func(c *options) error {
		if err := info.Validate(); err != nil {
			return err
		}
		c.device = &info
		return nil
	}
}

// WithAPIRoot overrides [DefaultAPIRoot].
func WithAPIRoot(root string) Option {
	return func(c *options) error {
		u, err := url.Parse(root)
		if err != nil {
			return fmt.Errorf("parsing api root: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("api root %q: scheme must be http or https", root)
		}
		c.apiRoot = u
		return nil
	}
}

// WithDownloadDir sets the directory finished downloads are moved into.
func WithDownloadDir(dir string) Option {
	return func(c *options) error {
		if dir == "" {
			return errors.New("download dir must not be empty")
		}
		c.downloadDir = dir
		return nil
	}
}

// WithTracer sets the tracer used for request and download spans.
// It defaults to the global provider's tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// DoOption is a functional option for [Client.Do] and [JSON].
type DoOption func(options *doOpts) error

type doOpts struct {
	responseBody any
	useJSONNum   bool
}

// WithDestination decodes the HTTP response body into bodyTemplate.
// bodyTemplate must be a pointer.
func WithDestination[T any](bodyTemplate *T) DoOption {
	return func(opts *doOpts) error {
		if bodyTemplate == nil {
			return errors.New("destination must not be nil")
		}
		opts.responseBody = bodyTemplate

		return nil
	}
}

// WithJSONNumb tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumb() DoOption {
	return func(opts *doOpts) error {
		opts.useJSONNum = true

		return nil
	}
}

// RequestOption is a functional option for [NewDescriptor].
type RequestOption func(options *requestOpts) error

type requestOpts struct {
	params    map[string]any
	files     []multipart.FilePart
	authToken string
	headers   http.Header
	encoding  Encoding
}

// WithParameters sets the structured parameters, encoded per [WithEncoding].
func WithParameters(params map[string]any) RequestOption {
	return func(opts *requestOpts) error {
		opts.params = cloneParams(params)

		return nil
	}
}

// WithEncoding selects how parameters are carried. The default is [EncodingJSON].
func WithEncoding(enc Encoding) RequestOption {
	return func(opts *requestOpts) error {
		if enc != EncodingJSON && enc != EncodingURL {
			return fmt.Errorf("unknown encoding %d", enc)
		}
		opts.encoding = enc

		return nil
	}
}

// WithFiles attaches multipart file parts. The request body becomes
// multipart/form-data and parameters move to the query string.
func WithFiles(parts ...multipart.FilePart) RequestOption {
	return func(opts *requestOpts) error {
		opts.files = cloneFiles(parts)

		return nil
	}
}

// WithAuthToken sends `Authorization: Bearer <token>`.
func WithAuthToken(token string) RequestOption {
	return func(opts *requestOpts) error {
		if token == "" {
			return errors.New("cannot use empty auth token")
		}
		opts.authToken = token

		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request. They override
// environment and auth headers of the same name.
func WithHeaders(headers map[string]string) RequestOption {
	return func(opts *requestOpts) error {
		if opts.headers == nil {
			opts.headers = make(http.Header, len(headers))
		}
		for k, v := range headers {
			opts.headers.Set(k, v)
		}

		return nil
	}
}
