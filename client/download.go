package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/forkwallet/netclient/client/download"
)

// Download streams url into the client's download directory and returns the
// stored path. It does not go through the request gate.
func (c *Client) Download(ctx context.Context, rawURL string, onProgress func(float64), opts ...DownloadOption) (string, error) {
	t, err := c.DownloadAsync(ctx, rawURL, onProgress, nil, opts...)
	if err != nil {
		return "", err
	}

	return t.Wait()
}

// DownloadAsync starts a download and returns immediately. onProgress
// receives non-decreasing fractions in [0,1]; onComplete fires once with the
// stored path or the failure. Neither fires after [download.Task.Cancel]
// returns.
func (c *Client) DownloadAsync(ctx context.Context, rawURL string, onProgress func(float64), onComplete func(string, error), opts ...DownloadOption) (*download.Task, error) {
	d, err := NewDescriptor(MethodGet, rawURL)
	if err != nil {
		return nil, err
	}

	fallback := path.Base(d.url.Path)
	if fallback == "/" || fallback == "." || fallback == "" {
		fallback = "download"
	}
	if _, err := download.FileName(fallback, opts...); err != nil {
		return nil, fmt.Errorf("applying download option: %w", err)
	}

	work := func(ctx context.Context, h download.Handle, progress func(float64)) (string, error) {
		name, err := download.FileName(string(h)+"-"+fallback, opts...)
		if err != nil {
			return "", err
		}

		p, err := c.fetch(ctx, d, name, progress, opts)
		if err != nil && ctx.Err() != nil && !download.Cancelled(err) {
			err = fmt.Errorf("%w: %w", download.ErrDownloadCancelled, err)
		}
		return p, err
	}

	return download.Start(ctx, c.dl, onProgress, onComplete, work), nil
}

func (c *Client) fetch(ctx context.Context, d Descriptor, name string, progress func(float64), opts []DownloadOption) (string, error) {
	req, err := d.build(ctx, c.device.Headers())
	if err != nil {
		return "", err
	}

	ctx, span := c.startSpan(ctx, "netclient.download", req)
	defer span.End()
	req = req.WithContext(ctx)

	stored, err := c.store(ctx, req, name, progress, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("file.path", stored))

	return stored, nil
}

func (c *Client) store(ctx context.Context, req *http.Request, name string, progress func(float64), opts []DownloadOption) (string, error) {
	resp, err := c.c.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer c.closeBody(resp.Body)

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if err := c.checkStatus(resp); err != nil {
		return "", err
	}

	stored, err := download.Store(ctx, resp.Body, resp.ContentLength, c.dlDir, name, c.logger, progress, opts...)
	if err != nil {
		var dlErr *download.Error
		if !errors.As(err, &dlErr) && !download.Cancelled(err) && isConnectivity(err) {
			return "", &NetworkError{Kind: KindTransport, Err: err}
		}
		return "", fmt.Errorf("download: %w", err)
	}

	return stored, nil
}
