package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"

	"github.com/forkwallet/netclient/client/multipart"
	"github.com/forkwallet/netclient/internal/validate"
)

// Method is an HTTP method supported by the backend.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodDelete Method = http.MethodDelete
)

// Encoding selects how a Descriptor's parameters are carried.
type Encoding int

const (
	// EncodingJSON sends parameters as a JSON body.
	EncodingJSON Encoding = iota
	// EncodingURL sends parameters in the query string for GET and DELETE,
	// and as an application/x-www-form-urlencoded body for POST.
	EncodingURL
)

var (
	// ErrUnsupportedParam is returned when a parameter value cannot be URL encoded.
	ErrUnsupportedParam = errors.New("unsupported parameter value")
	// ErrInvalidDescriptor is returned for a Descriptor not made by NewDescriptor.
	ErrInvalidDescriptor = errors.New("descriptor not built with NewDescriptor")
)

// Descriptor describes a single request. It is immutable once built:
// parameter maps and slices at any depth and file contents are copied in and
// out. Values behind pointers inside parameters are not copied.
type Descriptor struct {
	method    Method
	url       *url.URL
	params    map[string]any
	files     []multipart.FilePart
	authToken string
	headers   http.Header
	encoding  Encoding
}

type descriptorFields struct {
	Method string `json:"method" validate:"oneof=GET POST DELETE"`
	URL    string `json:"url" validate:"required,url"`
}

// NewDescriptor validates and builds a Descriptor.
func NewDescriptor(method Method, rawURL string, opts ...RequestOption) (Descriptor, error) {
	var settings requestOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return Descriptor{}, err
		}
	}

	if err := validate.Check(descriptorFields{Method: string(method), URL: rawURL}); err != nil {
		return Descriptor{}, fmt.Errorf("invalid descriptor: %w", err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Descriptor{}, fmt.Errorf("url %q: scheme must be http or https", rawURL)
	}

	return Descriptor{
		method:    method,
		url:       u,
		params:    settings.params,
		files:     settings.files,
		authToken: settings.authToken,
		headers:   settings.headers,
		encoding:  settings.encoding,
	}, nil
}

// Method returns the request method.
func (d Descriptor) Method() Method { return d.method }

// URL returns the target URL without encoded parameters.
func (d Descriptor) URL() string {
	if d.url == nil {
		return ""
	}
	return d.url.String()
}

// Encoding returns the parameter encoding mode.
func (d Descriptor) Encoding() Encoding { return d.encoding }

// Params returns a copy of the parameters.
func (d Descriptor) Params() map[string]any { return cloneParams(d.params) }

// Files returns a copy of the multipart parts.
func (d Descriptor) Files() []multipart.FilePart { return cloneFiles(d.files) }

// build encodes the descriptor into an *http.Request. env is merged first,
// then the auth header, then the descriptor's own headers.
func (d Descriptor) build(ctx context.Context, env http.Header) (*http.Request, error) {
	if d.url == nil {
		return nil, ErrInvalidDescriptor
	}
	u := *d.url

	var body []byte
	var contentType string

	switch {
	case len(d.files) > 0:
		if len(d.params) > 0 {
			q, err := encodeValues(u.Query(), d.params)
			if err != nil {
				return nil, err
			}
			u.RawQuery = q.Encode()
		}

		boundary := multipart.NewBoundary()
		b, err := multipart.Encode(d.files, boundary)
		if err != nil {
			return nil, fmt.Errorf("encoding multipart body: %w", err)
		}
		body = b
		contentType = multipart.ContentType(boundary)

	case d.encoding == EncodingURL:
		if len(d.params) == 0 {
			break
		}
		if d.method == MethodPost {
			form, err := encodeValues(url.Values{}, d.params)
			if err != nil {
				return nil, err
			}
			body = []byte(form.Encode())
			contentType = "application/x-www-form-urlencoded; charset=utf-8"
			break
		}
		q, err := encodeValues(u.Query(), d.params)
		if err != nil {
			return nil, err
		}
		u.RawQuery = q.Encode()

	default:
		if d.params == nil {
			break
		}
		b, err := json.Marshal(d.params)
		if err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		body = b
		contentType = "application/json"
	}

	var payload io.Reader = http.NoBody
	if body != nil {
		payload = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, string(d.method), u.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	mergeHeaders(req.Header, env)
	if d.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+d.authToken)
	}
	mergeHeaders(req.Header, d.headers)

	return req, nil
}

// mergeHeaders replaces every key of src in dst.
func mergeHeaders(dst, src http.Header) {
	for k, vs := range src {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneFiles(parts []multipart.FilePart) []multipart.FilePart {
	if parts == nil {
		return nil
	}
	out := make([]multipart.FilePart, len(parts))
	for i, p := range parts {
		p.Content = bytes.Clone(p.Content)
		out[i] = p
	}
	return out
}

// cloneValue copies maps and slices recursively. Other kinds are returned
// as they are.
func cloneValue(val any) any {
	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return val
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), clonedElem(iter.Value(), rv.Type().Elem()))
		}
		return out.Interface()
	case reflect.Slice:
		if rv.IsNil() {
			return val
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := range rv.Len() {
			out.Index(i).Set(clonedElem(rv.Index(i), rv.Type().Elem()))
		}
		return out.Interface()
	default:
		return val
	}
}

func clonedElem(v reflect.Value, typ reflect.Type) reflect.Value {
	if v.Kind() == reflect.Interface && v.IsNil() {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(cloneValue(v.Interface())).Convert(typ)
}

// encodeValues flattens params into v. Nested maps become key[sub] and
// slices become repeated key[] entries.
func encodeValues(v url.Values, params map[string]any) (url.Values, error) {
	for _, k := range slices.Sorted(maps.Keys(params)) {
		if err := addValue(v, k, params[k]); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func addValue(v url.Values, key string, val any) error {
	switch x := val.(type) {
	case nil:
		v.Add(key, "")
		return nil
	case string:
		v.Add(key, x)
		return nil
	case bool:
		v.Add(key, strconv.FormatBool(x))
		return nil
	case json.Number:
		v.Add(key, x.String())
		return nil
	case fmt.Stringer:
		v.Add(key, x.String())
		return nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.Add(key, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.Add(key, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		v.Add(key, strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if err := addValue(v, key+"[]", rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: %s has non-string map keys", ErrUnsupportedParam, key)
		}
		keys := make([]string, 0, rv.Len())
		for _, mk := range rv.MapKeys() {
			keys = append(keys, mk.String())
		}
		slices.Sort(keys)
		for _, mk := range keys {
			if err := addValue(v, key+"["+mk+"]", rv.MapIndex(reflect.ValueOf(mk).Convert(rv.Type().Key())).Interface()); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %s is %T", ErrUnsupportedParam, key, val)
	}

	return nil
}
