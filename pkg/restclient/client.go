package restclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 60 * time.Second

// Client abstracts the catalog API so callers can inject mocks or different
// transports. Resource paths are relative to the server's API root; the empty
// resource addresses the root itself.
type Client interface {
	Get(ctx context.Context, resource string, query map[string]string) (any, error)
	Post(ctx context.Context, resource string, body any) (any, error)
	Put(ctx context.Context, resource string, body any) (any, error)
	Patch(ctx context.Context, resource string, body any) (any, error)
	Delete(ctx context.Context, resource string, body any) (any, error)
	URL(resource string) string
	Headers() map[string]string
}

// Options configures a RestyClient.
type Options struct {
	Server   string
	Insecure bool
	CACert   string
	Comment  string
	Timeout  time.Duration
}

// RestyClient adapts resty.Client to the restclient.Client interface.
type RestyClient struct {
	client *resty.Client
	base   string
}

// New creates a RestyClient for the given server. The comment, when present,
// rides along on every request as an audit header.
func New(opts Options) (*RestyClient, error) {
	u, err := url.Parse(opts.Server)
	if err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server address %q must use http or https", opts.Server)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("Accept", "application/json")
	c.SetHeader("Content-Type", "application/json")
	c.SetHeader("User-Agent", "catctl")
	if opts.Comment != "" {
		c.SetHeader("X-Catalog-Comment", opts.Comment)
	}
	if opts.Insecure {
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	} else if opts.CACert != "" {
		c.SetRootCertificate(opts.CACert)
	}

	return &RestyClient{
		client: c,
		base:   strings.TrimRight(opts.Server, "/"),
	}, nil
}

// URL resolves a resource name to its full endpoint URL.
func (r *RestyClient) URL(resource string) string {
	resource = strings.Trim(resource, "/")
	if resource == "" {
		return r.base
	}
	return r.base + "/" + resource
}

// Headers returns a copy of the session headers sent with every request.
func (r *RestyClient) Headers() map[string]string {
	out := make(map[string]string, len(r.client.Header))
	for k, vals := range r.client.Header {
		if len(vals) > 0 {
			out[k] = vals[0]
		}
	}
	return out
}

// Get performs a GET with the given query parameters.
func (r *RestyClient) Get(ctx context.Context, resource string, query map[string]string) (any, error) {
	req := r.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	return r.do(req, http.MethodGet, resource)
}

// Post sends body as JSON.
func (r *RestyClient) Post(ctx context.Context, resource string, body any) (any, error) {
	return r.do(r.client.R().SetContext(ctx).SetBody(body), http.MethodPost, resource)
}

// Put sends body as JSON.
func (r *RestyClient) Put(ctx context.Context, resource string, body any) (any, error) {
	return r.do(r.client.R().SetContext(ctx).SetBody(body), http.MethodPut, resource)
}

// Patch sends body as JSON.
func (r *RestyClient) Patch(ctx context.Context, resource string, body any) (any, error) {
	return r.do(r.client.R().SetContext(ctx).SetBody(body), http.MethodPatch, resource)
}

// Delete sends body as JSON. An empty response body yields a nil value.
func (r *RestyClient) Delete(ctx context.Context, resource string, body any) (any, error) {
	return r.do(r.client.R().SetContext(ctx).SetBody(body), http.MethodDelete, resource)
}

func (r *RestyClient) do(req *resty.Request, method, resource string) (any, error) {
	endpoint := r.URL(resource)
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.Body(),
		}
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return value, nil
}
