package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/prodcat-hq/catctl/internal/apperror"
	"github.com/prodcat-hq/catctl/internal/payload"
	"github.com/prodcat-hq/catctl/pkg/restclient"
)

// Kind is the enumerated request kind a method name resolves to.
type Kind string

const (
	KindGet    Kind = http.MethodGet
	KindPost   Kind = http.MethodPost
	KindPut    Kind = http.MethodPut
	KindPatch  Kind = http.MethodPatch
	KindDelete Kind = http.MethodDelete
)

// ParseKind matches a method name case-insensitively against the supported
// request kinds. Unknown methods fail here, before any network activity.
func ParseKind(method string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case http.MethodGet:
		return KindGet, nil
	case http.MethodPost:
		return KindPost, nil
	case http.MethodPut:
		return KindPut, nil
	case http.MethodPatch:
		return KindPatch, nil
	case http.MethodDelete:
		return KindDelete, nil
	default:
		return "", fmt.Errorf("unsupported method %q", method)
	}
}

type handler func(ctx context.Context, client restclient.Client, resource string, body any) (any, error)

// handlers maps each request kind to its call strategy.
var handlers = map[Kind]handler{
	KindGet:    doGet,
	KindPost:   doPost,
	KindPut:    doPut,
	KindPatch:  doPatch,
	KindDelete: doDelete,
}

// Dispatcher performs exactly one request against the catalog API.
type Dispatcher struct {
	client restclient.Client
	debug  bool
	out    io.Writer
}

// New builds a Dispatcher. With debug set, the method, resolved URL, and
// session headers are printed to out before the call is made.
func New(client restclient.Client, debug bool, out io.Writer) *Dispatcher {
	return &Dispatcher{client: client, debug: debug, out: out}
}

// Dispatch resolves the method name and performs the request.
func (d *Dispatcher) Dispatch(ctx context.Context, method, resource string, body any) (any, error) {
	kind, err := ParseKind(method)
	if err != nil {
		return nil, err
	}
	if d.debug {
		d.printDebug(kind, resource)
	}
	return handlers[kind](ctx, d.client, resource, body)
}

// printDebug is a diagnostic side effect only; the request is unaffected.
func (d *Dispatcher) printDebug(kind Kind, resource string) {
	fmt.Fprintf(d.out, "%s %s\n", kind, d.client.URL(resource))
	headers := d.client.Headers()
	for _, k := range slices.Sorted(maps.Keys(headers)) {
		fmt.Fprintf(d.out, "%s: %s\n", k, headers[k])
	}
}

func doGet(ctx context.Context, client restclient.Client, resource string, body any) (any, error) {
	params, ok := body.(map[string]any)
	if !ok {
		return nil, apperror.Usagef("GET data must be object field/value pairs")
	}
	return client.Get(ctx, resource, queryParams(payload.NormalizeQuery(params)))
}

func doPost(ctx context.Context, client restclient.Client, resource string, body any) (any, error) {
	return client.Post(ctx, resource, body)
}

func doPut(ctx context.Context, client restclient.Client, resource string, body any) (any, error) {
	return client.Put(ctx, resource, body)
}

func doPatch(ctx context.Context, client restclient.Client, resource string, body any) (any, error) {
	return client.Patch(ctx, resource, body)
}

// doDelete substitutes a synthetic value for an empty response so the
// output is always a non-empty JSON value.
func doDelete(ctx context.Context, client restclient.Client, resource string, body any) (any, error) {
	resp, err := client.Delete(ctx, resource, body)
	if err != nil {
		return nil, err
	}
	if payload.IsEmpty(resp) {
		return map[string]any{"Response": "No content"}, nil
	}
	return resp, nil
}

// queryParams renders decoded JSON values as query-string values.
func queryParams(params map[string]any) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch t := v.(type) {
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = strconv.FormatBool(t)
		case nil:
			out[k] = ""
		default:
			b, err := json.Marshal(t)
			if err != nil {
				out[k] = fmt.Sprint(t)
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}
