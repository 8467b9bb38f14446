package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prodcat-hq/catctl/internal/apperror"
	"github.com/prodcat-hq/catctl/internal/config"
	"github.com/prodcat-hq/catctl/internal/logger"
	"github.com/prodcat-hq/catctl/pkg/restclient"
)

// fakeClient returns preset values for every verb.
type fakeClient struct {
	resp any
	err  error
}

func (f *fakeClient) Get(context.Context, string, map[string]string) (any, error) {
	return f.resp, f.err
}
func (f *fakeClient) Post(context.Context, string, any) (any, error)   { return f.resp, f.err }
func (f *fakeClient) Put(context.Context, string, any) (any, error)    { return f.resp, f.err }
func (f *fakeClient) Patch(context.Context, string, any) (any, error)  { return f.resp, f.err }
func (f *fakeClient) Delete(context.Context, string, any) (any, error) { return f.resp, f.err }
func (f *fakeClient) URL(resource string) string {
	return "https://catalog.test/" + resource
}
func (f *fakeClient) Headers() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

func newTestApp(cfg *config.Config, client restclient.Client) (*App, *bytes.Buffer) {
	a := New(cfg, logger.Nop())
	var buf bytes.Buffer
	a.Out = &buf
	a.In = strings.NewReader("")
	a.NewClient = func(restclient.Options) (restclient.Client, error) {
		return client, nil
	}
	return a, &buf
}

func baseConfig() *config.Config {
	return &config.Config{Server: "https://catalog.test", Method: "GET"}
}

func TestRunPrintsSortedIndentedJSON(t *testing.T) {
	client := &fakeClient{resp: map[string]any{"b": json.Number("1"), "a": json.Number("2")}}
	a, buf := newTestApp(baseConfig(), client)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "{\n    \"a\": 2,\n    \"b\": 1\n}\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q; want %q", got, want)
	}
}

func TestRunTransportErrorIsReportedNotReturned(t *testing.T) {
	client := &fakeClient{err: &restclient.APIError{
		StatusCode: 404,
		Status:     "404 Not Found",
		Body:       []byte("not found"),
	}}
	a, buf := newTestApp(baseConfig(), client)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run should swallow transport errors, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "404") {
		t.Fatalf("output missing status code:\n%s", out)
	}
	if !strings.Contains(out, "not found") {
		t.Fatalf("output missing response body:\n%s", out)
	}
}

func TestRunUnsupportedMethodIsReportedNotReturned(t *testing.T) {
	cfg := baseConfig()
	cfg.Method = "HEAD"
	a, buf := newTestApp(cfg, &fakeClient{})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run should swallow dispatch errors, got %v", err)
	}
	if !strings.Contains(buf.String(), "unsupported method") {
		t.Fatalf("output = %q; want unsupported-method message", buf.String())
	}
}

func TestRunGetWithArrayPayloadIsUsageError(t *testing.T) {
	cfg := baseConfig()
	cfg.Data = `["a", "b"]`
	a, buf := newTestApp(cfg, &fakeClient{})

	err := a.Run(context.Background())
	if !errors.Is(err, apperror.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(buf.String(), "field/value pairs") {
		t.Fatalf("output = %q; want usage message", buf.String())
	}
}

func TestRunMalformedPayloadIsUsageError(t *testing.T) {
	cfg := baseConfig()
	cfg.Data = `{"a":`
	a, buf := newTestApp(cfg, &fakeClient{})

	err := a.Run(context.Background())
	if !errors.Is(err, apperror.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(buf.String(), "invalid JSON payload") {
		t.Fatalf("output = %q; want parse failure message", buf.String())
	}
}

func TestRunTracebackAddsStackTrace(t *testing.T) {
	cfg := baseConfig()
	cfg.Traceback = true
	client := &fakeClient{err: errors.New("connection refused")}
	a, buf := newTestApp(cfg, client)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "connection refused") {
		t.Fatalf("output missing error message:\n%s", out)
	}
	if !strings.Contains(out, "goroutine") {
		t.Fatalf("output missing stack trace:\n%s", out)
	}
}

func TestRunClientConstructionErrorIsCaught(t *testing.T) {
	a, buf := newTestApp(baseConfig(), nil)
	a.NewClient = func(restclient.Options) (restclient.Client, error) {
		return nil, fmt.Errorf("read CA bundle: no such file")
	}

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run should swallow construction errors, got %v", err)
	}
	if !strings.Contains(buf.String(), "read CA bundle") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestRunDeleteNoContent(t *testing.T) {
	cfg := baseConfig()
	cfg.Method = "delete"
	cfg.Resource = "products/1"
	a, buf := newTestApp(cfg, &fakeClient{resp: nil})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "{\n    \"Response\": \"No content\"\n}\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q; want %q", got, want)
	}
}

func TestRunReadsPayloadFromStdin(t *testing.T) {
	cfg := baseConfig()
	cfg.Method = "POST"
	cfg.File = "-"
	client := &fakeClient{resp: map[string]any{"ok": true}}
	a, _ := newTestApp(cfg, client)
	a.In = strings.NewReader(`{"name": "widget"}`)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunPanicIsCaught(t *testing.T) {
	cfg := baseConfig()
	cfg.Traceback = true
	a, buf := newTestApp(cfg, nil)
	a.NewClient = func(restclient.Options) (restclient.Client, error) {
		panic("boom")
	}

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run should recover panics, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "boom") {
		t.Fatalf("output missing panic value:\n%s", out)
	}
	if !strings.Contains(out, "goroutine") {
		t.Fatalf("output missing stack trace:\n%s", out)
	}
}
