package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/prodcat-hq/catctl/internal/apperror"
	"github.com/prodcat-hq/catctl/internal/config"
	"github.com/prodcat-hq/catctl/internal/dispatch"
	"github.com/prodcat-hq/catctl/internal/output"
	"github.com/prodcat-hq/catctl/internal/payload"
	"github.com/prodcat-hq/catctl/pkg/restclient"
)

// App wires payload loading, client construction, dispatch, and output into
// the single linear pipeline one invocation runs.
type App struct {
	cfg *config.Config
	log *zap.SugaredLogger

	// Overridable in tests.
	Out       io.Writer
	In        io.Reader
	NewClient func(restclient.Options) (restclient.Client, error)
}

// New builds an App bound to stdin/stdout and the real resty client.
func New(cfg *config.Config, log *zap.SugaredLogger) *App {
	return &App{
		cfg: cfg,
		log: log,
		Out: os.Stdout,
		In:  os.Stdin,
		NewClient: func(opts restclient.Options) (restclient.Client, error) {
			return restclient.New(opts)
		},
	}
}

// Run executes one request. Usage errors are printed and returned as
// apperror.ErrUsage (exit 1); every failure inside the scoped boundary is
// printed and swallowed so the process still exits 0.
func (a *App) Run(ctx context.Context) error {
	body, err := payload.Load(a.cfg.Data, a.cfg.File, a.In)
	if err != nil {
		if errors.Is(err, apperror.ErrUsage) {
			fmt.Fprintln(a.Out, err)
			return apperror.ErrUsage
		}
		return err
	}
	a.log.Debugw("payload resolved",
		"inline", a.cfg.Data != "",
		"file", a.cfg.File,
	)

	var (
		result any
		done   bool
	)
	err = a.runScoped(func() error {
		client, err := a.NewClient(restclient.Options{
			Server:   a.cfg.Server,
			Insecure: a.cfg.Insecure,
			CACert:   a.cfg.CACert,
			Comment:  a.cfg.Comment,
		})
		if err != nil {
			return err
		}
		d := dispatch.New(client, a.cfg.Debug, a.Out)
		res, err := d.Dispatch(ctx, a.cfg.Method, a.cfg.Resource, body)
		if err != nil {
			return err
		}
		result = res
		done = true
		return nil
	})
	if err != nil {
		return err
	}
	if !done {
		// The failure was already reported inside the boundary.
		return nil
	}
	return output.Print(a.Out, result)
}

// runScoped is the scoped execution boundary around client construction and
// dispatch. It reports any failure instead of propagating it, so a failed
// request still ends the process with exit code 0. Only usage errors escape.
func (a *App) runScoped(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(a.Out, r)
			if a.cfg.Traceback {
				a.Out.Write(debug.Stack())
			}
		}
	}()

	callErr := fn()
	if callErr == nil {
		return nil
	}
	if errors.Is(callErr, apperror.ErrUsage) {
		fmt.Fprintln(a.Out, callErr)
		return apperror.ErrUsage
	}
	a.report(callErr)
	return nil
}

// report prints a caught failure: status code and body for API errors, the
// plain message otherwise, plus a stack trace when --traceback is set.
func (a *App) report(err error) {
	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(a.Out, "%d\n%s\n", apiErr.StatusCode, apiErr.Body)
	} else {
		fmt.Fprintln(a.Out, err)
	}
	if a.cfg.Traceback {
		a.Out.Write(debug.Stack())
	}
	a.log.Debugw("request failed", "error", err)
}
