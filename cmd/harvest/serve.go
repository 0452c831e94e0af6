package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	harvesthttp "github.com/fwojciec/harvest/http"
)

// shutdownTimeout bounds how long in-flight requests may finish after
// the server is asked to stop.
const shutdownTimeout = 10 * time.Second

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", c.Addr, err)
	}

	var metrics http.Handler
	if deps.Metrics != nil {
		metrics = deps.Metrics.Handler()
	}
	srv := &http.Server{
		Handler:           harvesthttp.NewHandler(deps.Harvester, metrics, deps.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	deps.Logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-deps.Ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
