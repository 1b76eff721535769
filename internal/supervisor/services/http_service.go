// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPServer is the part of *http.Server the service drives.
//
// Tests substitute a fake so the supervision logic can be exercised
// without binding a port. *http.Server satisfies it through:
//   - ListenAndServe() error
//   - Shutdown(ctx context.Context) error
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the Waypoint API server under the api layer of
// the supervisor tree.
//
// http.Server blocks in ListenAndServe while suture expects Serve to
// return when its context ends. The service bridges the two:
//
//  1. ListenAndServe runs in its own goroutine
//  2. Serve waits for that goroutine to fail or for ctx to end
//  3. On ctx end, Shutdown drains in-flight requests within shutdownTimeout
//
// A listen failure (port in use, bad address) is returned so suture
// restarts the service with backoff.
//
// Example usage:
//
//	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService wraps server.
//
// shutdownTimeout bounds how long open requests may run once shutdown
// starts. A non-positive value means 10 seconds.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service.
//
// It returns:
//   - a wrapped listen error if the server stops on its own
//   - a wrapped shutdown error if draining exceeds the timeout
//   - ctx.Err() after a clean shutdown
//
// http.ErrServerClosed is the normal result of Shutdown and is not
// reported.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	// Buffered so the goroutine can exit even if Serve already returned.
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled; shutdown needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		// Wait for ListenAndServe to return before reporting.
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture's logs.
func (h *HTTPServerService) String() string {
	return h.name
}
