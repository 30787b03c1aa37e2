// Package xhttp holds the http plumbing of the watch mode preview server.
package xhttp

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"oss.terrastruct.com/xcontext"
)

// NewServer limits requests to what the preview page sends: small GETs and a websocket.
func NewServer(errorLog *log.Logger, h http.Handler) *http.Server {
	return &http.Server{
		MaxHeaderBytes:    1 << 16,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Hour,
		ErrorLog:          errorLog,
		Handler:           http.MaxBytesHandler(h, 1<<16),
	}
}

// Serve serves on l until ctx is canceled, then shuts s down within shutdownTimeout.
func Serve(ctx context.Context, shutdownTimeout time.Duration, s *http.Server, l net.Listener) error {
	s.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(l)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		ctx, cancel := context.WithTimeout(xcontext.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	}
}
