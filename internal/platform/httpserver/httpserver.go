// Package httpserver wraps http.Server construction so main stays small and
// timeouts are consistent across the app and metrics listeners.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an http.Server with sane timeouts for a small internal service.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
