// Package httpserver builds the *http.Server with the project's timeouts.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New returns a server whose timeouts bound slow clients. The request
// handler chain applies its own, shorter, per-request deadline. Server-level
// errors (TLS handshakes, hijack failures) go to logger at warn level.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    64 << 10,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}
