package app

import (
	"io"
	"net/http"

	"github.com/Gunvolt24/statshub/config"
)

// newHTTPServer — HTTP-сервер API. Shutdown не отменяет контексты активных запросов,
// поэтому при остановке закрываются долгоживущие потоки (SSE), иначе Shutdown
// ждёт их до таймаута.
func newHTTPServer(cfg config.HTTP, handler http.Handler, streams io.Closer) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	if streams != nil {
		srv.RegisterOnShutdown(func() { _ = streams.Close() })
	}
	return srv
}
