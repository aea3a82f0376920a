package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkarvon/fitplan/internal/errors"
)

const defaultTimeout = 2 * time.Second

// LogAddrKey is the log attribute carrying the listen address. Tests scrape it
// to find a dynamically assigned port.
const LogAddrKey = "addr"

// configureAndStartServer configures and starts the HTTP server.
func (app *application) configureAndStartServer(ctx context.Context, addr string, handler http.Handler) error {
	var err error
	shutdownComplete := make(chan struct{})
	idleTimeout := time.Minute
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           handler,
		IdleTimeout:       idleTimeout,
		ReadTimeout:       defaultTimeout,
		WriteTimeout:      defaultTimeout,
		ReadHeaderTimeout: time.Second,
	}
	go func() {
		sigint := make(chan os.Signal, 1)

		signal.Notify(sigint, os.Interrupt)
		signal.Notify(sigint, syscall.SIGTERM)

		<-sigint
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")

		shutdownContext, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownContext); shutdownErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "error shutting down server",
				errors.SlogError(errors.Wrap(shutdownErr, "shutdown server")))
		}
		close(shutdownComplete)
	}()

	var listener net.Listener
	if listener, err = net.Listen("tcp", addr); err != nil {
		return errors.Wrap(err, "TCP listen", slog.String("addr", addr))
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.String(LogAddrKey, listener.Addr().String()))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server serve")
	}
	<-shutdownComplete

	return nil
}
