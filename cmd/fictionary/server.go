package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/CTAG07/Fictionary/pkg/library"
)

// shutdownTimeout bounds how long in-flight requests may take once a
// shutdown signal arrives.
const shutdownTimeout = 10 * time.Second

// newAPIHandler registers every API route on a fresh mux.
func newAPIHandler(lib *library.Library, config *Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	NewServerAPI().RegisterRoutes(mux)
	NewFictionaryAPI(lib, config, logger).RegisterRoutes(mux)
	return logRequests(logger, mux)
}

func cmdServe(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("serve", "[-addr address]")
	addr := fs.String("addr", DefaultConfig().ApiAddr, "the address to listen on")
	set, err := a.parse(fs, common, args)
	if err != nil {
		return err
	}
	if err = wantArgs(fs, 0, 0); err != nil {
		return err
	}
	if !set["addr"] {
		*addr = a.config.ApiAddr
	}

	lib, closeLib, err := a.openLibrary(ctx, true)
	if err != nil {
		return err
	}
	defer closeLib()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newAPIHandler(lib, a.config, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting api server", "address", srv.Addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err = <-errChan:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Signal received, stopping api server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Api server shutdown failed", "error", err)
		return err
	}
	a.logger.Info("Api server stopped.")
	return nil
}
