package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/trh-dashboard/internal/core/config"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/health"
	middleware "github.com/mohammed-shakir/trh-dashboard/internal/core/middleware"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/router"
)

const maxBodyBytes = 32 << 20

// Routes builds the dashboard router. metrics may be nil.
func Routes(logger *slog.Logger, d router.Deps, ready map[string]health.Pinger, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.MaxBody(maxBodyBytes))

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(2*time.Second, ready))
	if metrics != nil {
		r.Get("/metrics", metrics.ServeHTTP)
	}

	r.Get("/", router.HandleIndex(logger, d))
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", router.HandleLayout(d))
		r.Post("/render/{entry}", router.HandleRender(logger, d))
		r.Post("/update", router.HandleUpdate(logger, d))
		r.Get("/export/yearly.png", router.HandleExportYearly(logger, d))
		r.Put("/sessions/{id}", router.HandlePutSession(logger, d))
		r.Get("/sessions/{id}/meta", router.HandleGetMeta(logger, d))
	})
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, h http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
