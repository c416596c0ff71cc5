package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/broady/tyname/api"
	"github.com/broady/tyname/internal/config"
	"github.com/broady/tyname/rpc"
	"github.com/broady/tyname/rpc/middleware"
)

type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to [server].addr."`
}

func (c *ServeCmd) Run(e *env) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	logger := cfg.Log.NewLogger(e.stderr)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newHandler(cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving", slog.String("addr", cfg.Server.Addr), slog.String("config", cfg.Path))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newHandler wires the TypeNames service with logging and CORS.
func newHandler(cfg *config.Config, logger *slog.Logger) http.Handler {
	app := rpc.NewApp().
		WithLogger(logger).
		WithMaxRequestBodySize(cfg.Server.MaxBodyBytes).
		WithUnaryInterceptor(middleware.LoggingInterceptor(logger)).
		WithMiddleware(middleware.CORS(&middleware.CORSConfig{AllowedOrigins: cfg.Server.CORSOrigins}))
	if cfg.Server.MaskInternalErrors {
		app.WithMaskInternalErrors()
	}

	svc := api.New()
	svc.DefaultMode = cfg.Format.Mode
	svc.BatchLimit = cfg.Server.BatchLimit
	svc.Register(app)
	return app.Handler()
}
