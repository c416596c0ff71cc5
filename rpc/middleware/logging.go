// Package middleware provides interceptors and HTTP middleware for rpc apps.
package middleware

import (
	"log/slog"
	"time"

	"github.com/broady/tyname/rpc"
)

// LoggingInterceptor logs the start and end of every call with its
// duration. Calls that fail with a client error (invalid_argument,
// not_found, ...) are logged at warn level, other failures at error level.
func LoggingInterceptor(logger *slog.Logger) rpc.UnaryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *rpc.Context, req any, next rpc.HandlerFunc) (any, error) {
		start := time.Now()
		endpoint := slog.String("endpoint", ctx.EndpointID())
		logger.DebugContext(ctx, "request started", endpoint)

		res, err := next(ctx, req)
		duration := slog.Duration("duration", time.Since(start))

		if err == nil {
			logger.InfoContext(ctx, "request completed", endpoint, duration)
			return res, nil
		}

		level := slog.LevelError
		if code := rpc.DefaultErrorTransformer(err).Code; code.HTTPStatus() < 500 {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "request failed", endpoint, duration, slog.Any("error", err))
		return res, err
	}
}
