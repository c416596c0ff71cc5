package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/broady/tyname/internal/meta"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate      = validator.New(validator.WithRequiredStructEnabled())
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Endpoint is a registrable handler. It is created with Exec or Query and
// cannot be implemented outside this package.
type Endpoint interface {
	Metadata() *meta.MethodMetadata
	serveHTTP(ctx *Context, cfg handlerConfig)
}

// handlerConfig is what the App and Service pass down to a handler.
type handlerConfig struct {
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	logger             *slog.Logger
	maxRequestBodySize uint64
}

// Handler serves one Request/Response pair.
type Handler[Req any, Res any] struct {
	fn                 func(context.Context, Req) (Res, error)
	primitive          string
	cacheTTL           time.Duration
	interceptors       []UnaryInterceptor
	maxRequestBodySize *uint64
}

// Exec creates a handler for a POST endpoint with a JSON request body.
func Exec[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, primitive: meta.PrimitiveExec}
}

// Query creates a handler for a GET endpoint whose request is decoded from
// the query string. Query handlers should have no side effects.
func Query[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, primitive: meta.PrimitiveQuery}
}

// WithUnaryInterceptor adds an interceptor that runs after the global and
// service interceptors.
func (h *Handler[Req, Res]) WithUnaryInterceptor(i UnaryInterceptor) *Handler[Req, Res] {
	h.interceptors = append(h.interceptors, i)
	return h
}

// WithMaxRequestBodySize overrides the App's request body limit. 0 means no limit.
func (h *Handler[Req, Res]) WithMaxRequestBodySize(size uint64) *Handler[Req, Res] {
	h.maxRequestBodySize = &size
	return h
}

// CacheControl sets a max-age on successful responses of a Query handler.
func (h *Handler[Req, Res]) CacheControl(ttl time.Duration) *Handler[Req, Res] {
	h.cacheTTL = ttl
	return h
}

// Metadata returns the runtime metadata for the handler.
func (h *Handler[Req, Res]) Metadata() *meta.MethodMetadata {
	return &meta.MethodMetadata{
		Primitive: h.primitive,
		Request:   reflect.TypeFor[Req](),
		Response:  reflect.TypeFor[Res](),
		CacheTTL:  h.cacheTTL,
	}
}

func (h *Handler[Req, Res]) serveHTTP(ctx *Context, cfg handlerConfig) {
	req, err := h.decode(ctx, cfg)
	if err != nil {
		handleError(ctx, err, cfg)
		return
	}

	interceptors := make([]UnaryInterceptor, 0, len(cfg.interceptors)+len(h.interceptors))
	interceptors = append(interceptors, cfg.interceptors...)
	interceptors = append(interceptors, h.interceptors...)

	final := func(c context.Context, reqAny any) (any, error) {
		typed, ok := reqAny.(Req)
		if !ok {
			return nil, Errorf(CodeInternal, "interceptor changed request type to %T", reqAny)
		}
		return h.fn(c, typed)
	}

	var res any
	if chain := chainInterceptors(interceptors); chain != nil {
		res, err = chain(ctx, req, final)
	} else {
		res, err = final(ctx, req)
	}
	if err != nil {
		handleError(ctx, err, cfg)
		return
	}

	ctx.writer.Header().Set("Content-Type", "application/json")
	if h.cacheTTL > 0 && h.primitive == meta.PrimitiveQuery {
		ctx.writer.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(h.cacheTTL.Seconds())))
	}
	if err := encodeResponse(ctx.writer, res); err != nil {
		// The response may be partially written.
		loggerOf(cfg).ErrorContext(ctx, "failed to encode response",
			slog.String("endpoint", ctx.EndpointID()),
			slog.Any("error", err))
	}
}

// decode reads and validates the request from the query string or body.
func (h *Handler[Req, Res]) decode(ctx *Context, cfg handlerConfig) (Req, error) {
	var req Req
	r := ctx.request

	if h.primitive == meta.PrimitiveQuery {
		// schema wants a pointer to a struct; Req may itself be a pointer.
		target := reflect.New(reflect.TypeFor[Req]())
		dst := target.Interface()
		if t := target.Elem(); t.Kind() == reflect.Pointer {
			t.Set(reflect.New(t.Type().Elem()))
			dst = t.Interface()
		}
		if err := schemaDecoder.Decode(dst, r.URL.Query()); err != nil {
			return req, Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
		}
		req = target.Elem().Interface().(Req)
	} else if r.Body != nil {
		limit := cfg.maxRequestBodySize
		if h.maxRequestBodySize != nil {
			limit = *h.maxRequestBodySize
		}
		body := io.Reader(r.Body)
		if limit > 0 {
			body = http.MaxBytesReader(ctx.writer, r.Body, int64(limit))
		}
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return req, err
			}
			return req, Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
		}
	}

	if v := reflect.ValueOf(req); v.Kind() == reflect.Struct || (v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Struct) {
		if err := validate.Struct(req); err != nil {
			return req, err
		}
	}
	return req, nil
}

func handleError(ctx *Context, err error, cfg handlerConfig) {
	var svcErr *Error
	if cfg.errorTransformer != nil {
		svcErr = cfg.errorTransformer(err)
	}
	if svcErr == nil {
		svcErr = DefaultErrorTransformer(err)
	}
	if svcErr.Code == CodeInternal {
		loggerOf(cfg).ErrorContext(ctx, "internal error",
			slog.String("endpoint", ctx.EndpointID()),
			slog.Any("error", err))
		if cfg.maskInternalErrors {
			svcErr = NewError(CodeInternal, "internal server error")
		}
	}
	writeError(ctx.writer, svcErr, cfg.logger)
}

func loggerOf(cfg handlerConfig) *slog.Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return slog.Default()
}
