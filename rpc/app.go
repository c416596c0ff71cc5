// Package rpc is a small typed RPC layer over net/http.
//
// Endpoints are plain functions registered on a service:
//
//	app := rpc.NewApp()
//	svc := app.Service("TypeNames")
//	svc.Register("Format", rpc.Exec(format))
//	svc.Register("Parse", rpc.Query(parse))
//	http.ListenAndServe(":8080", app.Handler())
//
// Exec endpoints are served on POST /{Service}/{Method} with a JSON body;
// Query endpoints on GET with the request decoded from the query string.
// Successful responses are {"result": ...}; failures are
// {"error": {"code", "message", "details"}} with a matching HTTP status.
package rpc

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/broady/tyname/internal/meta"
)

// DefaultMaxRequestBodySize is the request body limit of a new App.
const DefaultMaxRequestBodySize = 1 << 20

// App is the router for RPC endpoints.
type App struct {
	mu                 sync.RWMutex
	routes             map[string]Endpoint
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	middlewares        []func(http.Handler) http.Handler
	logger             *slog.Logger
	maxRequestBodySize uint64
}

// NewApp returns an App with no routes.
func NewApp() *App {
	return &App{
		routes:             make(map[string]Endpoint),
		maxRequestBodySize: DefaultMaxRequestBodySize,
	}
}

// WithErrorTransformer sets a custom error transformer.
func (a *App) WithErrorTransformer(fn ErrorTransformer) *App {
	a.errorTransformer = fn
	return a
}

// WithMaskInternalErrors replaces the message of internal errors with a
// generic one. The original error is still logged.
func (a *App) WithMaskInternalErrors() *App {
	a.maskInternalErrors = true
	return a
}

// WithUnaryInterceptor adds a global interceptor.
//
// Interceptors run in this order, each level in the order added:
//  1. App interceptors
//  2. Service interceptors
//  3. Handler interceptors
//  4. the handler function
func (a *App) WithUnaryInterceptor(i UnaryInterceptor) *App {
	a.interceptors = append(a.interceptors, i)
	return a
}

// WithMiddleware adds an HTTP middleware. The first one added is outermost.
func (a *App) WithMiddleware(mw func(http.Handler) http.Handler) *App {
	a.middlewares = append(a.middlewares, mw)
	return a
}

// WithLogger sets the logger. If not set, slog.Default() is used.
func (a *App) WithLogger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// WithMaxRequestBodySize sets the request body limit for Exec endpoints.
// 0 means no limit.
func (a *App) WithMaxRequestBodySize(size uint64) *App {
	a.maxRequestBodySize = size
	return a
}

// Handler returns the app as an http.Handler, wrapped in its middleware.
func (a *App) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(a.serveHTTP)
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

// Routes returns the registered endpoints as sorted "Service.Method" keys.
func (a *App) Routes() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Sorted(maps.Keys(a.routes))
}

// Service returns a namespace for registering endpoints.
func (a *App) Service(name string) *Service {
	return &Service{app: a, name: name}
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

func (a *App) serveHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			a.log().Error("panic recovered",
				slog.String("path", r.URL.Path),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			msg := fmt.Sprintf("internal server error (panic): %v", rec)
			if a.maskInternalErrors {
				msg = "internal server error"
			}
			writeError(w, NewError(CodeInternal, msg), a.logger)
		}
	}()

	// /{Service}/{Method}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, NewError(CodeNotFound, "route not found"), a.logger)
		return
	}
	service, method := parts[0], parts[1]

	a.mu.RLock()
	endpoint, ok := a.routes[service+"."+method]
	a.mu.RUnlock()
	if !ok {
		writeError(w, NewError(CodeNotFound, "route not found"), a.logger)
		return
	}

	if want := endpoint.Metadata().HTTPMethod(); r.Method != want {
		w.Header().Set("Allow", want)
		writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed, expected %s", r.Method, want), a.logger)
		return
	}

	endpoint.serveHTTP(newRequestContext(w, r, service, method), handlerConfig{
		errorTransformer:   a.errorTransformer,
		maskInternalErrors: a.maskInternalErrors,
		interceptors:       a.interceptors,
		logger:             a.logger,
		maxRequestBodySize: a.maxRequestBodySize,
	})
}

// Service groups endpoints under one name.
type Service struct {
	app          *App
	name         string
	interceptors []UnaryInterceptor
}

// WithUnaryInterceptor adds an interceptor to this service. It runs after
// the App interceptors and before handler interceptors, and applies to
// endpoints registered before and after the call.
func (s *Service) WithUnaryInterceptor(i UnaryInterceptor) *Service {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	s.interceptors = append(s.interceptors, i)
	return s
}

// Register registers an endpoint under name. Registering the same name
// twice replaces the earlier endpoint and logs a warning.
func (s *Service) Register(name string, endpoint Endpoint) {
	key := s.name + "." + name

	s.app.mu.Lock()
	defer s.app.mu.Unlock()

	if _, exists := s.app.routes[key]; exists {
		s.app.log().Warn("duplicate route registration", slog.String("route", key))
	}
	s.app.routes[key] = &serviceEndpoint{inner: endpoint, service: s}
}

// serviceEndpoint adds the service's interceptors after the App's.
type serviceEndpoint struct {
	inner   Endpoint
	service *Service
}

func (e *serviceEndpoint) serveHTTP(ctx *Context, cfg handlerConfig) {
	e.service.app.mu.RLock()
	combined := make([]UnaryInterceptor, 0, len(cfg.interceptors)+len(e.service.interceptors))
	combined = append(combined, cfg.interceptors...)
	combined = append(combined, e.service.interceptors...)
	e.service.app.mu.RUnlock()
	cfg.interceptors = combined
	e.inner.serveHTTP(ctx, cfg)
}

func (e *serviceEndpoint) Metadata() *meta.MethodMetadata {
	return e.inner.Metadata()
}
