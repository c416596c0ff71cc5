package rpc

import (
	"context"
	"net/http"
)

type contextKey struct {
	name string
}

var rpcContextKey = &contextKey{"rpc"}

// Context carries the metadata of the current call. Handlers receive it as
// their context.Context; interceptors receive it directly.
type Context struct {
	context.Context
	service string
	method  string
	request *http.Request
	writer  http.ResponseWriter
}

// NewContext returns a Context for service.method without an HTTP request.
// It is useful for calling interceptors directly.
func NewContext(parent context.Context, service, method string) *Context {
	return &Context{Context: parent, service: service, method: method}
}

func newRequestContext(w http.ResponseWriter, r *http.Request, service, method string) *Context {
	return &Context{
		Context: r.Context(),
		service: service,
		method:  method,
		request: r,
		writer:  w,
	}
}

// Value returns c for the package's own key and defers to the parent otherwise.
func (c *Context) Value(key any) any {
	if key == rpcContextKey {
		return c
	}
	return c.Context.Value(key)
}

// Service returns the service name.
func (c *Context) Service() string { return c.service }

// Method returns the method name.
func (c *Context) Method() string { return c.method }

// EndpointID returns "Service.Method".
func (c *Context) EndpointID() string { return c.service + "." + c.method }

// HTTPRequest returns the underlying request, or nil outside an HTTP call.
func (c *Context) HTTPRequest() *http.Request { return c.request }

// SetHeader sets a response header. It is a no-op outside an HTTP call.
func (c *Context) SetHeader(key, value string) {
	if c.writer != nil {
		c.writer.Header().Set(key, value)
	}
}

// FromContext extracts the call Context from ctx, including contexts
// derived from it with context.WithTimeout and friends.
func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(rpcContextKey).(*Context)
	return c, ok
}
