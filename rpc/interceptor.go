package rpc

import "context"

// HandlerFunc is the next step of an interceptor chain.
type HandlerFunc func(ctx context.Context, req any) (res any, err error)

// UnaryInterceptor wraps handler execution:
//
//	func timing(ctx *rpc.Context, req any, next rpc.HandlerFunc) (any, error) {
//	    start := time.Now()
//	    res, err := next(ctx, req)
//	    slog.Info("call", "endpoint", ctx.EndpointID(), "took", time.Since(start))
//	    return res, err
//	}
//
// An interceptor may inspect or replace the request and response, or return
// an error without calling next.
type UnaryInterceptor func(ctx *Context, req any, next HandlerFunc) (res any, err error)

// chainInterceptors combines interceptors into one; the first runs outermost.
func chainInterceptors(interceptors []UnaryInterceptor) UnaryInterceptor {
	switch len(interceptors) {
	case 0:
		return nil
	case 1:
		return interceptors[0]
	}
	return func(ctx *Context, req any, final HandlerFunc) (any, error) {
		chain := final
		for i := len(interceptors) - 1; i >= 0; i-- {
			current, next := interceptors[i], chain
			chain = func(c context.Context, req any) (any, error) {
				rc, ok := c.(*Context)
				if !ok {
					// An interceptor wrapped the context; keep our metadata.
					if rc, ok = FromContext(c); !ok {
						rc = ctx
					}
					rc = &Context{Context: c, service: rc.service, method: rc.method, request: rc.request, writer: rc.writer}
				}
				return current(rc, req, next)
			}
		}
		return chain(ctx, req)
	}
}
