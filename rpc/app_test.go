package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type echoRequest struct {
	Name  string `json:"name" schema:"name" validate:"required"`
	Count int    `json:"count" schema:"count" validate:"gte=0"`
}

type echoResponse struct {
	Message string `json:"message"`
}

func echo(ctx context.Context, req echoRequest) (echoResponse, error) {
	return echoResponse{Message: strings.Repeat(req.Name, max(req.Count, 1))}, nil
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not JSON: %q", w.Body.String())
	}
	return w, env
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestApp_ExecAndQuery(t *testing.T) {
	app := NewApp().WithLogger(quietLogger())
	svc := app.Service("Echo")
	svc.Register("Say", Exec(echo))
	svc.Register("Get", Query(echo).CacheControl(time.Minute))
	svc.Register("GetPtr", Query(func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Message: req.Name}, nil
	}))
	h := app.Handler()

	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		wantStatus  int
		wantMessage string
		wantCode    ErrorCode
	}{
		{"exec", "POST", "/Echo/Say", `{"name":"ab","count":2}`, 200, "abab", ""},
		{"query", "GET", "/Echo/Get?name=x&count=3", "", 200, "xxx", ""},
		{"query pointer request", "GET", "/Echo/GetPtr?name=p", "", 200, "p", ""},
		{"unknown query keys ignored", "GET", "/Echo/Get?name=y&extra=1", "", 200, "y", ""},
		{"validation", "POST", "/Echo/Say", `{"count":1}`, 400, "", CodeInvalidArgument},
		{"bad json", "POST", "/Echo/Say", `{"name":`, 400, "", CodeInvalidArgument},
		{"empty body fails validation", "POST", "/Echo/Say", "", 400, "", CodeInvalidArgument},
		{"bad query value", "GET", "/Echo/Get?name=x&count=abc", "", 400, "", CodeInvalidArgument},
		{"wrong method", "GET", "/Echo/Say", "", 405, "", CodeMethodNotAllowed},
		{"unknown route", "POST", "/Echo/Nope", "{}", 404, "", CodeNotFound},
		{"malformed path", "POST", "/Echo", "{}", 404, "", CodeNotFound},
		{"too deep", "POST", "/Echo/Say/More", "{}", 404, "", CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, h, tt.method, tt.target, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" {
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
				}
				return
			}
			var res echoResponse
			if err := json.Unmarshal(env.Result, &res); err != nil {
				t.Fatalf("result: %v", err)
			}
			if res.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", res.Message, tt.wantMessage)
			}
		})
	}

	w, _ := do(t, h, "GET", "/Echo/Get?name=x", "")
	if got := w.Header().Get("Cache-Control"); got != "max-age=60" {
		t.Errorf("Cache-Control = %q, want max-age=60", got)
	}
	w, _ = do(t, h, "GET", "/Echo/Say", "")
	if got := w.Header().Get("Allow"); got != "POST" {
		t.Errorf("Allow = %q, want POST", got)
	}
}

func TestApp_InterceptorOrder(t *testing.T) {
	var order []string
	record := func(name string) UnaryInterceptor {
		return func(ctx *Context, req any, next HandlerFunc) (any, error) {
			order = append(order, name+":"+ctx.EndpointID())
			return next(ctx, req)
		}
	}

	app := NewApp().WithUnaryInterceptor(record("app"))
	svc := app.Service("Echo").WithUnaryInterceptor(record("service"))
	svc.Register("Say", Exec(echo).WithUnaryInterceptor(record("handler")))

	w, _ := do(t, app.Handler(), "POST", "/Echo/Say", `{"name":"a"}`)
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	want := []string{"app:Echo.Say", "service:Echo.Say", "handler:Echo.Say"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestService_InterceptorAddedAfterRegister(t *testing.T) {
	var calls int
	count := func(ctx *Context, req any, next HandlerFunc) (any, error) {
		calls++
		return next(ctx, req)
	}

	app := NewApp()
	svc := app.Service("Echo")
	svc.Register("Say", Exec(echo))
	svc.WithUnaryInterceptor(count)

	w, _ := do(t, app.Handler(), "POST", "/Echo/Say", `{"name":"a"}`)
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	if calls != 1 {
		t.Errorf("service interceptor ran %d times, want 1", calls)
	}
}

func TestApp_InterceptorWrapsContext(t *testing.T) {
	type key struct{}
	wrap := func(ctx *Context, req any, next HandlerFunc) (any, error) {
		return next(context.WithValue(ctx, key{}, "v"), req)
	}
	var seen string
	check := func(ctx *Context, req any, next HandlerFunc) (any, error) {
		seen = ctx.EndpointID()
		if ctx.Value(key{}) != "v" {
			return nil, errors.New("value lost")
		}
		return next(ctx, req)
	}

	app := NewApp().WithUnaryInterceptor(wrap).WithUnaryInterceptor(check)
	app.Service("Echo").Register("Say", Exec(echo))

	w, env := do(t, app.Handler(), "POST", "/Echo/Say", `{"name":"a"}`)
	if w.Code != 200 {
		t.Fatalf("status = %d, error = %+v", w.Code, env.Error)
	}
	if seen != "Echo.Say" {
		t.Errorf("EndpointID = %q after wrapping", seen)
	}
}

func TestApp_InterceptorShortCircuit(t *testing.T) {
	deny := func(ctx *Context, req any, next HandlerFunc) (any, error) {
		return nil, NewError(CodeResourceExhausted, "slow down")
	}
	called := false
	app := NewApp().WithUnaryInterceptor(deny)
	app.Service("Echo").Register("Say", Exec(func(ctx context.Context, req echoRequest) (echoResponse, error) {
		called = true
		return echoResponse{}, nil
	}))

	w, env := do(t, app.Handler(), "POST", "/Echo/Say", `{"name":"a"}`)
	if w.Code != http.StatusTooManyRequests || env.Error.Code != CodeResourceExhausted {
		t.Errorf("status = %d, error = %+v", w.Code, env.Error)
	}
	if called {
		t.Error("handler should not run")
	}
}

func TestApp_Errors(t *testing.T) {
	fail := Exec(func(ctx context.Context, req echoRequest) (echoResponse, error) {
		return echoResponse{}, errors.New("database password is hunter2")
	})
	boom := Exec(func(ctx context.Context, req echoRequest) (echoResponse, error) {
		panic("kaboom")
	})

	t.Run("internal error visible", func(t *testing.T) {
		app := NewApp().WithLogger(quietLogger())
		app.Service("S").Register("Fail", fail)
		w, env := do(t, app.Handler(), "POST", "/S/Fail", `{"name":"a"}`)
		if w.Code != 500 || !strings.Contains(env.Error.Message, "hunter2") {
			t.Errorf("status = %d, error = %+v", w.Code, env.Error)
		}
	})

	t.Run("internal error masked", func(t *testing.T) {
		var logs bytes.Buffer
		app := NewApp().WithMaskInternalErrors().WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))
		app.Service("S").Register("Fail", fail)
		w, env := do(t, app.Handler(), "POST", "/S/Fail", `{"name":"a"}`)
		if w.Code != 500 || env.Error.Message != "internal server error" {
			t.Errorf("status = %d, error = %+v", w.Code, env.Error)
		}
		if !strings.Contains(logs.String(), "hunter2") {
			t.Error("masked error should still be logged")
		}
	})

	t.Run("custom transformer", func(t *testing.T) {
		app := NewApp().WithErrorTransformer(func(err error) *Error {
			return NewError(CodeUnavailable, "try later")
		})
		app.Service("S").Register("Fail", fail)
		w, env := do(t, app.Handler(), "POST", "/S/Fail", `{"name":"a"}`)
		if w.Code != 503 || env.Error.Code != CodeUnavailable {
			t.Errorf("status = %d, error = %+v", w.Code, env.Error)
		}
	})

	t.Run("panic recovered", func(t *testing.T) {
		app := NewApp().WithLogger(quietLogger()).WithMaskInternalErrors()
		app.Service("S").Register("Boom", boom)
		w, env := do(t, app.Handler(), "POST", "/S/Boom", `{"name":"a"}`)
		if w.Code != 500 || env.Error.Message != "internal server error" {
			t.Errorf("status = %d, error = %+v", w.Code, env.Error)
		}
	})
}

func TestApp_MaxRequestBodySize(t *testing.T) {
	app := NewApp().WithMaxRequestBodySize(16)
	svc := app.Service("Echo")
	svc.Register("Say", Exec(echo))
	svc.Register("Big", Exec(echo).WithMaxRequestBodySize(0))
	h := app.Handler()

	body := `{"name":"` + strings.Repeat("a", 64) + `"}`
	w, env := do(t, h, "POST", "/Echo/Say", body)
	if w.Code != http.StatusRequestEntityTooLarge || env.Error.Code != CodeRequestTooLarge {
		t.Errorf("status = %d, error = %+v", w.Code, env.Error)
	}
	if w, _ := do(t, h, "POST", "/Echo/Big", body); w.Code != 200 {
		t.Errorf("handler override: status = %d", w.Code)
	}
}

func TestApp_MiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	app := NewApp().WithMiddleware(mw("outer")).WithMiddleware(mw("inner"))
	app.Service("Echo").Register("Say", Exec(echo))
	do(t, app.Handler(), "POST", "/Echo/Say", `{"name":"a"}`)
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}

func TestApp_RoutesAndDuplicates(t *testing.T) {
	var logs bytes.Buffer
	app := NewApp().WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	app.Service("B").Register("Two", Exec(echo))
	app.Service("A").Register("One", Query(echo))
	app.Service("A").Register("One", Query(echo))

	if got := strings.Join(app.Routes(), ","); got != "A.One,B.Two" {
		t.Errorf("Routes() = %s", got)
	}
	if !strings.Contains(logs.String(), "duplicate route registration") {
		t.Error("duplicate registration should be logged")
	}
}

func TestHandler_Metadata(t *testing.T) {
	m := Query(echo).CacheControl(time.Second).Metadata()
	if m.Primitive != "query" || m.HTTPMethod() != "GET" || m.CacheTTL != time.Second {
		t.Errorf("query metadata = %+v", m)
	}
	if m.Request.Name() != "echoRequest" || m.Response.Name() != "echoResponse" {
		t.Errorf("types = %v, %v", m.Request, m.Response)
	}
	if got := Exec(echo).Metadata().HTTPMethod(); got != "POST" {
		t.Errorf("exec method = %s", got)
	}
}
