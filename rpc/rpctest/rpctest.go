// Package rpctest provides helpers for testing rpc endpoints over HTTP.
//
//	res := rpctest.Post("/TypeNames/Format").
//	    JSON(api.FormatRequest{Type: ir.Value{Type: ir.Int32()}}).
//	    Do(t, app.Handler())
//	res.AssertStatus(http.StatusOK)
//	var out api.FormatResponse
//	res.Decode(&out)
package rpctest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/broady/tyname/rpc"
)

// Request builds a test HTTP request.
type Request struct {
	method string
	target string
	body   []byte
	header http.Header
	query  url.Values
}

// NewRequest starts a request with the given HTTP method and target.
func NewRequest(method, target string) *Request {
	return &Request{method: method, target: target, header: make(http.Header), query: make(url.Values)}
}

// Get starts a GET request, the method of query endpoints.
func Get(target string) *Request { return NewRequest(http.MethodGet, target) }

// Post starts a POST request, the method of exec endpoints.
func Post(target string) *Request { return NewRequest(http.MethodPost, target) }

// JSON marshals v as the request body.
func (r *Request) JSON(v any) *Request {
	data, err := json.Marshal(v)
	if err != nil {
		panic("rpctest: " + err.Error())
	}
	r.body = data
	r.header.Set("Content-Type", "application/json")
	return r
}

// Body sets a raw request body.
func (r *Request) Body(s string) *Request {
	r.body = []byte(s)
	return r
}

// Header sets a request header.
func (r *Request) Header(key, value string) *Request {
	r.header.Set(key, value)
	return r
}

// Query adds a query parameter.
func (r *Request) Query(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// Do serves the request with h.
func (r *Request) Do(t testing.TB, h http.Handler) *Response {
	t.Helper()
	target := r.target
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	var body io.Reader
	if len(r.body) > 0 {
		body = bytes.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, target, body)
	for k, v := range r.header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return &Response{ResponseRecorder: w, t: t}
}

// Response is a recorded response with envelope-aware assertions.
type Response struct {
	*httptest.ResponseRecorder
	t testing.TB
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *rpc.Error      `json:"error"`
}

func (r *Response) envelope() envelope {
	r.t.Helper()
	var env envelope
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		r.t.Fatalf("response is not a JSON envelope: %v\nBody: %s", err, r.Body.String())
	}
	return env
}

// Error returns the error of an error response, or nil for a success.
func (r *Response) Error() *rpc.Error {
	r.t.Helper()
	return r.envelope().Error
}

// Decode unmarshals the result into v. It fails the test on an error response.
func (r *Response) Decode(v any) {
	r.t.Helper()
	env := r.envelope()
	if env.Error != nil {
		r.t.Fatalf("expected success, got %s: %s", env.Error.Code, env.Error.Message)
	}
	if err := json.Unmarshal(env.Result, v); err != nil {
		r.t.Fatalf("decoding result: %v\nResult: %s", err, env.Result)
	}
}

// AssertStatus checks the HTTP status code.
func (r *Response) AssertStatus(want int) {
	r.t.Helper()
	if r.Code != want {
		r.t.Errorf("status = %d, want %d\nBody: %s", r.Code, want, r.Body.String())
	}
}

// AssertError checks for an error response with code and returns the error.
func (r *Response) AssertError(code rpc.ErrorCode) *rpc.Error {
	r.t.Helper()
	env := r.envelope()
	if env.Error == nil {
		r.t.Fatalf("expected %s error, got result: %s", code, env.Result)
	}
	if env.Error.Code != code {
		r.t.Errorf("error code = %s, want %s (message: %s)", env.Error.Code, code, env.Error.Message)
	}
	if got := r.Code; got != code.HTTPStatus() {
		r.t.Errorf("status = %d, want %d", got, code.HTTPStatus())
	}
	return env.Error
}

// AssertHeader checks a response header.
func (r *Response) AssertHeader(key, want string) {
	r.t.Helper()
	if got := r.Header().Get(key); got != want {
		r.t.Errorf("header %s = %q, want %q", key, got, want)
	}
}
