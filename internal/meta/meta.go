// Package meta holds endpoint metadata shared by the rpc package and its
// callers. The type lives in an internal package so rpc.Endpoint stays sealed.
package meta

import (
	"reflect"
	"time"
)

// Primitives select the HTTP shape of an endpoint.
const (
	PrimitiveExec  = "exec"  // POST with a JSON body
	PrimitiveQuery = "query" // GET with a query string
)

// MethodMetadata describes a registered endpoint.
type MethodMetadata struct {
	Primitive string
	Request   reflect.Type
	Response  reflect.Type
	CacheTTL  time.Duration
}

// HTTPMethod returns the HTTP method the primitive is served on.
func (m *MethodMetadata) HTTPMethod() string {
	if m.Primitive == PrimitiveQuery {
		return "GET"
	}
	return "POST"
}
