package rpc

import (
	"encoding/json"
	"io"
)

// response is the envelope for successful responses: {"result": ...}.
type response struct {
	Result any `json:"result"`
}

// errorResponse is the envelope for error responses: {"error": {...}}.
type errorResponse struct {
	Error *Error `json:"error"`
}

func encodeResponse(w io.Writer, result any) error {
	return json.NewEncoder(w).Encode(response{Result: result})
}

func encodeErrorResponse(w io.Writer, err *Error) error {
	return json.NewEncoder(w).Encode(errorResponse{Error: err})
}
