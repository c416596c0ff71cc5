package api

import "github.com/broady/tyname/ir"

// FormatRequest asks for the name of one descriptor.
type FormatRequest struct {
	// Type is the descriptor in its JSON wire form.
	Type ir.Value `json:"type"`
	// Mode is display, fullname or assemblyqualified. Empty uses the
	// service default.
	Mode string `json:"mode,omitempty"`
}

// FormatResponse is the outcome of formatting one descriptor.
type FormatResponse struct {
	Name string `json:"name"`
	// OK is false when the type has no name in the requested mode, which
	// happens for open generic types in the strict modes.
	OK       bool      `json:"ok"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// FormatBatchRequest formats many descriptors in one mode.
type FormatBatchRequest struct {
	Types []ir.Value `json:"types" validate:"min=1,max=1000"`
	Mode  string     `json:"mode,omitempty"`
}

// FormatBatchResponse holds one result per request type, in request order.
type FormatBatchResponse struct {
	Results []FormatResponse `json:"results"`
}

// ParseRequest is decoded from the query string of a GET request.
type ParseRequest struct {
	Name string `schema:"name" validate:"required"`
	Mode string `schema:"mode"`
}

// ParseResponse returns the parsed descriptor and its canonical name.
type ParseResponse struct {
	Type ir.Value `json:"type"`
	Name string   `json:"name"`
	OK   bool     `json:"ok"`
}

// LintRequest checks a descriptor without formatting it.
type LintRequest struct {
	Type ir.Value `json:"type"`
}

// LintResponse lists round-trip warnings and contract violations.
// Warnings are only computed for valid descriptors.
type LintResponse struct {
	Warnings []Warning `json:"warnings"`
	Errors   []Issue   `json:"errors"`
}

// Warning is the wire form of ir.Warning.
type Warning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	TypeName string `json:"type_name,omitempty"`
}

// Issue is the wire form of an ir.ValidationError.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toWarnings(ws []ir.Warning) []Warning {
	out := make([]Warning, len(ws))
	for i, w := range ws {
		out[i] = Warning{Code: w.Code, Message: w.Message, TypeName: w.TypeName}
	}
	return out
}
