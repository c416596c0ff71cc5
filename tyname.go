// Package tyname renders type descriptors as canonical type-name strings and
// parses those strings back into descriptors.
//
// The grammar produced by Format is:
//
//	typeName       := nestedName genericArgs? compoundSuffix* assemblyQual?
//	nestedName     := (namespace '.')? name ('+' name)*
//	genericArgs    := '[' genericArg (',' genericArg)* ']'
//	genericArg     := '[' typeName ']'
//	compoundSuffix := '*' | '&' | '[]' | '[*]' | '[' ','* ']'
//	assemblyQual   := ',' ' ' assemblyIdentity
//
// For example, a pair of int and string defined in Acme renders in
// AssemblyQualified mode as:
//
//	Acme.Pair[[System.Int32, System.Private.CoreLib, ...],[System.String, System.Private.CoreLib, ...]], Acme, Version=1.0.0.0
//
// Name components are written verbatim; there is no escaping. Use ir.Lint to
// find names that would not survive a round trip through Parse.
//
// Format and Parse are pure functions: they keep no shared state and are safe
// for concurrent use on shared, read-only descriptors.
package tyname

import (
	"fmt"
	"strings"
)

// ContractError reports a descriptor that violates the input contract of
// Format (nil descriptors, non-positive ranks, cyclic nesting, ...).
// Format panics with a *ContractError; these are programming errors.
// Callers handling untrusted descriptors should run ir.Validate first.
type ContractError struct {
	Errors []error
}

func (e *ContractError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "tyname: invalid type descriptor: " + strings.Join(msgs, "; ")
}

// Unwrap returns the underlying validation errors.
func (e *ContractError) Unwrap() []error {
	return e.Errors
}

// ParseError reports a malformed type-name string.
type ParseError struct {
	// Input is the complete string being parsed.
	Input string

	// Offset is the byte offset where parsing failed.
	Offset int

	// Msg describes the problem.
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tyname: cannot parse %q at offset %d: %s", e.Input, e.Offset, e.Msg)
}
