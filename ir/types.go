// Package ir defines the Type Descriptor model: a language-agnostic structural
// description of a type (name, nesting, generic arguments, compound wrapping)
// that the tyname formatter renders into canonical type-name strings and that
// the companion parser reconstructs from them.
package ir

// PackageInfo describes the Go package a catalog was built from.
type PackageInfo struct {
	// Path is the import path (e.g., "github.com/foo/bar").
	Path string

	// Name is the package name (e.g., "bar").
	Name string

	// Module is the assembly identity derived from the owning module
	// (e.g., "github.com/foo, Version=v1.2.0").
	Module string
}

// IsZero returns true if the package info is empty.
func (p PackageInfo) IsZero() bool {
	return p.Path == "" && p.Name == "" && p.Module == ""
}

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Warning represents a non-fatal issue found while building or checking descriptors.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}
