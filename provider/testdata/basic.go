// Package testdata contains types for the source provider tests.
package testdata

import (
	"fmt"
	"time"
)

// User is a plain struct with common field shapes.
type User struct {
	ID        string
	Name      string
	Age       *int
	CreatedAt time.Time
	Metadata  map[string]any
	Tags      []string
	Scores    map[string][]float64
	Manager   *User
	Display   fmt.Stringer
	Err       error
	internal  string
}

// Status is a named basic type.
type Status string

// Matrix is a named slice of slices.
type Matrix [][]int

type unexported struct {
	Field string
}

var _ = unexported{}
