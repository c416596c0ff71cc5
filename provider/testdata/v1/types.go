// Package v1 contains version 1 types.
package v1

// User is the v1 user type.
type User struct {
	ID string
}
