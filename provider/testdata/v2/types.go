// Package v2 contains version 2 types.
package v2

import v1 "github.com/broady/tyname/provider/testdata/v1"

// User is the v2 user type.
type User struct {
	ID       string
	Previous *v1.User
}
