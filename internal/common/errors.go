// Package common defines sentinel errors shared across the gateway's
// layers. Callers match them with errors.Is; the HTTP layer translates
// them into status codes.
package common

import "errors"

var (
	// repository errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// token lifecycle errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenClaimed = errors.New("token already claimed")

	// path normalization errors
	ErrInvalidPath = errors.New("invalid path")
)
