package cardrepo

import "errors"

var (
	// ErrNotFound indicates the requested card does not exist.
	ErrNotFound = errors.New("card not found")
)
