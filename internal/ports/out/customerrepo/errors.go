package customerrepo

import "errors"

var (
	// ErrNotFound indicates the requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
)
