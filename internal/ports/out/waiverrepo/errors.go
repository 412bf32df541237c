package waiverrepo

import "errors"

var (
	// ErrNotFound indicates the requested waiver does not exist.
	ErrNotFound = errors.New("waiver not found")
)
