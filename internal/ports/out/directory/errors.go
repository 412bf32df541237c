package directory

import "errors"

var (
	// ErrAlreadyMember indicates the address is already a member of the group.
	ErrAlreadyMember = errors.New("already a group member")

	// ErrNotMember indicates the address is not a member of the group.
	ErrNotMember = errors.New("not a group member")
)
