package directory

import "context"

// Group is a directory (mailing) group.
type Group struct {
	Email string
	Name  string
}

// ProgressFunc reports pagination progress: steps done and the current estimate of total steps.
type ProgressFunc func(done, estimated int)

// Service is the organization's group directory.
type Service interface {
	GroupsForDomain(ctx context.Context, domain string, progress ProgressFunc) ([]Group, error)
	MembersOf(ctx context.Context, group string, progress ProgressFunc) ([]string, error)

	// AddMember returns ErrAlreadyMember when the address is already in the group.
	AddMember(ctx context.Context, group, email string) error
	// RemoveMember returns ErrNotMember when the address is not in the group.
	RemoveMember(ctx context.Context, group, email string) error
}
