package chat

import "context"

// User is a chat platform account.
type User struct {
	ID       string
	Name     string
	RealName string

	IsBot             bool
	Deleted           bool
	IsRestricted      bool
	IsUltraRestricted bool
	IsInvitedUser     bool
}

// IsFullAccount reports whether the account is a live, unrestricted account.
func (u User) IsFullAccount() bool {
	return !u.Deleted && !u.IsRestricted && !u.IsUltraRestricted
}

// Response is the platform's answer to a mutating call. Error holds the platform's error
// code (e.g. "not_in_channel") when OK is false.
type Response struct {
	OK      bool
	Error   string
	Payload map[string]any
}

// AccountType is the membership tier of a chat account.
type AccountType string

const (
	AccountRegular AccountType = "regular"
	// AccountRestricted is a multi-channel guest.
	AccountRestricted AccountType = "restricted"
	// AccountUltraRestricted is a single-channel guest.
	AccountUltraRestricted AccountType = "ultra_restricted"
)

// Invitee is someone invited to the workspace by email.
type Invitee struct {
	Email     string
	FirstName string
	LastName  string
}

// Platform is the chat workspace.
//
// Kick, Invite, Join and InviteToWorkspace report expected alternate outcomes through
// Response rather than error; error is reserved for transport failures.
type Platform interface {
	ListUsers(ctx context.Context) ([]User, error)

	Kick(ctx context.Context, userID, channelID string) (Response, error)
	Invite(ctx context.Context, userID, channelID string) (Response, error)
	Join(ctx context.Context, channelID string) (Response, error)

	UserGroupMembers(ctx context.Context, groupID string) ([]string, error)
	// SetUserGroupMembers replaces a group's members. The list must not be empty; a group
	// is emptied by disabling it.
	SetUserGroupMembers(ctx context.Context, groupID string, userIDs []string) error
	DisableUserGroup(ctx context.Context, groupID string) error
	EnableUserGroup(ctx context.Context, groupID string) error

	PostMessage(ctx context.Context, channelOrUserID, text string) error
	SetProfileField(ctx context.Context, userID, fieldID, value string) error

	SetAccountType(ctx context.Context, userID string, t AccountType, channelIDs ...string) error
	InviteToWorkspace(ctx context.Context, who Invitee, t AccountType, channelIDs ...string) (Response, error)
}
