package chat

// Platform error codes that callers treat as alternate outcomes.
const (
	ErrCodeNotInChannel     = "not_in_channel"
	ErrCodeAlreadyInChannel = "already_in_channel"
	ErrCodeAlreadyInTeam    = "already_in_team"
	ErrCodeAlreadyInvited   = "already_invited"
)
