package jobqueue

import (
	"context"

	"github.com/denhac/membership-sync/internal/domain"
)

// Kind names an Action.
type Kind string

const (
	KindAddToChannel             Kind = "add_to_channel"
	KindRemoveFromChannel        Kind = "remove_from_channel"
	KindAddToUserGroup           Kind = "add_to_user_group"
	KindRemoveFromUserGroup      Kind = "remove_from_user_group"
	KindAddToDirectoryGroup      Kind = "add_to_directory_group"
	KindRemoveFromDirectoryGroup Kind = "remove_from_directory_group"
	KindUpdateSlackProfile       Kind = "update_slack_profile_membership"
	KindMakeRegularMember        Kind = "make_regular_member"
	KindDemoteToPublicOnly       Kind = "demote_to_public_only"
	KindInviteNeedIDCheckOnly    Kind = "invite_need_id_check_only"
	KindSendMessage              Kind = "send_message"
)

// Job is one scheduled Action. Only the fields its Kind needs are set.
// Identity (slack id, email) is resolved from CustomerID when the job runs, not when it is scheduled.
type Job struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	CustomerID domain.CustomerID `json:"customer_id,omitempty"`

	// Channel and UserGroup are logical names resolved by the executor.
	Channel   string `json:"channel,omitempty"`
	UserGroup string `json:"user_group,omitempty"`
	// Group is a directory group address.
	Group string `json:"group,omitempty"`
	// Email overrides the customer's email for directory actions.
	Email string `json:"email,omitempty"`

	// Recipient is a raw chat id or a decimal customer id.
	Recipient string `json:"recipient,omitempty"`
	Text      string `json:"text,omitempty"`

	Attempt int `json:"attempt"`
}

// Queue schedules jobs for asynchronous execution.
type Queue interface {
	Enqueue(ctx context.Context, jobs ...Job) error
}

// Handler executes one job.
type Handler func(ctx context.Context, job Job) error
