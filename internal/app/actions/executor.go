// Package actions executes scheduled jobs against the chat platform and the group directory.
//
// Every action checks the target state first or treats "already in the desired state" as
// success, so a job can run any number of times.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/chat"
	"github.com/denhac/membership-sync/internal/ports/out/customerrepo"
	"github.com/denhac/membership-sync/internal/ports/out/directory"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

// Config resolves logical names used in jobs to platform ids.
type Config struct {
	// Channels and UserGroups map logical names to ids. Unmapped names are used as ids.
	Channels   map[string]string
	UserGroups map[string]string

	// PublicChannels are the channels a public-only (restricted) account keeps.
	PublicChannels []string
	// NeedIDCheckChannel is the single channel of a need-id-check guest.
	NeedIDCheckChannel string

	// MembershipFieldID is the profile field showing membership; empty disables profile updates.
	MembershipFieldID string
}

const (
	profileMember    = "Member"
	profileNonMember = "Not a member"
)

type Executor struct {
	chat      chat.Platform
	dir       directory.Service
	customers customerrepo.Repository
	cfg       Config
	log       *logger.Logger
}

func NewExecutor(chatPlatform chat.Platform, dir directory.Service, customers customerrepo.Repository, cfg Config, log *logger.Logger) *Executor {
	return &Executor{
		chat:      chatPlatform,
		dir:       dir,
		customers: customers,
		cfg:       cfg,
		log:       log,
	}
}

// Execute runs one job.
func (e *Executor) Execute(ctx context.Context, job jobqueue.Job) error {
	switch job.Kind {
	case jobqueue.KindAddToChannel:
		return e.AddToChannel(ctx, job.CustomerID, job.Channel)
	case jobqueue.KindRemoveFromChannel:
		return e.RemoveFromChannel(ctx, job.CustomerID, job.Channel)
	case jobqueue.KindAddToUserGroup:
		return e.AddToUserGroup(ctx, job.CustomerID, job.UserGroup)
	case jobqueue.KindRemoveFromUserGroup:
		return e.RemoveFromUserGroup(ctx, job.CustomerID, job.UserGroup)
	case jobqueue.KindAddToDirectoryGroup:
		return e.AddToDirectoryGroup(ctx, job.CustomerID, job.Email, job.Group)
	case jobqueue.KindRemoveFromDirectoryGroup:
		return e.RemoveFromDirectoryGroup(ctx, job.CustomerID, job.Email, job.Group)
	case jobqueue.KindUpdateSlackProfile:
		return e.UpdateProfileMembership(ctx, job.CustomerID)
	case jobqueue.KindMakeRegularMember:
		return e.MakeRegularMember(ctx, job.CustomerID)
	case jobqueue.KindDemoteToPublicOnly:
		return e.DemoteToPublicOnly(ctx, job.CustomerID)
	case jobqueue.KindInviteNeedIDCheckOnly:
		return e.InviteNeedIDCheckOnly(ctx, job.CustomerID)
	case jobqueue.KindSendMessage:
		var to any = job.CustomerID
		if job.Recipient != "" {
			to = job.Recipient
		}
		return e.SendMessage(ctx, to, job.Text)
	default:
		return permanent(fmt.Errorf("%w: %q", ErrUnknownKind, job.Kind))
	}
}

func (e *Executor) customer(ctx context.Context, id domain.CustomerID) (domain.Customer, error) {
	c, err := e.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customerrepo.ErrNotFound) {
			return domain.Customer{}, permanent(fmt.Errorf("%w: %s", ErrUnknownCustomer, id))
		}
		return domain.Customer{}, err
	}
	return c, nil
}

func (e *Executor) chatUser(ctx context.Context, id domain.CustomerID) (string, error) {
	c, err := e.customer(ctx, id)
	if err != nil {
		return "", err
	}
	if c.SlackID == "" {
		return "", permanent(fmt.Errorf("%w: customer %s", ErrNoChatAccount, id))
	}
	return string(c.SlackID), nil
}

func (e *Executor) channelID(name string) string {
	if id, ok := e.cfg.Channels[name]; ok && id != "" {
		return id
	}
	return name
}

func (e *Executor) channelIDs(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, e.channelID(n))
	}
	return out
}

func (e *Executor) userGroupID(name string) string {
	if id, ok := e.cfg.UserGroups[name]; ok && id != "" {
		return id
	}
	return name
}
