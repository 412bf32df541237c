package actions

import (
	"context"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/chat"
)

// AddToChannel invites the customer's chat account to a channel. If the bot is not in the
// channel it joins first and retries once.
func (e *Executor) AddToChannel(ctx context.Context, id domain.CustomerID, channel string) error {
	user, err := e.chatUser(ctx, id)
	if err != nil {
		return err
	}
	channelID := e.channelID(channel)
	return e.withRejoin(ctx, "conversations.invite", channelID, func() (chat.Response, error) {
		return e.chat.Invite(ctx, user, channelID)
	})
}

// RemoveFromChannel kicks the customer's chat account from a channel, joining and retrying
// once when the bot is not in the channel.
func (e *Executor) RemoveFromChannel(ctx context.Context, id domain.CustomerID, channel string) error {
	user, err := e.chatUser(ctx, id)
	if err != nil {
		return err
	}
	channelID := e.channelID(channel)
	return e.withRejoin(ctx, "conversations.kick", channelID, func() (chat.Response, error) {
		return e.chat.Kick(ctx, user, channelID)
	})
}

func (e *Executor) withRejoin(ctx context.Context, op, channelID string, call func() (chat.Response, error)) error {
	resp, err := call()
	if err != nil {
		return err
	}
	if resp.OK || resp.Error == chat.ErrCodeAlreadyInChannel {
		return nil
	}
	if resp.Error != chat.ErrCodeNotInChannel {
		return unexpected(op, resp)
	}

	e.log.Debug("joining channel before retry", "channel", channelID, "op", op)
	joined, err := e.chat.Join(ctx, channelID)
	if err != nil {
		return err
	}
	if !joined.OK {
		return unexpected("conversations.join", joined)
	}
	resp, err = call()
	if err != nil {
		return err
	}
	if resp.OK || resp.Error == chat.ErrCodeAlreadyInChannel {
		return nil
	}
	return unexpected(op, resp)
}

func (e *Executor) AddToUserGroup(ctx context.Context, id domain.CustomerID, group string) error {
	user, err := e.chatUser(ctx, id)
	if err != nil {
		return err
	}
	groupID := e.userGroupID(group)
	members, err := e.chat.UserGroupMembers(ctx, groupID)
	if err != nil {
		return err
	}
	if contains(members, user) {
		return nil
	}
	if len(members) == 0 {
		// An empty group is a disabled one.
		if err := e.chat.EnableUserGroup(ctx, groupID); err != nil {
			return err
		}
	}
	return e.chat.SetUserGroupMembers(ctx, groupID, append(members, user))
}

func (e *Executor) RemoveFromUserGroup(ctx context.Context, id domain.CustomerID, group string) error {
	user, err := e.chatUser(ctx, id)
	if err != nil {
		return err
	}
	groupID := e.userGroupID(group)
	members, err := e.chat.UserGroupMembers(ctx, groupID)
	if err != nil {
		return err
	}
	if !contains(members, user) {
		return nil
	}
	kept := make([]string, 0, len(members)-1)
	for _, m := range members {
		if m != user {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		e.log.Info("last member left user group, disabling it", "group", group, "customer_id", id)
		return e.chat.DisableUserGroup(ctx, groupID)
	}
	return e.chat.SetUserGroupMembers(ctx, groupID, kept)
}

// UpdateProfileMembership writes the customer's current member flag into their chat profile.
func (e *Executor) UpdateProfileMembership(ctx context.Context, id domain.CustomerID) error {
	if e.cfg.MembershipFieldID == "" {
		return nil
	}
	c, err := e.customer(ctx, id)
	if err != nil {
		return err
	}
	if c.SlackID == "" {
		return nil
	}
	value := profileNonMember
	if c.Member {
		value = profileMember
	}
	return e.chat.SetProfileField(ctx, string(c.SlackID), e.cfg.MembershipFieldID, value)
}

// MakeRegularMember upgrades the customer's account, or invites them when they have none.
func (e *Executor) MakeRegularMember(ctx context.Context, id domain.CustomerID) error {
	c, err := e.customer(ctx, id)
	if err != nil {
		return err
	}
	if c.SlackID != "" {
		return e.chat.SetAccountType(ctx, string(c.SlackID), chat.AccountRegular)
	}
	return e.invite(ctx, c, chat.AccountRegular)
}

// DemoteToPublicOnly turns the customer's account into a guest of the public channels.
func (e *Executor) DemoteToPublicOnly(ctx context.Context, id domain.CustomerID) error {
	c, err := e.customer(ctx, id)
	if err != nil {
		return err
	}
	if c.SlackID == "" {
		return nil
	}
	return e.chat.SetAccountType(ctx, string(c.SlackID), chat.AccountRestricted, e.channelIDs(e.cfg.PublicChannels)...)
}

// InviteNeedIDCheckOnly invites a customer awaiting an ID check as a single-channel guest.
// Customers who already have an account are left alone.
func (e *Executor) InviteNeedIDCheckOnly(ctx context.Context, id domain.CustomerID) error {
	c, err := e.customer(ctx, id)
	if err != nil {
		return err
	}
	if c.SlackID != "" {
		return nil
	}
	return e.invite(ctx, c, chat.AccountUltraRestricted, e.channelID(e.cfg.NeedIDCheckChannel))
}

func (e *Executor) invite(ctx context.Context, c domain.Customer, t chat.AccountType, channels ...string) error {
	if c.Email == "" {
		return permanent(ErrInvalidRecipient)
	}
	if len(channels) == 0 {
		channels = e.channelIDs(e.cfg.PublicChannels)
	}
	resp, err := e.chat.InviteToWorkspace(ctx, chat.Invitee{
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}, t, channels...)
	if err != nil {
		return err
	}
	switch {
	case resp.OK, resp.Error == chat.ErrCodeAlreadyInTeam, resp.Error == chat.ErrCodeAlreadyInvited:
		return nil
	default:
		return unexpected("admin.users.invite", resp)
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
