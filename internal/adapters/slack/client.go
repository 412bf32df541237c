// Package slack implements the chat platform port on the Slack Web API.
package slack

import (
	"context"
	"errors"
	"strings"

	"github.com/slack-go/slack"

	"github.com/denhac/membership-sync/internal/ports/out/chat"
	"github.com/denhac/membership-sync/internal/ports/out/gateway"
)

type Options struct {
	Token string
	// AdminToken authorizes the users.admin endpoints; Token is used when empty.
	AdminToken string
	// Team is the workspace subdomain the admin endpoints are addressed to.
	Team string
	// APIURL overrides the Web API base URL.
	APIURL string
}

// Client is a chat.Platform backed by Slack.
type Client struct {
	api   *slack.Client
	admin *slack.Client
	team  string
}

func New(opts Options) *Client {
	var clientOpts []slack.Option
	if opts.APIURL != "" {
		clientOpts = append(clientOpts, slack.OptionAPIURL(opts.APIURL))
	}
	adminToken := opts.AdminToken
	if adminToken == "" {
		adminToken = opts.Token
	}
	return &Client{
		api:   slack.New(opts.Token, clientOpts...),
		admin: slack.New(adminToken, clientOpts...),
		team:  opts.Team,
	}
}

func (c *Client) ListUsers(ctx context.Context) ([]chat.User, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, wrap("users.list", err)
	}
	out := make([]chat.User, 0, len(users))
	for _, u := range users {
		out = append(out, chat.User{
			ID:                u.ID,
			Name:              u.Name,
			RealName:          u.RealName,
			IsBot:             u.IsBot,
			Deleted:           u.Deleted,
			IsRestricted:      u.IsRestricted,
			IsUltraRestricted: u.IsUltraRestricted,
			IsInvitedUser:     u.IsInvitedUser,
		})
	}
	return out, nil
}

func (c *Client) Kick(ctx context.Context, userID, channelID string) (chat.Response, error) {
	err := c.api.KickUserFromConversationContext(ctx, channelID, userID)
	return respond("conversations.kick", err)
}

func (c *Client) Invite(ctx context.Context, userID, channelID string) (chat.Response, error) {
	_, err := c.api.InviteUsersToConversationContext(ctx, channelID, userID)
	return respond("conversations.invite", err)
}

func (c *Client) Join(ctx context.Context, channelID string) (chat.Response, error) {
	_, _, _, err := c.api.JoinConversationContext(ctx, channelID)
	return respond("conversations.join", err)
}

func (c *Client) UserGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	members, err := c.api.GetUserGroupMembersContext(ctx, groupID)
	if err != nil {
		return nil, wrap("usergroups.users.list", err)
	}
	return members, nil
}

func (c *Client) SetUserGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	if _, err := c.api.UpdateUserGroupMembersContext(ctx, groupID, strings.Join(userIDs, ",")); err != nil {
		return wrap("usergroups.users.update", err)
	}
	return nil
}

func (c *Client) DisableUserGroup(ctx context.Context, groupID string) error {
	if _, err := c.api.DisableUserGroupContext(ctx, groupID); err != nil {
		return wrap("usergroups.disable", err)
	}
	return nil
}

func (c *Client) EnableUserGroup(ctx context.Context, groupID string) error {
	if _, err := c.api.EnableUserGroupContext(ctx, groupID); err != nil {
		return wrap("usergroups.enable", err)
	}
	return nil
}

func (c *Client) PostMessage(ctx context.Context, channelOrUserID, text string) error {
	if _, _, err := c.api.PostMessageContext(ctx, channelOrUserID, slack.MsgOptionText(text, false)); err != nil {
		return wrap("chat.postMessage", err)
	}
	return nil
}

func (c *Client) SetProfileField(ctx context.Context, userID, fieldID, value string) error {
	err := c.admin.SetUserCustomFieldsContext(ctx, userID, map[string]slack.UserProfileCustomField{
		fieldID: {Value: value},
	})
	if err != nil {
		return wrap("users.profile.set", err)
	}
	return nil
}

func (c *Client) SetAccountType(ctx context.Context, userID string, t chat.AccountType, channelIDs ...string) error {
	var (
		op  string
		err error
	)
	switch t {
	case chat.AccountRegular:
		op, err = "users.admin.setRegular", c.admin.SetRegularContext(ctx, c.team, userID)
	case chat.AccountRestricted:
		op, err = "users.admin.setRestricted", c.admin.SetRestrictedContext(ctx, c.team, userID, channelIDs...)
	case chat.AccountUltraRestricted:
		if len(channelIDs) == 0 {
			return errors.New("single-channel guest needs a channel")
		}
		op, err = "users.admin.setUltraRestricted", c.admin.SetUltraRestrictedContext(ctx, c.team, userID, channelIDs[0])
	default:
		return errors.New("unknown account type " + string(t))
	}
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

func (c *Client) InviteToWorkspace(ctx context.Context, who chat.Invitee, t chat.AccountType, channelIDs ...string) (chat.Response, error) {
	switch t {
	case chat.AccountRegular:
		err := c.admin.InviteToTeamContext(ctx, c.team, who.FirstName, who.LastName, who.Email)
		return respond("users.admin.invite", err)
	case chat.AccountRestricted:
		err := c.admin.InviteRestrictedContext(ctx, c.team, strings.Join(channelIDs, ","), who.FirstName, who.LastName, who.Email)
		return respond("users.admin.invite", err)
	case chat.AccountUltraRestricted:
		if len(channelIDs) == 0 {
			return chat.Response{}, errors.New("single-channel guest needs a channel")
		}
		err := c.admin.InviteGuestContext(ctx, c.team, channelIDs[0], who.FirstName, who.LastName, who.Email)
		return respond("users.admin.invite", err)
	default:
		return chat.Response{}, errors.New("unknown account type " + string(t))
	}
}

// adminErrorPrefix is how the users.admin helpers report a non-ok response.
const adminErrorPrefix = "Slack error: "

// errorCode extracts the platform error code from a non-ok response.
func errorCode(err error) (string, []string, bool) {
	var se slack.SlackErrorResponse
	if errors.As(err, &se) {
		return se.Err, se.ResponseMetadata.Messages, true
	}
	if msg := err.Error(); strings.HasPrefix(msg, adminErrorPrefix) {
		return strings.TrimPrefix(msg, adminErrorPrefix), nil, true
	}
	return "", nil, false
}

// respond turns a platform-level failure into a non-ok Response and leaves transport
// failures as errors.
func respond(op string, err error) (chat.Response, error) {
	if err == nil {
		return chat.Response{OK: true}, nil
	}
	code, messages, ok := errorCode(err)
	if !ok {
		return chat.Response{}, wrap(op, err)
	}
	return chat.Response{OK: false, Error: code, Payload: payload(code, messages)}, nil
}

func wrap(op string, err error) error {
	ge := &gateway.Error{Gateway: "slack", Op: op, Err: err}
	var rl *slack.RateLimitedError
	if errors.As(err, &rl) {
		ge.Status = 429
	}
	var sc slack.StatusCodeError
	if errors.As(err, &sc) {
		ge.Status = sc.Code
	}
	if code, messages, ok := errorCode(err); ok {
		ge.Payload = payload(code, messages)
	}
	return ge
}

func payload(code string, messages []string) map[string]any {
	p := map[string]any{"ok": false, "error": code}
	if len(messages) > 0 {
		p["response_metadata"] = map[string]any{"messages": messages}
	}
	return p
}
