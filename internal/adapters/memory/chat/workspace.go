package chat

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/denhac/membership-sync/internal/ports/out/chat"
	"github.com/denhac/membership-sync/internal/ports/out/gateway"
)

// Message is a posted message.
type Message struct {
	To   string
	Text string
}

// Workspace is an in-memory chat workspace. The bot starts outside every channel.
// It is safe for concurrent use.
type Workspace struct {
	mu sync.Mutex

	users        map[string]chat.User
	channels     map[string]map[string]bool
	botIn        map[string]bool
	userGroups   map[string][]string
	disabled     map[string]bool
	profiles     map[string]map[string]string
	accountTypes map[string]chat.AccountType
	invited      []chat.Invitee
	messages     []Message

	scripted map[string][]chat.Response
	calls    []string
}

func NewWorkspace(users ...chat.User) *Workspace {
	w := &Workspace{
		users:        make(map[string]chat.User),
		channels:     make(map[string]map[string]bool),
		botIn:        make(map[string]bool),
		userGroups:   make(map[string][]string),
		disabled:     make(map[string]bool),
		profiles:     make(map[string]map[string]string),
		accountTypes: make(map[string]chat.AccountType),
		scripted:     make(map[string][]chat.Response),
	}
	for _, u := range users {
		w.users[u.ID] = u
	}
	return w
}

// Script queues a canned response for the next call of op ("kick", "invite", "join", "invite_to_workspace").
func (w *Workspace) Script(op string, resp chat.Response) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scripted[op] = append(w.scripted[op], resp)
}

// AddToChannel seeds channel membership.
func (w *Workspace) AddToChannel(channelID string, userIDs ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, u := range userIDs {
		w.member(channelID)[u] = true
	}
}

func (w *Workspace) ChannelMembers(channelID string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0)
	for u, in := range w.channels[channelID] {
		if in {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out
}

func (w *Workspace) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

func (w *Workspace) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.messages...)
}

func (w *Workspace) Invited() []chat.Invitee {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]chat.Invitee(nil), w.invited...)
}

func (w *Workspace) AccountType(userID string) chat.AccountType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accountTypes[userID]
}

func (w *Workspace) ProfileField(userID, fieldID string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.profiles[userID][fieldID]
}

func (w *Workspace) ListUsers(ctx context.Context) ([]chat.User, error) {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]chat.User, 0, len(w.users))
	for _, u := range w.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (w *Workspace) Kick(ctx context.Context, userID, channelID string) (chat.Response, error) {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, "kick:"+channelID+":"+userID)
	if resp, ok := w.next("kick"); ok {
		return resp, nil
	}
	if !w.botIn[channelID] {
		return notOK(chat.ErrCodeNotInChannel), nil
	}
	delete(w.member(channelID), userID)
	return chat.Response{OK: true}, nil
}

func (w *Workspace) Invite(ctx context.Context, userID, channelID string) (chat.Response, error) {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, "invite:"+channelID+":"+userID)
	if resp, ok := w.next("invite"); ok {
		return resp, nil
	}
	if !w.botIn[channelID] {
		return notOK(chat.ErrCodeNotInChannel), nil
	}
	if w.member(channelID)[userID] {
		return notOK(chat.ErrCodeAlreadyInChannel), nil
	}
	w.member(channelID)[userID] = true
	return chat.Response{OK: true}, nil
}

func (w *Workspace) Join(ctx context.Context, channelID string) (chat.Response, error) {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, "join:"+channelID)
	if resp, ok := w.next("join"); ok {
		return resp, nil
	}
	w.botIn[channelID] = true
	return chat.Response{OK: true}, nil
}

func (w *Workspace) UserGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.userGroups[groupID]...), nil
}

func (w *Workspace) SetUserGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, "usergroup:"+groupID)
	if len(userIDs) == 0 {
		return &gateway.Error{
			Gateway: "slack",
			Op:      "usergroups.users.update",
			Payload: map[string]any{"ok": false, "error": "no_users_provided"},
			Err:     errors.New("no_users_provided"),
		}
	}
	w.userGroups[groupID] = append([]string(nil), userIDs...)
	return nil
}

// DisableUserGroup disables the group and drops its members.
func (w *Workspace) DisableUserGroup(ctx context.Context, groupID string) error {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, "usergroup-disable:"+groupID)
	w.disabled[groupID] = true
	delete(w.userGroups, groupID)
	return nil
}

func (w *Workspace) EnableUserGroup(ctx context.Context, groupID string) error {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, "usergroup-enable:"+groupID)
	delete(w.disabled, groupID)
	return nil
}

// UserGroupDisabled reports whether the group was disabled and not enabled since.
func (w *Workspace) UserGroupDisabled(groupID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disabled[groupID]
}

func (w *Workspace) PostMessage(ctx context.Context, channelOrUserID, text string) error {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, Message{To: channelOrUserID, Text: text})
	return nil
}

func (w *Workspace) SetProfileField(ctx context.Context, userID, fieldID, value string) error {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.profiles[userID] == nil {
		w.profiles[userID] = make(map[string]string)
	}
	w.profiles[userID][fieldID] = value
	return nil
}

func (w *Workspace) SetAccountType(ctx context.Context, userID string, t chat.AccountType, channelIDs ...string) error {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accountTypes[userID] = t
	u := w.users[userID]
	u.ID = userID
	u.IsRestricted = t == chat.AccountRestricted
	u.IsUltraRestricted = t == chat.AccountUltraRestricted
	w.users[userID] = u
	for _, ch := range channelIDs {
		w.member(ch)[userID] = true
	}
	return nil
}

func (w *Workspace) InviteToWorkspace(ctx context.Context, who chat.Invitee, t chat.AccountType, channelIDs ...string) (chat.Response, error) {
	_ = ctx
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, "invite_to_workspace:"+string(t)+":"+who.Email)
	if resp, ok := w.next("invite_to_workspace"); ok {
		return resp, nil
	}
	for _, prev := range w.invited {
		if prev.Email == who.Email {
			return notOK(chat.ErrCodeAlreadyInvited), nil
		}
	}
	w.invited = append(w.invited, who)
	return chat.Response{OK: true}, nil
}

func (w *Workspace) next(op string) (chat.Response, bool) {
	q := w.scripted[op]
	if len(q) == 0 {
		return chat.Response{}, false
	}
	w.scripted[op] = q[1:]
	return q[0], true
}

func (w *Workspace) member(channelID string) map[string]bool {
	m, ok := w.channels[channelID]
	if !ok {
		m = make(map[string]bool)
		w.channels[channelID] = m
	}
	return m
}

func notOK(code string) chat.Response {
	return chat.Response{OK: false, Error: code, Payload: map[string]any{"ok": false, "error": code}}
}
