package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/denhac/membership-sync/internal/domain"
)

// SendMessage posts text to a recipient given as a customer, a customer id (numeric or
// decimal string) or a raw chat id starting with "U" (user) or "C" (channel).
func (e *Executor) SendMessage(ctx context.Context, to any, text string) error {
	target, err := e.ResolveRecipient(ctx, to)
	if err != nil {
		return err
	}
	return e.chat.PostMessage(ctx, target, text)
}

// ResolveRecipient turns any accepted recipient form into a single chat id.
func (e *Executor) ResolveRecipient(ctx context.Context, to any) (string, error) {
	switch v := to.(type) {
	case domain.Customer:
		return slackIDOf(v)
	case *domain.Customer:
		if v == nil {
			return "", permanent(ErrInvalidRecipient)
		}
		return slackIDOf(*v)
	case domain.CustomerID:
		return e.chatUser(ctx, v)
	case int:
		return e.chatUser(ctx, domain.CustomerID(v))
	case int64:
		return e.chatUser(ctx, domain.CustomerID(v))
	case domain.SlackID:
		return e.ResolveRecipient(ctx, string(v))
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "U") || strings.HasPrefix(s, "C") {
			return s, nil
		}
		id, err := domain.ParseCustomerID(s)
		if err != nil {
			return "", permanent(fmt.Errorf("%w: %q", ErrInvalidRecipient, v))
		}
		return e.chatUser(ctx, id)
	default:
		return "", permanent(fmt.Errorf("%w: %T", ErrInvalidRecipient, to))
	}
}

func slackIDOf(c domain.Customer) (string, error) {
	if c.SlackID == "" {
		return "", permanent(fmt.Errorf("%w: customer %s", ErrNoChatAccount, c.ID))
	}
	return string(c.SlackID), nil
}
