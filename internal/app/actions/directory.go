package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/directory"
)

// AddToDirectoryGroup adds an address to a group. email overrides the customer's stored address.
func (e *Executor) AddToDirectoryGroup(ctx context.Context, id domain.CustomerID, email, group string) error {
	addr, err := e.emailFor(ctx, id, email)
	if err != nil {
		return err
	}
	if err := e.dir.AddMember(ctx, group, addr); err != nil && !errors.Is(err, directory.ErrAlreadyMember) {
		return err
	}
	return nil
}

func (e *Executor) RemoveFromDirectoryGroup(ctx context.Context, id domain.CustomerID, email, group string) error {
	addr, err := e.emailFor(ctx, id, email)
	if err != nil {
		return err
	}
	if err := e.dir.RemoveMember(ctx, group, addr); err != nil && !errors.Is(err, directory.ErrNotMember) {
		return err
	}
	return nil
}

func (e *Executor) emailFor(ctx context.Context, id domain.CustomerID, email string) (string, error) {
	if email = domain.NormalizeEmail(email); email != "" {
		return email, nil
	}
	c, err := e.customer(ctx, id)
	if err != nil {
		return "", err
	}
	if c.Email == "" {
		return "", permanent(fmt.Errorf("%w: customer %s has no email", ErrInvalidRecipient, id))
	}
	return c.Email, nil
}
