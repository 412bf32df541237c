package actions

import (
	"errors"
	"fmt"

	"github.com/denhac/membership-sync/internal/ports/out/chat"
	"github.com/denhac/membership-sync/internal/ports/out/gateway"
)

var (
	// ErrUnknownKind indicates a job kind this executor does not implement.
	ErrUnknownKind = errors.New("unknown job kind")

	// ErrNoChatAccount indicates the customer has not linked a chat account.
	ErrNoChatAccount = errors.New("customer has no chat account")

	// ErrInvalidRecipient indicates a message recipient that cannot be resolved.
	ErrInvalidRecipient = errors.New("invalid message recipient")

	// ErrUnknownCustomer indicates the job names a customer missing from the read model.
	ErrUnknownCustomer = errors.New("unknown customer")
)

// permanentError marks failures that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err should go straight to the dead-letter queue.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// unexpected turns a non-ok platform response into a permanent gateway error carrying the full payload.
func unexpected(op string, resp chat.Response) error {
	return permanent(&gateway.Error{
		Gateway: "slack",
		Op:      op,
		Payload: resp.Payload,
		Err:     fmt.Errorf("unexpected response %q", resp.Error),
	})
}
