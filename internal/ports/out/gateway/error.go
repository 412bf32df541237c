package gateway

import (
	"errors"
	"fmt"
)

// Error is a failed call to an external system. Payload carries the raw response for diagnosis.
type Error struct {
	Gateway string
	Op      string
	Status  int
	Payload map[string]any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Gateway + " " + e.Op + " failed"
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Payload) > 0 {
		msg += fmt.Sprintf(" payload=%v", e.Payload)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// As returns the gateway error wrapped in err, if any.
func As(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
