package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEventType is returned when a stored event has no registered decoder.
var ErrUnknownEventType = errors.New("unknown event type")

var decoders = map[string]func([]byte) (Event, error){
	TypeCustomerCreated:           decodeAs[CustomerCreated],
	TypeCustomerUpdated:           decodeAs[CustomerUpdated],
	TypeCustomerImported:          decodeAs[CustomerImported],
	TypeCustomerDeleted:           decodeAs[CustomerDeleted],
	TypeSubscriptionCreated:       decodeAs[SubscriptionCreated],
	TypeSubscriptionUpdated:       decodeAs[SubscriptionUpdated],
	TypeSubscriptionImported:      decodeAs[SubscriptionImported],
	TypeUserMembershipCreated:     decodeAs[UserMembershipCreated],
	TypeWaiverAccepted:            decodeAs[WaiverAccepted],
	TypeMembershipActivated:       decodeAs[MembershipActivated],
	TypeMembershipDeactivated:     decodeAs[MembershipDeactivated],
	TypeCustomerBecameBoardMember: decodeAs[CustomerBecameBoardMember],
	TypeCustomerRemovedFromBoard:  decodeAs[CustomerRemovedFromBoard],
	TypeWaiverAssignedToCustomer:  decodeAs[WaiverAssignedToCustomer],
}

// EncodeEvent serializes an event for storage, returning its type name and JSON body.
func EncodeEvent(ev Event) (string, []byte, error) {
	if ev == nil {
		return "", nil, errors.New("nil event")
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", ev.EventType(), err)
	}
	return ev.EventType(), b, nil
}

// DecodeEvent turns a stored (type, body) pair back into a typed event.
func DecodeEvent(eventType string, data []byte) (Event, error) {
	dec, ok := decoders[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	ev, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}
	return ev, nil
}

func decodeAs[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
