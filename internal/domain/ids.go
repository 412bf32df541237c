package domain

import (
	"strconv"
	"strings"
)

// CustomerID is the stable e-commerce identifier of a customer (woo_id).
type CustomerID int64

func (id CustomerID) String() string { return strconv.FormatInt(int64(id), 10) }

// StreamID names the event stream that holds this customer's aggregate.
func (id CustomerID) StreamID() string { return "customer-" + id.String() }

// ParseCustomerID parses a decimal customer id.
func ParseCustomerID(s string) (CustomerID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return CustomerID(n), nil
}

// SubscriptionID identifies an e-commerce subscription.
type SubscriptionID int64

// PlanID identifies a user membership plan (equipment authorizations and the like).
type PlanID int64

// WaiverID is the identifier assigned by the waiver platform.
type WaiverID string

// StreamID names the event stream that holds facts about an unassigned waiver.
func (id WaiverID) StreamID() string { return "waiver-" + string(id) }

// SlackID is a chat platform user id (e.g. "U012AB3CD").
type SlackID string
