// Package woocommerce reads customers and subscriptions from the WooCommerce REST API
// and translates its JSON into domain facts.
package woocommerce

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/denhac/membership-sync/internal/domain"
)

const (
	metaCardNumber = "access_card_number"
	metaSlackID    = "access_slack_id"
)

type MetaData struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Customer is a WooCommerce customer as returned by the REST API and customer.* webhooks.
type Customer struct {
	ID        int64      `json:"id"`
	Email     *string    `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	MetaData  []MetaData `json:"meta_data"`
	// Capabilities is either {"name": true} or ["name"] depending on the plugin version.
	Capabilities json.RawMessage `json:"capabilities,omitempty"`
}

type Subscription struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Status     string `json:"status"`
}

// UserMembership is a granted membership plan from the memberships extension.
type UserMembership struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	PlanID     int64  `json:"plan_id"`
	Status     string `json:"status"`
}

func (c Customer) Facts() domain.CustomerFacts {
	f := domain.CustomerFacts{
		ID:           domain.CustomerID(c.ID),
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Capabilities: capabilities(c.Capabilities),
	}
	if c.Email != nil {
		f.Email = *c.Email
	}
	if v, ok := c.meta(metaSlackID); ok {
		f.SlackID = domain.SlackID(strings.TrimSpace(v))
	}
	if v, ok := c.meta(metaCardNumber); ok {
		f.Cards = domain.SplitCardNumbers(v)
	}
	return f
}

// meta returns the first value stored under key, rendered as a string.
func (c Customer) meta(key string) (string, bool) {
	for _, m := range c.MetaData {
		if m.Key != key {
			continue
		}
		return rawString(m.Value)
	}
	return "", false
}

func (s Subscription) Facts() domain.SubscriptionFacts {
	return domain.SubscriptionFacts{
		ID:         domain.SubscriptionID(s.ID),
		CustomerID: domain.CustomerID(s.CustomerID),
		Status:     domain.SubscriptionStatus(s.Status),
	}
}

func (m UserMembership) Facts() domain.UserMembershipFacts {
	return domain.UserMembershipFacts{
		ID:         m.ID,
		CustomerID: domain.CustomerID(m.CustomerID),
		PlanID:     domain.PlanID(m.PlanID),
		Status:     m.Status,
	}
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func capabilities(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var set map[string]json.RawMessage
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil
	}
	out := make([]string, 0, len(set))
	for name, v := range set {
		if granted(v) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// granted accepts true, 1 and "1" as WordPress stores capability flags loosely.
func granted(v json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b
	}
	s, ok := rawString(v)
	if !ok {
		return false
	}
	on, err := strconv.ParseBool(s)
	return err == nil && on
}
