// Package membership holds the per-customer membership aggregate.
//
// State is rebuilt by replaying the customer's stream through Apply. Recording a
// primary fact applies it and then decides which derived events follow; both are
// appended to the pending list for the caller to persist. The aggregate never
// talks to gateways.
package membership

import (
	"errors"
	"fmt"

	"github.com/denhac/membership-sync/internal/domain"
)

var (
	// ErrUnsupportedFact is returned when Record is given an event that is not a primary fact.
	ErrUnsupportedFact = errors.New("unsupported fact")

	// ErrWrongCustomer is returned when a fact belongs to a different customer than the aggregate.
	ErrWrongCustomer = errors.New("fact belongs to another customer")
)

// Aggregate is one customer's membership state.
type Aggregate struct {
	customerID domain.CustomerID
	version    int

	subscriptions subscriptions
	board         board
	waivers       waivers
	profile       profile

	pending []domain.Event
}

func New(id domain.CustomerID) *Aggregate {
	return &Aggregate{
		customerID:    id,
		subscriptions: newSubscriptions(),
		waivers:       newWaivers(),
	}
}

// Rehydrate rebuilds an aggregate from its stored history. No events are recorded.
func Rehydrate(id domain.CustomerID, history []domain.Event) *Aggregate {
	a := New(id)
	for _, ev := range history {
		a.Apply(ev)
	}
	return a
}

// Apply is the pure state transition for one event.
func (a *Aggregate) Apply(ev domain.Event) {
	a.version++
	a.subscriptions.apply(ev)
	a.board.apply(ev)
	a.waivers.apply(ev)
	a.profile.apply(ev)
}

func (a *Aggregate) CustomerID() domain.CustomerID { return a.customerID }

// Version is the number of events applied, stored or pending.
func (a *Aggregate) Version() int { return a.version }

// Record applies a primary fact and records the derived events it implies.
func (a *Aggregate) Record(fact domain.Event) error {
	id, ok := domain.CustomerOf(fact)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFact, fact.EventType())
	}
	if id != a.customerID {
		return fmt.Errorf("%w: %s for %s, aggregate %s", ErrWrongCustomer, fact.EventType(), id, a.customerID)
	}

	switch f := fact.(type) {
	case domain.SubscriptionCreated, domain.SubscriptionUpdated, domain.SubscriptionImported:
		sub, _ := domain.SubscriptionFactsOf(f)
		a.recordSubscriptionStatus(f, sub)
	case domain.CustomerCreated, domain.CustomerUpdated, domain.CustomerImported:
		c, _ := domain.CustomerFactsOf(f)
		a.recordCustomer(f, c)
	case domain.CustomerDeleted, domain.UserMembershipCreated:
		a.record(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFact, fact.EventType())
	}
	return nil
}

// AssignWaiver records WaiverAssignedToCustomer unless the waiver is already assigned.
// It reports whether an event was recorded.
func (a *Aggregate) AssignWaiver(id domain.WaiverID) bool {
	if id == "" || a.waivers.has(id) {
		return false
	}
	a.record(domain.WaiverAssignedToCustomer{WaiverID: id, CustomerID: a.customerID})
	return true
}

// Pending returns the events recorded since the aggregate was loaded.
func (a *Aggregate) Pending() []domain.Event {
	return append([]domain.Event(nil), a.pending...)
}

// DrainPending returns and clears the recorded events.
func (a *Aggregate) DrainPending() []domain.Event {
	out := a.pending
	a.pending = nil
	return out
}

// EverActivated reports whether a membership activation has ever been seen.
func (a *Aggregate) EverActivated() bool { return a.subscriptions.everActive }

// HasActiveSubscription is the live membership check: any subscription currently active.
func (a *Aggregate) HasActiveSubscription() bool { return a.subscriptions.anyActive() }

// SubscriptionStatus returns the last known status for a subscription.
func (a *Aggregate) SubscriptionStatus(id domain.SubscriptionID) (domain.SubscriptionStatus, bool) {
	return a.subscriptions.status(id)
}

func (a *Aggregate) IsBoardMember() bool { return a.board.member }

func (a *Aggregate) HasWaiver(id domain.WaiverID) bool { return a.waivers.has(id) }

// Profile returns the last known customer profile.
func (a *Aggregate) Profile() domain.CustomerFacts { return a.profile.facts }

func (a *Aggregate) Deleted() bool { return a.profile.deleted }

func (a *Aggregate) record(ev domain.Event) {
	a.Apply(ev)
	a.pending = append(a.pending, ev)
}

func (a *Aggregate) recordSubscriptionStatus(fact domain.Event, sub domain.SubscriptionFacts) {
	old, seen := a.subscriptions.status(sub.ID)
	a.record(fact)
	for _, ev := range a.subscriptions.decide(a.customerID, old, seen, sub.Status) {
		a.record(ev)
	}
}

func (a *Aggregate) recordCustomer(fact domain.Event, c domain.CustomerFacts) {
	was := a.board.member
	a.record(fact)
	if ev := a.board.decide(a.customerID, was, c.HasCapability(domain.CapabilityBoardMember)); ev != nil {
		a.record(ev)
	}
}
