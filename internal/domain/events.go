package domain

import "time"

// Event is an immutable domain fact. EventType returns the stable name used at the store boundary.
type Event interface {
	EventType() string
}

const (
	TypeCustomerCreated           = "CustomerCreated"
	TypeCustomerUpdated           = "CustomerUpdated"
	TypeCustomerImported          = "CustomerImported"
	TypeCustomerDeleted           = "CustomerDeleted"
	TypeSubscriptionCreated       = "SubscriptionCreated"
	TypeSubscriptionUpdated       = "SubscriptionUpdated"
	TypeSubscriptionImported      = "SubscriptionImported"
	TypeUserMembershipCreated     = "UserMembershipCreated"
	TypeWaiverAccepted            = "WaiverAccepted"
	TypeMembershipActivated       = "MembershipActivated"
	TypeMembershipDeactivated     = "MembershipDeactivated"
	TypeCustomerBecameBoardMember = "CustomerBecameBoardMember"
	TypeCustomerRemovedFromBoard  = "CustomerRemovedFromBoard"
	TypeWaiverAssignedToCustomer  = "WaiverAssignedToCustomer"
)

// CustomerFacts is the customer payload as received from the e-commerce platform.
type CustomerFacts struct {
	ID           CustomerID `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	SlackID      SlackID    `json:"slack_id,omitempty"`
	Capabilities []string   `json:"capabilities,omitempty"`
	Cards        []string   `json:"cards,omitempty"`
}

func (f CustomerFacts) HasCapability(name string) bool {
	for _, v := range f.Capabilities {
		if v == name {
			return true
		}
	}
	return false
}

func (f CustomerFacts) Identity() Identity { return NewIdentity(f.FirstName, f.LastName, f.Email) }

// SubscriptionFacts is the subscription payload as received from the e-commerce platform.
type SubscriptionFacts struct {
	ID         SubscriptionID     `json:"id"`
	CustomerID CustomerID         `json:"customer_id"`
	Status     SubscriptionStatus `json:"status"`
}

// UserMembershipFacts describes a granted membership plan (e.g. laser cutter authorization).
type UserMembershipFacts struct {
	ID         int64      `json:"id"`
	CustomerID CustomerID `json:"customer_id"`
	PlanID     PlanID     `json:"plan_id"`
	Status     string     `json:"status"`
}

type CustomerCreated struct {
	Customer CustomerFacts `json:"customer"`
}

type CustomerUpdated struct {
	Customer CustomerFacts `json:"customer"`
}

type CustomerImported struct {
	Customer CustomerFacts `json:"customer"`
}

type CustomerDeleted struct {
	CustomerID CustomerID `json:"customer_id"`
	DeletedAt  time.Time  `json:"deleted_at"`
}

type SubscriptionCreated struct {
	Subscription SubscriptionFacts `json:"subscription"`
}

type SubscriptionUpdated struct {
	Subscription SubscriptionFacts `json:"subscription"`
}

type SubscriptionImported struct {
	Subscription SubscriptionFacts `json:"subscription"`
}

type UserMembershipCreated struct {
	Membership UserMembershipFacts `json:"membership"`
}

type WaiverAccepted struct {
	Waiver Waiver `json:"waiver"`
}

type MembershipActivated struct {
	CustomerID CustomerID `json:"customer_id"`
}

type MembershipDeactivated struct {
	CustomerID CustomerID `json:"customer_id"`
}

type CustomerBecameBoardMember struct {
	CustomerID CustomerID `json:"customer_id"`
}

type CustomerRemovedFromBoard struct {
	CustomerID CustomerID `json:"customer_id"`
}

type WaiverAssignedToCustomer struct {
	WaiverID   WaiverID   `json:"waiver_id"`
	CustomerID CustomerID `json:"customer_id"`
}

func (CustomerCreated) EventType() string           { return TypeCustomerCreated }
func (CustomerUpdated) EventType() string           { return TypeCustomerUpdated }
func (CustomerImported) EventType() string          { return TypeCustomerImported }
func (CustomerDeleted) EventType() string           { return TypeCustomerDeleted }
func (SubscriptionCreated) EventType() string       { return TypeSubscriptionCreated }
func (SubscriptionUpdated) EventType() string       { return TypeSubscriptionUpdated }
func (SubscriptionImported) EventType() string      { return TypeSubscriptionImported }
func (UserMembershipCreated) EventType() string     { return TypeUserMembershipCreated }
func (WaiverAccepted) EventType() string            { return TypeWaiverAccepted }
func (MembershipActivated) EventType() string       { return TypeMembershipActivated }
func (MembershipDeactivated) EventType() string     { return TypeMembershipDeactivated }
func (CustomerBecameBoardMember) EventType() string { return TypeCustomerBecameBoardMember }
func (CustomerRemovedFromBoard) EventType() string  { return TypeCustomerRemovedFromBoard }
func (WaiverAssignedToCustomer) EventType() string  { return TypeWaiverAssignedToCustomer }

// CustomerOf returns the customer an event belongs to. WaiverAccepted has no customer.
func CustomerOf(ev Event) (CustomerID, bool) {
	switch e := ev.(type) {
	case CustomerCreated:
		return e.Customer.ID, true
	case CustomerUpdated:
		return e.Customer.ID, true
	case CustomerImported:
		return e.Customer.ID, true
	case CustomerDeleted:
		return e.CustomerID, true
	case SubscriptionCreated:
		return e.Subscription.CustomerID, true
	case SubscriptionUpdated:
		return e.Subscription.CustomerID, true
	case SubscriptionImported:
		return e.Subscription.CustomerID, true
	case UserMembershipCreated:
		return e.Membership.CustomerID, true
	case MembershipActivated:
		return e.CustomerID, true
	case MembershipDeactivated:
		return e.CustomerID, true
	case CustomerBecameBoardMember:
		return e.CustomerID, true
	case CustomerRemovedFromBoard:
		return e.CustomerID, true
	case WaiverAssignedToCustomer:
		return e.CustomerID, true
	default:
		return 0, false
	}
}

// CustomerFactsOf returns the customer payload carried by created/updated/imported events.
func CustomerFactsOf(ev Event) (CustomerFacts, bool) {
	switch e := ev.(type) {
	case CustomerCreated:
		return e.Customer, true
	case CustomerUpdated:
		return e.Customer, true
	case CustomerImported:
		return e.Customer, true
	default:
		return CustomerFacts{}, false
	}
}

// SubscriptionFactsOf returns the subscription payload carried by created/updated/imported events.
func SubscriptionFactsOf(ev Event) (SubscriptionFacts, bool) {
	switch e := ev.(type) {
	case SubscriptionCreated:
		return e.Subscription, true
	case SubscriptionUpdated:
		return e.Subscription, true
	case SubscriptionImported:
		return e.Subscription, true
	default:
		return SubscriptionFacts{}, false
	}
}
