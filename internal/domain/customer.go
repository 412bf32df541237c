package domain

import "time"

// Customer is the read-model view of an e-commerce customer.
// Member is a cached projection of the aggregate; it is not authoritative.
type Customer struct {
	ID        CustomerID
	FirstName string
	LastName  string
	Email     string
	// SlackID is empty until the customer links a chat account.
	SlackID SlackID

	Member       bool
	Capabilities []string
	Cards        []string

	DeletedAt *time.Time
	UpdatedAt time.Time
}

func (c Customer) HasCapability(name string) bool {
	for _, v := range c.Capabilities {
		if v == name {
			return true
		}
	}
	return false
}

func (c Customer) IsDeleted() bool { return c.DeletedAt != nil }

// Card is an access card record keyed by its normalized number.
type Card struct {
	Number     string
	CustomerID CustomerID

	Active        bool
	MemberHasCard bool
	// EverActivated only ever moves from false to true.
	EverActivated bool

	UpdatedAt time.Time
}

// Waiver is an accepted liability waiver from the waiver platform.
type Waiver struct {
	ID              WaiverID
	TemplateID      string
	TemplateVersion string
	Status          string
	Email           string
	FirstName       string
	LastName        string

	// CustomerID is nil until the waiver has been matched.
	CustomerID *CustomerID
}

// WaiverStatusAccepted is the status of a signed waiver.
const WaiverStatusAccepted = "accepted"

// Identity is the exact-match key that links waivers to customers.
type Identity struct {
	FirstName string
	LastName  string
	Email     string
}

// NewIdentity builds a normalized identity.
func NewIdentity(first, last, email string) Identity {
	return Identity{
		FirstName: NormalizeHumanName(first),
		LastName:  NormalizeHumanName(last),
		Email:     NormalizeEmail(email),
	}
}

func (c Customer) Identity() Identity { return NewIdentity(c.FirstName, c.LastName, c.Email) }

func (w Waiver) Identity() Identity { return NewIdentity(w.FirstName, w.LastName, w.Email) }

// Complete reports whether every part of the identity is known.
func (i Identity) Complete() bool {
	return i.FirstName != "" && i.LastName != "" && i.Email != ""
}
