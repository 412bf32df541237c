package legacymembers

import "context"

// Member is a record from the legacy PayPal-era member list.
type Member struct {
	PaypalID  string
	FirstName string
	LastName  string
	Email     string
	Active    bool
	Cards     []string
	SlackID   string
}

// Source lists legacy members. The list is read-only from this module's point of view.
type Source interface {
	List(ctx context.Context) ([]Member, error)
}
