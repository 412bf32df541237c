package membership

import (
	"errors"
	"testing"

	"github.com/denhac/membership-sync/internal/domain"
)

const cust = domain.CustomerID(42)

func subUpdated(id domain.SubscriptionID, st domain.SubscriptionStatus) domain.Event {
	return domain.SubscriptionUpdated{Subscription: domain.SubscriptionFacts{ID: id, CustomerID: cust, Status: st}}
}

func countType(evs []domain.Event, typ string) int {
	n := 0
	for _, ev := range evs {
		if ev.EventType() == typ {
			n++
		}
	}
	return n
}

func mustRecord(t *testing.T, a *Aggregate, facts ...domain.Event) {
	t.Helper()
	for _, f := range facts {
		if err := a.Record(f); err != nil {
			t.Fatalf("Record(%s) err=%v", f.EventType(), err)
		}
	}
}

func TestRecord_ActivationFiresOnceFromNeedIDCheck(t *testing.T) {
	t.Parallel()

	a := New(cust)
	mustRecord(t, a,
		domain.SubscriptionCreated{Subscription: domain.SubscriptionFacts{ID: 1, CustomerID: cust, Status: domain.StatusNeedIDCheck}},
		subUpdated(1, domain.StatusActive),
	)
	pending := a.DrainPending()
	if got := countType(pending, domain.TypeMembershipActivated); got != 1 {
		t.Fatalf("activations=%d, want 1 (events=%v)", got, pending)
	}
	if !a.EverActivated() || !a.HasActiveSubscription() {
		t.Fatalf("expected active membership")
	}

	// A duplicate active update is a no-op.
	mustRecord(t, a, subUpdated(1, domain.StatusActive))
	pending = a.DrainPending()
	if len(pending) != 1 || pending[0].EventType() != domain.TypeSubscriptionUpdated {
		t.Fatalf("pending=%v, want only the fact", pending)
	}
}

func TestRecord_ActivationFromNoPriorStatus(t *testing.T) {
	t.Parallel()

	a := New(cust)
	mustRecord(t, a, domain.SubscriptionImported{Subscription: domain.SubscriptionFacts{ID: 3, CustomerID: cust, Status: domain.StatusActive}})
	if got := countType(a.Pending(), domain.TypeMembershipActivated); got != 1 {
		t.Fatalf("activations=%d, want 1", got)
	}
}

func TestRecord_NoActivationFromOnHold(t *testing.T) {
	t.Parallel()

	a := New(cust)
	mustRecord(t, a, subUpdated(1, domain.StatusOnHold), subUpdated(1, domain.StatusActive))
	if got := countType(a.Pending(), domain.TypeMembershipActivated); got != 0 {
		t.Fatalf("activations=%d, want 0", got)
	}
	// The flag still tracks that a status became active.
	if !a.EverActivated() {
		t.Fatalf("expected EverActivated")
	}
}

func TestRecord_DeactivationWaitsForLastActiveSubscription(t *testing.T) {
	t.Parallel()

	a := New(cust)
	mustRecord(t, a, subUpdated(1, domain.StatusActive), subUpdated(2, domain.StatusActive))
	a.DrainPending()

	mustRecord(t, a, subUpdated(1, domain.StatusCancelled))
	if got := countType(a.DrainPending(), domain.TypeMembershipDeactivated); got != 0 {
		t.Fatalf("deactivations=%d after first cancel, want 0", got)
	}
	mustRecord(t, a, subUpdated(2, domain.StatusCancelled))
	if got := countType(a.DrainPending(), domain.TypeMembershipDeactivated); got != 1 {
		t.Fatalf("deactivations=%d after second cancel, want 1", got)
	}
	if a.HasActiveSubscription() {
		t.Fatalf("expected no active subscription")
	}
	if !a.EverActivated() {
		t.Fatalf("EverActivated must never reset")
	}
}

func TestRecord_SuspendedWhileOtherActiveDoesNotDeactivate(t *testing.T) {
	t.Parallel()

	a := New(cust)
	mustRecord(t, a,
		subUpdated(1, domain.StatusActive),
		subUpdated(2, domain.StatusActive),
		subUpdated(2, domain.StatusSuspendedPayment),
	)
	if got := countType(a.Pending(), domain.TypeMembershipDeactivated); got != 0 {
		t.Fatalf("deactivations=%d, want 0", got)
	}
}

func TestRehydrate_ReplayIsIdempotent(t *testing.T) {
	t.Parallel()

	a := New(cust)
	mustRecord(t, a,
		domain.CustomerCreated{Customer: domain.CustomerFacts{ID: cust, FirstName: "Ada", Capabilities: []string{domain.CapabilityBoardMember}}},
		subUpdated(1, domain.StatusNeedIDCheck),
		subUpdated(1, domain.StatusActive),
		subUpdated(1, domain.StatusCancelled),
	)
	a.AssignWaiver("w-1")
	history := a.DrainPending()

	once := Rehydrate(cust, history)
	if len(once.Pending()) != 0 {
		t.Fatalf("replay recorded events: %v", once.Pending())
	}
	if once.Version() != len(history) {
		t.Fatalf("version=%d, want %d", once.Version(), len(history))
	}
	if !once.IsBoardMember() || !once.HasWaiver("w-1") || !once.EverActivated() || once.HasActiveSubscription() {
		t.Fatalf("unexpected rehydrated state: board=%v waiver=%v ever=%v active=%v",
			once.IsBoardMember(), once.HasWaiver("w-1"), once.EverActivated(), once.HasActiveSubscription())
	}
	st, ok := once.SubscriptionStatus(1)
	if !ok || st != domain.StatusCancelled {
		t.Fatalf("status=%q ok=%v", st, ok)
	}
	if once.Profile().FirstName != "Ada" {
		t.Fatalf("profile=%+v", once.Profile())
	}

	// Replaying the same history twice yields the same observable state.
	twice := Rehydrate(cust, history)
	if twice.IsBoardMember() != once.IsBoardMember() || twice.EverActivated() != once.EverActivated() {
		t.Fatalf("replays diverged")
	}
}

func TestRecord_BoardCapabilityChanges(t *testing.T) {
	t.Parallel()

	board := []string{domain.CapabilityBoardMember}
	a := New(cust)
	mustRecord(t, a, domain.CustomerImported{Customer: domain.CustomerFacts{ID: cust, Capabilities: board}})
	if got := countType(a.DrainPending(), domain.TypeCustomerBecameBoardMember); got != 1 {
		t.Fatalf("became=%d, want 1", got)
	}

	mustRecord(t, a, domain.CustomerUpdated{Customer: domain.CustomerFacts{ID: cust, Capabilities: board}})
	if got := len(a.DrainPending()); got != 1 {
		t.Fatalf("pending=%d, want only the fact", got)
	}

	mustRecord(t, a, domain.CustomerUpdated{Customer: domain.CustomerFacts{ID: cust}})
	if got := countType(a.DrainPending(), domain.TypeCustomerRemovedFromBoard); got != 1 {
		t.Fatalf("removed=%d, want 1", got)
	}
}

func TestAssignWaiver_Dedupes(t *testing.T) {
	t.Parallel()

	a := New(cust)
	if !a.AssignWaiver("w-1") {
		t.Fatalf("first assignment should record")
	}
	if a.AssignWaiver("w-1") {
		t.Fatalf("second assignment should be a no-op")
	}
	if got := countType(a.Pending(), domain.TypeWaiverAssignedToCustomer); got != 1 {
		t.Fatalf("assigned=%d, want 1", got)
	}
}

func TestRecord_RejectsForeignAndDerivedFacts(t *testing.T) {
	t.Parallel()

	a := New(cust)
	err := a.Record(domain.SubscriptionUpdated{Subscription: domain.SubscriptionFacts{ID: 1, CustomerID: 7, Status: domain.StatusActive}})
	if !errors.Is(err, ErrWrongCustomer) {
		t.Fatalf("err=%v, want ErrWrongCustomer", err)
	}
	if err := a.Record(domain.MembershipActivated{CustomerID: cust}); !errors.Is(err, ErrUnsupportedFact) {
		t.Fatalf("err=%v, want ErrUnsupportedFact", err)
	}
	if err := a.Record(domain.WaiverAccepted{}); !errors.Is(err, ErrUnsupportedFact) {
		t.Fatalf("err=%v, want ErrUnsupportedFact", err)
	}
}
