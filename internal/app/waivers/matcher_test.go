package waivers

import (
	"context"
	"testing"

	memcustomerrepo "github.com/denhac/membership-sync/internal/adapters/memory/customerrepo"
	memwaiverrepo "github.com/denhac/membership-sync/internal/adapters/memory/waiverrepo"
	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/platform/logger"
)

type assignment struct {
	customer domain.CustomerID
	waiver   domain.WaiverID
}

type recordingAssigner struct {
	calls []assignment
}

func (a *recordingAssigner) AssignWaiver(ctx context.Context, customer domain.CustomerID, waiver domain.WaiverID) error {
	a.calls = append(a.calls, assignment{customer, waiver})
	return nil
}

func setup(t *testing.T) (*Matcher, *memcustomerrepo.Repo, *memwaiverrepo.Repo, *recordingAssigner) {
	t.Helper()
	customers := memcustomerrepo.NewRepo()
	waivers := memwaiverrepo.NewRepo()
	a := &recordingAssigner{}
	return NewMatcher(customers, waivers, a, logger.NewNop()), customers, waivers, a
}

func acceptedWaiver(id domain.WaiverID, first, last, email string) domain.Waiver {
	return domain.Waiver{ID: id, Status: domain.WaiverStatusAccepted, FirstName: first, LastName: last, Email: email}
}

func TestMatcher_WaiverThenCustomer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, customers, waivers, a := setup(t)
	_ = waivers.Upsert(ctx, acceptedWaiver("w-1", "Ada", "Lovelace", "ada@example.com"))

	if err := m.Handle(ctx, domain.WaiverAccepted{Waiver: domain.Waiver{ID: "w-1"}}); err != nil {
		t.Fatalf("Handle waiver err=%v", err)
	}
	if len(a.calls) != 0 {
		t.Fatalf("assigned before any customer exists: %v", a.calls)
	}

	_ = customers.Upsert(ctx, domain.Customer{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ADA@example.com"})
	if err := m.Handle(ctx, domain.CustomerCreated{Customer: domain.CustomerFacts{ID: 7}}); err != nil {
		t.Fatalf("Handle customer err=%v", err)
	}
	if len(a.calls) != 1 || a.calls[0] != (assignment{7, "w-1"}) {
		t.Fatalf("calls=%v", a.calls)
	}
}

func TestMatcher_CustomerThenWaiver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, customers, waivers, a := setup(t)
	_ = customers.Upsert(ctx, domain.Customer{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	if err := m.Handle(ctx, domain.CustomerImported{Customer: domain.CustomerFacts{ID: 7}}); err != nil {
		t.Fatalf("Handle customer err=%v", err)
	}

	_ = waivers.Upsert(ctx, acceptedWaiver("w-2", "Ada", "Lovelace", "ada@example.com"))
	if err := m.Handle(ctx, domain.WaiverAccepted{Waiver: domain.Waiver{ID: "w-2"}}); err != nil {
		t.Fatalf("Handle waiver err=%v", err)
	}
	if len(a.calls) != 1 || a.calls[0] != (assignment{7, "w-2"}) {
		t.Fatalf("calls=%v", a.calls)
	}
}

func TestMatcher_AnyFieldMismatchPreventsAssignment(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.Waiver{
		"first": acceptedWaiver("w", "Ava", "Lovelace", "ada@example.com"),
		"last":  acceptedWaiver("w", "Ada", "Byron", "ada@example.com"),
		"email": acceptedWaiver("w", "Ada", "Lovelace", "ada@example.org"),
	}
	for name, w := range cases {
		w := w
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			m, customers, waivers, a := setup(t)
			_ = customers.Upsert(ctx, domain.Customer{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
			_ = waivers.Upsert(ctx, w)

			if err := m.MatchWaiver(ctx, w.ID); err != nil {
				t.Fatalf("MatchWaiver err=%v", err)
			}
			if err := m.MatchCustomer(ctx, 7); err != nil {
				t.Fatalf("MatchCustomer err=%v", err)
			}
			if len(a.calls) != 0 {
				t.Fatalf("calls=%v, want none", a.calls)
			}
		})
	}
}

func TestMatcher_AmbiguousWaiverIsNotAssigned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, customers, waivers, a := setup(t)
	_ = customers.Upsert(ctx, domain.Customer{ID: 1, FirstName: "Sam", LastName: "Lee", Email: "sam@example.com"})
	_ = customers.Upsert(ctx, domain.Customer{ID: 2, FirstName: "Sam", LastName: "Lee", Email: "sam@example.com"})
	_ = waivers.Upsert(ctx, acceptedWaiver("w-3", "Sam", "Lee", "sam@example.com"))

	if err := m.MatchWaiver(ctx, "w-3"); err != nil {
		t.Fatalf("MatchWaiver err=%v", err)
	}
	if len(a.calls) != 0 {
		t.Fatalf("calls=%v, want none", a.calls)
	}
}

func TestMatcher_SkipsAssignedAndUnacceptedWaivers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, customers, waivers, a := setup(t)
	_ = customers.Upsert(ctx, domain.Customer{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	pending := acceptedWaiver("w-4", "Ada", "Lovelace", "ada@example.com")
	pending.Status = "pending"
	_ = waivers.Upsert(ctx, pending)
	_ = waivers.Upsert(ctx, acceptedWaiver("w-5", "Ada", "Lovelace", "ada@example.com"))
	_ = waivers.Assign(ctx, "w-5", 7)

	if err := m.MatchCustomer(ctx, 7); err != nil {
		t.Fatalf("MatchCustomer err=%v", err)
	}
	if err := m.MatchWaiver(ctx, "w-4"); err != nil {
		t.Fatalf("MatchWaiver err=%v", err)
	}
	if len(a.calls) != 0 {
		t.Fatalf("calls=%v, want none", a.calls)
	}
}
