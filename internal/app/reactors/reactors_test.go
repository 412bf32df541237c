package reactors

import (
	"testing"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

type flagSet map[string]bool

func (f flagSet) Enabled(name string) bool { return f[name] }

func kinds(jobs []jobqueue.Job) []jobqueue.Kind {
	out := make([]jobqueue.Kind, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Kind)
	}
	return out
}

func sameKinds(got []jobqueue.Job, want ...jobqueue.Kind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Kind != want[i] {
			return false
		}
	}
	return true
}

func TestSlack_NeedIDCheckFlag(t *testing.T) {
	t.Parallel()

	ev := domain.SubscriptionUpdated{Subscription: domain.SubscriptionFacts{ID: 1, CustomerID: 5, Status: domain.StatusNeedIDCheck}}

	off := NewSlack(flagSet{}, nil).React(ev)
	if !sameKinds(off, jobqueue.KindInviteNeedIDCheckOnly) || off[0].CustomerID != 5 {
		t.Fatalf("flag off: %v", kinds(off))
	}
	on := NewSlack(flagSet{FlagNeedIDCheckGetsAddedToSlackAndEmail: true}, nil).React(ev)
	if !sameKinds(on, jobqueue.KindMakeRegularMember) {
		t.Fatalf("flag on: %v", kinds(on))
	}

	other := domain.SubscriptionUpdated{Subscription: domain.SubscriptionFacts{ID: 1, CustomerID: 5, Status: domain.StatusActive}}
	if got := NewSlack(flagSet{}, nil).React(other); len(got) != 0 {
		t.Fatalf("non need-id-check update scheduled %v", kinds(got))
	}
}

func TestSlack_DeactivationRespectsKeepMembersFlag(t *testing.T) {
	t.Parallel()

	ev := domain.MembershipDeactivated{CustomerID: 5}
	off := NewSlack(flagSet{}, nil).React(ev)
	if !sameKinds(off, jobqueue.KindUpdateSlackProfile, jobqueue.KindDemoteToPublicOnly) {
		t.Fatalf("flag off: %v", kinds(off))
	}
	on := NewSlack(flagSet{FlagKeepMembersInSlackAndEmail: true}, nil).React(ev)
	if !sameKinds(on, jobqueue.KindUpdateSlackProfile) {
		t.Fatalf("flag on: %v", kinds(on))
	}
}

func TestSlack_BoardAndEquipment(t *testing.T) {
	t.Parallel()

	r := NewSlack(nil, map[domain.PlanID]string{11: "3d-printers", 12: "laser"})

	became := r.React(domain.CustomerBecameBoardMember{CustomerID: 5})
	if !sameKinds(became, jobqueue.KindAddToChannel, jobqueue.KindAddToUserGroup) ||
		became[0].Channel != ChannelBoard || became[1].UserGroup != UserGroupBoard {
		t.Fatalf("became=%+v", became)
	}
	removed := r.React(domain.CustomerRemovedFromBoard{CustomerID: 5})
	if !sameKinds(removed, jobqueue.KindRemoveFromChannel, jobqueue.KindRemoveFromUserGroup) {
		t.Fatalf("removed=%v", kinds(removed))
	}

	laser := r.React(domain.UserMembershipCreated{Membership: domain.UserMembershipFacts{CustomerID: 5, PlanID: 12, Status: "active"}})
	if len(laser) != 1 || laser[0].Channel != "laser" {
		t.Fatalf("laser=%+v", laser)
	}
	if got := r.React(domain.UserMembershipCreated{Membership: domain.UserMembershipFacts{CustomerID: 5, PlanID: 12, Status: "pending"}}); len(got) != 0 {
		t.Fatalf("inactive plan scheduled %v", kinds(got))
	}
	if got := r.React(domain.UserMembershipCreated{Membership: domain.UserMembershipFacts{CustomerID: 5, PlanID: 99, Status: "active"}}); len(got) != 0 {
		t.Fatalf("unknown plan scheduled %v", kinds(got))
	}
}

func TestGroups_React(t *testing.T) {
	t.Parallel()

	r := NewGroups(GroupAddresses{General: "denhac@x", Members: "members@x", Board: "board@x"})

	created := r.React(domain.CustomerCreated{Customer: domain.CustomerFacts{ID: 1, Email: " A@B.com"}})
	if len(created) != 1 || created[0].Group != "denhac@x" || created[0].Email != "a@b.com" {
		t.Fatalf("created=%+v", created)
	}
	activated := r.React(domain.MembershipActivated{CustomerID: 1})
	if len(activated) != 1 || activated[0].Group != "members@x" || activated[0].Kind != jobqueue.KindAddToDirectoryGroup {
		t.Fatalf("activated=%+v", activated)
	}
	if got := r.React(domain.MembershipDeactivated{CustomerID: 1}); len(got) != 0 {
		t.Fatalf("deactivation scheduled %+v", got)
	}
	removed := r.React(domain.CustomerRemovedFromBoard{CustomerID: 1})
	if len(removed) != 1 || removed[0].Kind != jobqueue.KindRemoveFromDirectoryGroup || removed[0].Group != "board@x" {
		t.Fatalf("removed=%+v", removed)
	}
}
