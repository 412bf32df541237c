package reactors

import (
	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

// Logical chat names resolved by the action executor.
const (
	ChannelBoard   = "board"
	UserGroupBoard = "theboard"
)

// Slack schedules chat workspace Actions.
type Slack struct {
	flags Flags
	// equipment maps a user membership plan to the channel its holders join.
	equipment map[domain.PlanID]string
	toggles   toggles
}

func NewSlack(flags Flags, equipment map[domain.PlanID]string) *Slack {
	eq := make(map[domain.PlanID]string, len(equipment))
	for k, v := range equipment {
		eq[k] = v
	}
	return &Slack{
		flags:     flags,
		equipment: eq,
		toggles: toggles{
			FlagNeedIDCheckGetsAddedToSlackAndEmail: {
				on: func(id domain.CustomerID) []jobqueue.Job {
					return []jobqueue.Job{job(jobqueue.KindMakeRegularMember, id)}
				},
				off: func(id domain.CustomerID) []jobqueue.Job {
					return []jobqueue.Job{job(jobqueue.KindInviteNeedIDCheckOnly, id)}
				},
			},
			FlagKeepMembersInSlackAndEmail: {
				off: func(id domain.CustomerID) []jobqueue.Job {
					return []jobqueue.Job{job(jobqueue.KindDemoteToPublicOnly, id)}
				},
			},
		},
	}
}

func (r *Slack) React(ev domain.Event) []jobqueue.Job {
	switch e := ev.(type) {
	case domain.SubscriptionUpdated:
		if e.Subscription.Status != domain.StatusNeedIDCheck {
			return nil
		}
		return r.toggles.run(r.flags, FlagNeedIDCheckGetsAddedToSlackAndEmail, e.Subscription.CustomerID)

	case domain.MembershipActivated:
		return []jobqueue.Job{job(jobqueue.KindMakeRegularMember, e.CustomerID)}

	case domain.MembershipDeactivated:
		jobs := []jobqueue.Job{job(jobqueue.KindUpdateSlackProfile, e.CustomerID)}
		return append(jobs, r.toggles.run(r.flags, FlagKeepMembersInSlackAndEmail, e.CustomerID)...)

	case domain.CustomerBecameBoardMember:
		return []jobqueue.Job{
			{Kind: jobqueue.KindAddToChannel, CustomerID: e.CustomerID, Channel: ChannelBoard},
			{Kind: jobqueue.KindAddToUserGroup, CustomerID: e.CustomerID, UserGroup: UserGroupBoard},
		}

	case domain.CustomerRemovedFromBoard:
		return []jobqueue.Job{
			{Kind: jobqueue.KindRemoveFromChannel, CustomerID: e.CustomerID, Channel: ChannelBoard},
			{Kind: jobqueue.KindRemoveFromUserGroup, CustomerID: e.CustomerID, UserGroup: UserGroupBoard},
		}

	case domain.UserMembershipCreated:
		m := e.Membership
		if m.Status != domain.UserMembershipStatusActive {
			return nil
		}
		channel, ok := r.equipment[m.PlanID]
		if !ok {
			return nil
		}
		return []jobqueue.Job{{Kind: jobqueue.KindAddToChannel, CustomerID: m.CustomerID, Channel: channel}}
	}
	return nil
}
