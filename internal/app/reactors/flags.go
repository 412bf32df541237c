// Package reactors maps domain events to the Actions they schedule. Reactors are pure:
// they only build jobs, and identity (email, chat id) is resolved when a job runs.
package reactors

import (
	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

// Flags reports whether a named feature toggle is on.
type Flags interface {
	Enabled(name string) bool
}

const (
	FlagNeedIDCheckGetsAddedToSlackAndEmail = "need_id_check_gets_added_to_slack_and_email"
	FlagKeepMembersInSlackAndEmail          = "keep_members_in_slack_and_email"
)

// toggle is the effect of a flag in each position.
type toggle struct {
	on  func(domain.CustomerID) []jobqueue.Job
	off func(domain.CustomerID) []jobqueue.Job
}

type toggles map[string]toggle

func (t toggles) run(flags Flags, name string, id domain.CustomerID) []jobqueue.Job {
	tg, ok := t[name]
	if !ok {
		return nil
	}
	effect := tg.off
	if flags != nil && flags.Enabled(name) {
		effect = tg.on
	}
	if effect == nil {
		return nil
	}
	return effect(id)
}

func job(kind jobqueue.Kind, id domain.CustomerID) jobqueue.Job {
	return jobqueue.Job{Kind: kind, CustomerID: id}
}
