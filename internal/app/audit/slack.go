package audit

import "github.com/denhac/membership-sync/internal/ports/out/chat"

// checkSlack flags accounts that disagree with membership, then members without an account.
func checkSlack(r *Report, members []member, users []chat.User, ignored map[string]bool) {
	bySlackID := make(map[string][]member)
	for _, m := range members {
		if m.SlackID != "" {
			bySlackID[m.SlackID] = append(bySlackID[m.SlackID], m)
		}
	}

	for _, u := range users {
		if u.IsBot || ignored[u.ID] {
			continue
		}
		matched := bySlackID[u.ID]
		if len(matched) == 0 {
			if u.IsFullAccount() {
				r.addf(CategorySlack, "%s with slack id (%s) is a full user in slack but I have no membership record of them.", u.Name, u.ID)
			}
			continue
		}

		m := matched[0]
		if !m.IsMember {
			if u.IsFullAccount() {
				r.addf(CategorySlack, "%s %s with slack id (%s) is not an active member but they have a full slack account.", m.FirstName, m.LastName, u.ID)
			}
			continue
		}
		switch {
		case u.IsInvitedUser:
			// The invite is out; nothing more to do until it is accepted.
		case u.Deleted:
			r.addf(CategorySlack, "%s %s with slack id (%s) is deleted, but they are a member", m.FirstName, m.LastName, u.ID)
		case u.IsRestricted:
			r.addf(CategorySlack, "%s %s with slack id (%s) is restricted, but they are a member", m.FirstName, m.LastName, u.ID)
		case u.IsUltraRestricted:
			r.addf(CategorySlack, "%s %s with slack id (%s) is ultra restricted, but they are a member", m.FirstName, m.LastName, u.ID)
		}
	}

	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u.ID] = true
	}
	for _, m := range members {
		if !m.IsMember {
			continue
		}
		if m.SlackID == "" || !known[m.SlackID] {
			r.addf(CategorySlack, "%s %s (%s) doesn't appear to have a slack account", m.FirstName, m.LastName, m.ID)
		}
	}
}
