package audit

import "strings"

// groupMembership is the directory as pulled: group addresses in listing order and the
// members of each.
type groupMembership struct {
	groups  []string
	members map[string][]string
}

// checkGroups inverts the directory into address -> groups and checks each address
// against the member records, then checks every active member is on the members list.
func checkGroups(r *Report, members []member, dir groupMembership, membersGroup string) {
	isGroup := make(map[string]bool, len(dir.groups))
	for _, g := range dir.groups {
		isGroup[g] = true
	}

	var emails []string
	groupsFor := make(map[string][]string)
	for _, g := range dir.groups {
		for _, addr := range dir.members[g] {
			addr = strings.ToLower(addr)
			if _, seen := groupsFor[addr]; !seen {
				emails = append(emails, addr)
			}
			groupsFor[addr] = append(groupsFor[addr], g)
		}
	}

	byEmail := make(map[string][]member)
	for _, m := range members {
		if m.Email != "" {
			byEmail[m.Email] = append(byEmail[m.Email], m)
		}
	}

	for _, addr := range emails {
		// Nested groups of ours are not people.
		if isGroup[addr] {
			continue
		}
		groups := strings.Join(groupsFor[addr], ", ")
		matched := byEmail[addr]
		switch {
		case len(matched) > 1:
			r.addf(CategoryGoogleGroups, "More than one member exists for email address %s", addr)
		case len(matched) == 0:
			r.addf(CategoryGoogleGroups, "No member found for email address %s in groups: %s", addr, groups)
		case !matched[0].IsMember:
			m := matched[0]
			r.addf(CategoryGoogleGroups, "%s %s with email (%s) is not an active member but is in groups: %s", m.FirstName, m.LastName, addr, groups)
		}
	}

	for _, m := range members {
		if m.Email == "" || !m.IsMember {
			continue
		}
		if contains(groupsFor[m.Email], membersGroup) {
			continue
		}
		r.addf(CategoryGoogleGroups, "%s %s with email (%s) is an active member but is not part of %s", m.FirstName, m.LastName, m.Email, membersGroup)
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
