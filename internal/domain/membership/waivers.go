package membership

import "github.com/denhac/membership-sync/internal/domain"

type waivers struct {
	assigned map[domain.WaiverID]bool
}

func newWaivers() waivers {
	return waivers{assigned: make(map[domain.WaiverID]bool)}
}

func (w *waivers) apply(ev domain.Event) {
	if e, ok := ev.(domain.WaiverAssignedToCustomer); ok {
		w.assigned[e.WaiverID] = true
	}
}

func (w *waivers) has(id domain.WaiverID) bool { return w.assigned[id] }
