package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/denhac/membership-sync/internal/domain"
)

type membershipStatus struct {
	CustomerID    int64 `json:"customer_id"`
	Member        bool  `json:"member"`
	EverActivated bool  `json:"ever_activated"`
	BoardMember   bool  `json:"board_member"`
	Deleted       bool  `json:"deleted"`
	Version       int   `json:"version"`
}

func (s *Server) handleMembershipStatus(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "customer id must be a positive integer", nil)
		return
	}
	agg, err := s.facts.Load(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if agg.Version() == 0 {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no membership history for customer", map[string]any{"customer_id": int64(id)})
		return
	}
	writeJSON(w, http.StatusOK, membershipStatus{
		CustomerID:    int64(id),
		Member:        agg.HasActiveSubscription(),
		EverActivated: agg.EverActivated(),
		BoardMember:   agg.IsBoardMember(),
		Deleted:       agg.Deleted(),
		Version:       agg.Version(),
	})
}
