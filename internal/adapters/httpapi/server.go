package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/denhac/membership-sync/internal/domain"
	membershipagg "github.com/denhac/membership-sync/internal/domain/membership"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
	clockport "github.com/denhac/membership-sync/internal/ports/out/clock"
	"github.com/denhac/membership-sync/internal/ports/out/inbox"
)

// FactRecorder is the membership service as seen by the HTTP adapter.
type FactRecorder interface {
	Handle(ctx context.Context, fact domain.Event) error
	Load(ctx context.Context, id domain.CustomerID) (*membershipagg.Aggregate, error)
}

// Server turns webhook deliveries into recorded facts. A delivery already in the inbox is
// acknowledged without being recorded again.
type Server struct {
	facts     FactRecorder
	snapshots cardsnapshot.Store
	inbox     inbox.Store
	clk       clockport.Clock
	log       *logger.Logger
}

func NewServer(facts FactRecorder, snapshots cardsnapshot.Store, in inbox.Store, clk clockport.Clock, log *logger.Logger) *Server {
	return &Server{
		facts:     facts,
		snapshots: snapshots,
		inbox:     in,
		clk:       clk,
		log:       log,
	}
}

type deliveryResponse struct {
	Status string `json:"status"`
	Topic  string `json:"topic,omitempty"`
}

// badRequest marks a payload that could not be turned into a fact.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

// deliver runs fn once per delivery fingerprint.
func (s *Server) deliver(w http.ResponseWriter, r *http.Request, topic string, fn func(ctx context.Context, body []byte) error) {
	ctx := r.Context()
	fp, body, ok := deliveryFromContext(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unauthenticated delivery", nil)
		return
	}

	if s.inbox != nil {
		rec, seen, err := s.inbox.Get(ctx, fp)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if seen {
			s.log.Debug("duplicate delivery", "source", fp.Source, "delivery_id", fp.DeliveryID, "topic", rec.Topic)
			writeJSON(w, rec.StatusCode, deliveryResponse{Status: "duplicate", Topic: rec.Topic})
			return
		}
	}

	if err := fn(ctx, body); err != nil {
		var br badRequest
		if errors.As(err, &br) {
			writeError(w, r, http.StatusBadRequest, "BAD_PAYLOAD", br.msg, map[string]any{"topic": topic})
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	if s.inbox != nil {
		rec := inbox.Record{Topic: topic, StatusCode: http.StatusOK, CreatedAt: s.clk.Now()}
		if err := s.inbox.Put(ctx, fp, rec); err != nil {
			s.log.Warn("inbox put failed", "source", fp.Source, "delivery_id", fp.DeliveryID, "error", err.Error())
		}
	}
	s.log.Info("delivery recorded", "source", fp.Source, "delivery_id", fp.DeliveryID, "topic", topic)
	writeJSON(w, http.StatusOK, deliveryResponse{Status: "recorded", Topic: topic})
}
