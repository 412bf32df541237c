package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/denhac/membership-sync/internal/adapters/woocommerce"
	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
)

// WooCommerce webhook topics.
const (
	TopicCustomerCreated     = "customer.created"
	TopicCustomerUpdated     = "customer.updated"
	TopicCustomerDeleted     = "customer.deleted"
	TopicSubscriptionCreated = "subscription.created"
	TopicSubscriptionUpdated = "subscription.updated"
	TopicMembershipCreated   = "membership.created"
)

// WooCommerce sends this form body when a webhook is first saved.
var wooPingPrefix = []byte("webhook_id=")

func (s *Server) handleWooCommerce(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	if _, body, _ := deliveryFromContext(r.Context()); bytes.HasPrefix(body, wooPingPrefix) {
		writeJSON(w, http.StatusOK, deliveryResponse{Status: "ping", Topic: topic})
		return
	}
	if !knownWooTopic(topic) {
		writeError(w, r, http.StatusNotFound, "UNKNOWN_TOPIC", "unsupported webhook topic", map[string]any{"topic": topic})
		return
	}
	s.deliver(w, r, topic, func(ctx context.Context, body []byte) error {
		fact, err := wooFact(topic, body)
		if err != nil {
			return err
		}
		return s.facts.Handle(ctx, fact)
	})
}

func knownWooTopic(topic string) bool {
	switch topic {
	case TopicCustomerCreated, TopicCustomerUpdated, TopicCustomerDeleted,
		TopicSubscriptionCreated, TopicSubscriptionUpdated, TopicMembershipCreated:
		return true
	default:
		return false
	}
}

func wooFact(topic string, body []byte) (domain.Event, error) {
	switch topic {
	case TopicCustomerCreated, TopicCustomerUpdated:
		var c woocommerce.Customer
		if err := decode(body, &c); err != nil {
			return nil, err
		}
		if topic == TopicCustomerCreated {
			return domain.CustomerCreated{Customer: c.Facts()}, nil
		}
		return domain.CustomerUpdated{Customer: c.Facts()}, nil
	case TopicCustomerDeleted:
		var c struct {
			ID int64 `json:"id"`
		}
		if err := decode(body, &c); err != nil {
			return nil, err
		}
		return domain.CustomerDeleted{CustomerID: domain.CustomerID(c.ID)}, nil
	case TopicSubscriptionCreated, TopicSubscriptionUpdated:
		var sub woocommerce.Subscription
		if err := decode(body, &sub); err != nil {
			return nil, err
		}
		if topic == TopicSubscriptionCreated {
			return domain.SubscriptionCreated{Subscription: sub.Facts()}, nil
		}
		return domain.SubscriptionUpdated{Subscription: sub.Facts()}, nil
	case TopicMembershipCreated:
		var m woocommerce.UserMembership
		if err := decode(body, &m); err != nil {
			return nil, err
		}
		return domain.UserMembershipCreated{Membership: m.Facts()}, nil
	default:
		return nil, badRequest{msg: "unsupported topic " + topic}
	}
}

type waiverPayload struct {
	WaiverID        string `json:"waiver_id"`
	TemplateID      string `json:"template_id"`
	TemplateVersion string `json:"template_version"`
	Status          string `json:"status"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

func (s *Server) handleWaiver(w http.ResponseWriter, r *http.Request) {
	s.deliver(w, r, "waiver.accepted", func(ctx context.Context, body []byte) error {
		var p waiverPayload
		if err := decode(body, &p); err != nil {
			return err
		}
		if p.Status != "" && !strings.EqualFold(p.Status, domain.WaiverStatusAccepted) {
			s.log.Info("ignoring waiver that is not accepted", "waiver_id", p.WaiverID, "status", p.Status)
			return nil
		}
		return s.facts.Handle(ctx, domain.WaiverAccepted{Waiver: domain.Waiver{
			ID:              domain.WaiverID(strings.TrimSpace(p.WaiverID)),
			TemplateID:      p.TemplateID,
			TemplateVersion: p.TemplateVersion,
			Status:          domain.WaiverStatusAccepted,
			Email:           p.Email,
			FirstName:       p.FirstName,
			LastName:        p.LastName,
		}})
	})
}

type cardHoldersPayload struct {
	CardHolders []struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		CardNum   string `json:"card_num"`
	} `json:"card_holders"`
}

// handleCardHolders stores the access-control system's full active card-holder list.
func (s *Server) handleCardHolders(w http.ResponseWriter, r *http.Request) {
	s.deliver(w, r, "card_holders.updated", func(ctx context.Context, body []byte) error {
		var p cardHoldersPayload
		if err := decode(body, &p); err != nil {
			return err
		}
		snap := cardsnapshot.Snapshot{TakenAt: s.clk.Now()}
		for _, h := range p.CardHolders {
			snap.CardHolders = append(snap.CardHolders, cardsnapshot.CardHolder{
				FirstName: h.FirstName,
				LastName:  h.LastName,
				CardNum:   h.CardNum,
			})
		}
		if err := s.snapshots.Save(ctx, snap); err != nil {
			return fmt.Errorf("save card holder snapshot: %w", err)
		}
		return nil
	})
}

func decode(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return badRequest{msg: "invalid JSON body: " + err.Error()}
	}
	return nil
}
