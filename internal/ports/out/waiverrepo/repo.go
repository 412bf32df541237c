package waiverrepo

import (
	"context"

	"github.com/denhac/membership-sync/internal/domain"
)

// Repository is the waiver read model.
type Repository interface {
	// Upsert writes the waiver. An existing assignment is never cleared by an upsert.
	Upsert(ctx context.Context, w domain.Waiver) error
	Assign(ctx context.Context, id domain.WaiverID, customer domain.CustomerID) error
	Get(ctx context.Context, id domain.WaiverID) (domain.Waiver, error)

	// ListUnassignedByIdentity returns unassigned, accepted waivers whose identity matches exactly, ordered by id.
	ListUnassignedByIdentity(ctx context.Context, id domain.Identity) ([]domain.Waiver, error)
}
