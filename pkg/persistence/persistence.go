// Package persistence provides the data storage abstraction layer for
// references, interventions and the billing ledger.
package persistence

import (
	"context"

	"github.com/maubry/ouvra/pkg/models"
)

// ListOptions paginates intervention listings.
type ListOptions struct {
	Limit  int
	Offset int
}

// ReferenceRepository serves the reference tables the resolver snapshots.
type ReferenceRepository interface {
	FetchReferenceData(ctx context.Context) (*models.ReferenceData, error)
	UpdateStatusColor(ctx context.Context, code, color string) error
	ListTeamMembers(ctx context.Context) ([]*models.TeamMember, error)
}

// InterventionRepository stores intervention rows.
type InterventionRepository interface {
	Interventions(ctx context.Context, opts ListOptions) ([]*models.Intervention, error)
	InterventionByID(ctx context.Context, id string) (*models.Intervention, error)
	SaveIntervention(ctx context.Context, intervention *models.Intervention) error
	UpdateInterventionStatus(ctx context.Context, id string, update StatusUpdate) error
	DeleteIntervention(ctx context.Context, id string) error
}

// StatusUpdate carries the fields a status transition writes.
type StatusUpdate struct {
	StatusCode string
	StatutID   *string
	DatePrevue *string
	ArtisanID  *string
}

// BillingRepository stores the append-only usage ledger. The balance is
// derived by the store from the events; callers never write it.
type BillingRepository interface {
	InsertUsageEvent(ctx context.Context, event *models.UsageEvent) error
	BillingState(ctx context.Context) (*models.BillingState, error)
	UsageTotals(ctx context.Context, tier string) (*models.UsageTotals, error)
}

// Persistence aggregates the repositories behind one backend.
type Persistence interface {
	References() ReferenceRepository
	Interventions() InterventionRepository
	Billing() BillingRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
