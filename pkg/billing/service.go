// Package billing exposes the usage ledger: consuming request credits,
// reading the derived balance, granting credit, and reconciling totals. All
// writes go through the append-only event ledger; the balance row is derived
// by the store and never written here.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maubry/ouvra/pkg/eventbus"
	"github.com/maubry/ouvra/pkg/events"
	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

const (
	// DefaultSeedBalance is the free credit a fresh account starts with.
	DefaultSeedBalance = 500

	// BalanceCeiling caps the derived balance; grants past it are absorbed.
	BalanceCeiling = 1_000_000

	defaultPlan   = "starter"
	defaultStatus = "inactive"

	// DefaultReason tags consumption events without an explicit reason.
	DefaultReason = "chat"

	// DefaultTier tags consumption events without an explicit tier.
	DefaultTier = "consumption"
)

var ErrInvalidGrant = errors.New("grant amount must be positive")

// Config carries the tunable seed balance.
type Config struct {
	SeedBalance int64
}

// Service front-ends the billing ledger.
type Service struct {
	persistence persistence.Persistence
	bus         eventbus.EventPublisher
	seed        int64
	logger      *slog.Logger
}

func NewService(p persistence.Persistence, bus eventbus.EventPublisher, cfg Config, logger *slog.Logger) *Service {
	seed := cfg.SeedBalance
	if seed <= 0 {
		seed = DefaultSeedBalance
	}

	return &Service{
		persistence: p,
		bus:         bus,
		seed:        seed,
		logger:      logger.With("module", "billing"),
	}
}

// ConsumeResult reports the outcome of one consumption.
type ConsumeResult struct {
	OK                bool  `json:"ok"`
	RequestsRemaining int64 `json:"requests_remaining"`
}

// Consume burns amount credits (floor 1) as one negative ledger event and
// reads back the derived balance. The store applies the delta; whether a
// depleted balance blocks the caller is the caller's policy, not the
// ledger's.
func (s *Service) Consume(ctx context.Context, amount int64, reason, tier string) (*ConsumeResult, error) {
	if amount < 1 {
		amount = 1
	}

	if reason == "" {
		reason = DefaultReason
	}

	if tier == "" {
		tier = DefaultTier
	}

	event := &models.UsageEvent{
		ID:     uuid.NewString(),
		Delta:  -amount,
		Reason: reason,
		Tier:   tier,
	}

	if err := s.persistence.Billing().InsertUsageEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	s.publishUsage(ctx, event)

	state, err := s.Balance(ctx)
	if err != nil {
		return nil, err
	}

	return &ConsumeResult{
		OK:                state.RequestsRemaining > 0,
		RequestsRemaining: state.RequestsRemaining,
	}, nil
}

// Grant credits amount back onto the balance as one positive ledger event.
// The store clamps the derived balance at the ceiling.
func (s *Service) Grant(ctx context.Context, amount int64, reason string) (*models.BillingState, error) {
	if amount < 1 {
		return nil, ErrInvalidGrant
	}

	event := &models.UsageEvent{
		ID:     uuid.NewString(),
		Delta:  amount,
		Reason: reason,
		Tier:   "grant",
	}

	if err := s.persistence.Billing().InsertUsageEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record grant: %w", err)
	}

	s.publishUsage(ctx, event)

	return s.Balance(ctx)
}

// Balance reads the derived balance row. An account with no ledger activity
// yet has no row; it is reported as the synthesized default.
func (s *Service) Balance(ctx context.Context) (*models.BillingState, error) {
	state, err := s.persistence.Billing().BillingState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read billing state: %w", err)
	}

	if state == nil {
		return &models.BillingState{
			Plan:              defaultPlan,
			Status:            defaultStatus,
			RequestsRemaining: s.seed,
			UpdatedAt:         time.Now().UTC(),
		}, nil
	}

	return state, nil
}

// Reconcile aggregates the ledger rows tagged with mode and recomputes what
// the balance should be from first principles. Read-only: the override is
// reported, never written back.
func (s *Service) Reconcile(ctx context.Context, mode string) (*models.Reconciliation, error) {
	if mode == "" {
		mode = DefaultTier
	}

	totals, err := s.persistence.Billing().UsageTotals(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}

	override := s.seed - totals.Requests
	if override < 0 {
		override = 0
	}

	if override > BalanceCeiling {
		override = BalanceCeiling
	}

	return &models.Reconciliation{
		Mode:            mode,
		Totals:          *totals,
		BalanceOverride: override,
	}, nil
}

func (s *Service) publishUsage(ctx context.Context, event *models.UsageEvent) {
	recorded := &events.UsageRecorded{
		BaseEvent: events.BaseEvent{
			ID:        uuid.NewString(),
			Type:      events.UsageRecordedEvent,
			Timestamp: time.Now().UTC(),
		},
		EventID: event.ID,
		Delta:   event.Delta,
		Reason:  event.Reason,
		Tier:    event.Tier,
	}

	if err := s.bus.Publish(ctx, event.ID, recorded); err != nil {
		s.logger.Error("Failed to publish usage event", "event_id", event.ID, "error", err)
	}
}
