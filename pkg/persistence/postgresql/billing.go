package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

// BillingRepository stores the append-only usage ledger. The derived balance
// in billing_state is maintained by the apply_usage_event trigger; this
// repository only ever inserts events and reads.
type BillingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewBillingRepository creates a new billing repository.
func NewBillingRepository(db *sql.DB, logger *slog.Logger) *BillingRepository {
	return &BillingRepository{db: db, logger: logger}
}

// InsertUsageEvent appends one ledger row. The balance update happens inside
// the database trigger, serialized with any concurrent inserts.
func (br *BillingRepository) InsertUsageEvent(ctx context.Context, event *models.UsageEvent) error {
	if event.Delta == 0 {
		return persistence.ErrInvalidUsageEvent
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := br.db.ExecContext(ctx, `
		INSERT INTO usage_events (id, delta, reason, tier, tokens, cost_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.Delta, event.Reason, event.Tier, event.Tokens, event.CostCents, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert usage event %s: %w", event.ID, err)
	}

	return nil
}

// BillingState reads the derived balance row, (nil, nil) when no ledger
// activity has created one yet.
func (br *BillingRepository) BillingState(ctx context.Context) (*models.BillingState, error) {
	state := &models.BillingState{}

	err := br.db.QueryRowContext(ctx,
		`SELECT plan, status, requests_remaining, updated_at FROM billing_state WHERE singleton`).
		Scan(&state.Plan, &state.Status, &state.RequestsRemaining, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch billing state: %w", err)
	}

	return state, nil
}

// UsageTotals aggregates ledger rows, optionally filtered by tier.
func (br *BillingRepository) UsageTotals(ctx context.Context, tier string) (*models.UsageTotals, error) {
	totals := &models.UsageTotals{}

	err := br.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0),
			COALESCE(SUM(tokens), 0),
			COALESCE(SUM(cost_cents), 0)
		FROM usage_events
		WHERE $1 = '' OR tier = $1`, tier).
		Scan(&totals.Requests, &totals.Tokens, &totals.CostCents)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage totals: %w", err)
	}

	return totals, nil
}
