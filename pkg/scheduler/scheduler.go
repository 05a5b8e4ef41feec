// Package scheduler runs the overdue scan: on a cron schedule it walks the
// stored interventions and publishes an event for every row sitting in a
// check status past its planned date.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/maubry/ouvra/pkg/eventbus"
	"github.com/maubry/ouvra/pkg/events"
	"github.com/maubry/ouvra/pkg/interventions"
	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
	"github.com/maubry/ouvra/pkg/references"
	"github.com/maubry/ouvra/pkg/status"
)

// DefaultCronExpr scans every morning at 07:00.
const DefaultCronExpr = "0 7 * * *"

const scanPageSize = 100

var ErrInvalidCronExpr = errors.New("invalid cron expression")

// Scanner periodically flags overdue interventions.
type Scanner struct {
	persistence persistence.Persistence
	refs        *references.Cache
	bus         eventbus.EventPublisher
	cronExpr    string
	logger      *slog.Logger

	cron *cron.Cron
}

func NewScanner(
	p persistence.Persistence,
	refs *references.Cache,
	bus eventbus.EventPublisher,
	cronExpr string,
	logger *slog.Logger,
) (*Scanner, error) {
	if cronExpr == "" {
		cronExpr = DefaultCronExpr
	}

	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCronExpr, err)
	}

	return &Scanner{
		persistence: p,
		refs:        refs,
		bus:         bus,
		cronExpr:    cronExpr,
		logger:      logger.With("module", "scheduler"),
	}, nil
}

// Start registers the cron job. Overlapping runs are skipped and panics in a
// scan are recovered.
func (s *Scanner) Start(ctx context.Context) error {
	s.logger.Info("Starting overdue scanner", "cron", s.cronExpr)

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(s.cronExpr, func() {
		if err := s.Scan(context.Background()); err != nil {
			s.logger.Error("Overdue scan failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue scan: %w", err)
	}

	s.cron.Start()

	return nil
}

// Stop halts the cron loop. A scan in flight finishes.
func (s *Scanner) Stop(ctx context.Context) error {
	s.logger.Info("Stopping overdue scanner")

	if s.cron != nil {
		s.cron.Stop()
	}

	return nil
}

// Scan walks all interventions once and publishes InterventionOverdue for
// each row whose status and planned date flag it. Publish failures are
// logged and the scan keeps going.
func (s *Scanner) Scan(ctx context.Context) error {
	snap, err := s.refs.Get(ctx)
	if err != nil {
		s.logger.Warn("Reference fetch failed, scanning with raw statuses", "error", err)

		snap = references.BuildSnapshot(nil)
	}

	flagged := 0

	for offset := 0; ; offset += scanPageSize {
		rows, err := s.persistence.Interventions().Interventions(ctx, persistence.ListOptions{
			Limit:  scanPageSize,
			Offset: offset,
		})
		if err != nil {
			return fmt.Errorf("failed to list interventions: %w", err)
		}

		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			if s.flagIfOverdue(ctx, row, snap) {
				flagged++
			}
		}

		if len(rows) < scanPageSize {
			break
		}
	}

	s.logger.Info("Overdue scan finished", "flagged", flagged)

	return nil
}

func (s *Scanner) flagIfOverdue(ctx context.Context, row *models.Intervention, snap *references.Snapshot) bool {
	view := interventions.MapRecord(row, snap)
	if !view.Check || view.StatusCode == nil || row.DatePrevue == nil {
		return false
	}

	overdue := &events.InterventionOverdue{
		BaseEvent: events.BaseEvent{
			ID:             uuid.NewString(),
			Type:           events.InterventionOverdueEvent,
			Timestamp:      time.Now().UTC(),
			InterventionID: row.ID,
		},
		StatusCode: status.NormalizeCode(*view.StatusCode),
		DatePrevue: *row.DatePrevue,
	}

	if err := s.bus.Publish(ctx, row.ID, overdue); err != nil {
		s.logger.Error("Failed to publish overdue event", "intervention_id", row.ID, "error", err)

		return false
	}

	return true
}
