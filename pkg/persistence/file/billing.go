package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

const (
	// Seed balance for a state created by the first ledger event.
	defaultSeedBalance = 500

	// Hard ceiling the derived balance never exceeds.
	balanceCeiling = 1_000_000
)

// BillingRepository stores the usage ledger as events.json plus a derived
// state.json. Every balance change flows through the single applyEvent path;
// the mutex stands in for the serialization a real store's trigger provides.
type BillingRepository struct {
	root string

	mu sync.Mutex
}

// NewBillingRepository creates a new billing repository.
func NewBillingRepository(root string) *BillingRepository {
	return &BillingRepository{root: root}
}

type billingDocument struct {
	Events []*models.UsageEvent `json:"events"`
}

// InsertUsageEvent appends one ledger row and applies its delta to the
// derived state.
func (br *BillingRepository) InsertUsageEvent(_ context.Context, event *models.UsageEvent) error {
	if event.Delta == 0 {
		return persistence.ErrInvalidUsageEvent
	}

	br.mu.Lock()
	defer br.mu.Unlock()

	doc, err := br.loadEvents()
	if err != nil {
		return err
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	doc.Events = append(doc.Events, event)

	if err := br.saveJSON("events.json", doc); err != nil {
		return err
	}

	return br.applyEvent(event)
}

// BillingState returns the derived balance row, or (nil, nil) when no ledger
// activity has created one yet.
func (br *BillingRepository) BillingState(_ context.Context) (*models.BillingState, error) {
	br.mu.Lock()
	defer br.mu.Unlock()

	return br.loadState()
}

// UsageTotals aggregates ledger rows, optionally filtered by tier.
func (br *BillingRepository) UsageTotals(_ context.Context, tier string) (*models.UsageTotals, error) {
	br.mu.Lock()
	defer br.mu.Unlock()

	doc, err := br.loadEvents()
	if err != nil {
		return nil, err
	}

	totals := &models.UsageTotals{}

	for _, ev := range doc.Events {
		if tier != "" && ev.Tier != tier {
			continue
		}

		if ev.Delta < 0 {
			totals.Requests += -ev.Delta
		}

		totals.Tokens += ev.Tokens
		totals.CostCents += ev.CostCents
	}

	return totals, nil
}

// applyEvent is the only writer of the derived state. The balance is clamped
// into [0, ceiling] no matter what deltas arrive.
func (br *BillingRepository) applyEvent(event *models.UsageEvent) error {
	state, err := br.loadState()
	if err != nil {
		return err
	}

	if state == nil {
		state = &models.BillingState{
			Plan:              "starter",
			Status:            "active",
			RequestsRemaining: defaultSeedBalance,
		}
	}

	balance := state.RequestsRemaining + event.Delta
	if balance < 0 {
		balance = 0
	}

	if balance > balanceCeiling {
		balance = balanceCeiling
	}

	state.RequestsRemaining = balance
	state.UpdatedAt = time.Now().UTC()

	return br.saveJSON("state.json", state)
}

func (br *BillingRepository) loadEvents() (*billingDocument, error) {
	var doc billingDocument

	ok, err := br.loadJSON("events.json", &doc)
	if err != nil {
		return nil, err
	}

	if !ok {
		return &billingDocument{}, nil
	}

	return &doc, nil
}

func (br *BillingRepository) loadState() (*models.BillingState, error) {
	var state models.BillingState

	ok, err := br.loadJSON("state.json", &state)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	return &state, nil
}

func (br *BillingRepository) loadJSON(name string, v any) (bool, error) {
	body, err := os.ReadFile(filepath.Clean(path.Join(br.dir(), name)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}

	return true, nil
}

func (br *BillingRepository) saveJSON(name string, v any) error {
	if err := os.MkdirAll(br.dir(), 0750); err != nil {
		return fmt.Errorf("failed to create billing directory: %w", err)
	}

	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	return os.WriteFile(path.Join(br.dir(), name), body, 0600)
}

func (br *BillingRepository) dir() string {
	return path.Join(br.root, "billing")
}
