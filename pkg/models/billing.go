package models

import "time"

// UsageEvent is one append-only ledger row. Negative deltas consume credit,
// positive deltas grant it. The balance itself is derived by the store; no
// application code writes it directly.
type UsageEvent struct {
	ID        string    `json:"id"`
	Delta     int64     `json:"delta"     validate:"required"`
	Reason    string    `json:"reason"`
	Tier      string    `json:"tier"`
	Tokens    int64     `json:"tokens,omitempty"`
	CostCents int64     `json:"cost_cents,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BillingState is the single derived balance row.
type BillingState struct {
	Plan              string    `json:"plan"`
	Status            string    `json:"status"`
	RequestsRemaining int64     `json:"requests_remaining"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UsageTotals aggregates ledger rows for one accounting mode.
type UsageTotals struct {
	Requests  int64 `json:"requests"`
	Tokens    int64 `json:"tokens"`
	CostCents int64 `json:"cost_cents"`
}

// Reconciliation is the read-only sync result: observed totals plus the
// recomputed balance, clamped into [0, ceiling].
type Reconciliation struct {
	Mode            string      `json:"mode"`
	Totals          UsageTotals `json:"totals"`
	BalanceOverride int64       `json:"balance_override"`
}
