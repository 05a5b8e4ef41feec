// Package events defines event types and structures for intervention
// lifecycle notifications.
package events

import (
	"time"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/status"
)

type EventType string

// Topic carries every intervention lifecycle event.
const Topic = "ouvra.events"

// ActionTopicPrefix prefixes the per-type topics the dispatcher re-publishes
// auto actions to for downstream executors.
const ActionTopicPrefix = "ouvra.actions."

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	InterventionStatusChangedEvent EventType = "intervention.status.changed"
	AutoActionRequestedEvent       EventType = "intervention.action.requested"
	InterventionOverdueEvent       EventType = "intervention.overdue"
	UsageRecordedEvent             EventType = "billing.usage.recorded"
)

type BaseEvent struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	InterventionID string         `json:"intervention_id,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// InterventionStatusChanged is published after a transition has been
// validated and persisted. Actions carries the auto-action descriptors the
// transition emitted; the dispatcher consumes them separately.
type InterventionStatusChanged struct {
	BaseEvent

	FromStatus string              `json:"from_status"`
	ToStatus   string              `json:"to_status"`
	Reason     status.ReasonType   `json:"reason,omitempty"`
	Actions    []models.AutoAction `json:"actions,omitempty"`
}

func (e InterventionStatusChanged) GetType() EventType {
	return InterventionStatusChangedEvent
}

// AutoActionRequested asks the dispatcher to run one auto action. One event
// is published per descriptor so a failing action never blocks its siblings.
type AutoActionRequested struct {
	BaseEvent

	Action models.AutoAction `json:"action"`
}

func (e AutoActionRequested) GetType() EventType {
	return AutoActionRequestedEvent
}

// InterventionOverdue flags an intervention whose planned date has passed
// while it sits in a check status.
type InterventionOverdue struct {
	BaseEvent

	StatusCode string `json:"status_code"`
	DatePrevue string `json:"date_prevue"`
}

func (e InterventionOverdue) GetType() EventType {
	return InterventionOverdueEvent
}

// UsageRecorded mirrors one billing ledger row for downstream consumers.
type UsageRecorded struct {
	BaseEvent

	EventID string `json:"event_id"`
	Delta   int64  `json:"delta"`
	Reason  string `json:"reason"`
	Tier    string `json:"tier"`
}

func (e UsageRecorded) GetType() EventType {
	return UsageRecordedEvent
}
