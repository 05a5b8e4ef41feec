package workflow

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/maubry/ouvra/pkg/models"
)

var (
	// ErrStatusExists indicates a status with the same key is already present.
	ErrStatusExists = errors.New("status already exists")

	// ErrStatusUnknown indicates a status key that is not part of the graph.
	ErrStatusUnknown = errors.New("status not found in workflow")

	// ErrTransitionUnknown indicates a transition id that is not part of the graph.
	ErrTransitionUnknown = errors.New("transition not found in workflow")
)

// AddStatus appends a status node. Keys are unique.
func AddStatus(cfg *models.WorkflowConfig, status *models.WorkflowStatus) error {
	if cfg.StatusByKey(status.Key) != nil {
		return fmt.Errorf("%w: %s", ErrStatusExists, status.Key)
	}

	if status.Position == 0 {
		status.Position = len(cfg.Statuses) + 1
	}

	cfg.Statuses = append(cfg.Statuses, status)
	touch(cfg)

	return nil
}

// UpdateStatus replaces the status with the given key, preserving the key.
func UpdateStatus(cfg *models.WorkflowConfig, key string, status *models.WorkflowStatus) error {
	for i, s := range cfg.Statuses {
		if s.Key == key {
			status.Key = key
			cfg.Statuses[i] = status

			touch(cfg)

			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrStatusUnknown, key)
}

// RemoveStatus removes a status node and cascades removal of every
// transition referencing it.
func RemoveStatus(cfg *models.WorkflowConfig, key string) error {
	idx := -1

	for i, s := range cfg.Statuses {
		if s.Key == key {
			idx = i

			break
		}
	}

	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrStatusUnknown, key)
	}

	cfg.Statuses = append(cfg.Statuses[:idx], cfg.Statuses[idx+1:]...)

	kept := cfg.Transitions[:0]

	for _, t := range cfg.Transitions {
		if t.From != key && t.To != key {
			kept = append(kept, t)
		}
	}

	cfg.Transitions = kept

	renumberPins(cfg)
	touch(cfg)

	return nil
}

// AddTransition appends an edge. Both endpoints must be existing statuses;
// a missing id is generated.
func AddTransition(cfg *models.WorkflowConfig, transition *models.WorkflowTransition) error {
	if cfg.StatusByKey(transition.From) == nil {
		return fmt.Errorf("%w: %s", ErrStatusUnknown, transition.From)
	}

	if cfg.StatusByKey(transition.To) == nil {
		return fmt.Errorf("%w: %s", ErrStatusUnknown, transition.To)
	}

	if transition.ID == "" {
		transition.ID = uuid.New().String()
	}

	cfg.Transitions = append(cfg.Transitions, transition)
	touch(cfg)

	return nil
}

// UpdateTransition replaces the transition with the given id.
func UpdateTransition(cfg *models.WorkflowConfig, id string, transition *models.WorkflowTransition) error {
	if cfg.StatusByKey(transition.From) == nil {
		return fmt.Errorf("%w: %s", ErrStatusUnknown, transition.From)
	}

	if cfg.StatusByKey(transition.To) == nil {
		return fmt.Errorf("%w: %s", ErrStatusUnknown, transition.To)
	}

	for i, t := range cfg.Transitions {
		if t.ID == id {
			transition.ID = id
			cfg.Transitions[i] = transition

			touch(cfg)

			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrTransitionUnknown, id)
}

// RemoveTransition removes the transition with the given id.
func RemoveTransition(cfg *models.WorkflowConfig, id string) error {
	for i, t := range cfg.Transitions {
		if t.ID == id {
			cfg.Transitions = append(cfg.Transitions[:i], cfg.Transitions[i+1:]...)

			touch(cfg)

			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrTransitionUnknown, id)
}

// TogglePin flips the pinned flag of a status and renumbers the pinned
// ordering contiguously.
func TogglePin(cfg *models.WorkflowConfig, key string) error {
	status := cfg.StatusByKey(key)
	if status == nil {
		return fmt.Errorf("%w: %s", ErrStatusUnknown, key)
	}

	status.IsPinned = !status.IsPinned
	if !status.IsPinned {
		status.PinnedOrder = 0
	}

	renumberPins(cfg)
	touch(cfg)

	return nil
}

// renumberPins keeps pinned ordering contiguous, ordered by existing pinned
// order then by graph position for freshly pinned statuses.
func renumberPins(cfg *models.WorkflowConfig) {
	var pinned []*models.WorkflowStatus

	for _, s := range cfg.Statuses {
		if s.IsPinned {
			pinned = append(pinned, s)
		}
	}

	sort.SliceStable(pinned, func(i, j int) bool {
		oi, oj := pinned[i].PinnedOrder, pinned[j].PinnedOrder

		if oi == 0 {
			oi = pinned[i].Position + len(cfg.Statuses)
		}

		if oj == 0 {
			oj = pinned[j].Position + len(cfg.Statuses)
		}

		return oi < oj
	})

	for i, s := range pinned {
		s.PinnedOrder = i + 1
	}
}

func touch(cfg *models.WorkflowConfig) {
	cfg.UpdatedAt = time.Now().UTC()
}
