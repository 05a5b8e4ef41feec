// Package models defines the core domain models for the intervention workflow engine.
package models

import "time"

// ConditionType discriminates transition guard conditions.
type ConditionType string

const (
	ConditionFieldRequired    ConditionType = "field_required"
	ConditionFieldEquals      ConditionType = "field_equals"
	ConditionCustomValidation ConditionType = "custom_validation"
)

// AutoAction describes a side effect the engine emits on a successful
// transition. The engine never executes actions itself.
type AutoAction struct {
	Type   string         `json:"type"             validate:"required"`
	Config map[string]any `json:"config,omitempty"`
}

// StatusMetadata carries the per-status requirements checked before a
// transition into the status is allowed, plus the actions triggered on entry.
type StatusMetadata struct {
	RequiresArtisan      bool         `json:"requires_artisan,omitempty"`
	RequiresFacture      bool         `json:"requires_facture,omitempty"`
	RequiresProprietaire bool         `json:"requires_proprietaire,omitempty"`
	RequiresCommentaire  bool         `json:"requires_commentaire,omitempty"`
	RequiresDevis        bool         `json:"requires_devis,omitempty"`
	AutoActions          []AutoAction `json:"auto_actions,omitempty"`
}

// WorkflowStatus is a node of the intervention status graph.
type WorkflowStatus struct {
	Key         string         `json:"key"   validate:"required"`
	Label       string         `json:"label" validate:"required"`
	Color       string         `json:"color"`
	Icon        string         `json:"icon,omitempty"`
	IsTerminal  bool           `json:"is_terminal"`
	IsInitial   bool           `json:"is_initial"`
	IsPinned    bool           `json:"is_pinned"`
	PinnedOrder int            `json:"pinned_order,omitempty"`
	Position    int            `json:"position"`
	Metadata    StatusMetadata `json:"metadata"`
}

// TransitionCondition is a guard evaluated against the entity context.
type TransitionCondition struct {
	Type      ConditionType `json:"type"                validate:"required,oneof=field_required field_equals custom_validation"`
	Field     string        `json:"field,omitempty"`
	Value     any           `json:"value,omitempty"`
	Validator string        `json:"validator,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// WorkflowTransition is a directed edge of the status graph.
type WorkflowTransition struct {
	ID          string                `json:"id"`
	From        string                `json:"from" validate:"required"`
	To          string                `json:"to"   validate:"required"`
	Label       string                `json:"label,omitempty"`
	Conditions  []TransitionCondition `json:"conditions,omitempty"`
	AutoActions []AutoAction          `json:"auto_actions,omitempty"`
	IsActive    bool                  `json:"is_active"`
}

// WorkflowConfig is the full, persistable description of the status graph.
type WorkflowConfig struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"    validate:"required,min=3"`
	Version     int                   `json:"version" validate:"gte=1"`
	IsActive    bool                  `json:"is_active"`
	Statuses    []*WorkflowStatus     `json:"statuses"`
	Transitions []*WorkflowTransition `json:"transitions"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// StatusByKey returns the status with the given key, or nil.
func (c *WorkflowConfig) StatusByKey(key string) *WorkflowStatus {
	for _, s := range c.Statuses {
		if s.Key == key {
			return s
		}
	}

	return nil
}

// EntityContext is the slice of an intervention the transition guards inspect.
// Nil pointers mean "absent"; guards treat blank strings the same way.
type EntityContext struct {
	ArtisanID      *string        `json:"artisan_id,omitempty"`
	FactureID      *string        `json:"facture_id,omitempty"`
	ProprietaireID *string        `json:"proprietaire_id,omitempty"`
	Commentaire    *string        `json:"commentaire,omitempty"`
	DevisID        *string        `json:"devis_id,omitempty"`
	IDIntervention *string        `json:"id_intervention,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// Field returns the string form of a named context field. The well-known
// fields resolve from their typed slots; anything else falls back to Extra.
func (e *EntityContext) Field(name string) (string, bool) {
	deref := func(p *string) (string, bool) {
		if p == nil {
			return "", false
		}

		return *p, true
	}

	switch name {
	case "artisanId":
		return deref(e.ArtisanID)
	case "factureId":
		return deref(e.FactureID)
	case "proprietaireId":
		return deref(e.ProprietaireID)
	case "commentaire":
		return deref(e.Commentaire)
	case "devisId":
		return deref(e.DevisID)
	case "idIntervention":
		return deref(e.IDIntervention)
	}

	if e.Extra == nil {
		return "", false
	}

	v, ok := e.Extra[name]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// ValidationResult reports the outcome of a transition validation. All
// failing requirements are collected, never just the first.
type ValidationResult struct {
	CanTransition       bool     `json:"can_transition"`
	MissingRequirements []string `json:"missing_requirements,omitempty"`
	FailedConditions    []string `json:"failed_conditions,omitempty"`
}
