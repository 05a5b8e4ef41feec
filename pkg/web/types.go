// Package web provides HTTP request and response types for the intervention API.
package web

// CreateInterventionRequest is the body for creating an intervention.
type CreateInterventionRequest struct {
	IDIntervention string         `json:"id_intervention"`
	Titre          string         `json:"titre"                validate:"required,min=1"`
	Description    string         `json:"description"`
	Statut         string         `json:"statut,omitempty"`
	UserID         *string        `json:"user_id,omitempty"`
	AgenceID       *string        `json:"agence_id,omitempty"`
	MetierID       *string        `json:"metier_id,omitempty"`
	ArtisanID      *string        `json:"artisan_id,omitempty"`
	DatePrevue     *string        `json:"date_prevue,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// UpdateInterventionRequest supports partial updates; nil fields are left
// untouched.
type UpdateInterventionRequest struct {
	Titre          *string        `json:"titre,omitempty"          validate:"omitempty,min=1"`
	Description    *string        `json:"description,omitempty"`
	UserID         *string        `json:"user_id,omitempty"`
	AgenceID       *string        `json:"agence_id,omitempty"`
	MetierID       *string        `json:"metier_id,omitempty"`
	ArtisanID      *string        `json:"artisan_id,omitempty"`
	FactureID      *string        `json:"facture_id,omitempty"`
	ProprietaireID *string        `json:"proprietaire_id,omitempty"`
	DevisID        *string        `json:"devis_id,omitempty"`
	Commentaire    *string        `json:"commentaire,omitempty"`
	DatePrevue     *string        `json:"date_prevue,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// TransitionStatusRequest asks for a workflow transition.
type TransitionStatusRequest struct {
	Status    string  `json:"status"              validate:"required"`
	DueAt     *string `json:"dueAt,omitempty"`
	ArtisanID *string `json:"artisanId,omitempty"`
}

// UpdateStatusColorRequest is the body for recoloring a status row.
type UpdateStatusColorRequest struct {
	Color string `json:"color" validate:"required,min=1"`
}

// ValidateTransitionRequest is the dry-run validation body.
type ValidateTransitionRequest struct {
	From    string            `json:"from"              validate:"required"`
	To      string            `json:"to"                validate:"required"`
	Context TransitionContext `json:"context,omitempty"`
}

// TransitionContext mirrors the entity fields the transition guards inspect.
type TransitionContext struct {
	ArtisanID      *string        `json:"artisanId,omitempty"`
	FactureID      *string        `json:"factureId,omitempty"`
	ProprietaireID *string        `json:"proprietaireId,omitempty"`
	Commentaire    *string        `json:"commentaire,omitempty"`
	DevisID        *string        `json:"devisId,omitempty"`
	IDIntervention *string        `json:"idIntervention,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// ConsumeRequest is the body for burning request credits.
type ConsumeRequest struct {
	Amount int64  `json:"amount" validate:"omitempty,min=0"`
	Reason string `json:"reason"`
	Tier   string `json:"tier"`
}

// GrantRequest is the body for crediting the balance.
type GrantRequest struct {
	Amount int64  `json:"amount" validate:"required,min=1"`
	Reason string `json:"reason"`
}
