package models

import "time"

// Intervention is the stored intervention row. Foreign keys reference the
// snapshot tables; nullable columns are pointers.
type Intervention struct {
	ID             string         `json:"id"`
	IDIntervention string         `json:"id_intervention"`
	Titre          string         `json:"titre"          validate:"required"`
	Description    string         `json:"description,omitempty"`
	StatutID       *string        `json:"statut_id,omitempty"`
	Statut         string         `json:"statut,omitempty"`
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
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Context projects the row into the slice the transition guards inspect.
func (i *Intervention) Context() *EntityContext {
	idi := i.IDIntervention

	return &EntityContext{
		ArtisanID:      i.ArtisanID,
		FactureID:      i.FactureID,
		ProprietaireID: i.ProprietaireID,
		Commentaire:    i.Commentaire,
		DevisID:        i.DevisID,
		IDIntervention: &idi,
	}
}

// InterventionView is the read model served to clients: the stored row with
// reference ids resolved to display fields. Resolution is soft; anything the
// snapshot cannot resolve stays nil.
type InterventionView struct {
	ID               string  `json:"id"`
	IDIntervention   string  `json:"id_intervention"`
	Titre            string  `json:"titre"`
	Description      string  `json:"description,omitempty"`
	StatusCode       *string `json:"status_code"`
	StatusLabel      *string `json:"status_label"`
	StatusColor      *string `json:"status_color"`
	AttribueA        *string `json:"attribue_a"`
	AssignedUserCode *string `json:"assigned_user_code"`
	AgenceLabel      *string `json:"agence_label"`
	AgenceCode       *string `json:"agence_code"`
	MetierCode       *string `json:"metier_code"`
	DatePrevue       *string `json:"date_prevue,omitempty"`
	Check            bool    `json:"check"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
