// Package interventions holds the intervention read-model mapper and the
// service coordinating persistence, workflow validation, and eventing.
package interventions

import (
	"strings"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/references"
	"github.com/maubry/ouvra/pkg/status"
)

// MapRecord resolves a stored row against a reference snapshot into the view
// served to clients. Resolution is soft: what the snapshot cannot resolve
// stays nil, and mapping itself never fails.
func MapRecord(row *models.Intervention, snap *references.Snapshot) *models.InterventionView {
	view := &models.InterventionView{
		ID:             row.ID,
		IDIntervention: row.IDIntervention,
		Titre:          row.Titre,
		Description:    row.Description,
		DatePrevue:     row.DatePrevue,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}

	if row.UserID != nil {
		view.AttribueA, view.AssignedUserCode = snap.UserDisplay(*row.UserID)
	}

	if ref := resolveStatus(row, snap); ref != nil {
		view.StatusCode = &ref.Code

		if ref.Label != "" {
			view.StatusLabel = &ref.Label
		}

		if ref.Color != "" {
			view.StatusColor = &ref.Color
		}
	}

	if row.AgenceID != nil {
		if agency, ok := snap.AgenciesByID[*row.AgenceID]; ok {
			view.AgenceLabel = &agency.Label
			view.AgenceCode = &agency.Code
		}
	}

	if row.MetierID != nil {
		if metier, ok := snap.MetiersByID[*row.MetierID]; ok {
			view.MetierCode = &metier.Code
		}
	}

	if view.StatusCode != nil && row.DatePrevue != nil {
		view.Check = status.IsCheckStatus(*view.StatusCode, *row.DatePrevue)
	}

	return view
}

// resolveStatus follows the statut_id foreign key when present; a stale id
// yields nil rather than guessing. Rows without the foreign key fall back to
// the raw statut string folded to a canonical code.
func resolveStatus(row *models.Intervention, snap *references.Snapshot) *models.StatusRef {
	if row.StatutID != nil {
		return snap.InterventionStatusesByID[*row.StatutID]
	}

	if strings.TrimSpace(row.Statut) == "" {
		return nil
	}

	code := status.CanonicalCode(row.Statut)
	if ref := snap.StatusByCode(code); ref != nil {
		return ref
	}

	return &models.StatusRef{Code: code}
}
