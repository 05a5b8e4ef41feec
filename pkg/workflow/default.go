package workflow

import (
	"time"

	"github.com/maubry/ouvra/pkg/models"
)

// DefaultConfigKey is the storage key the back-office persists its workflow
// configuration under.
const DefaultConfigKey = "crm:interventions:workflow-config"

// DefaultConfig returns the seeded intervention status graph the engine
// falls back to when no configuration has been persisted yet.
func DefaultConfig() *models.WorkflowConfig {
	now := time.Now().UTC()

	return &models.WorkflowConfig{
		ID:       "default",
		Name:     "Workflow interventions",
		Version:  1,
		IsActive: true,
		Statuses: []*models.WorkflowStatus{
			{
				Key: "DEMANDE", Label: "Demande", Color: "#6b7280", Icon: "inbox",
				IsInitial: true, IsPinned: true, PinnedOrder: 1, Position: 1,
			},
			{
				Key: "DEVIS_ENVOYE", Label: "Devis envoyé", Color: "#f59e0b", Icon: "send",
				IsPinned: true, PinnedOrder: 2, Position: 2,
				Metadata: models.StatusMetadata{
					RequiresDevis: true,
					AutoActions: []models.AutoAction{
						{Type: "send_email_devis"},
					},
				},
			},
			{
				Key: "VISITE_TECHNIQUE", Label: "Visite technique", Color: "#8b5cf6", Icon: "search",
				IsPinned: true, PinnedOrder: 3, Position: 3,
				Metadata: models.StatusMetadata{RequiresArtisan: true},
			},
			{
				Key: "ACCEPTE", Label: "Accepté", Color: "#10b981", Icon: "check",
				IsPinned: true, PinnedOrder: 4, Position: 4,
				Metadata: models.StatusMetadata{RequiresDevis: true},
			},
			{
				Key: "EN_COURS", Label: "En cours", Color: "#3b82f6", Icon: "wrench",
				IsPinned: true, PinnedOrder: 5, Position: 5,
				Metadata: models.StatusMetadata{RequiresArtisan: true},
			},
			{
				Key: "TERMINE", Label: "Terminé", Color: "#22c55e", Icon: "flag",
				IsTerminal: true, Position: 6,
				Metadata: models.StatusMetadata{
					RequiresArtisan:      true,
					RequiresFacture:      true,
					RequiresProprietaire: true,
					AutoActions: []models.AutoAction{
						{Type: "generate_invoice_if_missing"},
					},
				},
			},
			{
				Key: "REFUSE", Label: "Refusé", Color: "#ef4444", Icon: "x",
				IsTerminal: true, Position: 7,
				Metadata: models.StatusMetadata{RequiresCommentaire: true},
			},
			{
				Key: "ANNULE", Label: "Annulé", Color: "#9ca3af", Icon: "slash",
				IsTerminal: true, Position: 8,
				Metadata: models.StatusMetadata{RequiresCommentaire: true},
			},
			{
				Key: "STAND_BY", Label: "Stand-by", Color: "#eab308", Icon: "pause",
				Position: 9,
				Metadata: models.StatusMetadata{RequiresCommentaire: true},
			},
			{
				Key: "SAV", Label: "SAV", Color: "#f97316", Icon: "repeat",
				Position: 10,
				Metadata: models.StatusMetadata{RequiresCommentaire: true},
			},
			{
				Key: "ATT_ACOMPTE", Label: "Attente acompte", Color: "#14b8a6", Icon: "clock",
				Position: 11,
			},
		},
		Transitions: defaultTransitions(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func defaultTransitions() []*models.WorkflowTransition {
	pairs := [][2]string{
		{"DEMANDE", "DEVIS_ENVOYE"},
		{"DEMANDE", "VISITE_TECHNIQUE"},
		{"DEMANDE", "REFUSE"},
		{"DEMANDE", "ANNULE"},
		{"DEMANDE", "STAND_BY"},
		{"VISITE_TECHNIQUE", "DEVIS_ENVOYE"},
		{"VISITE_TECHNIQUE", "STAND_BY"},
		{"VISITE_TECHNIQUE", "ANNULE"},
		{"DEVIS_ENVOYE", "ACCEPTE"},
		{"DEVIS_ENVOYE", "REFUSE"},
		{"DEVIS_ENVOYE", "STAND_BY"},
		{"DEVIS_ENVOYE", "ANNULE"},
		{"ACCEPTE", "ATT_ACOMPTE"},
		{"ACCEPTE", "EN_COURS"},
		{"ACCEPTE", "ANNULE"},
		{"ATT_ACOMPTE", "EN_COURS"},
		{"ATT_ACOMPTE", "ANNULE"},
		{"EN_COURS", "TERMINE"},
		{"EN_COURS", "STAND_BY"},
		{"EN_COURS", "SAV"},
		{"TERMINE", "SAV"},
		{"STAND_BY", "EN_COURS"},
		{"SAV", "EN_COURS"},
	}

	transitions := make([]*models.WorkflowTransition, 0, len(pairs))

	for _, p := range pairs {
		transitions = append(transitions, &models.WorkflowTransition{
			ID:       "default-" + p[0] + "-" + p[1],
			From:     p[0],
			To:       p[1],
			IsActive: true,
		})
	}

	return transitions
}
