package interventions

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maubry/ouvra/pkg/eventbus"
	"github.com/maubry/ouvra/pkg/events"
	"github.com/maubry/ouvra/pkg/models"
	filepersistence "github.com/maubry/ouvra/pkg/persistence/file"
	"github.com/maubry/ouvra/pkg/references"
	"github.com/maubry/ouvra/pkg/status"
	"github.com/maubry/ouvra/pkg/workflow"
)

type capturingBus struct {
	published []eventbus.Event
	ids       int
}

func (b *capturingBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	b.published = append(b.published, event)

	return nil
}

func (b *capturingBus) PublishTo(ctx context.Context, topic, key string, event eventbus.Event) error {
	return b.Publish(ctx, key, event)
}

func (b *capturingBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	return nil
}

func (b *capturingBus) Subscribe(ctx context.Context) error { return nil }

func (b *capturingBus) Close() error { return nil }

func (b *capturingBus) GenerateID() string {
	b.ids++

	return "evt-" + string(rune('0'+b.ids))
}

func (b *capturingBus) byType(eventType events.EventType) []eventbus.Event {
	var out []eventbus.Event

	for _, e := range b.published {
		if e.GetType() == eventType {
			out = append(out, e)
		}
	}

	return out
}

func newTestService(t *testing.T) (*Service, *capturingBus) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	p := filepersistence.NewPersistence(t.TempDir())
	require.NoError(t, p.References().(*filepersistence.ReferenceRepository).SeedReferenceData(&models.ReferenceData{
		Users: []*models.User{
			{ID: "u-1", Username: "jdupont", CodeGestionnaire: "JDU"},
		},
		Agencies: []*models.Agency{
			{ID: "a-1", Label: "Agence Lyon", Code: "LYO"},
		},
		InterventionStatuses: []*models.StatusRef{
			{ID: "s-demande", Code: "DEMANDE", Label: "Demande", Color: "#6b7280"},
			{ID: "s-devis", Code: "DEVIS_ENVOYE", Label: "Devis envoyé", Color: "#f59e0b"},
			{ID: "s-encours", Code: "EN_COURS", Label: "En cours", Color: "#3b82f6"},
			{ID: "s-termine", Code: "TERMINE", Label: "Terminé", Color: "#22c55e"},
		},
	}))

	bus := &capturingBus{}
	refs := references.NewCache(p.References())
	manager := workflow.NewManager(workflow.NewFileStore(t.TempDir(), logger), logger)

	return NewService(p, refs, manager, workflow.NewEngine(), bus, logger), bus
}

func TestCreateDefaultsToDemande(t *testing.T) {
	service, _ := newTestService(t)

	view, err := service.Create(t.Context(), CreateRequest{
		Titre:  "Fuite salle de bain",
		UserID: strPtr("u-1"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	require.NotNil(t, view.StatusCode)
	assert.Equal(t, status.CodeDemande, *view.StatusCode)
	assert.Equal(t, "Demande", *view.StatusLabel)
	assert.Equal(t, "JDU", *view.AttribueA)
}

func TestCreateRequiresTitle(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Create(t.Context(), CreateRequest{Titre: "   "})
	require.ErrorIs(t, err, ErrTitleRequired)
}

func TestGetByIDNotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.GetByID(t.Context(), "missing")
	require.ErrorIs(t, err, ErrInterventionNotFound)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.Create(t.Context(), CreateRequest{Titre: "Toiture"})
	require.NoError(t, err)

	updated, err := service.Update(t.Context(), created.ID, UpdateRequest{
		Description: strPtr("Tuiles cassées"),
		AgenceID:    strPtr("a-1"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Toiture", updated.Titre)
	assert.Equal(t, "Tuiles cassées", updated.Description)
	require.NotNil(t, updated.AgenceLabel)
	assert.Equal(t, "Agence Lyon", *updated.AgenceLabel)
}

func TestDelete(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.Create(t.Context(), CreateRequest{Titre: "Toiture"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.GetByID(t.Context(), created.ID)
	require.ErrorIs(t, err, ErrInterventionNotFound)

	require.ErrorIs(t, service.Delete(t.Context(), created.ID), ErrInterventionNotFound)
}

func TestTransitionStatusRejectedWithDetails(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.Create(t.Context(), CreateRequest{
		Titre:          "Fuite",
		IDIntervention: "INT-100",
	})
	require.NoError(t, err)

	_, err = service.TransitionStatus(t.Context(), created.ID, TransitionRequest{Status: "DEVIS_ENVOYE"})

	te, ok := IsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, "DEMANDE", te.FromStatus)
	assert.Equal(t, "DEVIS_ENVOYE", te.ToStatus)
	assert.Contains(t, te.Result.MissingRequirements, "Un devis doit être associé")
}

func TestTransitionStatusSuccessPublishesEvents(t *testing.T) {
	service, bus := newTestService(t)

	created, err := service.Create(t.Context(), CreateRequest{
		Titre:          "Fuite",
		IDIntervention: "INT-100",
	})
	require.NoError(t, err)

	_, err = service.Update(t.Context(), created.ID, UpdateRequest{DevisID: strPtr("devis-1")})
	require.NoError(t, err)

	view, err := service.TransitionStatus(t.Context(), created.ID, TransitionRequest{Status: "DEVIS_ENVOYE"})
	require.NoError(t, err)

	require.NotNil(t, view.StatusCode)
	assert.Equal(t, "DEVIS_ENVOYE", *view.StatusCode)
	assert.Equal(t, "Devis envoyé", *view.StatusLabel)

	changed := bus.byType(events.InterventionStatusChangedEvent)
	require.Len(t, changed, 1)

	statusChanged := changed[0].(*events.InterventionStatusChanged)
	assert.Equal(t, "DEMANDE", statusChanged.FromStatus)
	assert.Equal(t, "DEVIS_ENVOYE", statusChanged.ToStatus)
	assert.Equal(t, status.ReasonNone, statusChanged.Reason)

	requests := bus.byType(events.AutoActionRequestedEvent)
	require.Len(t, requests, 1)
	assert.Equal(t, "send_email_devis", requests[0].(*events.AutoActionRequested).Action.Type)
}

func TestTransitionStatusToTermineCarriesDoneReason(t *testing.T) {
	service, bus := newTestService(t)

	row := &models.Intervention{
		ID:             "int-1",
		IDIntervention: "INT-200",
		Titre:          "Chantier",
		Statut:         "EN_COURS",
		StatutID:       strPtr("s-encours"),
		ArtisanID:      strPtr("art-1"),
		FactureID:      strPtr("fac-1"),
		ProprietaireID: strPtr("prop-1"),
	}
	require.NoError(t, service.persistence.Interventions().SaveIntervention(t.Context(), row))

	view, err := service.TransitionStatus(t.Context(), "int-1", TransitionRequest{Status: "TERMINE"})
	require.NoError(t, err)
	assert.Equal(t, "TERMINE", *view.StatusCode)

	changed := bus.byType(events.InterventionStatusChangedEvent)
	require.Len(t, changed, 1)
	assert.Equal(t, status.ReasonDone, changed[0].(*events.InterventionStatusChanged).Reason)

	requests := bus.byType(events.AutoActionRequestedEvent)
	require.Len(t, requests, 1)
	assert.Equal(t, "generate_invoice_if_missing", requests[0].(*events.AutoActionRequested).Action.Type)
}

func TestTransitionStatusRequiresStatus(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.TransitionStatus(t.Context(), "any", TransitionRequest{Status: " "})
	require.ErrorIs(t, err, ErrStatusRequired)
}

func TestTransitionStatusArtisanOverride(t *testing.T) {
	service, _ := newTestService(t)

	row := &models.Intervention{
		ID:             "int-2",
		IDIntervention: "INT-300",
		Titre:          "Chantier",
		Statut:         "ACCEPTE",
	}
	require.NoError(t, service.persistence.Interventions().SaveIntervention(t.Context(), row))

	_, err := service.TransitionStatus(t.Context(), "int-2", TransitionRequest{Status: "EN_COURS"})
	te, ok := IsTransitionError(err)
	require.True(t, ok)
	assert.Contains(t, te.Result.MissingRequirements, "Un artisan doit être assigné")

	view, err := service.TransitionStatus(t.Context(), "int-2", TransitionRequest{
		Status:    "EN_COURS",
		ArtisanID: strPtr("art-9"),
	})
	require.NoError(t, err)
	assert.Equal(t, "EN_COURS", *view.StatusCode)
}

func TestAvailableTransitions(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.Create(t.Context(), CreateRequest{Titre: "Fuite"})
	require.NoError(t, err)

	transitions, err := service.AvailableTransitions(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, transitions, 5)

	for _, tr := range transitions {
		assert.Equal(t, "DEMANDE", tr.From)
	}
}
