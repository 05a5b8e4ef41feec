package file

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

func TestNewPersistenceStripsFileScheme(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence("file://" + dir)

	require.NoError(t, p.HealthCheck(context.Background()))
	require.NoError(t, p.Close(context.Background()))
}

func TestInterventionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewInterventionRepository(t.TempDir())

	artisan := "artisan-1"
	intervention := &models.Intervention{
		ID:             uuid.New().String(),
		IDIntervention: "INT-2025-001",
		Titre:          "Fuite salle de bain",
		Statut:         "EN_COURS",
		ArtisanID:      &artisan,
	}

	require.NoError(t, repo.SaveIntervention(ctx, intervention))
	assert.False(t, intervention.CreatedAt.IsZero())

	loaded, err := repo.InterventionByID(ctx, intervention.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Fuite salle de bain", loaded.Titre)
	require.NotNil(t, loaded.ArtisanID)
	assert.Equal(t, "artisan-1", *loaded.ArtisanID)
}

func TestInterventionByIDMissingReturnsNil(t *testing.T) {
	repo := NewInterventionRepository(t.TempDir())

	loaded, err := repo.InterventionByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestInterventionsPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewInterventionRepository(t.TempDir())

	for i := range 5 {
		require.NoError(t, repo.SaveIntervention(ctx, &models.Intervention{
			ID:    uuid.New().String(),
			Titre: "intervention",
			Metadata: map[string]any{
				"n": i,
			},
		}))
	}

	page, err := repo.Interventions(ctx, persistence.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.Interventions(ctx, persistence.ListOptions{Limit: 10, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	empty, err := repo.Interventions(ctx, persistence.ListOptions{Limit: 10, Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateInterventionStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewInterventionRepository(t.TempDir())

	intervention := &models.Intervention{ID: uuid.New().String(), Titre: "Toiture", Statut: "DEMANDE"}
	require.NoError(t, repo.SaveIntervention(ctx, intervention))

	statutID := "s1"
	due := "2025-04-01"

	err := repo.UpdateInterventionStatus(ctx, intervention.ID, persistence.StatusUpdate{
		StatusCode: "EN_COURS",
		StatutID:   &statutID,
		DatePrevue: &due,
	})
	require.NoError(t, err)

	loaded, err := repo.InterventionByID(ctx, intervention.ID)
	require.NoError(t, err)
	assert.Equal(t, "EN_COURS", loaded.Statut)
	require.NotNil(t, loaded.DatePrevue)
	assert.Equal(t, "2025-04-01", *loaded.DatePrevue)
}

func TestUpdateInterventionStatusMissing(t *testing.T) {
	repo := NewInterventionRepository(t.TempDir())

	err := repo.UpdateInterventionStatus(context.Background(), "missing", persistence.StatusUpdate{StatusCode: "EN_COURS"})
	require.Error(t, err)
	assert.True(t, persistence.IsInterventionNotFound(err))
}

func TestDeleteInterventionIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewInterventionRepository(t.TempDir())

	intervention := &models.Intervention{ID: uuid.New().String(), Titre: "x"}
	require.NoError(t, repo.SaveIntervention(ctx, intervention))
	require.NoError(t, repo.DeleteIntervention(ctx, intervention.ID))
	require.NoError(t, repo.DeleteIntervention(ctx, intervention.ID))
}

func seedReferences(t *testing.T, repo *ReferenceRepository) {
	t.Helper()

	require.NoError(t, repo.SeedReferenceData(&models.ReferenceData{
		Users: []*models.User{
			{ID: "u1", Username: "jdoe", FirstName: "Jean", LastName: "Dupont", Role: "manager"},
			{ID: "u1", Username: "jdoe", Role: "technician"}, // duplicate row, second role
		},
		InterventionStatuses: []*models.StatusRef{
			{ID: "s1", Code: "EN_COURS", Label: "En cours", Color: "#3b82f6"},
		},
	}))
}

func TestUpdateStatusColor(t *testing.T) {
	ctx := context.Background()
	repo := NewReferenceRepository(t.TempDir())
	seedReferences(t, repo)

	require.NoError(t, repo.UpdateStatusColor(ctx, "en_cours", "#ff0000"))

	data, err := repo.FetchReferenceData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", data.InterventionStatuses[0].Color)
}

func TestUpdateStatusColorUnknownCode(t *testing.T) {
	repo := NewReferenceRepository(t.TempDir())
	seedReferences(t, repo)

	err := repo.UpdateStatusColor(context.Background(), "NOPE", "#fff")
	require.Error(t, err)
	assert.True(t, persistence.IsStatusNotFound(err))
}

func TestListTeamMembersFirstRoleWins(t *testing.T) {
	repo := NewReferenceRepository(t.TempDir())
	seedReferences(t, repo)

	members, err := repo.ListTeamMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "manager", members[0].Role)
	assert.Equal(t, "Jean Dupont", members[0].FullName)
}

func TestBillingStateNilBeforeFirstEvent(t *testing.T) {
	repo := NewBillingRepository(t.TempDir())

	state, err := repo.BillingState(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestInsertUsageEventConsumesFromSeed(t *testing.T) {
	ctx := context.Background()
	repo := NewBillingRepository(t.TempDir())

	for range 2 {
		require.NoError(t, repo.InsertUsageEvent(ctx, &models.UsageEvent{
			ID:     uuid.New().String(),
			Delta:  -1,
			Reason: "chat",
			Tier:   "consumption",
		}))
	}

	state, err := repo.BillingState(ctx)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(defaultSeedBalance-2), state.RequestsRemaining)
}

func TestInsertUsageEventClampsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := NewBillingRepository(t.TempDir())

	require.NoError(t, repo.InsertUsageEvent(ctx, &models.UsageEvent{
		ID:    uuid.New().String(),
		Delta: -10_000,
	}))

	state, err := repo.BillingState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.RequestsRemaining)
}

func TestInsertUsageEventClampsAtCeiling(t *testing.T) {
	ctx := context.Background()
	repo := NewBillingRepository(t.TempDir())

	require.NoError(t, repo.InsertUsageEvent(ctx, &models.UsageEvent{
		ID:    uuid.New().String(),
		Delta: balanceCeiling * 2,
	}))

	state, err := repo.BillingState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(balanceCeiling), state.RequestsRemaining)
}

func TestInsertUsageEventRejectsZeroDelta(t *testing.T) {
	repo := NewBillingRepository(t.TempDir())

	err := repo.InsertUsageEvent(context.Background(), &models.UsageEvent{ID: uuid.New().String()})
	assert.ErrorIs(t, err, persistence.ErrInvalidUsageEvent)
}

func TestUsageTotalsByTier(t *testing.T) {
	ctx := context.Background()
	repo := NewBillingRepository(t.TempDir())

	events := []*models.UsageEvent{
		{ID: uuid.New().String(), Delta: -1, Tier: "consumption", Tokens: 120, CostCents: 3},
		{ID: uuid.New().String(), Delta: -1, Tier: "consumption", Tokens: 80, CostCents: 2},
		{ID: uuid.New().String(), Delta: -1, Tier: "preview", Tokens: 10},
		{ID: uuid.New().String(), Delta: 50, Tier: "consumption"}, // grant, not a request
	}

	for _, ev := range events {
		require.NoError(t, repo.InsertUsageEvent(ctx, ev))
	}

	totals, err := repo.UsageTotals(ctx, "consumption")
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Requests)
	assert.Equal(t, int64(200), totals.Tokens)
	assert.Equal(t, int64(5), totals.CostCents)

	all, err := repo.UsageTotals(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Requests)
}
