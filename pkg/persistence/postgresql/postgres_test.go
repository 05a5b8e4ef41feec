package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
	"github.com/maubry/ouvra/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func TestMain(m *testing.M) {
	code := m.Run()

	if postgresContainer != nil {
		_ = testcontainers.TerminateContainer(postgresContainer)
	}

	os.Exit(code)
}

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop tables in reverse dependency order (children first, parents last)
	for _, table := range []string{
		"usage_events", "billing_state", "interventions",
		"users", "agencies", "metiers", "intervention_statuses", "artisan_statuses",
		"schema_migrations",
	} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("ouvra_test"),
			postgres.WithUsername("ouvra"),
			postgres.WithPassword("ouvra"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	for _, table := range []string{"interventions", "usage_events", "billing_state", "schema_migrations"} {
		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "%s table should exist", table)
	}

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestSaveAndRetrieveIntervention(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	artisan := "artisan-42"
	due := "2025-06-01"
	intervention := &models.Intervention{
		ID:             uuid.New().String(),
		IDIntervention: "INT-2025-042",
		Titre:          "Remplacement chaudière",
		Statut:         "DEMANDE",
		ArtisanID:      &artisan,
		DatePrevue:     &due,
		Metadata:       map[string]any{"source": "import"},
	}

	require.NoError(t, p.Interventions().SaveIntervention(ctx, intervention))

	loaded, err := p.Interventions().InterventionByID(ctx, intervention.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Remplacement chaudière", loaded.Titre)
	require.NotNil(t, loaded.ArtisanID)
	assert.Equal(t, "artisan-42", *loaded.ArtisanID)
	assert.Equal(t, "import", loaded.Metadata["source"])
}

func TestInterventionByID_Missing(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	loaded, err := p.Interventions().InterventionByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestUpdateInterventionStatus(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	intervention := &models.Intervention{
		ID:     uuid.New().String(),
		Titre:  "Fuite toiture",
		Statut: "DEMANDE",
	}
	require.NoError(t, p.Interventions().SaveIntervention(ctx, intervention))

	statutID := "s-en-cours"
	err := p.Interventions().UpdateInterventionStatus(ctx, intervention.ID, persistence.StatusUpdate{
		StatusCode: "EN_COURS",
		StatutID:   &statutID,
	})
	require.NoError(t, err)

	loaded, err := p.Interventions().InterventionByID(ctx, intervention.ID)
	require.NoError(t, err)
	assert.Equal(t, "EN_COURS", loaded.Statut)

	err = p.Interventions().UpdateInterventionStatus(ctx, uuid.New().String(), persistence.StatusUpdate{StatusCode: "EN_COURS"})
	require.Error(t, err)
	assert.True(t, persistence.IsInterventionNotFound(err))
}

func TestUsageEventTriggerMaintainsBalance(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	// Two consumptions after the trigger seeds the state row.
	for range 2 {
		require.NoError(t, p.Billing().InsertUsageEvent(ctx, &models.UsageEvent{
			ID:     uuid.New().String(),
			Delta:  -1,
			Reason: "chat",
			Tier:   "consumption",
		}))
	}

	state, err := p.Billing().BillingState(ctx)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(498), state.RequestsRemaining)

	// A big negative delta clamps at zero rather than going negative.
	require.NoError(t, p.Billing().InsertUsageEvent(ctx, &models.UsageEvent{
		ID:    uuid.New().String(),
		Delta: -10_000,
	}))

	state, err = p.Billing().BillingState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.RequestsRemaining)

	// A grant past the ceiling clamps at the ceiling.
	require.NoError(t, p.Billing().InsertUsageEvent(ctx, &models.UsageEvent{
		ID:    uuid.New().String(),
		Delta: 5_000_000,
	}))

	state, err = p.Billing().BillingState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), state.RequestsRemaining)
}

func TestUsageTotals(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	events := []*models.UsageEvent{
		{ID: uuid.New().String(), Delta: -1, Tier: "consumption", Tokens: 100, CostCents: 2},
		{ID: uuid.New().String(), Delta: -1, Tier: "consumption", Tokens: 50, CostCents: 1},
		{ID: uuid.New().String(), Delta: -1, Tier: "preview"},
	}

	for _, ev := range events {
		require.NoError(t, p.Billing().InsertUsageEvent(ctx, ev))
	}

	totals, err := p.Billing().UsageTotals(ctx, "consumption")
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Requests)
	assert.Equal(t, int64(150), totals.Tokens)
	assert.Equal(t, int64(3), totals.CostCents)
}

func TestReferenceRepository(t *testing.T) {
	p, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, username, first_name, last_name, role)
		VALUES ('u1', 'jdoe', 'Jean', 'Dupont', 'manager')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO intervention_statuses (id, code, label, color)
		VALUES ('s1', 'EN_COURS', 'En cours', '#3b82f6')`)
	require.NoError(t, err)

	data, err := p.References().FetchReferenceData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Users, 1)
	require.Len(t, data.InterventionStatuses, 1)

	require.NoError(t, p.References().UpdateStatusColor(ctx, "en_cours", "#ff0000"))

	data, err = p.References().FetchReferenceData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", data.InterventionStatuses[0].Color)

	err = p.References().UpdateStatusColor(ctx, "NOPE", "#fff")
	require.Error(t, err)
	assert.True(t, persistence.IsStatusNotFound(err))

	members, err := p.References().ListTeamMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Jean Dupont", members[0].FullName)
}
