package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maubry/ouvra/pkg/cmd"
	"github.com/maubry/ouvra/pkg/models"
	filepersistence "github.com/maubry/ouvra/pkg/persistence/file"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	persistence := filepersistence.NewPersistence(t.TempDir())
	require.NoError(t, persistence.References().(*filepersistence.ReferenceRepository).SeedReferenceData(&models.ReferenceData{
		InterventionStatuses: []*models.StatusRef{
			{ID: "s-demande", Code: "DEMANDE", Label: "Demande", Color: "#6b7280"},
		},
	}))

	eventBus, err := cmd.NewEventBus("gochannel", "ouvra-api-test", logger)
	require.NoError(t, err)

	t.Cleanup(func() { _ = eventBus.Close() })

	api := NewAPI(logger, persistence, eventBus, Options{
		ConfigRoot: t.TempDir(),
	})

	app, err := api.App()
	require.NoError(t, err)

	return app
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Ouvra API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestAPI_InterventionFlow(t *testing.T) {
	app := setupTestApp(t)

	payload, err := json.Marshal(map[string]any{
		"titre":           "Fuite cuisine",
		"id_intervention": "INT-1",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/interventions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "DEMANDE", created["status_code"])

	req = httptest.NewRequest(http.MethodGet, "/interventions/"+created["id"].(string), nil)

	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_WorkflowConfigDefault(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/workflow-config", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg models.WorkflowConfig

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Len(t, cfg.Statuses, 11)
	assert.Len(t, cfg.Transitions, 23)
}

func TestAPI_Credits(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/credits", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state models.BillingState

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, int64(500), state.RequestsRemaining)
	assert.Equal(t, "starter", state.Plan)
}
