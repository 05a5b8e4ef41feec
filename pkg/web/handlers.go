package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/maubry/ouvra/pkg/billing"
	"github.com/maubry/ouvra/pkg/interventions"
	"github.com/maubry/ouvra/pkg/persistence"
	"github.com/maubry/ouvra/pkg/references"
	"github.com/maubry/ouvra/pkg/workflow"
)

type APIHandlers struct {
	interventionService *interventions.Service
	billingService      *billing.Service
	workflows           *workflow.Manager
	engine              *workflow.Engine
	refs                *references.Cache
	persistence         persistence.Persistence
	validator           *validator.Validate
	logger              *slog.Logger
}

func NewAPIHandlers(
	interventionService *interventions.Service,
	billingService *billing.Service,
	workflows *workflow.Manager,
	engine *workflow.Engine,
	refs *references.Cache,
	p persistence.Persistence,
	validate *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		interventionService: interventionService,
		billingService:      billingService,
		workflows:           workflows,
		engine:              engine,
		refs:                refs,
		persistence:         p,
		validator:           validate,
		logger:              logger.With("module", "web"),
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.interventionService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Ouvra API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Ouvra API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// GetReferences serves the full reference data set from the snapshot cache.
func (h *APIHandlers) GetReferences(c fiber.Ctx) error {
	snap, err := h.refs.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(snap.Data())
}

// GetTeam serves the denormalized user list. Users carrying several roles are
// reported once with their first role.
func (h *APIHandlers) GetTeam(c fiber.Ctx) error {
	members, err := h.persistence.References().ListTeamMembers(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"members": members})
}

// UpdateStatusColor recolors one intervention status row.
func (h *APIHandlers) UpdateStatusColor(c fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return badRequest(c, "Status code is required")
	}

	var req UpdateStatusColorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.persistence.References().UpdateStatusColor(c.Context(), code, req.Color); err != nil {
		return handleServiceError(c, err)
	}

	// The cached snapshot still carries the old color.
	h.refs.Invalidate()

	return c.JSON(fiber.Map{"success": true})
}
