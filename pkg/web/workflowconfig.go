package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/maubry/ouvra/pkg/actions"
	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/workflow"
)

func (h *APIHandlers) GetWorkflowConfig(c fiber.Ctx) error {
	return c.JSON(h.workflows.Get(c.Context()))
}

// PutWorkflowConfig replaces the whole configuration. The body is validated
// against the config schema and every declared auto action against its type
// schema before anything is persisted. Last write wins.
func (h *APIHandlers) PutWorkflowConfig(c fiber.Ctx) error {
	cfg := workflow.DecodeConfig(h.logger, c.Body())
	if cfg == nil {
		return badRequest(c, "Invalid workflow configuration")
	}

	if err := validateConfigActions(cfg); err != nil {
		return badRequest(c, err.Error())
	}

	h.workflows.Put(c.Context(), cfg)

	return c.JSON(cfg)
}

func validateConfigActions(cfg *models.WorkflowConfig) error {
	for _, status := range cfg.Statuses {
		if err := actions.ValidateActions(status.Metadata.AutoActions); err != nil {
			return err
		}
	}

	for _, transition := range cfg.Transitions {
		if err := actions.ValidateActions(transition.AutoActions); err != nil {
			return err
		}
	}

	return nil
}

func (h *APIHandlers) CreateWorkflowStatus(c fiber.Ctx) error {
	var status models.WorkflowStatus
	if err := c.Bind().JSON(&status); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if status.Key == "" || status.Label == "" {
		return badRequest(c, "Status key and label are required")
	}

	if err := actions.ValidateActions(status.Metadata.AutoActions); err != nil {
		return badRequest(c, err.Error())
	}

	cfg, err := h.workflows.AddStatus(c.Context(), &status)
	if err != nil {
		return handleConfigError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(cfg)
}

func (h *APIHandlers) UpdateWorkflowStatus(c fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return badRequest(c, "Status key is required")
	}

	var status models.WorkflowStatus
	if err := c.Bind().JSON(&status); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := actions.ValidateActions(status.Metadata.AutoActions); err != nil {
		return badRequest(c, err.Error())
	}

	cfg, err := h.workflows.UpdateStatus(c.Context(), key, &status)
	if err != nil {
		return handleConfigError(c, err)
	}

	return c.JSON(cfg)
}

func (h *APIHandlers) DeleteWorkflowStatus(c fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return badRequest(c, "Status key is required")
	}

	cfg, err := h.workflows.RemoveStatus(c.Context(), key)
	if err != nil {
		return handleConfigError(c, err)
	}

	return c.JSON(cfg)
}

func (h *APIHandlers) TogglePinnedStatus(c fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return badRequest(c, "Status key is required")
	}

	cfg, err := h.workflows.TogglePin(c.Context(), key)
	if err != nil {
		return handleConfigError(c, err)
	}

	return c.JSON(cfg)
}

func (h *APIHandlers) CreateWorkflowTransition(c fiber.Ctx) error {
	var transition models.WorkflowTransition
	if err := c.Bind().JSON(&transition); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if transition.From == "" || transition.To == "" {
		return badRequest(c, "Transition endpoints are required")
	}

	if err := actions.ValidateActions(transition.AutoActions); err != nil {
		return badRequest(c, err.Error())
	}

	cfg, err := h.workflows.AddTransition(c.Context(), &transition)
	if err != nil {
		return handleConfigError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(cfg)
}

func (h *APIHandlers) UpdateWorkflowTransition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transition ID is required")
	}

	var transition models.WorkflowTransition
	if err := c.Bind().JSON(&transition); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := actions.ValidateActions(transition.AutoActions); err != nil {
		return badRequest(c, err.Error())
	}

	cfg, err := h.workflows.UpdateTransition(c.Context(), id, &transition)
	if err != nil {
		return handleConfigError(c, err)
	}

	return c.JSON(cfg)
}

func (h *APIHandlers) DeleteWorkflowTransition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transition ID is required")
	}

	cfg, err := h.workflows.RemoveTransition(c.Context(), id)
	if err != nil {
		return handleConfigError(c, err)
	}

	return c.JSON(cfg)
}

// ValidateWorkflowTransition dry-runs a transition against the current
// configuration without touching any intervention.
func (h *APIHandlers) ValidateWorkflowTransition(c fiber.Ctx) error {
	var req ValidateTransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	entity := &models.EntityContext{
		ArtisanID:      req.Context.ArtisanID,
		FactureID:      req.Context.FactureID,
		ProprietaireID: req.Context.ProprietaireID,
		Commentaire:    req.Context.Commentaire,
		DevisID:        req.Context.DevisID,
		IDIntervention: req.Context.IDIntervention,
		Extra:          req.Context.Extra,
	}

	cfg := h.workflows.Get(c.Context())

	return c.JSON(h.engine.ValidateTransition(cfg, req.From, req.To, entity))
}

func handleConfigError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, workflow.ErrStatusExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"type":   "conflict",
			"status": fiber.StatusConflict,
			"detail": err.Error(),
		})

	case errors.Is(err, workflow.ErrStatusUnknown),
		errors.Is(err, workflow.ErrTransitionUnknown):
		return notFound(c, err.Error())

	default:
		return internalError(c, err)
	}
}
