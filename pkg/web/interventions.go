package web

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/maubry/ouvra/pkg/interventions"
)

func (h *APIHandlers) GetInterventions(c fiber.Ctx) error {
	req, err := parseListRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	views, err := h.interventionService.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"interventions": views,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
	})
}

func parseListRequest(c fiber.Ctx) (*interventions.ListRequest, error) {
	req := &interventions.ListRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	return req, nil
}

func (h *APIHandlers) GetIntervention(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Intervention ID is required")
	}

	view, err := h.interventionService.GetByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) CreateIntervention(c fiber.Ctx) error {
	var req CreateInterventionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.interventionService.Create(c.Context(), interventions.CreateRequest{
		IDIntervention: req.IDIntervention,
		Titre:          req.Titre,
		Description:    req.Description,
		Statut:         req.Statut,
		UserID:         req.UserID,
		AgenceID:       req.AgenceID,
		MetierID:       req.MetierID,
		ArtisanID:      req.ArtisanID,
		DatePrevue:     req.DatePrevue,
		Metadata:       req.Metadata,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateIntervention(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Intervention ID is required")
	}

	var req UpdateInterventionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.interventionService.Update(c.Context(), id, interventions.UpdateRequest{
		Titre:          req.Titre,
		Description:    req.Description,
		UserID:         req.UserID,
		AgenceID:       req.AgenceID,
		MetierID:       req.MetierID,
		ArtisanID:      req.ArtisanID,
		FactureID:      req.FactureID,
		ProprietaireID: req.ProprietaireID,
		DevisID:        req.DevisID,
		Commentaire:    req.Commentaire,
		DatePrevue:     req.DatePrevue,
		Metadata:       req.Metadata,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteIntervention(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Intervention ID is required")
	}

	if err := h.interventionService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// TransitionInterventionStatus applies a workflow transition. A rejected
// transition answers 400 with the full validation detail.
func (h *APIHandlers) TransitionInterventionStatus(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Intervention ID is required")
	}

	var req TransitionStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	view, err := h.interventionService.TransitionStatus(c.Context(), id, interventions.TransitionRequest{
		Status:    req.Status,
		DueAt:     req.DueAt,
		ArtisanID: req.ArtisanID,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

// GetInterventionTransitions lists the transitions available from the
// intervention's current status.
func (h *APIHandlers) GetInterventionTransitions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Intervention ID is required")
	}

	transitions, err := h.interventionService.AvailableTransitions(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"transitions": transitions})
}
