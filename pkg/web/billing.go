package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/maubry/ouvra/pkg/billing"
)

// ConsumeRequests burns request credits against the usage ledger.
func (h *APIHandlers) ConsumeRequests(c fiber.Ctx) error {
	var req ConsumeRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	if req.Amount < 0 {
		return badRequest(c, "Amount must not be negative")
	}

	result, err := h.billingService.Consume(c.Context(), req.Amount, req.Reason, req.Tier)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"ok":                result.OK,
		"requestsRemaining": result.RequestsRemaining,
	})
}

// GetCredits serves the derived balance.
func (h *APIHandlers) GetCredits(c fiber.Ctx) error {
	state, err := h.billingService.Balance(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(state)
}

// SyncCredits reports reconciliation totals and the recomputed balance.
func (h *APIHandlers) SyncCredits(c fiber.Ctx) error {
	recon, err := h.billingService.Reconcile(c.Context(), c.Query("mode"))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(recon)
}

// GrantCredits credits the balance with a positive ledger event.
func (h *APIHandlers) GrantCredits(c fiber.Ctx) error {
	var req GrantRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.billingService.Grant(c.Context(), req.Amount, req.Reason)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidGrant) {
			return badRequest(c, err.Error())
		}

		return internalError(c, err)
	}

	return c.JSON(state)
}
