package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/maubry/ouvra/pkg/interventions"
	"github.com/maubry/ouvra/pkg/persistence"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// transitionRejected answers a rejected workflow transition with the full
// validation detail so clients can show every missing requirement at once.
func transitionRejected(c fiber.Ctx, te *interventions.TransitionError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"type":                 "transition_rejected",
		"title":                "Bad Request",
		"status":               fiber.StatusBadRequest,
		"instance":             c.Path(),
		"detail":               te.Error(),
		"from":                 te.FromStatus,
		"to":                   te.ToStatus,
		"missing_requirements": te.Result.MissingRequirements,
		"failed_conditions":    te.Result.FailedConditions,
	})
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	if te, ok := interventions.IsTransitionError(err); ok {
		return transitionRejected(c, te)
	}

	switch {
	case errors.Is(err, interventions.ErrStatusRequired),
		errors.Is(err, interventions.ErrTitleRequired):
		return badRequest(c, err.Error())

	case persistence.IsInterventionNotFound(err):
		return notFound(c, "Intervention not found")

	case persistence.IsStatusNotFound(err):
		return notFound(c, "Status not found")

	default:
		return internalError(c, err)
	}
}
