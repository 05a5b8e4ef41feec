package interventions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

var (
	// ErrInterventionNotFound is returned when an intervention is not found.
	ErrInterventionNotFound = persistence.ErrInterventionNotFound

	// ErrStatusRequired is returned when a transition request has no target
	// status.
	ErrStatusRequired = errors.New("target status is required")

	// ErrTitleRequired is returned when a create request has a blank title.
	ErrTitleRequired = errors.New("intervention title is required")
)

// TransitionError carries the full validation result of a rejected
// transition so the API layer can surface every missing requirement at once.
type TransitionError struct {
	InterventionID string
	FromStatus     string
	ToStatus       string
	Result         *models.ValidationResult
}

func (e *TransitionError) Error() string {
	reasons := make([]string, 0, len(e.Result.MissingRequirements)+len(e.Result.FailedConditions))
	reasons = append(reasons, e.Result.MissingRequirements...)
	reasons = append(reasons, e.Result.FailedConditions...)

	return fmt.Sprintf("transition %s -> %s rejected: %s",
		e.FromStatus, e.ToStatus, strings.Join(reasons, "; "))
}

// IsTransitionError reports whether err is a rejected-transition error and
// returns it when so.
func IsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}

	return nil, false
}
