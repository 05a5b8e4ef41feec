// Package workflow implements the configurable intervention status graph:
// transition validation against entity context, graph mutation, the seeded
// default configuration and the keyed config stores.
package workflow

import (
	"fmt"
	"strings"

	"github.com/maubry/ouvra/pkg/models"
)

// Validation messages surfaced to clients. They match the wording the
// back-office UI displays.
const (
	msgStatusNotFound       = "Statut source ou cible introuvable"
	msgTransitionNotAllowed = "Transition non autorisée"

	msgArtisanRequired      = "Un artisan doit être assigné"
	msgFactureRequired      = "Une facture doit être associée"
	msgProprietaireRequired = "Un propriétaire doit être renseigné"
	msgCommentaireRequired  = "Un commentaire est requis"
	msgDevisRequired        = "Un devis doit être associé"

	msgDefinitiveIDRequired = "L'intervention doit avoir un identifiant définitif"
)

// Predicate is a named custom validation evaluated against the entity context.
type Predicate func(ctx *models.EntityContext) bool

// Engine validates and describes transitions of a workflow configuration.
// It holds the registry of named predicates custom_validation conditions
// refer to; unknown predicate names fail closed.
type Engine struct {
	predicates map[string]Predicate
}

// NewEngine creates an engine with the built-in predicates registered.
func NewEngine() *Engine {
	e := &Engine{predicates: make(map[string]Predicate)}

	e.RegisterPredicate("has_definitive_id", func(ctx *models.EntityContext) bool {
		return hasDefinitiveID(ctx)
	})

	return e
}

// RegisterPredicate adds or replaces a named predicate.
func (e *Engine) RegisterPredicate(name string, p Predicate) {
	e.predicates[name] = p
}

// ValidateTransition checks whether the entity may move from one status to
// another. Every failing requirement and condition is collected; callers get
// the full picture, never just the first failure.
func (e *Engine) ValidateTransition(cfg *models.WorkflowConfig, fromKey, toKey string, entity *models.EntityContext) *models.ValidationResult {
	result := &models.ValidationResult{}

	if entity == nil {
		entity = &models.EntityContext{}
	}

	from := cfg.StatusByKey(fromKey)
	to := cfg.StatusByKey(toKey)

	if from == nil || to == nil {
		result.FailedConditions = append(result.FailedConditions, msgStatusNotFound)

		return result
	}

	transition := findTransition(cfg, fromKey, toKey)
	if transition == nil {
		result.FailedConditions = append(result.FailedConditions, msgTransitionNotAllowed)

		return result
	}

	result.MissingRequirements = missingRequirements(to, entity)
	result.FailedConditions = append(result.FailedConditions, e.failedBuiltinRules(to, entity)...)

	for _, cond := range transition.Conditions {
		if msg, ok := e.evaluateCondition(cond, entity); !ok {
			result.FailedConditions = append(result.FailedConditions, msg)
		}
	}

	result.CanTransition = len(result.MissingRequirements) == 0 && len(result.FailedConditions) == 0

	return result
}

// AvailableTransitions lists the active transitions out of a status.
func (e *Engine) AvailableTransitions(cfg *models.WorkflowConfig, fromKey string) []*models.WorkflowTransition {
	var out []*models.WorkflowTransition

	for _, t := range cfg.Transitions {
		if t.IsActive && t.From == fromKey {
			out = append(out, t)
		}
	}

	return out
}

// ActionsForTransition collects the auto actions a successful transition
// emits: first the target status entry actions, then the transition's own.
func (e *Engine) ActionsForTransition(cfg *models.WorkflowConfig, t *models.WorkflowTransition) []models.AutoAction {
	var actions []models.AutoAction

	if to := cfg.StatusByKey(t.To); to != nil {
		actions = append(actions, to.Metadata.AutoActions...)
	}

	actions = append(actions, t.AutoActions...)

	return actions
}

// findTransition returns the first active transition matching the pair.
func findTransition(cfg *models.WorkflowConfig, fromKey, toKey string) *models.WorkflowTransition {
	for _, t := range cfg.Transitions {
		if t.IsActive && t.From == fromKey && t.To == toKey {
			return t
		}
	}

	return nil
}

// missingRequirements checks the target status required-field flags against
// the entity context. All failures accumulate.
func missingRequirements(to *models.WorkflowStatus, entity *models.EntityContext) []string {
	var missing []string

	present := func(p *string) bool {
		return p != nil && strings.TrimSpace(*p) != ""
	}

	if to.Metadata.RequiresArtisan && !present(entity.ArtisanID) {
		missing = append(missing, msgArtisanRequired)
	}

	if to.Metadata.RequiresFacture && !present(entity.FactureID) {
		missing = append(missing, msgFactureRequired)
	}

	if to.Metadata.RequiresProprietaire && !present(entity.ProprietaireID) {
		missing = append(missing, msgProprietaireRequired)
	}

	if to.Metadata.RequiresCommentaire && !present(entity.Commentaire) {
		missing = append(missing, msgCommentaireRequired)
	}

	if to.Metadata.RequiresDevis && !present(entity.DevisID) {
		missing = append(missing, msgDevisRequired)
	}

	return missing
}

// activeWorkKeys are the statuses that require a definitive intervention
// identifier: provisional ids carrying an "auto" marker may not enter them.
var activeWorkKeys = map[string]struct{}{
	"VISITE_TECHNIQUE": {},
	"EN_COURS":         {},
}

func (e *Engine) failedBuiltinRules(to *models.WorkflowStatus, entity *models.EntityContext) []string {
	var failed []string

	if _, ok := activeWorkKeys[to.Key]; ok && !hasDefinitiveID(entity) {
		failed = append(failed, msgDefinitiveIDRequired)
	}

	return failed
}

func hasDefinitiveID(entity *models.EntityContext) bool {
	if entity.IDIntervention == nil {
		return false
	}

	id := strings.TrimSpace(*entity.IDIntervention)

	return id != "" && !strings.Contains(strings.ToLower(id), "auto")
}

// evaluateCondition applies one transition condition. The returned message
// is the condition's own when set, a generic one otherwise.
func (e *Engine) evaluateCondition(cond models.TransitionCondition, entity *models.EntityContext) (string, bool) {
	message := cond.Message

	switch cond.Type {
	case models.ConditionFieldRequired:
		value, ok := entity.Field(cond.Field)
		if ok && strings.TrimSpace(value) != "" {
			return "", true
		}

		if message == "" {
			message = fmt.Sprintf("Le champ %s est requis", cond.Field)
		}

	case models.ConditionFieldEquals:
		value, _ := entity.Field(cond.Field)
		if value == fmt.Sprint(cond.Value) {
			return "", true
		}

		if message == "" {
			message = fmt.Sprintf("Le champ %s n'a pas la valeur attendue", cond.Field)
		}

	case models.ConditionCustomValidation:
		// Unknown predicates fail closed.
		if p, ok := e.predicates[cond.Validator]; ok && p(entity) {
			return "", true
		}

		if message == "" {
			message = fmt.Sprintf("Validation %s non satisfaite", cond.Validator)
		}

	default:
		message = fmt.Sprintf("Condition inconnue: %s", cond.Type)
	}

	return message, false
}
