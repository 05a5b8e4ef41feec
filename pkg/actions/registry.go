// Package actions validates and executes the automatic actions attached to
// workflow statuses and transitions. Executors registered here run in
// process; any other declared action type is forwarded on the event bus for
// external consumers.
package actions

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/maubry/ouvra/pkg/models"
)

var (
	ErrActionTypeUnknown   = errors.New("unknown action type")
	ErrActionConfigInvalid = errors.New("invalid action configuration")
)

// Action type identifiers declared by workflow configurations.
const (
	TypeSendEmailDevis         = "send_email_devis"
	TypeGenerateInvoiceMissing = "generate_invoice_if_missing"
	TypeCreateTask             = "create_task"
	TypeWebhook                = "webhook"
	TypeLog                    = "log"
)

var configSchemas = map[string]string{
	TypeSendEmailDevis: `{
		"type": "object",
		"properties": {
			"template": {"type": "string"},
			"recipient": {"type": "string"}
		},
		"additionalProperties": true
	}`,
	TypeGenerateInvoiceMissing: `{
		"type": "object",
		"additionalProperties": true
	}`,
	TypeCreateTask: `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"assignee": {"type": "string"},
			"due_in_days": {"type": "number", "minimum": 0}
		},
		"required": ["title"],
		"additionalProperties": true
	}`,
	TypeWebhook: `{
		"type": "object",
		"properties": {
			"url": {"type": "string", "minLength": 1},
			"method": {"type": "string", "enum": ["GET", "POST", "PUT", "PATCH", "DELETE"]},
			"headers": {"type": "object"},
			"body": {},
			"retry": {
				"type": "object",
				"properties": {
					"attempts": {"type": "number", "minimum": 1},
					"delay": {"type": "number", "minimum": 0}
				}
			}
		},
		"required": ["url"],
		"additionalProperties": true
	}`,
	TypeLog: `{
		"type": "object",
		"properties": {
			"message": {"type": "string"},
			"level": {"type": "string", "enum": ["debug", "info", "warn", "error"]}
		},
		"additionalProperties": true
	}`,
}

var compiledSchemas = func() map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema, len(configSchemas))

	for actionType, raw := range configSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("actions: invalid schema for %s: %v", actionType, err))
		}

		out[actionType] = schema
	}

	return out
}()

// KnownTypes returns the declared action type identifiers.
func KnownTypes() []string {
	types := make([]string, 0, len(configSchemas))
	for actionType := range configSchemas {
		types = append(types, actionType)
	}

	return types
}

// IsKnownType reports whether actionType has a declared configuration schema.
func IsKnownType(actionType string) bool {
	_, ok := configSchemas[actionType]

	return ok
}

// ValidateAction checks an auto action declaration against the schema for its
// type. Unknown types are rejected so workflow configurations cannot carry
// actions nothing will ever run.
func ValidateAction(action models.AutoAction) error {
	schema, ok := compiledSchemas[action.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrActionTypeUnknown, action.Type)
	}

	config := action.Config
	if config == nil {
		config = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrActionConfigInvalid, action.Type, err)
	}

	if !result.Valid() {
		return fmt.Errorf("%w: %s: %s", ErrActionConfigInvalid, action.Type, result.Errors()[0].String())
	}

	return nil
}

// ValidateActions validates every declared action, returning the first error.
func ValidateActions(actions []models.AutoAction) error {
	for _, action := range actions {
		if err := ValidateAction(action); err != nil {
			return err
		}
	}

	return nil
}
