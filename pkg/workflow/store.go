package workflow

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/maubry/ouvra/pkg/models"
)

// ConfigStore persists workflow configurations under string keys.
//
// Load returns (nil, nil) both for a missing key and for a blob that fails
// decoding or schema validation: a corrupt configuration must degrade to the
// seeded default, never break the caller.
type ConfigStore interface {
	Load(ctx context.Context, key string) (*models.WorkflowConfig, error)
	Save(ctx context.Context, key string, cfg *models.WorkflowConfig) error
}

// configSchema guards stored blobs against drift from older clients. It
// checks shape, not business rules.
const configSchema = `{
	"type": "object",
	"required": ["id", "name", "version", "statuses", "transitions"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"version": {"type": "integer", "minimum": 1},
		"is_active": {"type": "boolean"},
		"statuses": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["key", "label"],
				"properties": {
					"key": {"type": "string", "minLength": 1},
					"label": {"type": "string", "minLength": 1},
					"color": {"type": "string"},
					"position": {"type": "integer"}
				}
			}
		},
		"transitions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["from", "to"],
				"properties": {
					"from": {"type": "string", "minLength": 1},
					"to": {"type": "string", "minLength": 1},
					"conditions": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["type"],
							"properties": {
								"type": {"enum": ["field_required", "field_equals", "custom_validation"]}
							}
						}
					}
				}
			}
		}
	}
}`

var compiledConfigSchema = gojsonschema.NewStringLoader(configSchema)

// DecodeConfig turns a stored blob into a configuration. Undecodable or
// schema-invalid blobs yield nil; the caller treats them as absent.
func DecodeConfig(logger *slog.Logger, body []byte) *models.WorkflowConfig {
	result, err := gojsonschema.Validate(compiledConfigSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		logger.Warn("workflow config blob is not valid JSON, ignoring", "error", err)

		return nil
	}

	if !result.Valid() {
		logger.Warn("workflow config blob failed schema validation, ignoring", "errors", result.Errors())

		return nil
	}

	var cfg models.WorkflowConfig

	if err := json.Unmarshal(body, &cfg); err != nil {
		logger.Warn("workflow config blob failed decoding, ignoring", "error", err)

		return nil
	}

	return &cfg
}

// EncodeConfig serializes a configuration for storage.
func EncodeConfig(cfg *models.WorkflowConfig) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}
