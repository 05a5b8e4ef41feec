package cmd

import (
	"log/slog"

	"github.com/maubry/ouvra/pkg/workflow"
)

// NewConfigStore returns the workflow config store: redis when a URL is
// given, otherwise a file store rooted at configRoot.
func NewConfigStore(redisURL, configRoot string, logger *slog.Logger) (workflow.ConfigStore, error) {
	if redisURL != "" {
		return workflow.NewRedisStore(redisURL, logger)
	}

	return workflow.NewFileStore(configRoot, logger), nil
}
