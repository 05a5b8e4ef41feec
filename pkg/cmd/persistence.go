// Package cmd provides common initialization helpers for the command-line
// entry points.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maubry/ouvra/pkg/persistence"
	"github.com/maubry/ouvra/pkg/persistence/file"
	"github.com/maubry/ouvra/pkg/persistence/postgresql"
)

// NewPersistence picks the backend from the URL scheme: postgres URLs get the
// SQL backend with migrations applied, anything else is treated as a file
// root for local development.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
