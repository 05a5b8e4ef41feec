// Package logaction records action requests in the service log, useful as a
// default sink while an action type has no external consumer yet.
package logaction

import (
	"context"
	"log/slog"

	"github.com/maubry/ouvra/pkg/actions"
	"github.com/maubry/ouvra/pkg/events"
)

type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

func (*Executor) Type() string {
	return actions.TypeLog
}

func (*Executor) Execute(ctx context.Context, request events.AutoActionRequested, logger *slog.Logger) error {
	message, _ := request.Action.Config["message"].(string)
	if message == "" {
		message = "Action requested"
	}

	level, _ := request.Action.Config["level"].(string)

	switch level {
	case "debug":
		logger.Debug(message, "intervention_id", request.InterventionID)
	case "warn":
		logger.Warn(message, "intervention_id", request.InterventionID)
	case "error":
		logger.Error(message, "intervention_id", request.InterventionID)
	default:
		logger.Info(message, "intervention_id", request.InterventionID)
	}

	return nil
}
