package actions

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/maubry/ouvra/pkg/eventbus"
	"github.com/maubry/ouvra/pkg/events"
	"github.com/maubry/ouvra/pkg/otelhelper"
)

// Executor runs one action type in process.
type Executor interface {
	// Type returns the action type identifier this executor handles.
	Type() string
	// Execute performs the action for the given intervention.
	Execute(ctx context.Context, action events.AutoActionRequested, logger *slog.Logger) error
}

// Forwarder publishes an event on a dedicated per-type topic for external
// consumers of action types with no in-process executor.
type Forwarder interface {
	PublishTo(ctx context.Context, topic, key string, event eventbus.Event) error
}

// Dispatcher consumes action requests from the event bus. Types with a
// registered executor run in process; remaining known types are forwarded on
// their own topic so external workers can pick them up. Executor failures are
// logged, never propagated: a failing side effect must not poison the
// subscription.
type Dispatcher struct {
	executors map[string]Executor
	forwarder Forwarder
	logger    *slog.Logger
}

func NewDispatcher(forwarder Forwarder, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		executors: make(map[string]Executor),
		forwarder: forwarder,
		logger:    logger.With("module", "actions"),
	}
}

// Register installs an in-process executor for its action type, replacing any
// previous executor for that type.
func (d *Dispatcher) Register(executor Executor) {
	d.executors[executor.Type()] = executor
}

// Start wires the dispatcher into the event bus subscription.
func (d *Dispatcher) Start(ctx context.Context, bus eventbus.EventBus) error {
	err := bus.Handle(events.AutoActionRequestedEvent, func(ctx context.Context, event any) error {
		request, ok := event.(*events.AutoActionRequested)
		if !ok {
			d.logger.Warn("Dropping malformed action request event")

			return nil
		}

		d.dispatch(ctx, *request)

		return nil
	})
	if err != nil {
		return err
	}

	return bus.Subscribe(ctx)
}

func (d *Dispatcher) dispatch(ctx context.Context, request events.AutoActionRequested) {
	ctx, span := otelhelper.StartSpan(ctx, otelhelper.Tracer(), "actions.dispatch",
		attribute.String(otelhelper.ActionTypeKey, request.Action.Type),
		attribute.String(otelhelper.InterventionIDKey, request.InterventionID),
	)
	defer span.End()

	logger := d.logger.With(
		"action_type", request.Action.Type,
		"intervention_id", request.InterventionID,
	)

	if executor, ok := d.executors[request.Action.Type]; ok {
		if err := executor.Execute(ctx, request, logger); err != nil {
			otelhelper.SetError(span, err,
				attribute.String(otelhelper.ActionTypeKey, request.Action.Type),
			)
			logger.Error("Action execution failed", "error", err)
		}

		return
	}

	if !IsKnownType(request.Action.Type) {
		logger.Warn("Ignoring action with unknown type")

		return
	}

	topic := events.ActionTopicPrefix + request.Action.Type
	if err := d.forwarder.PublishTo(ctx, topic, request.InterventionID, &request); err != nil {
		otelhelper.SetError(span, err,
			attribute.String(otelhelper.ActionTypeKey, request.Action.Type),
		)
		logger.Error("Action forwarding failed", "topic", topic, "error", err)
	}
}
