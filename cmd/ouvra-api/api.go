// Package main provides the Ouvra API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/maubry/ouvra/pkg/actions"
	"github.com/maubry/ouvra/pkg/actions/logaction"
	"github.com/maubry/ouvra/pkg/actions/webhook"
	"github.com/maubry/ouvra/pkg/billing"
	"github.com/maubry/ouvra/pkg/cmd"
	"github.com/maubry/ouvra/pkg/eventbus"
	"github.com/maubry/ouvra/pkg/interventions"
	"github.com/maubry/ouvra/pkg/persistence"
	"github.com/maubry/ouvra/pkg/references"
	"github.com/maubry/ouvra/pkg/scheduler"
	"github.com/maubry/ouvra/pkg/web"
	"github.com/maubry/ouvra/pkg/workflow"
)

// Options are the runtime knobs the CLI wires in.
type Options struct {
	SeedCredits int64
	RedisURL    string
	ConfigRoot  string
	CronExpr    string
}

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	opts        Options
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	p persistence.Persistence,
	eventBus eventbus.EventBus,
	opts Options,
) *API {
	return &API{
		logger:      logger,
		persistence: p,
		eventBus:    eventBus,
		opts:        opts,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() (*fiber.App, error) {
	store, err := cmd.NewConfigStore(a.opts.RedisURL, a.opts.ConfigRoot, a.logger)
	if err != nil {
		return nil, err
	}

	manager := workflow.NewManager(store, a.logger)
	engine := workflow.NewEngine()
	refs := references.NewCache(a.persistence.References())

	interventionService := interventions.NewService(a.persistence, refs, manager, engine, a.eventBus, a.logger)
	billingService := billing.NewService(a.persistence, a.eventBus, billing.Config{
		SeedBalance: a.opts.SeedCredits,
	}, a.logger)

	handlers := web.NewAPIHandlers(
		interventionService,
		billingService,
		manager,
		engine,
		refs,
		a.persistence,
		a.validate,
		a.logger,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Ouvra API")
	})

	app.Get("/references", handlers.GetReferences)
	app.Get("/team", handlers.GetTeam)
	app.Patch("/intervention-statuses/:code", handlers.UpdateStatusColor)

	i := app.Group("/interventions")
	i.Get("/", handlers.GetInterventions)
	i.Post("/", handlers.CreateIntervention)
	i.Get("/:id", handlers.GetIntervention)
	i.Patch("/:id", handlers.UpdateIntervention)
	i.Delete("/:id", handlers.DeleteIntervention)
	i.Post("/:id/status", handlers.TransitionInterventionStatus)
	i.Get("/:id/transitions", handlers.GetInterventionTransitions)

	wc := app.Group("/workflow-config")
	wc.Get("/", handlers.GetWorkflowConfig)
	wc.Put("/", handlers.PutWorkflowConfig)
	wc.Post("/validate", handlers.ValidateWorkflowTransition)
	wc.Post("/statuses", handlers.CreateWorkflowStatus)
	wc.Patch("/statuses/:key", handlers.UpdateWorkflowStatus)
	wc.Delete("/statuses/:key", handlers.DeleteWorkflowStatus)
	wc.Post("/statuses/:key/pin", handlers.TogglePinnedStatus)
	wc.Post("/transitions", handlers.CreateWorkflowTransition)
	wc.Patch("/transitions/:id", handlers.UpdateWorkflowTransition)
	wc.Delete("/transitions/:id", handlers.DeleteWorkflowTransition)

	app.Post("/requests/consume", handlers.ConsumeRequests)
	app.Get("/credits", handlers.GetCredits)
	app.Get("/credits/sync", handlers.SyncCredits)
	app.Post("/credits/grant", handlers.GrantCredits)

	app.Get("/health", handlers.HealthCheck)

	return app, nil
}

// Start brings up the background consumers and then serves HTTP.
func (a *API) Start(ctx context.Context, port int) error {
	app, err := a.App()
	if err != nil {
		return err
	}

	dispatcher := actions.NewDispatcher(a.eventBus, a.logger)
	dispatcher.Register(webhook.NewExecutor())
	dispatcher.Register(logaction.NewExecutor())

	if err := dispatcher.Start(ctx, a.eventBus); err != nil {
		return err
	}

	scanner, err := scheduler.NewScanner(
		a.persistence,
		references.NewCache(a.persistence.References()),
		a.eventBus,
		a.opts.CronExpr,
		a.logger,
	)
	if err != nil {
		return err
	}

	if err := scanner.Start(ctx); err != nil {
		return err
	}

	defer func() {
		if err := scanner.Stop(ctx); err != nil {
			a.logger.Error("Failed to stop scanner", "error", err)
		}
	}()

	return app.Listen(":" + strconv.Itoa(port))
}
