package interventions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maubry/ouvra/pkg/eventbus"
	"github.com/maubry/ouvra/pkg/events"
	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
	"github.com/maubry/ouvra/pkg/references"
	"github.com/maubry/ouvra/pkg/status"
	"github.com/maubry/ouvra/pkg/workflow"
)

// Service coordinates intervention reads and writes: rows come from
// persistence, display fields from the reference snapshot, transition rules
// from the workflow engine, and side effects go out on the event bus.
type Service struct {
	persistence persistence.Persistence
	refs        *references.Cache
	workflows   *workflow.Manager
	engine      *workflow.Engine
	bus         eventbus.EventBus
	logger      *slog.Logger
}

func NewService(
	p persistence.Persistence,
	refs *references.Cache,
	workflows *workflow.Manager,
	engine *workflow.Engine,
	bus eventbus.EventBus,
	logger *slog.Logger,
) *Service {
	return &Service{
		persistence: p,
		refs:        refs,
		workflows:   workflows,
		engine:      engine,
		bus:         bus,
		logger:      logger.With("module", "interventions"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Service) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListRequest contains pagination options for listing interventions.
type ListRequest struct {
	Limit  int `validate:"min=0,max=100"`
	Offset int `validate:"min=0"`
}

// List returns mapped intervention views, newest first.
func (s *Service) List(ctx context.Context, req ListRequest) ([]*models.InterventionView, error) {
	rows, err := s.persistence.Interventions().Interventions(ctx, persistence.ListOptions{
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list interventions: %w", err)
	}

	snap := s.snapshot(ctx)

	views := make([]*models.InterventionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, MapRecord(row, snap))
	}

	return views, nil
}

// GetByID returns one mapped intervention view.
func (s *Service) GetByID(ctx context.Context, id string) (*models.InterventionView, error) {
	row, err := s.fetchRow(ctx, id)
	if err != nil {
		return nil, err
	}

	return MapRecord(row, s.snapshot(ctx)), nil
}

// CreateRequest carries the writable fields for a new intervention.
type CreateRequest struct {
	IDIntervention string
	Titre          string `validate:"required"`
	Description    string
	Statut         string
	UserID         *string
	AgenceID       *string
	MetierID       *string
	ArtisanID      *string
	DatePrevue     *string
	Metadata       map[string]any
}

// Create stores a new intervention. New rows get a generated id and start in
// the initial status unless the request names one.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.InterventionView, error) {
	if strings.TrimSpace(req.Titre) == "" {
		return nil, ErrTitleRequired
	}

	statut := req.Statut
	if strings.TrimSpace(statut) == "" {
		statut = status.CodeDemande
	}

	row := &models.Intervention{
		ID:             uuid.NewString(),
		IDIntervention: req.IDIntervention,
		Titre:          req.Titre,
		Description:    req.Description,
		Statut:         status.CanonicalCode(statut),
		UserID:         req.UserID,
		AgenceID:       req.AgenceID,
		MetierID:       req.MetierID,
		ArtisanID:      req.ArtisanID,
		DatePrevue:     req.DatePrevue,
		Metadata:       req.Metadata,
	}

	snap := s.snapshot(ctx)
	if ref := snap.StatusByCode(row.Statut); ref != nil {
		row.StatutID = &ref.ID
	}

	if err := s.persistence.Interventions().SaveIntervention(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save intervention: %w", err)
	}

	return MapRecord(row, snap), nil
}

// UpdateRequest carries partial updates; nil fields are left untouched.
type UpdateRequest struct {
	Titre          *string
	Description    *string
	UserID         *string
	AgenceID       *string
	MetierID       *string
	ArtisanID      *string
	FactureID      *string
	ProprietaireID *string
	DevisID        *string
	Commentaire    *string
	DatePrevue     *string
	Metadata       map[string]any
}

// Update applies a partial update and returns the refreshed view.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*models.InterventionView, error) {
	row, err := s.fetchRow(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Titre != nil {
		row.Titre = *req.Titre
	}

	if req.Description != nil {
		row.Description = *req.Description
	}

	if req.UserID != nil {
		row.UserID = req.UserID
	}

	if req.AgenceID != nil {
		row.AgenceID = req.AgenceID
	}

	if req.MetierID != nil {
		row.MetierID = req.MetierID
	}

	if req.ArtisanID != nil {
		row.ArtisanID = req.ArtisanID
	}

	if req.FactureID != nil {
		row.FactureID = req.FactureID
	}

	if req.ProprietaireID != nil {
		row.ProprietaireID = req.ProprietaireID
	}

	if req.DevisID != nil {
		row.DevisID = req.DevisID
	}

	if req.Commentaire != nil {
		row.Commentaire = req.Commentaire
	}

	if req.DatePrevue != nil {
		row.DatePrevue = req.DatePrevue
	}

	if req.Metadata != nil {
		row.Metadata = req.Metadata
	}

	if err := s.persistence.Interventions().SaveIntervention(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to update intervention: %w", err)
	}

	return MapRecord(row, s.snapshot(ctx)), nil
}

// Delete removes an intervention. Deleting a missing row is an error at this
// layer so the API can answer 404.
func (s *Service) Delete(ctx context.Context, id string) error {
	row, err := s.fetchRow(ctx, id)
	if err != nil {
		return err
	}

	if err := s.persistence.Interventions().DeleteIntervention(ctx, row.ID); err != nil {
		return fmt.Errorf("failed to delete intervention: %w", err)
	}

	return nil
}

// TransitionRequest asks for a status change. DueAt and ArtisanID override
// the stored row for both validation and persistence.
type TransitionRequest struct {
	Status    string `validate:"required"`
	DueAt     *string
	ArtisanID *string
}

// TransitionStatus validates and applies a workflow transition. On success
// the status fields are persisted, an InterventionStatusChanged event plus
// one AutoActionRequested per action descriptor go out on the bus, and the
// refreshed view is returned. Event delivery failures are logged, never
// rolled back: the status change is already durable.
func (s *Service) TransitionStatus(ctx context.Context, id string, req TransitionRequest) (*models.InterventionView, error) {
	if strings.TrimSpace(req.Status) == "" {
		return nil, ErrStatusRequired
	}

	row, err := s.fetchRow(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := s.snapshot(ctx)
	cfg := s.workflows.Get(ctx)

	fromCode := currentCode(row, snap)
	toCode := status.CanonicalCode(req.Status)

	entity := row.Context()
	if req.ArtisanID != nil {
		entity.ArtisanID = req.ArtisanID
	}

	result := s.engine.ValidateTransition(cfg, fromCode, toCode, entity)
	if !result.CanTransition {
		return nil, &TransitionError{
			InterventionID: row.ID,
			FromStatus:     fromCode,
			ToStatus:       toCode,
			Result:         result,
		}
	}

	update := persistence.StatusUpdate{
		StatusCode: toCode,
		DatePrevue: req.DueAt,
		ArtisanID:  req.ArtisanID,
	}
	if ref := snap.StatusByCode(toCode); ref != nil {
		update.StatutID = &ref.ID
	}

	if err := s.persistence.Interventions().UpdateInterventionStatus(ctx, row.ID, update); err != nil {
		return nil, fmt.Errorf("failed to persist status change: %w", err)
	}

	actions := s.transitionActions(cfg, fromCode, toCode)
	s.publishStatusChanged(ctx, row.ID, fromCode, toCode, actions)

	updated, err := s.persistence.Interventions().InterventionByID(ctx, row.ID)
	if err != nil || updated == nil {
		// The write above succeeded; fall back to patching the row we
		// already hold.
		row.Statut = toCode
		row.StatutID = update.StatutID

		if req.DueAt != nil {
			row.DatePrevue = req.DueAt
		}

		if req.ArtisanID != nil {
			row.ArtisanID = req.ArtisanID
		}

		return MapRecord(row, snap), nil
	}

	return MapRecord(updated, snap), nil
}

// AvailableTransitions lists the active transitions out of the
// intervention's current status.
func (s *Service) AvailableTransitions(ctx context.Context, id string) ([]*models.WorkflowTransition, error) {
	row, err := s.fetchRow(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg := s.workflows.Get(ctx)

	return s.engine.AvailableTransitions(cfg, currentCode(row, s.snapshot(ctx))), nil
}

func (s *Service) fetchRow(ctx context.Context, id string) (*models.Intervention, error) {
	row, err := s.persistence.Interventions().InterventionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get intervention: %w", err)
	}

	if row == nil {
		return nil, ErrInterventionNotFound
	}

	return row, nil
}

// snapshot returns the freshest reference snapshot available. A fetch error
// degrades to an empty snapshot so reads keep working with unresolved
// display fields.
func (s *Service) snapshot(ctx context.Context) *references.Snapshot {
	snap, err := s.refs.Get(ctx)
	if err != nil {
		s.logger.Warn("Reference fetch failed, serving unresolved fields", "error", err)

		return references.BuildSnapshot(nil)
	}

	return snap
}

// currentCode derives the row's workflow status key the same way the mapper
// resolves its display status.
func currentCode(row *models.Intervention, snap *references.Snapshot) string {
	if row.StatutID != nil {
		if ref, ok := snap.InterventionStatusesByID[*row.StatutID]; ok {
			return status.CanonicalCode(ref.Code)
		}
	}

	return status.CanonicalCode(row.Statut)
}

func (s *Service) transitionActions(cfg *models.WorkflowConfig, fromCode, toCode string) []models.AutoAction {
	for _, t := range s.engine.AvailableTransitions(cfg, fromCode) {
		if t.To == toCode {
			return s.engine.ActionsForTransition(cfg, t)
		}
	}

	return nil
}

func (s *Service) publishStatusChanged(ctx context.Context, id, fromCode, toCode string, actions []models.AutoAction) {
	now := time.Now().UTC()

	changed := &events.InterventionStatusChanged{
		BaseEvent: events.BaseEvent{
			ID:             s.bus.GenerateID(),
			Type:           events.InterventionStatusChangedEvent,
			Timestamp:      now,
			InterventionID: id,
		},
		FromStatus: fromCode,
		ToStatus:   toCode,
		Reason:     status.ReasonForTransition(fromCode, toCode),
		Actions:    actions,
	}

	if err := s.bus.Publish(ctx, id, changed); err != nil {
		s.logger.Error("Failed to publish status change", "intervention_id", id, "error", err)
	}

	for _, action := range actions {
		request := &events.AutoActionRequested{
			BaseEvent: events.BaseEvent{
				ID:             s.bus.GenerateID(),
				Type:           events.AutoActionRequestedEvent,
				Timestamp:      now,
				InterventionID: id,
			},
			Action: action,
		}

		if err := s.bus.Publish(ctx, id, request); err != nil {
			s.logger.Error("Failed to publish action request",
				"intervention_id", id, "action_type", action.Type, "error", err)
		}
	}
}
