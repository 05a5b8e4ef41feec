package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

// InterventionRepository stores intervention rows.
type InterventionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInterventionRepository creates a new intervention repository.
func NewInterventionRepository(db *sql.DB, logger *slog.Logger) *InterventionRepository {
	return &InterventionRepository{db: db, logger: logger}
}

const interventionColumns = `id, id_intervention, titre, description, statut_id, statut,
	user_id, agence_id, metier_id, artisan_id, facture_id, proprietaire_id,
	devis_id, commentaire, date_prevue, metadata, created_at, updated_at`

// Interventions returns a page of interventions, newest first.
func (ir *InterventionRepository) Interventions(ctx context.Context, opts persistence.ListOptions) ([]*models.Intervention, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM interventions ORDER BY created_at DESC LIMIT $1 OFFSET $2`, interventionColumns)

	rows, err := ir.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query interventions: %w", err)
	}
	defer rows.Close()

	interventions := make([]*models.Intervention, 0, opts.Limit)

	for rows.Next() {
		intervention, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}

		interventions = append(interventions, intervention)
	}

	return interventions, rows.Err()
}

// InterventionByID retrieves one intervention, (nil, nil) when absent.
func (ir *InterventionRepository) InterventionByID(ctx context.Context, id string) (*models.Intervention, error) {
	query := fmt.Sprintf(`SELECT %s FROM interventions WHERE id = $1`, interventionColumns)

	row := ir.db.QueryRowContext(ctx, query, id)

	intervention, err := scanIntervention(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch intervention %s: %w", id, err)
	}

	return intervention, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntervention(row rowScanner) (*models.Intervention, error) {
	var (
		intervention models.Intervention
		metadata     []byte
	)

	err := row.Scan(
		&intervention.ID,
		&intervention.IDIntervention,
		&intervention.Titre,
		&intervention.Description,
		&intervention.StatutID,
		&intervention.Statut,
		&intervention.UserID,
		&intervention.AgenceID,
		&intervention.MetierID,
		&intervention.ArtisanID,
		&intervention.FactureID,
		&intervention.ProprietaireID,
		&intervention.DevisID,
		&intervention.Commentaire,
		&intervention.DatePrevue,
		&metadata,
		&intervention.CreatedAt,
		&intervention.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan intervention: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &intervention.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal intervention metadata: %w", err)
		}
	}

	return &intervention, nil
}

// SaveIntervention upserts an intervention row, stamping timestamps.
func (ir *InterventionRepository) SaveIntervention(ctx context.Context, intervention *models.Intervention) error {
	now := time.Now().UTC()
	if intervention.CreatedAt.IsZero() {
		intervention.CreatedAt = now
	}

	intervention.UpdatedAt = now

	var metadata []byte

	if intervention.Metadata != nil {
		var err error

		metadata, err = json.Marshal(intervention.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal intervention metadata: %w", err)
		}
	}

	_, err := ir.db.ExecContext(ctx, `
		INSERT INTO interventions (id, id_intervention, titre, description, statut_id, statut,
			user_id, agence_id, metier_id, artisan_id, facture_id, proprietaire_id,
			devis_id, commentaire, date_prevue, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			id_intervention = EXCLUDED.id_intervention,
			titre = EXCLUDED.titre,
			description = EXCLUDED.description,
			statut_id = EXCLUDED.statut_id,
			statut = EXCLUDED.statut,
			user_id = EXCLUDED.user_id,
			agence_id = EXCLUDED.agence_id,
			metier_id = EXCLUDED.metier_id,
			artisan_id = EXCLUDED.artisan_id,
			facture_id = EXCLUDED.facture_id,
			proprietaire_id = EXCLUDED.proprietaire_id,
			devis_id = EXCLUDED.devis_id,
			commentaire = EXCLUDED.commentaire,
			date_prevue = EXCLUDED.date_prevue,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at`,
		intervention.ID,
		intervention.IDIntervention,
		intervention.Titre,
		intervention.Description,
		intervention.StatutID,
		intervention.Statut,
		intervention.UserID,
		intervention.AgenceID,
		intervention.MetierID,
		intervention.ArtisanID,
		intervention.FactureID,
		intervention.ProprietaireID,
		intervention.DevisID,
		intervention.Commentaire,
		intervention.DatePrevue,
		metadata,
		intervention.CreatedAt,
		intervention.UpdatedAt,
	)
	if err != nil {
		return persistence.NewInterventionError("Save", intervention.ID, err)
	}

	return nil
}

// UpdateInterventionStatus applies a status transition's writes to the stored row.
func (ir *InterventionRepository) UpdateInterventionStatus(ctx context.Context, id string, update persistence.StatusUpdate) error {
	result, err := ir.db.ExecContext(ctx, `
		UPDATE interventions
		SET statut = $1,
		    statut_id = $2,
		    date_prevue = COALESCE($3, date_prevue),
		    artisan_id = COALESCE($4, artisan_id),
		    updated_at = NOW()
		WHERE id = $5`,
		update.StatusCode, update.StatutID, update.DatePrevue, update.ArtisanID, id)
	if err != nil {
		return persistence.NewInterventionError("UpdateStatus", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewInterventionError("UpdateStatus", id, err)
	}

	if affected == 0 {
		return persistence.NewInterventionError("UpdateStatus", id, persistence.ErrInterventionNotFound)
	}

	return nil
}

// DeleteIntervention removes an intervention row. Deleting a missing row is a no-op.
func (ir *InterventionRepository) DeleteIntervention(ctx context.Context, id string) error {
	_, err := ir.db.ExecContext(ctx, `DELETE FROM interventions WHERE id = $1`, id)
	if err != nil {
		return persistence.NewInterventionError("Delete", id, err)
	}

	return nil
}
