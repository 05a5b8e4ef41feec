package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

// ReferenceRepository serves the reference tables.
type ReferenceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewReferenceRepository creates a new reference repository.
func NewReferenceRepository(db *sql.DB, logger *slog.Logger) *ReferenceRepository {
	return &ReferenceRepository{db: db, logger: logger}
}

// FetchReferenceData loads every reference table in one round of queries.
func (rr *ReferenceRepository) FetchReferenceData(ctx context.Context) (*models.ReferenceData, error) {
	data := &models.ReferenceData{}

	users, err := rr.fetchUsers(ctx)
	if err != nil {
		return nil, err
	}

	data.Users = users

	data.Agencies, err = fetchLabeledRows(ctx, rr.db, "agencies", func(id, label, code string) *models.Agency {
		return &models.Agency{ID: id, Label: label, Code: code}
	})
	if err != nil {
		return nil, err
	}

	data.Metiers, err = fetchLabeledRows(ctx, rr.db, "metiers", func(id, label, code string) *models.Metier {
		return &models.Metier{ID: id, Label: label, Code: code}
	})
	if err != nil {
		return nil, err
	}

	data.InterventionStatuses, err = rr.fetchStatuses(ctx, "intervention_statuses")
	if err != nil {
		return nil, err
	}

	data.ArtisanStatuses, err = rr.fetchStatuses(ctx, "artisan_statuses")
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (rr *ReferenceRepository) fetchUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := rr.db.QueryContext(ctx,
		`SELECT id, username, first_name, last_name, code_gestionnaire, role FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.CodeGestionnaire, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		users = append(users, u)
	}

	return users, rows.Err()
}

func fetchLabeledRows[T any](ctx context.Context, db *sql.DB, table string, build func(id, label, code string) T) ([]T, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, label, code FROM %s ORDER BY label`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []T

	for rows.Next() {
		var id, label, code string
		if err := rows.Scan(&id, &label, &code); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}

		out = append(out, build(id, label, code))
	}

	return out, rows.Err()
}

func (rr *ReferenceRepository) fetchStatuses(ctx context.Context, table string) ([]*models.StatusRef, error) {
	rows, err := rr.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, code, label, color FROM %s ORDER BY code`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var statuses []*models.StatusRef

	for rows.Next() {
		st := &models.StatusRef{}
		if err := rows.Scan(&st.ID, &st.Code, &st.Label, &st.Color); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}

		statuses = append(statuses, st)
	}

	return statuses, rows.Err()
}

// UpdateStatusColor rewrites the color of one intervention status row.
func (rr *ReferenceRepository) UpdateStatusColor(ctx context.Context, code, color string) error {
	result, err := rr.db.ExecContext(ctx,
		`UPDATE intervention_statuses SET color = $1 WHERE UPPER(code) = $2`,
		color, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return persistence.NewStatusError("UpdateStatusColor", code, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStatusError("UpdateStatusColor", code, err)
	}

	if affected == 0 {
		return persistence.NewStatusError("UpdateStatusColor", code, persistence.ErrStatusNotFound)
	}

	return nil
}

// ListTeamMembers denormalizes the user list, one row per user.
func (rr *ReferenceRepository) ListTeamMembers(ctx context.Context) ([]*models.TeamMember, error) {
	rows, err := rr.db.QueryContext(ctx, `
		SELECT DISTINCT ON (id) id, username, first_name, last_name, code_gestionnaire, role
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []*models.TeamMember

	for rows.Next() {
		var id, username, firstName, lastName, code, role string
		if err := rows.Scan(&id, &username, &firstName, &lastName, &code, &role); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}

		members = append(members, &models.TeamMember{
			UserID:   id,
			Username: username,
			FullName: strings.TrimSpace(firstName + " " + lastName),
			Code:     code,
			Role:     role,
		})
	}

	return members, rows.Err()
}
