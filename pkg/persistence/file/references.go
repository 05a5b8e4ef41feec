package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

// ReferenceRepository serves reference data from a single references.json
// document under the root directory.
type ReferenceRepository struct {
	root string

	mu sync.Mutex
}

// NewReferenceRepository creates a new reference repository.
func NewReferenceRepository(root string) *ReferenceRepository {
	return &ReferenceRepository{root: root}
}

// FetchReferenceData loads the reference document. A missing document yields
// an empty data set rather than an error.
func (rr *ReferenceRepository) FetchReferenceData(_ context.Context) (*models.ReferenceData, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	data, err := rr.load()
	if err != nil {
		return nil, err
	}

	return data, nil
}

// UpdateStatusColor rewrites the color of one intervention status row.
func (rr *ReferenceRepository) UpdateStatusColor(_ context.Context, code, color string) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	data, err := rr.load()
	if err != nil {
		return persistence.NewStatusError("UpdateStatusColor", code, err)
	}

	code = strings.ToUpper(strings.TrimSpace(code))

	for _, st := range data.InterventionStatuses {
		if strings.ToUpper(st.Code) == code {
			st.Color = color

			return rr.save(data)
		}
	}

	return persistence.NewStatusError("UpdateStatusColor", code, persistence.ErrStatusNotFound)
}

// ListTeamMembers denormalizes the user list. A user appears once; the first
// role encountered wins.
func (rr *ReferenceRepository) ListTeamMembers(_ context.Context) ([]*models.TeamMember, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	data, err := rr.load()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(data.Users))
	members := make([]*models.TeamMember, 0, len(data.Users))

	for _, u := range data.Users {
		if _, ok := seen[u.ID]; ok {
			continue
		}

		seen[u.ID] = struct{}{}

		members = append(members, &models.TeamMember{
			UserID:   u.ID,
			Username: u.Username,
			FullName: strings.TrimSpace(u.FirstName + " " + u.LastName),
			Code:     u.CodeGestionnaire,
			Role:     u.Role,
		})
	}

	return members, nil
}

// SeedReferenceData writes a full reference document, replacing any existing one.
func (rr *ReferenceRepository) SeedReferenceData(data *models.ReferenceData) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	return rr.save(data)
}

func (rr *ReferenceRepository) filePath() string {
	return filepath.Clean(path.Join(rr.root, "references.json"))
}

func (rr *ReferenceRepository) load() (*models.ReferenceData, error) {
	body, err := os.ReadFile(rr.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return &models.ReferenceData{}, nil
		}

		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}

	var data models.ReferenceData

	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reference data: %w", err)
	}

	return &data, nil
}

func (rr *ReferenceRepository) save(data *models.ReferenceData) error {
	if err := os.MkdirAll(rr.root, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reference data: %w", err)
	}

	return os.WriteFile(rr.filePath(), body, 0600)
}
