package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/maubry/ouvra/pkg/models"
	"github.com/maubry/ouvra/pkg/persistence"
)

// InterventionRepository stores one JSON document per intervention under
// <root>/interventions/.
type InterventionRepository struct {
	root string
}

// NewInterventionRepository creates a new intervention repository.
func NewInterventionRepository(root string) *InterventionRepository {
	return &InterventionRepository{root: root}
}

// Interventions returns a page of interventions sorted by creation time,
// newest first.
func (ir *InterventionRepository) Interventions(ctx context.Context, opts persistence.ListOptions) ([]*models.Intervention, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	root := os.DirFS(ir.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list intervention files: %w", err)
	}

	all := make([]*models.Intervention, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5] // Remove .json extension

		intervention, err := ir.InterventionByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load intervention %s: %w", id, err)
		}

		if intervention != nil {
			all = append(all, intervention)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := opts.Offset
	if start >= len(all) {
		return []*models.Intervention{}, nil
	}

	end := min(start+opts.Limit, len(all))

	return all[start:end], nil
}

// InterventionByID retrieves an intervention by its ID. Missing documents
// yield (nil, nil).
func (ir *InterventionRepository) InterventionByID(_ context.Context, id string) (*models.Intervention, error) {
	filePath := filepath.Clean(path.Join(ir.dir(), id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch intervention %s: %w", id, err)
	}

	var intervention models.Intervention

	if err := json.Unmarshal(body, &intervention); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intervention %s: %w", id, err)
	}

	return &intervention, nil
}

// SaveIntervention writes an intervention document, stamping timestamps.
func (ir *InterventionRepository) SaveIntervention(_ context.Context, intervention *models.Intervention) error {
	if err := os.MkdirAll(ir.dir(), 0750); err != nil {
		return fmt.Errorf("failed to create interventions directory: %w", err)
	}

	now := time.Now().UTC()
	if intervention.CreatedAt.IsZero() {
		intervention.CreatedAt = now
	}

	intervention.UpdatedAt = now

	data, err := json.MarshalIndent(intervention, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal intervention %s: %w", intervention.ID, err)
	}

	filePath := path.Join(ir.dir(), intervention.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// UpdateInterventionStatus applies a status transition's writes to the stored row.
func (ir *InterventionRepository) UpdateInterventionStatus(ctx context.Context, id string, update persistence.StatusUpdate) error {
	intervention, err := ir.InterventionByID(ctx, id)
	if err != nil {
		return persistence.NewInterventionError("UpdateStatus", id, err)
	}

	if intervention == nil {
		return persistence.NewInterventionError("UpdateStatus", id, persistence.ErrInterventionNotFound)
	}

	intervention.Statut = update.StatusCode
	intervention.StatutID = update.StatutID

	if update.DatePrevue != nil {
		intervention.DatePrevue = update.DatePrevue
	}

	if update.ArtisanID != nil {
		intervention.ArtisanID = update.ArtisanID
	}

	return ir.SaveIntervention(ctx, intervention)
}

// DeleteIntervention removes an intervention document. Deleting a missing
// document is a no-op.
func (ir *InterventionRepository) DeleteIntervention(_ context.Context, id string) error {
	filePath := path.Join(ir.dir(), id+".json")

	err := os.Remove(filePath)
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete intervention %s: %w", id, err)
	}

	return nil
}

func (ir *InterventionRepository) dir() string {
	return path.Join(ir.root, "interventions")
}
