// Package file provides file-based persistence for references, interventions
// and the billing ledger. It backs tests and local development.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/maubry/ouvra/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root             string
	referenceRepo    *ReferenceRepository
	interventionRepo *InterventionRepository
	billingRepo      *BillingRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:             cleanRoot,
		referenceRepo:    NewReferenceRepository(cleanRoot),
		interventionRepo: NewInterventionRepository(cleanRoot),
		billingRepo:      NewBillingRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) References() persistence.ReferenceRepository {
	return fp.referenceRepo
}

func (fp *Persistence) Interventions() persistence.InterventionRepository {
	return fp.interventionRepo
}

func (fp *Persistence) Billing() persistence.BillingRepository {
	return fp.billingRepo
}
