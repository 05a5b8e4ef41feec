package workflow

import (
	"context"
	"log/slog"

	"github.com/maubry/ouvra/pkg/models"
)

// Manager binds a config store to its storage key and serves the effective
// configuration: the persisted one when present, the seeded default
// otherwise. Writes are last-write-wins and best-effort; a failing save is
// logged, never surfaced, so editing keeps working on a flaky store.
type Manager struct {
	store  ConfigStore
	key    string
	logger *slog.Logger
}

// NewManager creates a manager over a store using the default storage key.
func NewManager(store ConfigStore, logger *slog.Logger) *Manager {
	return NewManagerWithKey(store, DefaultConfigKey, logger)
}

func NewManagerWithKey(store ConfigStore, key string, logger *slog.Logger) *Manager {
	return &Manager{store: store, key: key, logger: logger}
}

// Get returns the effective configuration. Store failures degrade to the
// default configuration as well; reads never fail.
func (m *Manager) Get(ctx context.Context) *models.WorkflowConfig {
	cfg, err := m.store.Load(ctx, m.key)
	if err != nil {
		m.logger.Warn("failed to load workflow config, using default", "key", m.key, "error", err)

		return DefaultConfig()
	}

	if cfg == nil {
		return DefaultConfig()
	}

	return cfg
}

// Put persists a configuration, best-effort.
func (m *Manager) Put(ctx context.Context, cfg *models.WorkflowConfig) {
	if err := m.store.Save(ctx, m.key, cfg); err != nil {
		m.logger.Warn("failed to save workflow config", "key", m.key, "error", err)
	}
}

// Mutation helpers: load, apply, persist.

func (m *Manager) AddStatus(ctx context.Context, status *models.WorkflowStatus) (*models.WorkflowConfig, error) {
	return m.mutate(ctx, func(cfg *models.WorkflowConfig) error {
		return AddStatus(cfg, status)
	})
}

func (m *Manager) UpdateStatus(ctx context.Context, key string, status *models.WorkflowStatus) (*models.WorkflowConfig, error) {
	return m.mutate(ctx, func(cfg *models.WorkflowConfig) error {
		return UpdateStatus(cfg, key, status)
	})
}

func (m *Manager) RemoveStatus(ctx context.Context, key string) (*models.WorkflowConfig, error) {
	return m.mutate(ctx, func(cfg *models.WorkflowConfig) error {
		return RemoveStatus(cfg, key)
	})
}

func (m *Manager) AddTransition(ctx context.Context, transition *models.WorkflowTransition) (*models.WorkflowConfig, error) {
	return m.mutate(ctx, func(cfg *models.WorkflowConfig) error {
		return AddTransition(cfg, transition)
	})
}

func (m *Manager) UpdateTransition(ctx context.Context, id string, transition *models.WorkflowTransition) (*models.WorkflowConfig, error) {
	return m.mutate(ctx, func(cfg *models.WorkflowConfig) error {
		return UpdateTransition(cfg, id, transition)
	})
}

func (m *Manager) RemoveTransition(ctx context.Context, id string) (*models.WorkflowConfig, error) {
	return m.mutate(ctx, func(cfg *models.WorkflowConfig) error {
		return RemoveTransition(cfg, id)
	})
}

func (m *Manager) TogglePin(ctx context.Context, key string) (*models.WorkflowConfig, error) {
	return m.mutate(ctx, func(cfg *models.WorkflowConfig) error {
		return TogglePin(cfg, key)
	})
}

func (m *Manager) mutate(ctx context.Context, apply func(*models.WorkflowConfig) error) (*models.WorkflowConfig, error) {
	cfg := m.Get(ctx)

	if err := apply(cfg); err != nil {
		return nil, err
	}

	m.Put(ctx, cfg)

	return cfg, nil
}
