package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/maubry/ouvra/pkg/models"
)

// FileStore persists workflow configurations as one JSON document per key
// under a root directory.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// NewFileStore creates a file-backed config store.
func NewFileStore(root string, logger *slog.Logger) *FileStore {
	return &FileStore{
		root:   strings.Replace(root, "file://", "", 1),
		logger: logger,
	}
}

// Load reads the configuration stored under key. Missing and corrupt
// documents both yield (nil, nil).
func (fs *FileStore) Load(_ context.Context, key string) (*models.WorkflowConfig, error) {
	body, err := os.ReadFile(fs.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read workflow config %s: %w", key, err)
	}

	return DecodeConfig(fs.logger, body), nil
}

// Save writes the configuration under key.
func (fs *FileStore) Save(_ context.Context, key string, cfg *models.WorkflowConfig) error {
	if err := os.MkdirAll(fs.root, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := EncodeConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow config %s: %w", key, err)
	}

	return os.WriteFile(fs.filePath(key), body, 0600)
}

// filePath maps a storage key onto a safe file name.
func (fs *FileStore) filePath(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)

	return filepath.Clean(path.Join(fs.root, safe+".json"))
}
