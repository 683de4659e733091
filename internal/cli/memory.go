package cli

import (
	"fmt"
	"path/filepath"

	"recall/internal/usecase"
)

// openMemory builds the Memory facade with the storage directory
// resolved against the CLI root directory.
func openMemory() (*usecase.Memory, error) {
	if !filepath.IsAbs(cfg.Storage.Dir) {
		cfg.Storage.Dir = filepath.Join(rootDir, cfg.Storage.Dir)
	}
	m, err := usecase.New(cfg, usecase.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("opening memory: %w", err)
	}
	return m, nil
}
