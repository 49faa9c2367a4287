package manager

import (
	"context"
	"fmt"
	"log/slog"
)

// Manager ties the loader, registry and watcher together: it performs the
// initial load and, when watching is enabled, swaps the registry on every
// successful reload. A failed reload keeps the previous policy set.
type Manager struct {
	loader   *Loader
	registry *Registry
	watcher  *FileWatcher
	logger   *slog.Logger
}

// NewManager creates a manager over the given policies directory. When
// watch is true, Start also begins hot reloading.
func NewManager(dir string, watch bool, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		loader:   NewLoader(dir, logger),
		registry: NewRegistry(),
		logger:   logger.With("component", "policy.manager"),
	}
	if watch {
		watcher, err := NewFileWatcher(dir, logger)
		if err != nil {
			return nil, err
		}
		m.watcher = watcher
	}
	return m, nil
}

// Start performs the initial load and, when watching is enabled, starts
// the watcher in the background. The initial load must succeed.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.Reload(); err != nil {
		return fmt.Errorf("initial policy load failed: %w", err)
	}
	if m.watcher != nil {
		go func() {
			if err := m.watcher.Watch(ctx, m.Reload); err != nil {
				m.logger.Error("policy watcher exited", "error", err)
			}
		}()
	}
	return nil
}

// Reload loads the directory and swaps the registry on success.
func (m *Manager) Reload() error {
	docs, err := m.loader.Load()
	if err != nil {
		return err
	}
	m.registry.Replace(docs)
	m.logger.Info("policy set replaced", "policies", len(docs))
	return nil
}

// Registry returns the live registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Stop stops the watcher, if any.
func (m *Manager) Stop() error {
	if m.watcher != nil {
		return m.watcher.Stop()
	}
	return nil
}
