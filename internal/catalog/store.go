package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/pkg/logger"
	"github.com/explorejh/travel-assistant/pkg/metrics"
)

const (
	// reloadDebounce is how long the file must stay quiet before a reload.
	reloadDebounce = 250 * time.Millisecond
	debounceTick   = 50 * time.Millisecond
)

// Store holds the current catalog. Readers always see a complete, validated catalog.
type Store struct {
	path     string
	current  atomic.Pointer[Catalog]
	reloads  atomic.Uint64
	debounce time.Duration
	logger   *logger.Logger
}

// NewStore creates a store serving c. It has no backing file and cannot reload.
func NewStore(c *Catalog, log *logger.Logger) *Store {
	s := &Store{logger: log, debounce: reloadDebounce}
	s.current.Store(c)
	return s
}

// OpenStore loads the catalog at path, or the built-in catalog when path is empty.
func OpenStore(path string, log *logger.Logger) (*Store, error) {
	if path == "" {
		return NewStore(Default(), log), nil
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path, logger: log, debounce: reloadDebounce}
	s.current.Store(c)
	log.Info("catalog loaded",
		zap.String("path", path),
		zap.Int("destinations", len(c.Destinations)),
		zap.Int("topics", len(c.Topics)),
	)
	return s, nil
}

// Current returns the catalog in effect.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Path returns the backing file, if any.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the backing file. On failure the previous catalog stays in effect.
func (s *Store) Reload() error {
	if s.path == "" {
		return fmt.Errorf("catalog has no backing file")
	}

	c, err := Load(s.path)
	if err != nil {
		metrics.RecordCatalogReload("failure")
		return err
	}

	s.current.Store(c)
	s.reloads.Add(1)
	metrics.RecordCatalogReload("success")
	return nil
}

// Generation counts successful reloads since the store was opened.
func (s *Store) Generation() uint64 {
	return s.reloads.Load()
}

// Watch reloads the catalog once its file has been written or replaced and then
// left alone for the debounce window, until ctx is done. The parent directory is
// watched so editors that rename files are seen.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("catalog has no backing file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.path, err)
	}

	target := filepath.Clean(s.path)
	s.logger.Info("watching catalog for changes",
		zap.String("path", s.path),
		zap.Duration("debounce", s.debounce),
	)

	go func() {
		defer watcher.Close()

		ticker := time.NewTicker(min(debounceTick, s.debounce))
		defer ticker.Stop()

		// lastChange is zero when no reload is pending.
		var lastChange time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					lastChange = time.Now()
				}

			case <-ticker.C:
				if lastChange.IsZero() || time.Since(lastChange) < s.debounce {
					continue
				}
				lastChange = time.Time{}
				s.reload()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("catalog watch error", zap.Error(err))
			}
		}
	}()

	return nil
}

func (s *Store) reload() {
	if err := s.Reload(); err != nil {
		s.logger.Error("catalog reload failed, keeping previous catalog",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("catalog reloaded",
		zap.String("path", s.path),
		zap.Uint64("generation", s.Generation()),
	)
}
