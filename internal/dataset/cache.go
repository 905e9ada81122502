package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/liftreport/liftreport/internal/logger"
)

const watchDebounce = 100 * time.Millisecond

// Cache keeps the last snapshot loaded from a Source until it is
// invalidated, either explicitly or by a change to the watched file.
// Snapshots are shared between callers and must be treated as read-only.
type Cache struct {
	source Source

	mu           sync.RWMutex
	observations []Observation
	loaded       bool
	loadedAt     time.Time
}

func NewCache(source Source) *Cache {
	return &Cache{source: source}
}

// Load returns the cached snapshot, loading it from the source on a miss.
// Failed loads are not cached.
func (c *Cache) Load(ctx context.Context) ([]Observation, error) {
	c.mu.RLock()
	if c.loaded {
		observations := c.observations
		c.mu.RUnlock()
		return observations, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.observations, nil
	}

	observations, err := c.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.observations = observations
	c.loaded = true
	c.loadedAt = time.Now()
	logger.Info("dataset loaded", "observations", len(observations))

	return observations, nil
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.observations = nil
	c.loaded = false
	c.mu.Unlock()
}

// LoadedAt is the time of the last successful load, zero if none.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Watch invalidates the cache whenever path is written or recreated, until
// ctx is done. The parent directory is watched so editors that replace the
// file are noticed too.
func (c *Cache) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go c.watchLoop(ctx, watcher, filepath.Base(path))
	return nil
}

func (c *Cache) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, name string) {
	defer watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			// Editors often write in several steps
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				c.Invalidate()
				logger.Info("dataset changed, cache invalidated", "file", event.Name)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("dataset watcher error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}
