package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/domain/services"
)

const reloadDebounce = 100 * time.Millisecond

// analyticsFile is the part of the YAML file that can change at runtime.
type analyticsFile struct {
	Analytics services.AnalyticsConfig `yaml:"analytics"`
}

// ConfigWatcher watches the YAML config file and republishes the analytics
// section whenever it changes. Other sections need a restart.
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  services.AnalyticsConfig
	mu       sync.RWMutex
	onChange []func(services.AnalyticsConfig)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewConfigWatcher creates a watcher for path seeded with initial.
func NewConfigWatcher(path string, initial services.AnalyticsConfig, logger *zap.Logger) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors and config maps replace the file by rename, so the directory
	// is watched rather than the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &ConfigWatcher{
		path:    path,
		watcher: watcher,
		current: initial,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for configuration changes
func (w *ConfigWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Configuration watcher stopped")
	})
}

// OnChange registers a callback for analytics configuration changes
func (w *ConfigWatcher) OnChange(handler func(services.AnalyticsConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns the last accepted analytics configuration
func (w *ConfigWatcher) Current() services.AnalyticsConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) watchLoop() {
	var debounceTimer *time.Timer
	target := filepath.Clean(w.path)

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, w.Reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// Reload reads the file again and notifies subscribers when the analytics
// section is valid. An invalid file keeps the current settings.
func (w *ConfigWatcher) Reload() {
	next := analyticsFile{Analytics: w.Current()}
	if err := loadYAML(w.path, &next); err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}
	if err := ValidateAnalytics(next.Analytics); err != nil {
		w.logger.Error("Invalid analytics configuration, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = next.Analytics
	handlers := append([]func(services.AnalyticsConfig){}, w.onChange...)
	w.mu.Unlock()

	for _, handler := range handlers {
		handler(next.Analytics)
	}
	w.logger.Info("Analytics configuration reloaded", zap.String("path", w.path))
}
