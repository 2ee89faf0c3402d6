package am

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/jabsc/errors"
	"github.com/teranos/jabsc/logger"
)

// ConfigWatcher watches a config file and reloads it after changes settle.
// The parent directory is watched so saves that replace the file by rename
// keep being seen.
type ConfigWatcher struct {
	configPath     string
	configName     string
	watcher        *fsnotify.Watcher
	callbacks      []ReloadCallback
	mu             sync.RWMutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	done           chan struct{}
}

// ReloadCallback is called with the freshly loaded, validated config
type ReloadCallback func(*Config) error

// NewConfigWatcher creates a new config file watcher
func NewConfigWatcher(configPath string) (*ConfigWatcher, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, errors.Wrapf(err, "failed to watch config file %s", configPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch config directory %s", dir)
	}

	return &ConfigWatcher{
		configPath:     configPath,
		configName:     filepath.Base(configPath),
		watcher:        watcher,
		debouncePeriod: 500 * time.Millisecond,
		done:           make(chan struct{}),
	}, nil
}

// OnReload registers a callback to be called when config is reloaded
func (cw *ConfigWatcher) OnReload(callback ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// Start begins watching for config file changes
func (cw *ConfigWatcher) Start() {
	go cw.watchLoop()
}

func (cw *ConfigWatcher) watchLoop() {
	for {
		select {
		case <-cw.done:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.isConfigChange(event) {
				continue
			}
			logger.Infow("Config watcher detected change",
				logger.FieldFile, event.Name,
				logger.FieldOp, event.Op.String())
			cw.scheduleReload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Config watcher error", logger.FieldError, err)
		}
	}
}

// isConfigChange reports whether event writes or replaces the watched file.
// Editors that save atomically show up as Create (or Rename) on the config name.
func (cw *ConfigWatcher) isConfigChange(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != cw.configName {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// scheduleReload debounces rapid file changes and triggers reload
func (cw *ConfigWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}

	cw.debounceTimer = time.AfterFunc(cw.debouncePeriod, func() {
		if err := cw.reload(); err != nil {
			logger.Errorw("Config reload failed", logger.FieldError, err)
		}
	})
}

// reload reloads the configuration and calls all callbacks.
// An invalid config is reported and the callbacks are skipped.
func (cw *ConfigWatcher) reload() error {
	Reset()

	newConfig, err := Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := newConfig.Validate(); err != nil {
		return err
	}

	logger.Infow("Config reloaded", logger.FieldFile, cw.configPath)

	cw.mu.RLock()
	callbacks := make([]ReloadCallback, len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(newConfig); err != nil {
			// Keep going, one bad callback should not starve the others
			logger.Warnw("Config reload callback error", logger.FieldError, err)
		}
	}

	return nil
}

// Stop stops watching for config changes
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.mu.Unlock()

	select {
	case <-cw.done:
	default:
		close(cw.done)
	}
	return cw.watcher.Close()
}
