package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const debounceDuration = 100 * time.Millisecond

// LevelWatcher reloads the config file on change and applies its logLevel to
// a running logger. Other settings need a restart.
type LevelWatcher struct {
	path    string
	level   zap.AtomicLevel
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewLevelWatcher watches path and drives level from it
func NewLevelWatcher(path string, level zap.AtomicLevel, logger *zap.Logger) (*LevelWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors save by rename, so the directory is watched rather than the file.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &LevelWatcher{
		path:    path,
		level:   level,
		watcher: watcher,
		logger:  logger,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching for configuration changes
func (w *LevelWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching and waits for the loop to exit
func (w *LevelWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		<-w.done
		w.logger.Info("Configuration watcher stopped")
	})
}

func (w *LevelWatcher) watchLoop() {
	defer close(w.done)

	var debounce *time.Timer
	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDuration, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// reload applies the file's logLevel. A broken file keeps the current level.
func (w *LevelWatcher) reload() {
	cfg := Default()
	if err := loadFile(w.path, cfg); err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		w.logger.Error("Invalid log level, keeping current",
			zap.String("logLevel", cfg.LogLevel),
			zap.Error(err),
		)
		return
	}

	if previous := w.level.Level(); previous != level {
		w.level.SetLevel(level)
		w.logger.Info("Log level changed",
			zap.Stringer("from", previous),
			zap.Stringer("to", level),
		)
	}
}
