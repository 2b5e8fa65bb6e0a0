package config

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Manager owns the current Config and watches config.toml for changes,
// debouncing reloads so a burst of writes from an editor only reloads
// once.
type Manager struct {
	mu      sync.RWMutex
	config  *Config
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup

	onConfigReload func()

	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	debounceDelay time.Duration
}

// NewManager loads config.toml (creating it with defaults if missing)
// and validates it.
func NewManager() (*Manager, error) {
	log.Printf("Config manager: initializing configuration system...")

	cfg, err := loadOrCreate()
	if err != nil {
		log.Printf("Config manager: failed to load initial configuration: %v", err)
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		log.Printf("Config manager: validation warning: %v", err)
	}

	m := &Manager{
		config:        cfg,
		debounceDelay: 500 * time.Millisecond,
	}

	log.Printf("Config manager: initialization completed successfully")
	return m, nil
}

func loadOrCreate() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	log.Printf("Config manager: no config file found, creating defaults")
	if err := SaveDefaultConfig(); err != nil {
		return nil, err
	}
	return Load()
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

// StartWatching begins watching config.toml's directory for writes and
// triggers a debounced reload; it stops when ctx is cancelled.
func (m *Manager) StartWatching(ctx context.Context) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		watcher.Close()
		return err
	}

	m.wg.Add(1)
	go m.watchLoop(ctx, configPath)

	log.Printf("Config manager: watching %s for changes", configPath)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}

	m.debounceMutex.Lock()
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceMutex.Unlock()

	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context, configPath string) {
	defer m.wg.Done()
	configFileName := filepath.Base(configPath)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				log.Printf("Config manager: file change detected: %s. Debouncing reload...", event.Name)
				m.debounceReloadConfig()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config watcher error: %v", err)

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reloadConfig() {
	log.Printf("Config manager: starting configuration reload...")

	newConfig, err := Load()
	if err != nil {
		log.Printf("Config manager: failed to reload config: %v", err)
		return
	}

	if err := newConfig.Validate(); err != nil {
		log.Printf("Config manager: invalid config after reload: %v", err)
		return
	}

	m.mu.Lock()
	m.config = newConfig
	onConfigReload := m.onConfigReload
	m.mu.Unlock()

	if onConfigReload != nil {
		onConfigReload()
	}

	log.Printf("Config manager: configuration successfully reloaded")
}

// SetOnConfigReload registers a callback invoked after each successful
// reload.
func (m *Manager) SetOnConfigReload(onConfigReload func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConfigReload = onConfigReload
}

func (m *Manager) debounceReloadConfig() {
	m.debounceMutex.Lock()
	defer m.debounceMutex.Unlock()

	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceTimer = time.AfterFunc(m.debounceDelay, func() {
		log.Printf("Config manager: debounce period expired, reloading config...")
		m.reloadConfig()
	})
}
