package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

var (
	ErrConfigNotFound = fmt.Errorf("configuration %w", service.ErrNotFound)
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Manager handles level loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.LevelConfig
	configs       map[string]*engine.LevelConfig
	mu            sync.RWMutex
}

// NewManager creates a new level manager rooted at configDir
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.LevelConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a level by name. The name may carry an extension; without
// one, .json, .yaml and .yml are tried in that order.
func (m *Manager) LoadConfig(name string) (*engine.LevelConfig, error) {
	key := configKey(name)

	m.mu.RLock()
	if config, exists := m.configs[key]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[key]; exists {
		return config, nil
	}

	path, format, err := m.locate(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := DecodeLevel(data, format)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateLevelConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[key] = config
	return config, nil
}

// locate finds the level file for name
func (m *Manager) locate(name string) (string, Format, error) {
	if format, ok := FormatForPath(name); ok {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", "", ErrConfigNotFound
			}
			return "", "", fmt.Errorf("failed to read config file: %w", err)
		}
		return path, format, nil
	}

	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			format, _ := FormatForPath(path)
			return path, format, nil
		}
	}
	return "", "", ErrConfigNotFound
}

// ListConfigs returns information about every valid level in the directory,
// sorted by config ID. Invalid documents are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := FormatForPath(entry.Name()); !ok {
			continue
		}

		id := configKey(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			continue
		}
		seen[id] = true

		info := &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Author:      config.Author,
		}
		if level, err := config.Parse(); err == nil {
			info.Width = level.Width
			info.Height = level.Height
			info.Crates = level.CrateCount()
		}
		configs = append(configs, info)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached level and picks the default again
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
	return nil
}

// loadDefaultConfig prefers the classic level, then the first valid level on
// disk, then the built-in one
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(engine.DefaultLevelName)
	if err != nil {
		config = nil
		if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
			config, _ = m.LoadConfig(configs[0].Filename)
		}
	}
	if config == nil {
		config = engine.DefaultLevelConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates a level and writes it to disk. The extension of name
// selects the encoding; names without one are written as JSON.
func (m *Manager) SaveConfig(name string, config *engine.LevelConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := engine.ValidateLevelConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	format, ok := FormatForPath(name)
	if !ok {
		filename = name + ".json"
		format = FormatJSON
	}
	if strings.ContainsAny(configKey(name), `/\`) || configKey(name) == "" {
		return fmt.Errorf("%w: invalid level name %q", ErrInvalidConfig, name)
	}

	data, err := EncodeLevel(config, format)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configKey(name)] = config
	m.mu.Unlock()

	return nil
}

// configKey strips a known extension so "classic", "classic.json" and
// "classic.yaml" share one cache entry
func configKey(name string) string {
	if _, ok := FormatForPath(name); ok {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
