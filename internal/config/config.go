package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/bryanchriswhite/RegionShot/internal/logger"
)

// Config represents the application configuration
type Config struct {
	LogLevel         string `json:"log_level" yaml:"log_level"`
	LogPretty        bool   `json:"log_pretty" yaml:"log_pretty"`
	ServerPort       int    `json:"server_port" yaml:"server_port"`
	Hotkey           string `json:"hotkey" yaml:"hotkey"`
	OutputDir        string `json:"output_dir" yaml:"output_dir"`
	OutputFormat     string `json:"output_format" yaml:"output_format"`
	CopyToClipboard  bool   `json:"copy_to_clipboard" yaml:"copy_to_clipboard"`
	PortalTimeoutSec int    `json:"portal_timeout_sec" yaml:"portal_timeout_sec"`
}

// Manager handles configuration loading and persistence
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a configuration manager. When the config file does not
// exist it is created with defaults.
func NewManager(configFile string) (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "regionshot")
	actualConfigPath := filepath.Join(configDir, "config.yaml")
	if configFile != "" {
		actualConfigPath = configFile
		configDir = filepath.Dir(configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{configPath: actualConfigPath}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = m.getDefaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return m, nil
}

func (m *Manager) getDefaults() *Config {
	outputDir := "."
	if home, err := os.UserHomeDir(); err == nil {
		outputDir = filepath.Join(home, "Pictures", "RegionShot")
	}
	return &Config{
		LogLevel:         "info",
		LogPretty:        true,
		ServerPort:       8421,
		Hotkey:           "ctrl+shift+s",
		OutputDir:        outputDir,
		OutputFormat:     "png",
		CopyToClipboard:  false,
		PortalTimeoutSec: 60,
	}
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := m.getDefaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	data, err := yaml.Marshal(m.config)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

// GetConfigPath returns the path of the backing config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// SetLogLevel overrides the configured log level (CLI flag)
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.LogLevel = level
}

// SetPort overrides the configured server port (CLI flag)
func (m *Manager) SetPort(port int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.ServerPort = port
}
