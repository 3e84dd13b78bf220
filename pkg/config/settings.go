package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xhad/recall/internal/types"
)

// SettingsStore is the process-wide key/value store for user-editable
// settings such as the API credential and base URL override. Providers
// read it at call time, so a change takes effect on the next request.
type SettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
	path   string
}

// NewSettingsStore creates an in-memory settings store seeded from the
// environment: any OPENAI_* variables present become initial values.
func NewSettingsStore() *SettingsStore {
	s := &SettingsStore{values: map[string]string{}}
	for _, key := range []string{types.SettingAPIKey, types.SettingBaseURL} {
		if v := os.Getenv(key); v != "" {
			s.values[key] = v
		}
	}
	return s
}

// LoadSettings reads a settings file if it exists and keeps the path for
// Save. A missing file is not an error; the store starts from env values.
func LoadSettings(path string) (*SettingsStore, error) {
	s := NewSettingsStore()
	s.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("error reading settings file: %w", err)
	}

	var stored map[string]string
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("error parsing settings file: %w", err)
	}
	for k, v := range stored {
		s.values[k] = v
	}
	return s, nil
}

func (s *SettingsStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *SettingsStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// Save persists the current values to the file given at load time.
func (s *SettingsStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.path == "" {
		return fmt.Errorf("settings store has no backing file")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// DefaultSettingsPath returns the per-user settings file location.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(home, ".config", "recall", "settings.yaml")
}
