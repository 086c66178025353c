package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	configDir  = ".portkiller"
	configFile = "config.json"

	// EnvConfigPath overrides the config file location
	EnvConfigPath = "PORTKILLER_CONFIG"
)

type sharedStore struct {
	path string
	mu   sync.RWMutex
}

// NewSharedStoreAt creates a config store backed by the file at path
func NewSharedStoreAt(path string) (Store, error) {
	store, err := newSharedStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// defaultPath is $PORTKILLER_CONFIG or ~/.portkiller/config.json
func defaultPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir, configFile), nil
}

func newSharedStore(path string) (*sharedStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &sharedStore{path: path}, nil
}

func (s *sharedStore) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *sharedStore) Load() (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	// Ensure non-nil slices for clean JSON
	if cfg.Favorites == nil {
		cfg.Favorites = []int{}
	}

	return cfg, nil
}

func (s *sharedStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *cfg
	if out.Favorites == nil {
		out.Favorites = []int{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}
