package config

import (
	"slices"

	"github.com/productdevbook/portkiller/internal/killer"
	"github.com/rs/zerolog/log"
)

// Config holds CLI preferences synced with the GUI
type Config struct {
	ShowSystemPorts bool   `json:"showSystemPorts" yaml:"showSystemPorts" plist:"showSystemPorts"`
	KillMethod      string `json:"killMethod" yaml:"killMethod" plist:"killMethod"`
	Favorites       []int  `json:"favorites" yaml:"favorites" plist:"favoritesV2"`
}

// Store interface for config persistence
type Store interface {
	Load() (*Config, error)
	Save(cfg *Config) error
}

// Default returns the configuration used when nothing is stored
func Default() *Config {
	return &Config{KillMethod: killer.Graceful.String(), Favorites: []int{}}
}

// NewStore returns the shared config store
func NewStore() Store {
	path, err := defaultPath()
	if err != nil {
		log.Warn().Err(err).Msg("config store unavailable, using defaults")
		return &fallbackStore{}
	}

	store, err := newSharedStore(path)
	if err != nil {
		log.Warn().Err(err).Msg("config store unavailable, using defaults")
		return &fallbackStore{}
	}

	// Migrate from plist if shared config does not exist yet
	if !store.exists() {
		if plistCfg := loadFromPlist(); plistCfg != nil {
			if err := store.Save(plistCfg); err != nil {
				log.Warn().Err(err).Msg("failed to migrate plist preferences")
			}
		}
	}

	return store
}

type fallbackStore struct{}

func (f *fallbackStore) Load() (*Config, error) {
	return Default(), nil
}

func (f *fallbackStore) Save(cfg *Config) error {
	return nil
}

// Method parses the stored kill method; unrecognized values are graceful
func (c *Config) Method() killer.Method {
	m, err := killer.ParseMethod(c.KillMethod)
	if err != nil {
		log.Warn().Err(err).Msg("invalid killMethod preference")
	}
	return m
}

// IsFavorite checks if a port is in favorites
func (c *Config) IsFavorite(port int) bool {
	return slices.Contains(c.Favorites, port)
}

// AddFavorite adds a port to favorites
func (c *Config) AddFavorite(port int) {
	if !c.IsFavorite(port) {
		c.Favorites = append(c.Favorites, port)
	}
}

// RemoveFavorite removes a port from favorites
func (c *Config) RemoveFavorite(port int) {
	c.Favorites = slices.DeleteFunc(c.Favorites, func(p int) bool {
		return p == port
	})
}
