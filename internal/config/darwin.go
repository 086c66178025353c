//go:build darwin

package config

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"howett.net/plist"
)

const plistPath = "Library/Preferences/com.portkiller.app.plist"

// plistConfig represents the structure of the GUI's plist file
type plistConfig struct {
	FavoritesV2     []int  `plist:"favoritesV2"`
	ShowSystemPorts *bool  `plist:"showSystemPorts"`
	KillMethod      string `plist:"killMethod"`
}

// loadFromPlist reads the GUI preferences for migration into the shared JSON store
func loadFromPlist() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(home, plistPath))
	if err != nil {
		return nil
	}

	cfg, err := parsePlist(data)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring unreadable GUI preferences")
		return nil
	}
	return cfg
}

func parsePlist(data []byte) (*Config, error) {
	var plistCfg plistConfig
	if _, err := plist.Unmarshal(data, &plistCfg); err != nil {
		return nil, err
	}

	cfg := Default()
	if plistCfg.FavoritesV2 != nil {
		cfg.Favorites = plistCfg.FavoritesV2
	}
	if plistCfg.ShowSystemPorts != nil {
		cfg.ShowSystemPorts = *plistCfg.ShowSystemPorts
	}
	if plistCfg.KillMethod != "" {
		cfg.KillMethod = plistCfg.KillMethod
	}

	return cfg, nil
}
