package db

import (
	"encoding/json"

	"eve-craftcost/internal/config"
	"eve-craftcost/internal/logger"
)

const configKey = "settings"

// LoadConfig reads config from SQLite. If empty or unreadable, returns defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	var raw string
	if err := d.sql.QueryRow("SELECT value FROM config WHERE key = ?", configKey).Scan(&raw); err != nil {
		return cfg
	}
	if err := json.Unmarshal([]byte(raw), cfg); err != nil {
		logger.Warn("DB", "Stored config unreadable, using defaults")
		return config.Default()
	}
	if len(cfg.Hubs) == 0 {
		cfg.Hubs = config.Default().Hubs
	}
	return cfg
}

// SaveConfig persists config to SQLite.
func (d *DB) SaveConfig(cfg *config.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = d.sql.Exec(
		"INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)",
		configKey, string(raw),
	)
	return err
}
