package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables that override file settings
const (
	EnvAddr         = "SHIPPERIZER_ADDR"
	EnvDatabasePath = "SHIPPERIZER_DB"
	EnvLogLevel     = "SHIPPERIZER_LOG_LEVEL"
	EnvHistoryLimit = "SHIPPERIZER_HISTORY_LIMIT"
	EnvManifest     = "SHIPPERIZER_MANIFEST"
)

// ApplyEnvironment overrides settings from SHIPPERIZER_* variables. Unset or
// unparsable variables leave the current value alone.
func (c *Config) ApplyEnvironment() {
	if v := lookup(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := lookup(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := lookup(EnvHistoryLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.History.Limit = n
		}
	}
	if v := lookup(EnvManifest); v != "" {
		c.Roster.Manifest = v
	}
}

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
