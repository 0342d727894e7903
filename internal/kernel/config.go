package kernel

import "time"

// Config configures one modhost runtime.
type Config struct {
	HostID            string
	Mods              []string
	HeartbeatInterval time.Duration
	OpsListenAddr     string
	OpsToken          string
	SmoothLight       bool
}

// DefaultConfig returns the standalone runtime defaults.
func DefaultConfig() Config {
	return Config{
		HostID:            "modhost.local",
		Mods:              []string{"mod.lights"},
		HeartbeatInterval: 5 * time.Second,
		OpsListenAddr:     "",
	}
}
