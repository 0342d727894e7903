package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// HostConfig is the on-disk modhost configuration.
type HostConfig struct {
	ID                string   `toml:"id"`
	Mods              []string `toml:"mods"`
	HeartbeatInterval string   `toml:"heartbeat_interval"`
	OpsListenAddr     string   `toml:"ops_listen_addr"`
	OpsToken          string   `toml:"ops_token"`
	SmoothLight       bool     `toml:"smooth_light"`
}

// LoadHostConfig reads, defaults, and validates a modhost config file.
func LoadHostConfig(path string) (HostConfig, error) {
	var cfg HostConfig
	if err := loadToml(path, &cfg); err != nil {
		return HostConfig{}, err
	}
	if cfg.ID == "" {
		cfg.ID = "modhost.local"
	}
	if cfg.HeartbeatInterval == "" {
		cfg.HeartbeatInterval = "5s"
	}
	if err := ValidateHostConfig(cfg); err != nil {
		return HostConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// ValidateHostConfig checks required fields and formats.
func ValidateHostConfig(cfg HostConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("host config missing id")
	}
	if _, err := cfg.heartbeatDuration(); err != nil {
		return err
	}
	for i, mod := range cfg.Mods {
		if strings.TrimSpace(mod) == "" {
			return fmt.Errorf("mods[%d] is empty", i)
		}
	}
	if strings.TrimSpace(cfg.OpsToken) != "" && strings.TrimSpace(cfg.OpsListenAddr) == "" {
		return fmt.Errorf("ops_token set without ops_listen_addr")
	}
	return nil
}

func (c HostConfig) heartbeatDuration() (time.Duration, error) {
	raw := strings.TrimSpace(c.HeartbeatInterval)
	if raw == "" {
		return 5 * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("heartbeat_interval invalid: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("heartbeat_interval must be positive, got %s", raw)
	}
	return d, nil
}
