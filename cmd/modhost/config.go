package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/peterhaneve/ONIMods-sub014/internal/kernel"
)

// fileConfig maps config.toml keys to modhost runtime settings.
type fileConfig struct {
	ID                  string   `toml:"id"`
	Mods                []string `toml:"mods"`
	Heartbeat           string   `toml:"heartbeat"`
	HeartbeatInterval   string   `toml:"heartbeat_interval"`
	HeartbeatIntervalMS int64    `toml:"heartbeat_interval_ms"`
	OpsListenAddr       string   `toml:"ops_listen_addr"`
	OpsToken            string   `toml:"ops_token"`
	SmoothLight         bool     `toml:"smooth_light"`
}

func loadHostConfig(path string) (kernel.Config, error) {
	cfg := kernel.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return kernel.Config{}, fmt.Errorf("load modhost config: %w", err)
	}

	if meta.IsDefined("id") {
		id := strings.TrimSpace(raw.ID)
		if id != "" {
			cfg.HostID = id
		}
	}

	if meta.IsDefined("mods") {
		cfg.Mods = normalizeMods(raw.Mods)
	}

	if meta.IsDefined("heartbeat") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Heartbeat))
		if err != nil {
			return kernel.Config{}, fmt.Errorf("parse heartbeat: %w", err)
		}
		cfg.HeartbeatInterval = d
	}

	if meta.IsDefined("heartbeat_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HeartbeatInterval))
		if err != nil {
			return kernel.Config{}, fmt.Errorf("parse heartbeat_interval: %w", err)
		}
		cfg.HeartbeatInterval = d
	}

	if meta.IsDefined("heartbeat_interval_ms") {
		cfg.HeartbeatInterval = time.Duration(raw.HeartbeatIntervalMS) * time.Millisecond
	}

	if meta.IsDefined("ops_listen_addr") {
		cfg.OpsListenAddr = strings.TrimSpace(raw.OpsListenAddr)
	}

	if meta.IsDefined("ops_token") {
		cfg.OpsToken = strings.TrimSpace(raw.OpsToken)
	}

	if meta.IsDefined("smooth_light") {
		cfg.SmoothLight = raw.SmoothLight
	}

	return cfg, nil
}

func normalizeMods(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, mod := range in {
		v := strings.TrimSpace(mod)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
