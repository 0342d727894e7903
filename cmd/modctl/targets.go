package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

var ErrNoTarget = errors.New("modctl: no usable target")

// targetsFile persists ops endpoints configured for the client.
type targetsFile struct {
	Targets []targetConfig `toml:"targets"`
}

// targetConfig binds a display name to one ops endpoint.
type targetConfig struct {
	Name  string `toml:"name"`
	Addr  string `toml:"addr"`
	Token string `toml:"token"`
}

func loadTargets(path string) (targetsFile, error) {
	var cfg targetsFile
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return targetsFile{}, fmt.Errorf("load targets: %w", err)
	}
	for i := range cfg.Targets {
		cfg.Targets[i].Name = strings.TrimSpace(cfg.Targets[i].Name)
		cfg.Targets[i].Addr = strings.TrimSpace(cfg.Targets[i].Addr)
		cfg.Targets[i].Token = strings.TrimSpace(cfg.Targets[i].Token)
	}
	return cfg, nil
}

// resolveTarget picks the endpoint to talk to. A direct -addr wins outright;
// otherwise the named target from the file, or the file's single entry.
func resolveTarget(path, name, addrOverride, tokenOverride string) (targetConfig, error) {
	if addr := strings.TrimSpace(addrOverride); addr != "" {
		return targetConfig{Name: "cli", Addr: addr, Token: strings.TrimSpace(tokenOverride)}, nil
	}

	cfg, err := loadTargets(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return targetConfig{}, fmt.Errorf("%w: no -addr given and no targets file at %s", ErrNoTarget, path)
		}
		return targetConfig{}, err
	}

	target, err := pickTarget(cfg, name)
	if err != nil {
		return targetConfig{}, err
	}
	if token := strings.TrimSpace(tokenOverride); token != "" {
		target.Token = token
	}
	return target, nil
}

func pickTarget(cfg targetsFile, name string) (targetConfig, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		for _, target := range cfg.Targets {
			if target.Name == name {
				if target.Addr == "" {
					return targetConfig{}, fmt.Errorf("%w: target %q has no addr", ErrNoTarget, name)
				}
				return target, nil
			}
		}
		return targetConfig{}, fmt.Errorf("%w: target %q not found", ErrNoTarget, name)
	}

	usable := make([]targetConfig, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		if target.Addr != "" {
			usable = append(usable, target)
		}
	}
	switch len(usable) {
	case 0:
		return targetConfig{}, fmt.Errorf("%w: targets file has no entries with an addr", ErrNoTarget)
	case 1:
		return usable[0], nil
	default:
		names := make([]string, 0, len(usable))
		for _, target := range usable {
			names = append(names, target.Name)
		}
		return targetConfig{}, fmt.Errorf("%w: multiple targets, pick one with -target (%s)",
			ErrNoTarget, strings.Join(names, ", "))
	}
}
