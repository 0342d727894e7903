package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "host":
		return hostTemplate, nil
	case "ops":
		return opsTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const hostTemplate = `id = "modhost.local"
mods = ["mod.lights"]
heartbeat_interval = "5s"
smooth_light = false
`

const opsTemplate = `id = "modhost.local"
mods = ["mod.lights", "mod.radiant", "mod.forbid"]
heartbeat_interval = "5s"
smooth_light = false
ops_listen_addr = "127.0.0.1:7070"
ops_token = "change-me"
`
