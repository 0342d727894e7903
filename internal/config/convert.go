package config

import (
	"strings"

	"github.com/peterhaneve/ONIMods-sub014/internal/kernel"
)

// Runtime converts a validated host config into the kernel's runtime
// configuration, overlaying the runtime defaults.
func (c HostConfig) Runtime() (kernel.Config, error) {
	out := kernel.DefaultConfig()

	if id := strings.TrimSpace(c.ID); id != "" {
		out.HostID = id
	}
	if c.Mods != nil {
		mods := make([]string, 0, len(c.Mods))
		for _, mod := range c.Mods {
			if v := strings.TrimSpace(mod); v != "" {
				mods = append(mods, v)
			}
		}
		out.Mods = mods
	}

	d, err := c.heartbeatDuration()
	if err != nil {
		return kernel.Config{}, err
	}
	out.HeartbeatInterval = d

	out.OpsListenAddr = strings.TrimSpace(c.OpsListenAddr)
	out.OpsToken = strings.TrimSpace(c.OpsToken)
	out.SmoothLight = c.SmoothLight
	return out, nil
}
