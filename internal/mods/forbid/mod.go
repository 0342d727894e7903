// Package forbid bundles the allow-table service: per-object resource
// permissions consulted by background delivery workers.
package forbid

import (
	"github.com/peterhaneve/ONIMods-sub014/internal/mods"
)

// ServiceID is the shared service id the allow table is offered under.
const ServiceID = "sim.forbiditems"

// Process opcodes accepted through a service handle.
const (
	OpAllow uint32 = iota + 1
	OpRevoke
)

type Mod struct{}

func New() *Mod {
	return &Mod{}
}

func (m *Mod) Metadata() mods.Metadata {
	return mods.Metadata{
		ID:          "mod.forbid",
		Name:        "Forbid Items",
		Description: "Per-object resource allow table for delivery workers",
	}
}

func (m *Mod) Register(host mods.Host) error {
	table := NewTable()
	_, err := host.Services().Register(ServiceID, table.ServiceVersion(), "mod.forbid", table)
	return err
}
