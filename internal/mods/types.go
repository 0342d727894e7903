// Package mods defines the attachable module contract and the attach
// registry the kernel tracks modules in.
//
// Ownership boundaries:
//   - modules register service candidates and shared data, nothing else
//   - the kernel owns attach ordering; modules never see each other directly
package mods

import (
	"github.com/peterhaneve/ONIMods-sub014/internal/registry"
)

// Metadata identifies one attachable module.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Host is the kernel surface a module sees while attaching.
type Host interface {
	HostID() string
	Services() *registry.Registry
}

// Mod is one attachable module. Register runs once at attach time, before
// any lifecycle phase; it is where service candidates and shared shapes
// belong.
type Mod interface {
	Metadata() Metadata
	Register(host Host) error
}
