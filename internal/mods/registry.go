package mods

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrModExists       = errors.New("mods: module already attached")
	ErrModNil          = errors.New("mods: module is nil")
	ErrInvalidMetadata = errors.New("mods: invalid module metadata")
)

// Registry stores attached modules by stable identifier.
type Registry struct {
	items map[string]Mod
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Mod)}
}

// ValidateMetadata checks required metadata fields and id format.
func ValidateMetadata(meta Metadata) error {
	id := strings.TrimSpace(meta.ID)
	name := strings.TrimSpace(meta.Name)
	desc := strings.TrimSpace(meta.Description)
	if id == "" || name == "" || desc == "" {
		return fmt.Errorf("%w: id, name, and description are required", ErrInvalidMetadata)
	}
	if !isValidID(id) {
		return fmt.Errorf("%w: invalid id format %q", ErrInvalidMetadata, id)
	}
	return nil
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Mod) error {
	if mod == nil {
		return ErrModNil
	}

	meta := mod.Metadata()
	if err := ValidateMetadata(meta); err != nil {
		return err
	}

	if _, ok := r.items[meta.ID]; ok {
		return fmt.Errorf("%w: %s", ErrModExists, meta.ID)
	}
	r.items[meta.ID] = mod
	return nil
}

// Resolve returns a module by id.
func (r *Registry) Resolve(id string) (Mod, bool) {
	mod, ok := r.items[id]
	return mod, ok
}

// Len reports the number of attached modules.
func (r *Registry) Len() int {
	return len(r.items)
}

// ListMetadata returns deterministic metadata ordering by id.
func (r *Registry) ListMetadata() []Metadata {
	list := make([]Metadata, 0, len(r.items))
	for _, mod := range r.items {
		list = append(list, mod.Metadata())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func isValidID(id string) bool {
	if id == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(id); i++ {
		c := id[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if i == 0 || i == len(id)-1 {
			if isSep {
				return false
			}
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
