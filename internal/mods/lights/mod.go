// Package lights bundles the current-generation lighting provider as an
// attachable module.
package lights

import (
	"github.com/peterhaneve/ONIMods-sub014/internal/lighting"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods"
	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

// Mod offers the lighting service at the current contract version and seeds
// the shared catalog with its own beam shape.
type Mod struct {
	smooth bool
}

// New creates the module. smooth selects the continuous falloff path for
// built-in shapes.
func New(smooth bool) *Mod {
	return &Mod{smooth: smooth}
}

func (m *Mod) Metadata() mods.Metadata {
	return mods.Metadata{
		ID:          "mod.lights",
		Name:        "Lights",
		Description: "Current-generation shared lighting provider",
	}
}

// Register offers the manager as a lighting candidate and contributes the
// beam shape through the shared slot, win or lose.
func (m *Mod) Register(host mods.Host) error {
	mgr := lighting.NewManager(lighting.ManagerConfig{
		Version: version.New(2, 3, 0, 0),
		Smooth:  m.smooth,
	})
	if _, err := host.Services().Register(lighting.ServiceID, mgr.ServiceVersion(), "mod.lights", mgr); err != nil {
		return err
	}

	cat := lighting.SharedCatalog(host.Services())
	_, err := cat.Register("lights.beam", BeamCast(3), lighting.RaysNone)
	return err
}

// BeamCast builds a horizontal beam handler: full brightness along the beam
// axis out to the radius, half a step dimmer one cell off axis.
func BeamCast(width int) lighting.CastFunc {
	if width < 1 {
		width = 1
	}
	return func(args *lighting.CastArgs) {
		half := width / 2
		for dx := 0; dx <= args.Radius; dx++ {
			for dy := -half; dy <= half; dy++ {
				cell := lighting.Cell{X: args.Origin.X + dx, Y: args.Origin.Y + dy}
				ratio := lighting.DefaultFalloff(1, cell, args.Origin)
				if dy != 0 {
					ratio /= 2
				}
				args.Brightness[cell] = ratio
			}
		}
	}
}
