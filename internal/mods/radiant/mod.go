// Package radiant bundles a previous-generation lighting provider. It keeps
// registering its candidate so version election can be observed end to end,
// and contributes its halo shape through the shared catalog, which works
// whether or not its candidate wins.
package radiant

import (
	"github.com/rs/zerolog/log"

	"github.com/peterhaneve/ONIMods-sub014/internal/lighting"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods"
	"github.com/peterhaneve/ONIMods-sub014/internal/service"
	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

type Mod struct{}

func New() *Mod {
	return &Mod{}
}

func (m *Mod) Metadata() mods.Metadata {
	return mods.Metadata{
		ID:          "mod.radiant",
		Name:        "Radiant",
		Description: "Legacy lighting provider and halo shape contributor",
	}
}

func (m *Mod) Register(host mods.Host) error {
	p := &provider{}
	if _, err := host.Services().Register(lighting.ServiceID, p.ServiceVersion(), "mod.radiant", p); err != nil {
		return err
	}

	cat := lighting.SharedCatalog(host.Services())
	_, err := cat.Register("radiant.halo", HaloCast, lighting.RaysNone)
	return err
}

// provider is the legacy implementation. Against a current-generation
// candidate it loses the election and receives no lifecycle calls.
type provider struct{}

func (p *provider) ServiceVersion() version.Version {
	return version.New(1, 4, 0, 0)
}

func (p *provider) Initialize(tok service.Token) error {
	log.Info().Str("version", p.ServiceVersion().String()).Msg("radiant lighting initialized")
	return nil
}

// HaloCast lights a ring around the origin: the outer half of the radius,
// stepped down by falloff.
func HaloCast(args *lighting.CastArgs) {
	inner := args.Radius / 2
	for dx := -args.Radius; dx <= args.Radius; dx++ {
		for dy := -args.Radius; dy <= args.Radius; dy++ {
			cell := lighting.Cell{X: args.Origin.X + dx, Y: args.Origin.Y + dy}
			dist := lighting.CellDistance(cell, args.Origin)
			if dist < inner || dist > args.Radius {
				continue
			}
			args.Brightness[cell] = lighting.DefaultFalloff(1, cell, args.Origin)
		}
	}
}
