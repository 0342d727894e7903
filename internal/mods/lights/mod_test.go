package lights

import (
	"testing"

	"github.com/peterhaneve/ONIMods-sub014/internal/lighting"
	"github.com/peterhaneve/ONIMods-sub014/internal/registry"
	"github.com/peterhaneve/ONIMods-sub014/internal/testutil/testlog"
	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

type fakeHost struct {
	reg *registry.Registry
}

func (f fakeHost) HostID() string { return "host.test" }

func (f fakeHost) Services() *registry.Registry { return f.reg }

func TestRegisterOffersManagerAndBeamShape(t *testing.T) {
	testlog.Start(t)
	host := fakeHost{reg: registry.New()}

	if err := New(false).Register(host); err != nil {
		t.Fatalf("register: %v", err)
	}

	h, ok := host.reg.Resolve(lighting.ServiceID)
	if !ok {
		t.Fatalf("lighting service not electable")
	}
	if got := h.Version(); version.Compare(got, version.New(2, 3, 0, 0)) != 0 {
		t.Fatalf("elected version: %v", got)
	}
	if _, ok := h.Instance().(*lighting.Manager); !ok {
		t.Fatalf("winner instance is %T", h.Instance())
	}

	cat := lighting.SharedCatalog(host.reg)
	if _, ok := cat.ByID("lights.beam"); !ok {
		t.Fatalf("beam shape missing from the shared catalog")
	}
}

func TestBeamCastShape(t *testing.T) {
	testlog.Start(t)
	args := &lighting.CastArgs{
		Origin:     lighting.Cell{X: 0, Y: 0},
		Radius:     4,
		Brightness: make(map[lighting.Cell]float64),
	}
	BeamCast(3)(args)

	// On-axis cells carry the stepped falloff.
	if got := args.Brightness[lighting.Cell{X: 2, Y: 0}]; got != 0.5 {
		t.Fatalf("on-axis ratio: got=%v want=0.5", got)
	}
	// Off-axis cells are half as bright.
	if got := args.Brightness[lighting.Cell{X: 2, Y: 1}]; got != 0.25 {
		t.Fatalf("off-axis ratio: got=%v want=0.25", got)
	}
	// The beam only extends forward.
	if _, ok := args.Brightness[lighting.Cell{X: -1, Y: 0}]; ok {
		t.Fatalf("beam lit a cell behind the origin")
	}
	if _, ok := args.Brightness[lighting.Cell{X: 5, Y: 0}]; ok {
		t.Fatalf("beam overshot its radius")
	}
}
